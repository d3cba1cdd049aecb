package zerror_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/ecom/pkg/zerror"
)

func TestZError(t *testing.T) {
	notFound := zerror.NewNotFound("PRODUCT_NOT_FOUND", "product not found")

	t.Run("Should format without parent", func(t *testing.T) {
		assert.Equal(t, "Code=PRODUCT_NOT_FOUND, Msg=product not found", notFound.Error())
	})

	t.Run("Should format and unwrap parent", func(t *testing.T) {
		parent := errors.New("no rows")
		err := notFound.WrapParent(parent)

		assert.Equal(t, "Code=PRODUCT_NOT_FOUND, Msg=product not found, Parent=(no rows)", err.Error())
		assert.ErrorIs(t, err, parent)
		assert.Same(t, parent, err.Parent())
	})

	t.Run("Should keep predefined error when parent is nil", func(t *testing.T) {
		assert.Equal(t, notFound, notFound.WrapParent(nil))
	})

	t.Run("Should match predefined error through wrapping", func(t *testing.T) {
		err := fmt.Errorf("service: %w", notFound.WrapParent(errors.New("boom")))

		assert.ErrorIs(t, err, notFound)
		assert.NotErrorIs(t, err, zerror.NewNotFound("USER_NOT_FOUND", "user not found"))

		var zErr zerror.ZError
		require.ErrorAs(t, err, &zErr)
		assert.Equal(t, zerror.StatusNotFound, zErr.Status())
		assert.Equal(t, "PRODUCT_NOT_FOUND", zErr.Code())
		assert.Equal(t, "product not found", zErr.Msg())
	})
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "CONFLICT", zerror.StatusConflict.String())
	assert.Equal(t, "SERVICE_UNAVAILABLE", zerror.StatusServiceUnavailable.String())
	assert.Equal(t, "UNKNOWN", zerror.Status(200).String())
}
