package service

import (
	"errors"

	"github.com/tuanvumaihuynh/ecom/internal/apperr"
	"github.com/tuanvumaihuynh/ecom/pkg/zerror"
)

// storageErr reports a failed store call as StorageUnavailable. Domain errors
// raised inside a transaction pass through untouched.
func storageErr(err error) error {
	var zErr zerror.ZError
	if errors.As(err, &zErr) {
		return err
	}
	return apperr.StorageUnavailableErr.WrapParent(err)
}
