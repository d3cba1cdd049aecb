package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/tuanvumaihuynh/ecom/internal/apperr"
)

const (
	headerUserID   = "X-User-Id"
	maxRequestBody = 1 << 20 // 1 MB
)

// decodeBody decodes the JSON body into dst and validates it.
func (s *Service) decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(dst); err != nil {
		return apperr.ValidationErr.WrapParent(fmt.Errorf("invalid request body: %w", err))
	}

	if err := s.validator.Validate(dst); err != nil {
		return apperr.ValidationErr.WrapParent(err)
	}

	return nil
}

func bindPathParam(r *http.Request, name string, dst any) error {
	if err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dst, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	}); err != nil {
		return apperr.ValidationErr.WrapParent(fmt.Errorf("invalid format for parameter %s: %w", name, err))
	}

	return nil
}

func bindQueryParam(r *http.Request, name string, dst any) error {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dst); err != nil {
		return apperr.ValidationErr.WrapParent(fmt.Errorf("invalid format for parameter %s: %w", name, err))
	}

	return nil
}

// userIDFromHeader reads the caller's id from the X-User-Id header.
func userIDFromHeader(r *http.Request) (uuid.UUID, error) {
	value := r.Header.Get(headerUserID)
	if value == "" {
		return uuid.Nil, apperr.ValidationErr.WrapParent(errors.New("header X-User-Id is required"))
	}

	var userID uuid.UUID
	if err := runtime.BindStyledParameterWithOptions("simple", headerUserID, value, &userID, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationHeader,
		Explode:       false,
		Required:      true,
	}); err != nil {
		return uuid.Nil, apperr.ValidationErr.WrapParent(fmt.Errorf("invalid format for header X-User-Id: %w", err))
	}

	return userID, nil
}
