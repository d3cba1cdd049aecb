package apperr

import "github.com/tuanvumaihuynh/ecom/pkg/zerror"

const (
	ValidationErrorCode         = "VALIDATION_FAILED"
	ProductNotFoundErrorCode    = "PRODUCT_NOT_FOUND"
	UserNotFoundErrorCode       = "USER_NOT_FOUND"
	InsufficientStockErrorCode  = "INSUFFICIENT_STOCK"
	InvalidQuantityErrorCode    = "INVALID_QUANTITY"
	StorageUnavailableErrorCode = "STORAGE_UNAVAILABLE"
	RouteNotFoundErrorCode      = "ROUTE_NOT_FOUND"
)

var (
	ValidationErr = zerror.NewValidationFailed(ValidationErrorCode, "validation error")

	ProductNotFoundErr    = zerror.NewNotFound(ProductNotFoundErrorCode, "product not found")
	UserNotFoundErr       = zerror.NewNotFound(UserNotFoundErrorCode, "user not found")
	InsufficientStockErr  = zerror.NewConflict(InsufficientStockErrorCode, "insufficient stock for requested quantity")
	InvalidQuantityErr    = zerror.NewBadRequest(InvalidQuantityErrorCode, "quantity must be greater than zero")
	StorageUnavailableErr = zerror.NewServiceUnavailable(StorageUnavailableErrorCode, "storage is unavailable")

	RouteNotFoundErr = zerror.NewNotFound(RouteNotFoundErrorCode, "route not found")
)
