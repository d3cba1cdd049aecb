package http

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/ecom/internal/model"
	"github.com/tuanvumaihuynh/ecom/internal/service"
)

type ProductRequest struct {
	Name        string           `json:"name" validate:"required,max=255"`
	Description string           `json:"description" validate:"max=2000"`
	Price       *decimal.Decimal `json:"price" validate:"required,gte=0,lt=10000000000,decimal_places=2"`
	Stock       *int             `json:"stock" validate:"required,gte=0,max=2147483647"`
	Category    string           `json:"category" validate:"max=100"`
	ImageURL    string           `json:"imageUrl" validate:"omitempty,url,max=2048"`
}

func (r ProductRequest) toParams() service.ProductParams {
	return service.ProductParams{
		Name:        r.Name,
		Description: r.Description,
		Price:       *r.Price,
		Stock:       *r.Stock,
		Category:    r.Category,
		ImageURL:    r.ImageURL,
	}
}

type ProductResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"imageUrl"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func newProductResponse(p model.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Category:    p.Category,
		ImageURL:    p.ImageURL,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func newProductResponses(products []model.Product) []ProductResponse {
	items := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, newProductResponse(p))
	}
	return items
}

type AddressDTO struct {
	Street  string `json:"street" validate:"max=255"`
	City    string `json:"city" validate:"max=100"`
	State   string `json:"state" validate:"max=100"`
	ZipCode string `json:"zipCode" validate:"max=20"`
	Country string `json:"country" validate:"max=100"`
}

type UserRequest struct {
	FirstName string         `json:"firstName" validate:"required,max=100"`
	LastName  string         `json:"lastName" validate:"max=100"`
	Email     string         `json:"email" validate:"omitempty,email,max=255"`
	Phone     string         `json:"phone" validate:"max=30"`
	Role      model.UserRole `json:"role" validate:"omitempty,enum"`
	Address   *AddressDTO    `json:"address"`
}

func (r UserRequest) toParams() service.UserParams {
	var address *model.Address
	if r.Address != nil {
		address = &model.Address{
			Street:  r.Address.Street,
			City:    r.Address.City,
			State:   r.Address.State,
			ZipCode: r.Address.ZipCode,
			Country: r.Address.Country,
		}
	}

	return service.UserParams{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
		Role:      r.Role,
		Address:   address,
	}
}

type UserResponse struct {
	ID        uuid.UUID      `json:"id"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone"`
	Role      model.UserRole `json:"role"`
	Address   *AddressDTO    `json:"address,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func newUserResponse(u model.User) UserResponse {
	res := UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.Address != nil {
		res.Address = &AddressDTO{
			Street:  u.Address.Street,
			City:    u.Address.City,
			State:   u.Address.State,
			ZipCode: u.Address.ZipCode,
			Country: u.Address.Country,
		}
	}
	return res
}

func newUserResponses(users []model.User) []UserResponse {
	items := make([]UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, newUserResponse(u))
	}
	return items
}

// AddToCartRequest leaves quantity unchecked; the cart service owns that rule.
type AddToCartRequest struct {
	ProductID int64 `json:"productId" validate:"required"`
	Quantity  int   `json:"quantity"`
}

type CartLineResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	ProductID int64     `json:"productId"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
}

func newCartLineResponse(line model.CartLine) CartLineResponse {
	return CartLineResponse{
		ID:        line.ID,
		UserID:    line.UserID,
		ProductID: line.ProductID,
		Quantity:  line.Quantity,
		CreatedAt: line.CreatedAt,
	}
}

type HealthResponse struct {
	Status string `json:"status"`
}
