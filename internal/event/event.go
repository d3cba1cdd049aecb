package event

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/ecom/internal/model"
)

const (
	TopicProductCreated = "product.created"
	TopicProductUpdated = "product.updated"
	TopicProductDeleted = "product.deleted"
	TopicCartItemAdded  = "cart.item_added"
)

// ProductEvent is published for every product change. A deleted product is
// sent with Active set to false.
type ProductEvent struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock"`
	Category   string          `json:"category"`
	Active     bool            `json:"active"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func NewProductEvent(p model.Product) ProductEvent {
	return ProductEvent{
		ID:         p.ID,
		Name:       p.Name,
		Price:      p.Price,
		Stock:      p.Stock,
		Category:   p.Category,
		Active:     p.Active,
		OccurredAt: p.UpdatedAt,
	}
}

type CartItemAddedEvent struct {
	CartLineID uuid.UUID `json:"cart_line_id"`
	UserID     uuid.UUID `json:"user_id"`
	ProductID  int64     `json:"product_id"`
	Quantity   int       `json:"quantity"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewCartItemAddedEvent(line model.CartLine) CartItemAddedEvent {
	return CartItemAddedEvent{
		CartLineID: line.ID,
		UserID:     line.UserID,
		ProductID:  line.ProductID,
		Quantity:   line.Quantity,
		OccurredAt: line.CreatedAt,
	}
}
