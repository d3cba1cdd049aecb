package model

import (
	"time"

	"github.com/google/uuid"
)

// CartLine is a single reservation of a product quantity in a user's cart.
// Adding the same product twice yields two lines.
type CartLine struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}
