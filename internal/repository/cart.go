package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/ecom/internal/model"
	"github.com/tuanvumaihuynh/ecom/internal/storage/db"
)

type CreateCartLineParams struct {
	UserID    uuid.UUID
	ProductID int64
	Quantity  int
}

type CartRepository interface {
	WithDB(db db.DB) CartRepository
	CreateCartLine(ctx context.Context, params CreateCartLineParams) (model.CartLine, error)
	// SumQuantityByProduct returns the total quantity held in carts for a product.
	SumQuantityByProduct(ctx context.Context, productID int64) (int, error)
	ListCartLinesByUser(ctx context.Context, userID uuid.UUID) ([]model.CartLine, error)
}

type cartRepository struct {
	db db.DB
}

func NewCartRepository(db db.DB) CartRepository {
	return &cartRepository{
		db: db,
	}
}

func (r cartRepository) WithDB(db db.DB) CartRepository {
	return &cartRepository{
		db: db,
	}
}

func (r cartRepository) CreateCartLine(ctx context.Context, params CreateCartLineParams) (model.CartLine, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return model.CartLine{}, fmt.Errorf("generate cart line id: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		INSERT INTO cart_lines (id, user_id, product_id, quantity)
		VALUES (@id, @user_id, @product_id, @quantity)
		RETURNING id, user_id, product_id, quantity, created_at
	`, pgx.NamedArgs{
		"id":         id,
		"user_id":    params.UserID,
		"product_id": params.ProductID,
		"quantity":   params.Quantity,
	})
	if err != nil {
		return model.CartLine{}, fmt.Errorf("insert cart line: %w", err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[cartLineRow])
	if err != nil {
		return model.CartLine{}, fmt.Errorf("collect cart line: %w", err)
	}

	return row.toModel(), nil
}

func (r cartRepository) SumQuantityByProduct(ctx context.Context, productID int64) (int, error) {
	var held int64
	if err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0)::BIGINT FROM cart_lines WHERE product_id = $1
	`, productID).Scan(&held); err != nil {
		return 0, fmt.Errorf("sum cart quantity: %w", err)
	}

	return int(held), nil
}

func (r cartRepository) ListCartLinesByUser(ctx context.Context, userID uuid.UUID) ([]model.CartLine, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, product_id, quantity, created_at
		FROM cart_lines
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}

	cartLineRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[cartLineRow])
	if err != nil {
		return nil, fmt.Errorf("collect cart lines: %w", err)
	}

	lines := make([]model.CartLine, 0, len(cartLineRows))
	for _, row := range cartLineRows {
		lines = append(lines, row.toModel())
	}

	return lines, nil
}

type cartLineRow struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	ProductID int64     `db:"product_id"`
	Quantity  int32     `db:"quantity"`
	CreatedAt time.Time `db:"created_at"`
}

func (r cartLineRow) toModel() model.CartLine {
	return model.CartLine{
		ID:        r.ID,
		UserID:    r.UserID,
		ProductID: r.ProductID,
		Quantity:  int(r.Quantity),
		CreatedAt: r.CreatedAt,
	}
}
