package repository

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/ecom/internal/model"
	"github.com/tuanvumaihuynh/ecom/internal/storage/db"
)

const productColumns = `id, name, description, price, stock, category, image_url, active, created_at, updated_at`

// ProductParams holds the caller-writable product fields.
type ProductParams struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    string
	ImageURL    string
}

type ProductRepository interface {
	WithDB(db db.DB) ProductRepository
	CreateProduct(ctx context.Context, params ProductParams) (model.Product, error)
	UpdateProduct(ctx context.Context, id int64, params ProductParams) (model.Product, error)
	// GetActiveProduct returns ErrNotFound for missing and deactivated products.
	GetActiveProduct(ctx context.Context, id int64) (model.Product, error)
	// GetProductForUpdate locks the product row until the surrounding transaction ends.
	GetProductForUpdate(ctx context.Context, id int64) (model.Product, error)
	ListActiveProducts(ctx context.Context) ([]model.Product, error)
	SearchProducts(ctx context.Context, keyword string) ([]model.Product, error)
	DeactivateProduct(ctx context.Context, id int64) (bool, error)
}

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{
		db: db,
	}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{
		db: db,
	}
}

func (r productRepository) CreateProduct(ctx context.Context, params ProductParams) (model.Product, error) {
	args, err := productArgs(params)
	if err != nil {
		return model.Product{}, err
	}

	rows, err := r.db.Query(ctx, `
		INSERT INTO products (name, description, price, stock, category, image_url)
		VALUES (@name, @description, @price, @stock, @category, @image_url)
		RETURNING `+productColumns, args)
	if err != nil {
		return model.Product{}, fmt.Errorf("insert product: %w", err)
	}

	return collectOneProduct(rows)
}

func (r productRepository) UpdateProduct(ctx context.Context, id int64, params ProductParams) (model.Product, error) {
	args, err := productArgs(params)
	if err != nil {
		return model.Product{}, err
	}
	args["id"] = id

	rows, err := r.db.Query(ctx, `
		UPDATE products
		SET
			name        = @name,
			description = @description,
			price       = @price,
			stock       = @stock,
			category    = @category,
			image_url   = @image_url,
			updated_at  = NOW()
		WHERE id = @id AND active
		RETURNING `+productColumns, args)
	if err != nil {
		return model.Product{}, fmt.Errorf("update product: %w", err)
	}

	return collectOneProduct(rows)
}

func (r productRepository) GetActiveProduct(ctx context.Context, id int64) (model.Product, error) {
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 AND active`, id)
	if err != nil {
		return model.Product{}, fmt.Errorf("select product: %w", err)
	}

	return collectOneProduct(rows)
}

func (r productRepository) GetProductForUpdate(ctx context.Context, id int64) (model.Product, error) {
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		return model.Product{}, fmt.Errorf("select product for update: %w", err)
	}

	return collectOneProduct(rows)
}

func (r productRepository) ListActiveProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products WHERE active ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list active products: %w", err)
	}

	return collectProducts(rows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r productRepository) SearchProducts(ctx context.Context, keyword string) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE active
			AND stock > 0
			AND (name ILIKE @pattern OR description ILIKE @pattern)
		ORDER BY id
	`, pgx.NamedArgs{
		"pattern": "%" + likeEscaper.Replace(keyword) + "%",
	})
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}

	return collectProducts(rows)
}

func (r productRepository) DeactivateProduct(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE products SET active = FALSE, updated_at = NOW() WHERE id = $1 AND active`, id)
	if err != nil {
		return false, fmt.Errorf("deactivate product: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

type productRow struct {
	ID          int64          `db:"id"`
	Name        string         `db:"name"`
	Description string         `db:"description"`
	Price       pgtype.Numeric `db:"price"`
	Stock       int32          `db:"stock"`
	Category    string         `db:"category"`
	ImageURL    string         `db:"image_url"`
	Active      bool           `db:"active"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func productArgs(params ProductParams) (pgx.NamedArgs, error) {
	var price pgtype.Numeric
	if err := price.Scan(params.Price.String()); err != nil {
		return nil, fmt.Errorf("scan price: %w", err)
	}

	if params.Stock > math.MaxInt32 || params.Stock < 0 {
		return nil, fmt.Errorf("stock out of range: %d", params.Stock)
	}

	return pgx.NamedArgs{
		"name":        params.Name,
		"description": params.Description,
		"price":       price,
		"stock":       int32(params.Stock),
		"category":    params.Category,
		"image_url":   params.ImageURL,
	}, nil
}

func collectOneProduct(rows pgx.Rows) (model.Product, error) {
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		return model.Product{}, fmt.Errorf("collect product: %w", notFoundOr(err))
	}

	return productRowToModel(row)
}

func collectProducts(rows pgx.Rows) ([]model.Product, error) {
	productRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		return nil, fmt.Errorf("collect products: %w", err)
	}

	products := make([]model.Product, 0, len(productRows))
	for _, row := range productRows {
		product, err := productRowToModel(row)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	return products, nil
}

func productRowToModel(row productRow) (model.Product, error) {
	price, err := numericToDecimal(row.Price)
	if err != nil {
		return model.Product{}, fmt.Errorf("convert price of product %d: %w", row.ID, err)
	}

	return model.Product{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Price:       price,
		Stock:       int(row.Stock),
		Category:    row.Category,
		ImageURL:    row.ImageURL,
		Active:      row.Active,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}

func numericToDecimal(n pgtype.Numeric) (decimal.Decimal, error) {
	if !n.Valid || n.NaN || n.InfinityModifier != pgtype.Finite {
		return decimal.Decimal{}, fmt.Errorf("not a finite number")
	}

	return decimal.NewFromBigInt(n.Int, n.Exp), nil
}
