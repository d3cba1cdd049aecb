package cache

import (
	"context"

	"github.com/tuanvumaihuynh/ecom/internal/model"
)

// ProductCache stores active products by id.
//
// Every DeleteProduct bumps the product's generation. A reader filling the
// cache after a miss reads the generation before loading the row and hands it
// to SetProduct, which skips the write when the product was invalidated in
// between, so a row read before a concurrent update cannot be cached after
// that update's eviction.
type ProductCache interface {
	GetProduct(ctx context.Context, id int64) (model.Product, bool, error)
	Generation(ctx context.Context, id int64) (int64, error)
	SetProduct(ctx context.Context, product model.Product, generation int64) error
	DeleteProduct(ctx context.Context, id int64) error
}

var _ ProductCache = NoopProductCache{}

// NoopProductCache is used when no cache backend is configured. Every lookup misses.
type NoopProductCache struct{}

func (NoopProductCache) GetProduct(context.Context, int64) (model.Product, bool, error) {
	return model.Product{}, false, nil
}

func (NoopProductCache) Generation(context.Context, int64) (int64, error) { return 0, nil }

func (NoopProductCache) SetProduct(context.Context, model.Product, int64) error { return nil }

func (NoopProductCache) DeleteProduct(context.Context, int64) error { return nil }
