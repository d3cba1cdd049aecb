package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/ecom/internal/apperr"
	"github.com/tuanvumaihuynh/ecom/internal/event"
	"github.com/tuanvumaihuynh/ecom/internal/model"
	"github.com/tuanvumaihuynh/ecom/internal/repository"
	"github.com/tuanvumaihuynh/ecom/internal/storage/cache"
	"github.com/tuanvumaihuynh/ecom/internal/storage/db"
)

type ProductParams struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    string
	ImageURL    string
}

type ProductService interface {
	CreateProduct(ctx context.Context, params ProductParams) (model.Product, error)
	UpdateProduct(ctx context.Context, id int64, params ProductParams) (model.Product, error)
	GetProduct(ctx context.Context, id int64) (model.Product, error)
	ListActiveProducts(ctx context.Context) ([]model.Product, error)
	SearchProducts(ctx context.Context, keyword string) ([]model.Product, error)
	// DeleteProduct deactivates the product. It reports false when no active product had the id.
	DeleteProduct(ctx context.Context, id int64) (bool, error)
}

type productService struct {
	logger        *slog.Logger
	db            db.DB
	productRepo   repository.ProductRepository
	outboxMsgRepo repository.OutboxMsgRepository
	cache         cache.ProductCache
}

func NewProductService(
	logger *slog.Logger,
	db db.DB,
	productRepo repository.ProductRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
	productCache cache.ProductCache,
) ProductService {
	return &productService{
		logger:        logger.With(slog.String("service", "product")),
		db:            db,
		productRepo:   productRepo,
		outboxMsgRepo: outboxMsgRepo,
		cache:         productCache,
	}
}

func (s *productService) CreateProduct(ctx context.Context, params ProductParams) (model.Product, error) {
	var product model.Product
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		var err error
		product, err = s.productRepo.
			WithDB(db).
			CreateProduct(ctx, repository.ProductParams(params))
		if err != nil {
			return fmt.Errorf("product repository create product: %w", err)
		}

		return enqueueEvent(ctx, s.outboxMsgRepo.WithDB(db),
			event.TopicProductCreated, productKey(product.ID), event.NewProductEvent(product))
	}); err != nil {
		return model.Product{}, storageErr(fmt.Errorf("db with tx: %w", err))
	}

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id int64, params ProductParams) (model.Product, error) {
	var product model.Product
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		var err error
		product, err = s.productRepo.
			WithDB(db).
			UpdateProduct(ctx, id, repository.ProductParams(params))
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.ProductNotFoundErr
			}
			return fmt.Errorf("product repository update product: %w", err)
		}

		return enqueueEvent(ctx, s.outboxMsgRepo.WithDB(db),
			event.TopicProductUpdated, productKey(product.ID), event.NewProductEvent(product))
	}); err != nil {
		return model.Product{}, storageErr(fmt.Errorf("db with tx: %w", err))
	}

	s.evict(ctx, id)
	return product, nil
}

func (s *productService) GetProduct(ctx context.Context, id int64) (model.Product, error) {
	product, ok, err := s.cache.GetProduct(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "product cache get failed", slog.Int64("product_id", id), slog.Any("error", err))
	}
	if ok {
		return product, nil
	}

	// Read before the row so an eviction racing this load voids the fill.
	gen, genErr := s.cache.Generation(ctx, id)
	if genErr != nil {
		s.logger.WarnContext(ctx, "product cache generation failed", slog.Int64("product_id", id), slog.Any("error", genErr))
	}

	product, err = s.productRepo.GetActiveProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Product{}, apperr.ProductNotFoundErr
		}
		return model.Product{}, storageErr(fmt.Errorf("product repository get active product: %w", err))
	}

	if genErr == nil {
		if err := s.cache.SetProduct(ctx, product, gen); err != nil {
			s.logger.WarnContext(ctx, "product cache set failed", slog.Int64("product_id", id), slog.Any("error", err))
		}
	}

	return product, nil
}

func (s *productService) ListActiveProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.ListActiveProducts(ctx)
	if err != nil {
		return nil, storageErr(fmt.Errorf("product repository list active products: %w", err))
	}

	return products, nil
}

func (s *productService) SearchProducts(ctx context.Context, keyword string) ([]model.Product, error) {
	products, err := s.productRepo.SearchProducts(ctx, keyword)
	if err != nil {
		return nil, storageErr(fmt.Errorf("product repository search products: %w", err))
	}

	return products, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		var err error
		deleted, err = s.productRepo.
			WithDB(db).
			DeactivateProduct(ctx, id)
		if err != nil {
			return fmt.Errorf("product repository deactivate product: %w", err)
		}
		if !deleted {
			return nil
		}

		return enqueueEvent(ctx, s.outboxMsgRepo.WithDB(db),
			event.TopicProductDeleted, productKey(id), event.ProductEvent{ID: id})
	}); err != nil {
		return false, storageErr(fmt.Errorf("db with tx: %w", err))
	}

	if deleted {
		s.evict(ctx, id)
	}
	return deleted, nil
}

// evict drops the local cache entry right away. The product events evict it
// again on every instance once relayed.
func (s *productService) evict(ctx context.Context, id int64) {
	if err := s.cache.DeleteProduct(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "product cache delete failed", slog.Int64("product_id", id), slog.Any("error", err))
	}
}

func productKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
