package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/ecom/internal/apperr"
	"github.com/tuanvumaihuynh/ecom/internal/event"
	"github.com/tuanvumaihuynh/ecom/internal/model"
	"github.com/tuanvumaihuynh/ecom/internal/repository"
	"github.com/tuanvumaihuynh/ecom/internal/storage/db"
)

type AddToCartParams struct {
	UserID    uuid.UUID
	ProductID int64
	Quantity  int
}

type CartService interface {
	// AddToCart reserves quantity units of a product for the user by creating a new cart line.
	// Stock is never decremented: a product's available quantity is its stock minus the
	// quantities already held by cart lines.
	AddToCart(ctx context.Context, params AddToCartParams) (model.CartLine, error)
	ListCart(ctx context.Context, userID uuid.UUID) ([]model.CartLine, error)
}

type cartService struct {
	logger        *slog.Logger
	db            db.DB
	productRepo   repository.ProductRepository
	userRepo      repository.UserRepository
	cartRepo      repository.CartRepository
	outboxMsgRepo repository.OutboxMsgRepository
}

func NewCartService(
	logger *slog.Logger,
	db db.DB,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	cartRepo repository.CartRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) CartService {
	return &cartService{
		logger:        logger.With(slog.String("service", "cart")),
		db:            db,
		productRepo:   productRepo,
		userRepo:      userRepo,
		cartRepo:      cartRepo,
		outboxMsgRepo: outboxMsgRepo,
	}
}

func (s *cartService) AddToCart(ctx context.Context, params AddToCartParams) (model.CartLine, error) {
	var line model.CartLine
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		product, err := s.productRepo.
			WithDB(db).
			GetProductForUpdate(ctx, params.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.ProductNotFoundErr
			}
			return fmt.Errorf("product repository get product for update: %w", err)
		}
		if !product.Active {
			return apperr.ProductNotFoundErr
		}
		if params.Quantity <= 0 {
			return apperr.InvalidQuantityErr
		}

		held, err := s.cartRepo.
			WithDB(db).
			SumQuantityByProduct(ctx, product.ID)
		if err != nil {
			return fmt.Errorf("cart repository sum quantity by product: %w", err)
		}
		if product.Stock-held < params.Quantity {
			return apperr.InsufficientStockErr
		}

		if _, err := s.userRepo.
			WithDB(db).
			GetUser(ctx, params.UserID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.UserNotFoundErr
			}
			return fmt.Errorf("user repository get user: %w", err)
		}

		line, err = s.cartRepo.
			WithDB(db).
			CreateCartLine(ctx, repository.CreateCartLineParams(params))
		if err != nil {
			return fmt.Errorf("cart repository create cart line: %w", err)
		}

		return enqueueEvent(ctx, s.outboxMsgRepo.WithDB(db),
			event.TopicCartItemAdded, productKey(line.ProductID), event.NewCartItemAddedEvent(line))
	}); err != nil {
		return model.CartLine{}, storageErr(fmt.Errorf("db with tx: %w", err))
	}

	s.logger.InfoContext(ctx, "cart line reserved",
		slog.String("cart_line_id", line.ID.String()),
		slog.Int64("product_id", line.ProductID),
		slog.Int("quantity", line.Quantity),
	)
	return line, nil
}

func (s *cartService) ListCart(ctx context.Context, userID uuid.UUID) ([]model.CartLine, error) {
	if _, err := s.userRepo.GetUser(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.UserNotFoundErr
		}
		return nil, storageErr(fmt.Errorf("user repository get user: %w", err))
	}

	lines, err := s.cartRepo.ListCartLinesByUser(ctx, userID)
	if err != nil {
		return nil, storageErr(fmt.Errorf("cart repository list cart lines by user: %w", err))
	}

	return lines, nil
}
