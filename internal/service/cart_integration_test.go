//go:build integration

package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/tuanvumaihuynh/ecom/internal/apperr"
	"github.com/tuanvumaihuynh/ecom/internal/repository"
	"github.com/tuanvumaihuynh/ecom/internal/service"
	"github.com/tuanvumaihuynh/ecom/internal/storage/db"
)

func TestCartService_AddToCartPostgres(t *testing.T) {
	ctx := context.Background()

	pgC, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("ecom"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	testcontainers.CleanupContainer(t, pgC)

	url, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	poolCfg, err := pgxpool.ParseConfig(url)
	require.NoError(t, err)
	poolCfg.MaxConns = 32
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, db.Migrate(pool))

	client := db.NewClient(pool)
	productRepo := repository.NewProductRepository(client)
	userRepo := repository.NewUserRepository(client)
	cartRepo := repository.NewCartRepository(client)
	outboxRepo := repository.NewOutboxMsgRepository(client)
	svc := service.NewCartService(discardLogger, client, productRepo, userRepo, cartRepo, outboxRepo)

	user, err := userRepo.CreateUser(ctx, repository.UserParams{FirstName: "Ada"})
	require.NoError(t, err)

	newProduct := func(stock int) int64 {
		p, err := productRepo.CreateProduct(ctx, repository.ProductParams{
			Name:  "Kettle",
			Price: decimal.NewFromInt(20),
			Stock: stock,
		})
		require.NoError(t, err)
		return p.ID
	}

	t.Run("Should follow the end-to-end scenario", func(t *testing.T) {
		productID := newProduct(5)

		line, err := svc.AddToCart(ctx, service.AddToCartParams{UserID: user.ID, ProductID: productID, Quantity: 3})
		require.NoError(t, err)
		assert.Equal(t, 3, line.Quantity)

		_, err = svc.AddToCart(ctx, service.AddToCartParams{UserID: user.ID, ProductID: productID, Quantity: 3})
		assert.ErrorIs(t, err, apperr.InsufficientStockErr)

		product, err := productRepo.GetActiveProduct(ctx, productID)
		require.NoError(t, err)
		assert.Equal(t, 5, product.Stock)
	})

	t.Run("Should never hold more than the stock under contention", func(t *testing.T) {
		const n = 25
		productID := newProduct(n - 1)

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
		)
		for range n {
			wg.Go(func() {
				_, err := svc.AddToCart(ctx, service.AddToCartParams{UserID: user.ID, ProductID: productID, Quantity: 1})
				if err == nil {
					mu.Lock()
					successes++
					mu.Unlock()
					return
				}
				assert.ErrorIs(t, err, apperr.InsufficientStockErr)
			})
		}
		wg.Wait()

		assert.Equal(t, n-1, successes)

		held, err := cartRepo.SumQuantityByProduct(ctx, productID)
		require.NoError(t, err)
		assert.Equal(t, n-1, held)
	})
}
