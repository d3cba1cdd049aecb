package event

import (
	"context"
	"fmt"
	"log/slog"
)

func (s *Service) handleProductCreatedEvent(ctx context.Context, ev ProductEvent) error {
	s.logger.InfoContext(ctx, "product created",
		slog.Int64("product_id", ev.ID),
		slog.String("name", ev.Name),
		slog.Int("stock", ev.Stock),
	)
	return nil
}

// handleProductChangedEvent drops the cached copy so the next read goes to the database.
func (s *Service) handleProductChangedEvent(ctx context.Context, ev ProductEvent) error {
	if err := s.cache.DeleteProduct(ctx, ev.ID); err != nil {
		return fmt.Errorf("evict product %d: %w", ev.ID, err)
	}

	s.logger.DebugContext(ctx, "product evicted from cache",
		slog.Int64("product_id", ev.ID),
		slog.Bool("active", ev.Active),
	)
	return nil
}
