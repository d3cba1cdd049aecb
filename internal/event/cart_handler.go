package event

import (
	"context"
	"log/slog"
)

func (s *Service) handleCartItemAddedEvent(ctx context.Context, ev CartItemAddedEvent) error {
	s.logger.InfoContext(ctx, "cart item added",
		slog.String("cart_line_id", ev.CartLineID.String()),
		slog.String("user_id", ev.UserID.String()),
		slog.Int64("product_id", ev.ProductID),
		slog.Int("quantity", ev.Quantity),
	)
	return nil
}
