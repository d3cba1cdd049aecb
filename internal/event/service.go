package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tuanvumaihuynh/ecom/internal/storage/cache"
	"github.com/tuanvumaihuynh/ecom/internal/storage/mq"
)

// Service consumes the events published through the outbox.
type Service struct {
	logger     *slog.Logger
	mqConsumer mq.Consumer
	cache      cache.ProductCache
}

// New creates a new event service.
func New(
	logger *slog.Logger,
	mqConsumer mq.Consumer,
	productCache cache.ProductCache,
) *Service {
	return &Service{
		logger:     logger,
		mqConsumer: mqConsumer,
		cache:      productCache,
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	handlers := map[string]mq.HandlerFunc{
		TopicProductCreated: decode(s.handleProductCreatedEvent),
		TopicProductUpdated: decode(s.handleProductChangedEvent),
		TopicProductDeleted: decode(s.handleProductChangedEvent),
		TopicCartItemAdded:  decode(s.handleCartItemAddedEvent),
	}

	for topic, handler := range handlers {
		if err := s.mqConsumer.RegisterHandler(topic, handler); err != nil {
			return nil, fmt.Errorf("register %s event handler: %w", topic, err)
		}
	}

	mqCleanup, err := s.mqConsumer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run mq consumer: %w", err)
	}

	cleanup := func() {
		mqCleanup()
	}

	return cleanup, nil
}

func decode[T any](handle func(context.Context, T) error) mq.HandlerFunc {
	return func(ctx context.Context, topic string, payload []byte) error {
		var ev T
		if err := json.Unmarshal(payload, &ev); err != nil {
			return fmt.Errorf("unmarshal %s event: %w", topic, err)
		}

		if err := handle(ctx, ev); err != nil {
			return fmt.Errorf("handle %s event: %w", topic, err)
		}

		return nil
	}
}
