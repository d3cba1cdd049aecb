package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tuanvumaihuynh/ecom/internal/repository"
	"github.com/tuanvumaihuynh/ecom/pkg/outbox"
	"github.com/tuanvumaihuynh/ecom/pkg/ptr"
)

// enqueueEvent stores ev in the outbox within the caller's transaction.
// The key keeps events for one entity on one partition.
func enqueueEvent(
	ctx context.Context,
	outboxMsgRepo repository.OutboxMsgRepository,
	topic string,
	key string,
	ev any,
) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}

	if err := outboxMsgRepo.CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
		Topic:        topic,
		Headers:      outbox.Headers(ctx),
		Payload:      payload,
		PartitionKey: ptr.New(key),
	}); err != nil {
		return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
	}

	return nil
}
