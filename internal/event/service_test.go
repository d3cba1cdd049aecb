package event_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/ecom/internal/event"
	"github.com/tuanvumaihuynh/ecom/internal/model"
	"github.com/tuanvumaihuynh/ecom/internal/storage/cache"
	"github.com/tuanvumaihuynh/ecom/internal/storage/mq"
)

type fakeConsumer struct {
	handlers map[string]mq.HandlerFunc
	ran      bool
}

func (c *fakeConsumer) RegisterHandler(topic string, handler mq.HandlerFunc) error {
	if c.handlers == nil {
		c.handlers = map[string]mq.HandlerFunc{}
	}
	c.handlers[topic] = handler
	return nil
}

func (c *fakeConsumer) Run(context.Context) (mq.CleanupFunc, error) {
	c.ran = true
	return func() {}, nil
}

type fakeCache struct {
	cache.NoopProductCache
	deleted []int64
	err     error
}

func (c *fakeCache) DeleteProduct(_ context.Context, id int64) error {
	c.deleted = append(c.deleted, id)
	return c.err
}

func runService(t *testing.T, c cache.ProductCache) *fakeConsumer {
	t.Helper()

	consumer := &fakeConsumer{}
	svc := event.New(slog.New(slog.NewTextHandler(io.Discard, nil)), consumer, c)

	cleanup, err := svc.Run(context.Background())
	require.NoError(t, err)
	t.Cleanup(cleanup)

	require.True(t, consumer.ran)
	return consumer
}

func TestServiceRegistersAllTopics(t *testing.T) {
	consumer := runService(t, cache.NoopProductCache{})

	for _, topic := range []string{
		event.TopicProductCreated,
		event.TopicProductUpdated,
		event.TopicProductDeleted,
		event.TopicCartItemAdded,
	} {
		assert.Contains(t, consumer.handlers, topic)
	}
}

func TestServiceEvictsChangedProducts(t *testing.T) {
	c := &fakeCache{}
	consumer := runService(t, c)
	ctx := context.Background()

	payload := []byte(`{"id":7,"name":"Lamp","price":"9.5","stock":1,"active":false}`)
	require.NoError(t, consumer.handlers[event.TopicProductUpdated](ctx, event.TopicProductUpdated, payload))
	require.NoError(t, consumer.handlers[event.TopicProductDeleted](ctx, event.TopicProductDeleted, payload))
	require.NoError(t, consumer.handlers[event.TopicProductCreated](ctx, event.TopicProductCreated, payload))

	assert.Equal(t, []int64{7, 7}, c.deleted)
}

func TestServiceHandlerErrors(t *testing.T) {
	c := &fakeCache{err: errors.New("redis down")}
	consumer := runService(t, c)
	ctx := context.Background()

	err := consumer.handlers[event.TopicProductUpdated](ctx, event.TopicProductUpdated, []byte(`{"id":1}`))
	assert.ErrorContains(t, err, "redis down")

	err = consumer.handlers[event.TopicCartItemAdded](ctx, event.TopicCartItemAdded, []byte(`not json`))
	assert.ErrorContains(t, err, "unmarshal cart.item_added event")
}

func TestNewProductEvent(t *testing.T) {
	p := model.Product{ID: 3, Name: "Mug", Price: decimal.RequireFromString("4.20"), Stock: 2, Active: true}

	ev := event.NewProductEvent(p)
	assert.Equal(t, int64(3), ev.ID)
	assert.True(t, ev.Price.Equal(p.Price))
	assert.True(t, ev.Active)
}
