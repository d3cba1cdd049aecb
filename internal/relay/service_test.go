package relay

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/ecom/internal/config"
	"github.com/tuanvumaihuynh/ecom/internal/repository"
	"github.com/tuanvumaihuynh/ecom/internal/storage/db"
	"github.com/tuanvumaihuynh/ecom/internal/storage/mq"
	"github.com/tuanvumaihuynh/ecom/pkg/correlationid"
	"github.com/tuanvumaihuynh/ecom/pkg/ptr"
)

type fakeDB struct {
	db.DB
}

func (f *fakeDB) WithTx(_ context.Context, txFunc func(db.DB) error) error {
	return txFunc(f)
}

type fakeOutboxRepo struct {
	mu      sync.Mutex
	pending []repository.ListUnprocessedOutboxMsgsResult
	updated []repository.BulkUpdateOutboxMsgsItem
}

func (r *fakeOutboxRepo) WithDB(db.DB) repository.OutboxMsgRepository { return r }

func (r *fakeOutboxRepo) CreateOutboxMsg(context.Context, repository.CreateOutboxMsgParams) error {
	return nil
}

func (r *fakeOutboxRepo) ListUnprocessedOutboxMsgs(_ context.Context, params repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := min(int(params.BatchSize), len(r.pending))
	batch := r.pending[:n]
	r.pending = r.pending[n:]
	return batch, nil
}

func (r *fakeOutboxRepo) BulkUpdateOutboxMsgs(_ context.Context, params repository.BulkUpdateOutboxMsgsParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updated = append(r.updated, params.Items...)
	return nil
}

func (r *fakeOutboxRepo) updatedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.updated)
}

type fakeProducer struct {
	mu             sync.Mutex
	produced       []mq.ProduceMsg
	correlationIDs []string
	failOn         string
}

func (p *fakeProducer) Produce(ctx context.Context, msg mq.ProduceMsg) error {
	if msg.Topic == p.failOn {
		return errors.New("broker unavailable")
	}
	id, _ := correlationid.FromContext(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.produced = append(p.produced, msg)
	p.correlationIDs = append(p.correlationIDs, id)
	return nil
}

func newMsg(topic string) repository.ListUnprocessedOutboxMsgsResult {
	return repository.ListUnprocessedOutboxMsgsResult{
		ID:           uuid.New(),
		Topic:        topic,
		Headers:      map[string]string{correlationid.Header: "c-1"},
		Payload:      []byte(`{"id":1}`),
		PartitionKey: ptr.New("1"),
	}
}

func newTestService(repo *fakeOutboxRepo, producer *fakeProducer) *Service {
	cfg := config.Relay{BatchSize: 2, Interval: 10 * time.Millisecond, StopTimeout: time.Second}
	return NewService(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), &fakeDB{}, repo, producer)
}

func TestRelayBatch(t *testing.T) {
	repo := &fakeOutboxRepo{pending: []repository.ListUnprocessedOutboxMsgsResult{
		newMsg("product.created"),
		newMsg("cart.item_added"),
		newMsg("product.updated"),
	}}
	producer := &fakeProducer{failOn: "cart.item_added"}
	svc := newTestService(repo, producer)

	relayed, err := svc.relayBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, relayed)

	require.Len(t, producer.produced, 1)
	assert.Equal(t, "product.created", producer.produced[0].Topic)
	assert.Equal(t, "c-1", producer.produced[0].Headers[correlationid.Header])
	assert.Equal(t, []string{"c-1"}, producer.correlationIDs)

	var failed []repository.BulkUpdateOutboxMsgsItem
	for _, item := range repo.updated {
		if item.Error != nil {
			failed = append(failed, item)
		}
	}
	require.Len(t, failed, 1)
	assert.Equal(t, "broker unavailable", *failed[0].Error)

	relayed, err = svc.relayBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, relayed)

	relayed, err = svc.relayBatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, relayed)
}

func TestRunStopsOnCleanup(t *testing.T) {
	repo := &fakeOutboxRepo{pending: []repository.ListUnprocessedOutboxMsgsResult{newMsg("product.created")}}
	svc := newTestService(repo, &fakeProducer{})

	cleanup := svc.Run(context.Background())
	assert.Eventually(t, func() bool { return repo.updatedCount() == 1 }, time.Second, 5*time.Millisecond)

	done := make(chan struct{})
	go func() {
		cleanup()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop")
	}
}
