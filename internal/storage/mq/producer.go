package mq

import (
	"context"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tuanvumaihuynh/ecom/internal/config"
)

// ProduceMsg is one outbox event ready to be published.
type ProduceMsg struct {
	Topic        string
	Headers      map[string]string
	Payload      []byte
	PartitionKey *string
}

// Producer publishes a single message and blocks until the broker acknowledges it.
type Producer interface {
	Produce(ctx context.Context, msg ProduceMsg) error
}

var _ Producer = (*KafkaProducer)(nil)

type KafkaProducer struct {
	cl *kgo.Client
}

func NewKafkaProducer(ctx context.Context, cfg config.Kafka) (*KafkaProducer, error) {
	cl, err := newClient(ctx, cfg, kgo.RequiredAcks(kgo.AllISRAcks()))
	if err != nil {
		return nil, err
	}
	return &KafkaProducer{cl: cl}, nil
}

func (p *KafkaProducer) Produce(ctx context.Context, msg ProduceMsg) error {
	attrs := []attribute.KeyValue{attribute.String("messaging.destination.name", msg.Topic)}
	if msg.PartitionKey != nil {
		attrs = append(attrs, attribute.String("messaging.kafka.message.key", *msg.PartitionKey))
	}
	ctx, span := tracer.Start(ctx, "KafkaProducer.Produce",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	rec, err := p.cl.ProduceSync(ctx, toRecord(msg)).First()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "produce failed")
		return err
	}

	span.SetAttributes(
		attribute.Int("messaging.kafka.destination.partition", int(rec.Partition)),
		attribute.Int64("messaging.kafka.message.offset", rec.Offset),
	)
	return nil
}

func (p *KafkaProducer) Close() {
	p.cl.Close()
}

func toRecord(msg ProduceMsg) *kgo.Record {
	rec := kgo.SliceRecord(msg.Payload)
	rec.Topic = msg.Topic
	for k, v := range msg.Headers {
		rec.Headers = append(rec.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}
	if msg.PartitionKey != nil {
		rec.Key = []byte(*msg.PartitionKey)
	}
	return rec
}
