// Package outbox carries request context across the outbox table and the
// message broker as plain string headers.
package outbox

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/tuanvumaihuynh/ecom/pkg/correlationid"
)

// Headers returns the trace context and correlation ID of ctx encoded as
// message headers.
func Headers(ctx context.Context) map[string]string {
	carrier := propagation.MapCarrier{}
	propagator().Inject(ctx, carrier)
	return carrier
}

// WithHeaders returns a copy of ctx carrying the trace context and
// correlation ID found in headers.
func WithHeaders(ctx context.Context, headers map[string]string) context.Context {
	return propagator().Extract(ctx, propagation.MapCarrier(headers))
}

// The global propagator is looked up per call so headers follow whatever
// telemetry setup installed.
func propagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(otel.GetTextMapPropagator(), correlationPropagator{})
}

type correlationPropagator struct{}

var _ propagation.TextMapPropagator = correlationPropagator{}

func (correlationPropagator) Inject(ctx context.Context, carrier propagation.TextMapCarrier) {
	if id, ok := correlationid.FromContext(ctx); ok {
		carrier.Set(correlationid.Header, id)
	}
}

func (correlationPropagator) Extract(ctx context.Context, carrier propagation.TextMapCarrier) context.Context {
	if id := carrier.Get(correlationid.Header); id != "" {
		return correlationid.NewContext(ctx, id)
	}
	return ctx
}

func (correlationPropagator) Fields() []string {
	return []string{correlationid.Header}
}
