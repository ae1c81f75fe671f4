// Package eventbus carries typed domain events between bounded contexts,
// asynchronously and at-least-once, with no ordering guarantee across event
// types.
package eventbus

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/example/order-saga/internal/domain"
)

var busTracer = otel.Tracer("eventbus")

// Handler processes one delivered event. Returning an error marks the
// delivery as not successfully processed; retry policy belongs to the bus
// implementation, not the handler.
type Handler func(ctx context.Context, env domain.Envelope) error

// Bus delivers each published event to every subscriber of its type. The
// subscriber name identifies one consuming purpose: distinct subscribers each
// receive their own copy of every event.
type Bus interface {
	Publish(ctx context.Context, event domain.Event) error
	Subscribe(eventType, subscriber string, handler Handler)
}

type busMetrics struct {
	published metric.Int64Counter
	delivered metric.Int64Counter
	failed    metric.Int64Counter
}

func newBusMetrics() busMetrics {
	meter := otel.Meter("eventbus")
	published, _ := meter.Int64Counter("eventbus.events.published")
	delivered, _ := meter.Int64Counter("eventbus.events.delivered")
	failed, _ := meter.Int64Counter("eventbus.deliveries.failed")
	return busMetrics{published: published, delivered: delivered, failed: failed}
}

// InProcessBus delivers each event to every subscriber in its own goroutine.
// Delivery is asynchronous relative to the publisher; a failing handler does
// not affect other subscribers.
type subscription struct {
	name    string
	handler Handler
}

type InProcessBus struct {
	mu       sync.RWMutex
	handlers map[string][]subscription
	logger   *slog.Logger
	metrics  busMetrics
	inflight sync.WaitGroup
}

func NewInProcessBus(logger *slog.Logger) *InProcessBus {
	return &InProcessBus{
		handlers: make(map[string][]subscription),
		logger:   logger,
		metrics:  newBusMetrics(),
	}
}

func (b *InProcessBus) Subscribe(eventType, subscriber string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], subscription{name: subscriber, handler: handler})
}

func (b *InProcessBus) Publish(ctx context.Context, event domain.Event) error {
	env := domain.NewEnvelope(event)

	ctx, span := busTracer.Start(ctx, "publish "+env.Type,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingOperationTypePublish,
			semconv.MessagingDestinationName(env.Type),
			attribute.String("messaging.message.id", env.ID),
		),
	)
	defer span.End()

	b.metrics.published.Add(ctx, 1, metric.WithAttributes(attribute.String("event.type", env.Type)))

	b.mu.RLock()
	subs := b.handlers[env.Type]
	b.mu.RUnlock()

	// Deliveries outlive the publisher's request; only the trace context is
	// carried over, not its cancellation.
	deliveryCtx := context.WithoutCancel(ctx)
	for _, sub := range subs {
		b.inflight.Add(1)
		go b.deliver(deliveryCtx, env, sub)
	}

	return nil
}

func (b *InProcessBus) deliver(ctx context.Context, env domain.Envelope, sub subscription) {
	defer b.inflight.Done()

	ctx, span := busTracer.Start(ctx, "process "+env.Type,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			semconv.MessagingOperationTypeDeliver,
			semconv.MessagingDestinationName(env.Type),
			attribute.String("messaging.message.id", env.ID),
		),
	)
	defer span.End()

	if err := sub.handler(ctx, env); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		b.metrics.failed.Add(ctx, 1, metric.WithAttributes(attribute.String("event.type", env.Type)))
		b.logger.Error("event delivery failed", "event_type", env.Type, "subscriber", sub.name, "event_id", env.ID, "error", err)
		return
	}

	b.metrics.delivered.Add(ctx, 1, metric.WithAttributes(attribute.String("event.type", env.Type)))
}

// Drain blocks until all in-flight deliveries have finished. Events published
// after Drain is called are not waited for.
func (b *InProcessBus) Drain() {
	b.inflight.Wait()
}
