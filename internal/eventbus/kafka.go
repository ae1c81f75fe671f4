package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/example/order-saga/internal/domain"
)

var kafkaTracer = otel.Tracer("eventbus/kafka")

// wireEnvelope is the JSON layout of an event on a Kafka topic. The topic
// name is the event type, so the payload can be decoded without inspecting
// headers.
type wireEnvelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

var eventDecoders = map[string]func(json.RawMessage) (domain.Event, error){
	domain.EventTypeOrderCreated:               decodeEvent[domain.OrderCreatedEvent],
	domain.EventTypeOrderConfirmed:             decodeEvent[domain.OrderConfirmedEvent],
	domain.EventTypeOrderCancelled:             decodeEvent[domain.OrderCancelledEvent],
	domain.EventTypeInventoryReserved:          decodeEvent[domain.InventoryReservedEvent],
	domain.EventTypeInventoryReservationFailed: decodeEvent[domain.InventoryReservationFailedEvent],
	domain.EventTypeShipmentCreated:            decodeEvent[domain.ShipmentCreatedEvent],
}

func decodeEvent[E domain.Event](payload json.RawMessage) (domain.Event, error) {
	var event E
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}
	return event, nil
}

// KafkaBus implements Bus on Kafka with one topic per event type. Offsets are
// committed only after the handler succeeds, so delivery is at-least-once.
type KafkaBus struct {
	brokers []string
	groupID string
	logger  *slog.Logger
	metrics busMetrics

	mu      sync.Mutex
	writers map[string]*kafka.Writer
	readers []*kafka.Reader

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewKafkaBus(brokers []string, groupID string, logger *slog.Logger) *KafkaBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &KafkaBus{
		brokers: brokers,
		groupID: groupID,
		logger:  logger,
		metrics: newBusMetrics(),
		writers: make(map[string]*kafka.Writer),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (b *KafkaBus) writer(topic string) *kafka.Writer {
	b.mu.Lock()
	defer b.mu.Unlock()
	if w, ok := b.writers[topic]; ok {
		return w
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(b.brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           100 * time.Millisecond,
	}
	b.writers[topic] = w
	return w
}

func (b *KafkaBus) Publish(ctx context.Context, event domain.Event) error {
	env := domain.NewEnvelope(event)

	payload, err := json.Marshal(env.Event)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	data, err := json.Marshal(wireEnvelope{
		ID:         env.ID,
		Type:       env.Type,
		OccurredAt: env.OccurredAt,
		Payload:    payload,
	})
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Key()),
		Value: data,
	}

	ctx, span := kafkaTracer.Start(ctx, "send "+env.Type,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystemKafka,
			semconv.MessagingOperationTypePublish,
			semconv.MessagingDestinationName(env.Type),
			semconv.MessagingKafkaMessageKey(event.Key()),
		),
	)
	defer span.End()

	otel.GetTextMapPropagator().Inject(ctx, newMessageCarrier(&msg))

	if err := b.writer(env.Type).WriteMessages(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("write event %s: %w", env.Type, err)
	}

	b.metrics.published.Add(ctx, 1)
	return nil
}

// Subscribe consumes the topic in a consumer group scoped to this subscriber.
// Subscribers of the same type must not share a group: group members split
// partitions, and a shared group would deliver each event to only one of them.
func (b *KafkaBus) Subscribe(eventType, subscriber string, handler Handler) {
	groupID := b.groupID + "." + subscriber
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: b.brokers,
		Topic:   eventType,
		GroupID: groupID,
	})

	b.mu.Lock()
	b.readers = append(b.readers, reader)
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.consume(reader, eventType, groupID, handler)
	}()
}

func (b *KafkaBus) consume(reader *kafka.Reader, eventType, groupID string, handler Handler) {
	for {
		msg, err := reader.FetchMessage(b.ctx)
		if err != nil {
			if b.ctx.Err() != nil {
				return
			}
			b.logger.Error("fetch message failed", "topic", eventType, "error", err)
			return
		}

		if err := b.processMessage(msg, eventType, groupID, handler); err != nil {
			// Uncommitted, so the broker redelivers.
			b.logger.Error("event processing failed", "topic", eventType, "error", err)
			continue
		}

		if err := reader.CommitMessages(b.ctx, msg); err != nil {
			b.logger.Error("commit failed", "topic", eventType, "error", err)
		}
	}
}

func (b *KafkaBus) processMessage(msg kafka.Message, eventType, groupID string, handler Handler) error {
	parentCtx := otel.GetTextMapPropagator().Extract(b.ctx, newMessageCarrier(&msg))

	ctx, span := kafkaTracer.Start(parentCtx, "process "+eventType,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			semconv.MessagingSystemKafka,
			semconv.MessagingOperationTypeDeliver,
			semconv.MessagingDestinationName(eventType),
			semconv.MessagingKafkaConsumerGroup(groupID),
		),
	)
	defer span.End()

	var wire wireEnvelope
	if err := json.Unmarshal(msg.Value, &wire); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("unmarshal envelope: %w", err)
	}

	decode, ok := eventDecoders[wire.Type]
	if !ok {
		return fmt.Errorf("unknown event type %q", wire.Type)
	}
	event, err := decode(wire.Payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("decode %s payload: %w", wire.Type, err)
	}

	env := domain.Envelope{ID: wire.ID, Type: wire.Type, OccurredAt: wire.OccurredAt, Event: event}
	if err := handler(ctx, env); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		b.metrics.failed.Add(ctx, 1)
		return err
	}

	b.metrics.delivered.Add(ctx, 1)
	return nil
}

func (b *KafkaBus) Close() error {
	b.cancel()
	b.wg.Wait()

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range b.readers {
		_ = r.Close()
	}
	for _, w := range b.writers {
		_ = w.Close()
	}
	return nil
}
