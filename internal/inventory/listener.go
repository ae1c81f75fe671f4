package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/order-saga/internal/domain"
	"github.com/example/order-saga/internal/eventbus"
	"github.com/example/order-saga/internal/saga"
)

// Listener drives the inventory side of the saga: reserve on order creation,
// release on cancellation.
type Listener struct {
	service *Service
	bus     eventbus.Bus
	tracker *saga.Tracker
	ioDelay time.Duration
	logger  *slog.Logger
}

func NewListener(service *Service, bus eventbus.Bus, tracker *saga.Tracker, ioDelay time.Duration, logger *slog.Logger) *Listener {
	return &Listener{service: service, bus: bus, tracker: tracker, ioDelay: ioDelay, logger: logger}
}

func (l *Listener) Register(bus eventbus.Bus) {
	bus.Subscribe(domain.EventTypeOrderCreated, "inventory", eventbus.WithDedup(l.onOrderCreated, l.logger))
	bus.Subscribe(domain.EventTypeOrderCancelled, "inventory", eventbus.WithDedup(l.onOrderCancelled, l.logger))
}

func (l *Listener) onOrderCreated(ctx context.Context, env domain.Envelope) error {
	event, ok := env.Event.(domain.OrderCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T for %s", env.Event, env.Type)
	}

	l.logger.Info("order created received", "order_id", event.OrderID, "product_id", event.ProductID, "quantity", event.Quantity)

	// Models the latency of a downstream stock lookup.
	time.Sleep(l.ioDelay)

	err := l.service.Reserve(ctx, event.ProductID, event.Quantity)
	switch {
	case err == nil:
		l.tracker.MarkReservation(event.OrderID, saga.StepOK)
		reserved := domain.InventoryReservedEvent{
			OrderID:   event.OrderID,
			ProductID: event.ProductID,
			Quantity:  event.Quantity,
		}
		return l.bus.Publish(ctx, reserved)

	case errors.Is(err, domain.ErrInsufficientStock):
		// A domain outcome, not a failure: it drives the compensation path.
		l.tracker.MarkReservation(event.OrderID, saga.StepFailed)
		l.logger.Warn("reservation failed", "order_id", event.OrderID, "reason", err.Error())
		failed := domain.InventoryReservationFailedEvent{
			OrderID:   event.OrderID,
			ProductID: event.ProductID,
			Quantity:  event.Quantity,
			Reason:    err.Error(),
		}
		return l.bus.Publish(ctx, failed)

	default:
		return err
	}
}

func (l *Listener) onOrderCancelled(ctx context.Context, env domain.Envelope) error {
	event, ok := env.Event.(domain.OrderCancelledEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T for %s", env.Event, env.Type)
	}

	l.logger.Info("order cancelled received", "order_id", event.OrderID, "product_id", event.ProductID)

	// Releases a prior successful reservation (cancel after confirm). When
	// the cancellation came from a failed reservation nothing was reserved,
	// and the release fails without mutating the item.
	return l.service.Release(ctx, event.ProductID, event.Quantity)
}
