package orders

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/order-saga/internal/domain"
	"github.com/example/order-saga/internal/eventbus"
)

// Listener reacts to inventory outcomes: a successful reservation confirms
// the order, a failed one cancels it (the compensating path).
type Listener struct {
	service *Service
	logger  *slog.Logger
}

func NewListener(service *Service, logger *slog.Logger) *Listener {
	return &Listener{service: service, logger: logger}
}

func (l *Listener) Register(bus eventbus.Bus) {
	bus.Subscribe(domain.EventTypeInventoryReserved, "orders", eventbus.WithDedup(l.onInventoryReserved, l.logger))
	bus.Subscribe(domain.EventTypeInventoryReservationFailed, "orders", eventbus.WithDedup(l.onInventoryReservationFailed, l.logger))
}

func (l *Listener) onInventoryReserved(ctx context.Context, env domain.Envelope) error {
	event, ok := env.Event.(domain.InventoryReservedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T for %s", env.Event, env.Type)
	}

	l.logger.Info("inventory reserved, confirming order", "order_id", event.OrderID)
	return l.service.ConfirmOrder(ctx, event.OrderID)
}

func (l *Listener) onInventoryReservationFailed(ctx context.Context, env domain.Envelope) error {
	event, ok := env.Event.(domain.InventoryReservationFailedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T for %s", env.Event, env.Type)
	}

	l.logger.Warn("reservation failed, cancelling order", "order_id", event.OrderID, "reason", event.Reason)
	return l.service.CancelOrder(ctx, event.OrderID)
}
