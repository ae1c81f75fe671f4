package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/order-saga/internal/domain"
	"github.com/example/order-saga/internal/eventbus"
)

// Listener fans out over the order lifecycle: it notifies the customer on
// creation, confirmation, and shipment, independently of the saga's main
// step sequence.
type Listener struct {
	service *Service
	logger  *slog.Logger
}

func NewListener(service *Service, logger *slog.Logger) *Listener {
	return &Listener{service: service, logger: logger}
}

func (l *Listener) Register(bus eventbus.Bus) {
	bus.Subscribe(domain.EventTypeOrderCreated, "notification", eventbus.WithDedup(l.onOrderCreated, l.logger))
	bus.Subscribe(domain.EventTypeOrderConfirmed, "notification", eventbus.WithDedup(l.onOrderConfirmed, l.logger))
	bus.Subscribe(domain.EventTypeShipmentCreated, "notification", eventbus.WithDedup(l.onShipmentCreated, l.logger))
}

func (l *Listener) onOrderCreated(ctx context.Context, env domain.Envelope) error {
	event, ok := env.Event.(domain.OrderCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T for %s", env.Event, env.Type)
	}

	_, err := l.service.Send(ctx, event.CustomerID, TypeOrderCreated,
		fmt.Sprintf("Order #%s has been created and is being processed.", event.OrderID))
	return err
}

func (l *Listener) onOrderConfirmed(ctx context.Context, env domain.Envelope) error {
	event, ok := env.Event.(domain.OrderConfirmedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T for %s", env.Event, env.Type)
	}

	_, err := l.service.Send(ctx, event.CustomerID, TypeOrderConfirmed,
		fmt.Sprintf("Order #%s has been confirmed. Preparing it for shipment.", event.OrderID))
	return err
}

func (l *Listener) onShipmentCreated(ctx context.Context, env domain.Envelope) error {
	event, ok := env.Event.(domain.ShipmentCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T for %s", env.Event, env.Type)
	}

	_, err := l.service.Send(ctx, event.CustomerID, TypeShipmentCreated,
		fmt.Sprintf("Order #%s has been shipped! Tracking number: %s", event.OrderID, event.TrackingNumber))
	return err
}
