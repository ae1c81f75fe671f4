package shipping

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/order-saga/internal/domain"
	"github.com/example/order-saga/internal/eventbus"
	"github.com/example/order-saga/internal/saga"
)

// Listener creates and ships a shipment as soon as an order is confirmed.
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
	bus.Subscribe(domain.EventTypeOrderConfirmed, "shipping", eventbus.WithDedup(l.onOrderConfirmed, l.logger))
}

func (l *Listener) onOrderConfirmed(ctx context.Context, env domain.Envelope) error {
	event, ok := env.Event.(domain.OrderConfirmedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T for %s", env.Event, env.Type)
	}

	l.logger.Info("order confirmed received", "order_id", event.OrderID)

	// Models the latency of the carrier's booking API.
	time.Sleep(l.ioDelay)

	shipment, err := l.service.CreateShipment(ctx, event.OrderID, event.CustomerID)
	if err != nil {
		return err
	}
	shipment, err = l.service.ProcessShipping(ctx, shipment.ID)
	if err != nil {
		return err
	}

	l.tracker.MarkShipment(event.OrderID, saga.StepOK)

	created := domain.ShipmentCreatedEvent{
		ShipmentID:     shipment.ID,
		OrderID:        shipment.OrderID,
		CustomerID:     shipment.CustomerID,
		TrackingNumber: shipment.TrackingNumber,
	}
	return l.bus.Publish(ctx, created)
}
