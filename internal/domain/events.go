package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event type names double as topic names for the Kafka-backed bus.
const (
	EventTypeOrderCreated               = "order.created"
	EventTypeOrderConfirmed             = "order.confirmed"
	EventTypeOrderCancelled             = "order.cancelled"
	EventTypeInventoryReserved          = "inventory.reserved"
	EventTypeInventoryReservationFailed = "inventory.reservation-failed"
	EventTypeShipmentCreated            = "shipment.created"
)

// Event is an immutable domain fact produced by one context and consumed by
// zero or more others. Key returns the aggregate id used for partitioning.
type Event interface {
	EventType() string
	Key() string
}

// Envelope wraps an event with delivery metadata. The id enables duplicate
// suppression on an at-least-once bus.
type Envelope struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Event      Event     `json:"payload"`
}

func NewEnvelope(event Event) Envelope {
	return Envelope{
		ID:         uuid.New().String(),
		Type:       event.EventType(),
		OccurredAt: time.Now().UTC(),
		Event:      event,
	}
}

type OrderCreatedEvent struct {
	OrderID     string `json:"order_id"`
	CustomerID  string `json:"customer_id"`
	ProductID   string `json:"product_id"`
	Quantity    int    `json:"quantity"`
	TotalAmount int64  `json:"total_amount"`
}

func (e OrderCreatedEvent) EventType() string { return EventTypeOrderCreated }
func (e OrderCreatedEvent) Key() string       { return e.OrderID }

type OrderConfirmedEvent struct {
	OrderID    string `json:"order_id"`
	CustomerID string `json:"customer_id"`
	ProductID  string `json:"product_id"`
	Quantity   int    `json:"quantity"`
}

func (e OrderConfirmedEvent) EventType() string { return EventTypeOrderConfirmed }
func (e OrderConfirmedEvent) Key() string       { return e.OrderID }

type OrderCancelledEvent struct {
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (e OrderCancelledEvent) EventType() string { return EventTypeOrderCancelled }
func (e OrderCancelledEvent) Key() string       { return e.OrderID }

type InventoryReservedEvent struct {
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (e InventoryReservedEvent) EventType() string { return EventTypeInventoryReserved }
func (e InventoryReservedEvent) Key() string       { return e.OrderID }

type InventoryReservationFailedEvent struct {
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason"`
}

func (e InventoryReservationFailedEvent) EventType() string {
	return EventTypeInventoryReservationFailed
}
func (e InventoryReservationFailedEvent) Key() string { return e.OrderID }

type ShipmentCreatedEvent struct {
	ShipmentID     string `json:"shipment_id"`
	OrderID        string `json:"order_id"`
	CustomerID     string `json:"customer_id"`
	TrackingNumber string `json:"tracking_number"`
}

func (e ShipmentCreatedEvent) EventType() string { return EventTypeShipmentCreated }
func (e ShipmentCreatedEvent) Key() string       { return e.OrderID }
