package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ShipmentStatus string

const (
	ShipmentStatusPending   ShipmentStatus = "PENDING"
	ShipmentStatusShipped   ShipmentStatus = "SHIPPED"
	ShipmentStatusInTransit ShipmentStatus = "IN_TRANSIT"
	ShipmentStatusDelivered ShipmentStatus = "DELIVERED"
)

type Shipment struct {
	ID             string         `json:"id"`
	OrderID        string         `json:"order_id"`
	CustomerID     string         `json:"customer_id"`
	Status         ShipmentStatus `json:"status"`
	TrackingNumber string         `json:"tracking_number"`
	ShippedAt      *time.Time     `json:"shipped_at,omitempty"`
	DeliveredAt    *time.Time     `json:"delivered_at,omitempty"`
}

// NewShipment creates a pending shipment with a tracking number already
// assigned, one shipment per order.
func NewShipment(orderID, customerID string) *Shipment {
	return &Shipment{
		ID:             uuid.New().String(),
		OrderID:        orderID,
		CustomerID:     customerID,
		Status:         ShipmentStatusPending,
		TrackingNumber: newTrackingNumber(),
	}
}

func newTrackingNumber() string {
	return "TRK-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
}

func (s *Shipment) Ship() error {
	if s.Status != ShipmentStatusPending {
		return fmt.Errorf("%w: shipment can only be shipped from PENDING, current %s", ErrInvalidTransition, s.Status)
	}
	now := time.Now().UTC()
	s.Status = ShipmentStatusShipped
	s.ShippedAt = &now
	return nil
}

func (s *Shipment) MarkAsDelivered() error {
	if s.Status != ShipmentStatusShipped && s.Status != ShipmentStatusInTransit {
		return fmt.Errorf("%w: shipment must be shipped before delivery, current %s", ErrInvalidTransition, s.Status)
	}
	now := time.Now().UTC()
	s.Status = ShipmentStatusDelivered
	s.DeliveredAt = &now
	return nil
}
