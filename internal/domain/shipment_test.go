package domain

import (
	"errors"
	"regexp"
	"testing"
)

var trackingNumberPattern = regexp.MustCompile(`^TRK-[A-Z0-9]{8}$`)

func TestNewShipment(t *testing.T) {
	shipment := NewShipment("order-1", "customer-1")

	if shipment.Status != ShipmentStatusPending {
		t.Errorf("expected PENDING, got %s", shipment.Status)
	}
	if !trackingNumberPattern.MatchString(shipment.TrackingNumber) {
		t.Errorf("tracking number %q does not match expected format", shipment.TrackingNumber)
	}
}

func TestShipmentShip(t *testing.T) {
	t.Run("ships pending shipment", func(t *testing.T) {
		shipment := NewShipment("order-1", "customer-1")
		if err := shipment.Ship(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if shipment.Status != ShipmentStatusShipped {
			t.Errorf("expected SHIPPED, got %s", shipment.Status)
		}
		if shipment.ShippedAt == nil {
			t.Error("expected shipped_at to be set")
		}
	})

	t.Run("fails when already shipped", func(t *testing.T) {
		shipment := NewShipment("order-1", "customer-1")
		_ = shipment.Ship()
		if err := shipment.Ship(); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("expected transition error, got %v", err)
		}
	})
}

func TestShipmentMarkAsDelivered(t *testing.T) {
	t.Run("delivers shipped shipment", func(t *testing.T) {
		shipment := NewShipment("order-1", "customer-1")
		_ = shipment.Ship()
		if err := shipment.MarkAsDelivered(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if shipment.Status != ShipmentStatusDelivered || shipment.DeliveredAt == nil {
			t.Errorf("expected DELIVERED with timestamp, got %s", shipment.Status)
		}
	})

	t.Run("delivers in-transit shipment", func(t *testing.T) {
		shipment := NewShipment("order-1", "customer-1")
		shipment.Status = ShipmentStatusInTransit
		if err := shipment.MarkAsDelivered(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("fails from pending", func(t *testing.T) {
		shipment := NewShipment("order-1", "customer-1")
		if err := shipment.MarkAsDelivered(); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("expected transition error, got %v", err)
		}
	})
}
