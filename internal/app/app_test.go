package app

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/example/order-saga/internal/bench"
	"github.com/example/order-saga/internal/domain"
	"github.com/example/order-saga/internal/orders"
	"github.com/example/order-saga/internal/saga"
)

var trackingNumberPattern = regexp.MustCompile(`^TRK-[A-Z0-9]{8}$`)

func testApp() *App {
	// Tiny delays keep the full saga pipeline fast under test.
	delays := Delays{Inventory: time.Millisecond, Shipping: time.Millisecond, Notification: time.Millisecond}
	return NewInMemory(delays, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}

func TestSagaHappyPath(t *testing.T) {
	a := testApp()
	ctx := context.Background()

	if _, err := a.Inventory.CreateInventoryItem(ctx, "product-1", 10); err != nil {
		t.Fatalf("seed inventory: %v", err)
	}

	order, err := a.Orders.CreateOrder(ctx, orders.CreateOrderCommand{
		CustomerID: "customer-1", ProductID: "product-1", Quantity: 3, UnitPrice: 500,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.Status != domain.OrderStatusPending {
		t.Fatalf("expected PENDING right after creation, got %s", order.Status)
	}

	waitFor(t, 5*time.Second, func() bool {
		rec, ok := a.Tracker.Get(order.ID)
		return ok && rec.Completed()
	})

	got, err := a.Orders.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got.Status != domain.OrderStatusConfirmed {
		t.Errorf("expected CONFIRMED, got %s", got.Status)
	}

	item, err := a.Inventory.GetInventory(ctx, "product-1")
	if err != nil {
		t.Fatalf("get inventory: %v", err)
	}
	if item.AvailableQuantity != 7 || item.ReservedQuantity != 3 {
		t.Errorf("expected 7/3, got %d/%d", item.AvailableQuantity, item.ReservedQuantity)
	}

	shipment, err := a.Shipping.GetShipment(ctx, order.ID)
	if err != nil {
		t.Fatalf("get shipment: %v", err)
	}
	if shipment.Status != domain.ShipmentStatusShipped {
		t.Errorf("expected SHIPPED, got %s", shipment.Status)
	}
	if !trackingNumberPattern.MatchString(shipment.TrackingNumber) {
		t.Errorf("bad tracking number %q", shipment.TrackingNumber)
	}

	// Created, confirmed and shipment notifications all target the customer.
	waitFor(t, 5*time.Second, func() bool {
		ns, err := a.Notifications.GetByRecipient(ctx, "customer-1")
		return err == nil && len(ns) >= 3
	})
	ns, _ := a.Notifications.GetByRecipient(ctx, "customer-1")
	for _, n := range ns {
		if n.Status != domain.NotificationStatusSent {
			t.Errorf("notification %s not sent: %s", n.ID, n.Status)
		}
	}
}

func TestSagaCompensation(t *testing.T) {
	a := testApp()
	ctx := context.Background()

	if _, err := a.Inventory.CreateInventoryItem(ctx, "product-1", 2); err != nil {
		t.Fatalf("seed inventory: %v", err)
	}

	order, err := a.Orders.CreateOrder(ctx, orders.CreateOrderCommand{
		CustomerID: "customer-1", ProductID: "product-1", Quantity: 5, UnitPrice: 500,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	waitFor(t, 5*time.Second, func() bool {
		got, err := a.Orders.GetOrder(ctx, order.ID)
		return err == nil && got.Status == domain.OrderStatusCancelled
	})

	// The failed reservation never touched stock, so cancellation leaves the
	// item exactly as seeded.
	item, err := a.Inventory.GetInventory(ctx, "product-1")
	if err != nil {
		t.Fatalf("get inventory: %v", err)
	}
	if item.AvailableQuantity != 2 || item.ReservedQuantity != 0 {
		t.Errorf("expected 2/0, got %d/%d", item.AvailableQuantity, item.ReservedQuantity)
	}

	if _, err := a.Shipping.GetShipment(ctx, order.ID); err == nil {
		t.Error("expected no shipment for cancelled order")
	}

	rec, ok := a.Tracker.Get(order.ID)
	if !ok {
		t.Fatal("expected saga record")
	}
	if rec.Reservation != saga.StepFailed || rec.Shipment != saga.StepSkipped {
		t.Errorf("unexpected saga record: reservation=%s shipment=%s", rec.Reservation, rec.Shipment)
	}
}

func TestConcurrentSagas(t *testing.T) {
	const n = 20

	a := testApp()
	ctx := context.Background()

	if _, err := a.Inventory.CreateInventoryItem(ctx, "product-1", n); err != nil {
		t.Fatalf("seed inventory: %v", err)
	}

	orderIDs := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			order, err := a.Orders.CreateOrder(ctx, orders.CreateOrderCommand{
				CustomerID: "customer-1", ProductID: "product-1", Quantity: 1, UnitPrice: 100,
			})
			if err != nil {
				t.Errorf("create order %d: %v", i, err)
				return
			}
			orderIDs[i] = order.ID
		}(i)
	}
	wg.Wait()

	waitFor(t, 10*time.Second, func() bool {
		for _, id := range orderIDs {
			rec, ok := a.Tracker.Get(id)
			if !ok || !rec.Completed() {
				return false
			}
		}
		return true
	})

	for _, id := range orderIDs {
		got, err := a.Orders.GetOrder(ctx, id)
		if err != nil {
			t.Fatalf("get order %s: %v", id, err)
		}
		if got.Status != domain.OrderStatusConfirmed {
			t.Errorf("order %s: expected CONFIRMED, got %s", id, got.Status)
		}
	}

	item, _ := a.Inventory.GetInventory(ctx, "product-1")
	if item.AvailableQuantity != 0 || item.ReservedQuantity != n {
		t.Errorf("expected 0/%d, got %d/%d", n, item.AvailableQuantity, item.ReservedQuantity)
	}
}

func TestLoadTest(t *testing.T) {
	a := testApp()
	ctx := context.Background()

	result, err := a.LoadTest(ctx, 10, "product-load", bench.Options{
		IODelay:  time.Millisecond,
		Strategy: bench.StrategyGoroutine,
	})
	if err != nil {
		t.Fatalf("load test: %v", err)
	}

	if result.TotalRequests != 10 || result.SuccessCount != 10 {
		t.Errorf("expected 10/10, got %d/%d", result.TotalRequests, result.SuccessCount)
	}

	// Ten units per request are seeded up front.
	item, err := a.Inventory.GetInventory(ctx, "product-load")
	if err != nil {
		t.Fatalf("get inventory: %v", err)
	}
	if item.TotalQuantity() != 100 {
		t.Errorf("expected 100 total units, got %d", item.TotalQuantity())
	}
}

func TestFindStuckSagas(t *testing.T) {
	a := testApp()
	a.Tracker.Begin("order-stalled")

	if stuck := a.FindStuckSagas(0); len(stuck) != 1 {
		t.Errorf("expected 1 stuck saga, got %d", len(stuck))
	}
	if stuck := a.FindStuckSagas(time.Hour); len(stuck) != 0 {
		t.Errorf("expected no stuck sagas, got %d", len(stuck))
	}
}
