// Package app wires the bounded contexts together through explicit
// constructor injection: repositories and the event bus go in, services and
// registered saga listeners come out.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/order-saga/internal/bench"
	"github.com/example/order-saga/internal/eventbus"
	"github.com/example/order-saga/internal/inventory"
	"github.com/example/order-saga/internal/notification"
	"github.com/example/order-saga/internal/orders"
	"github.com/example/order-saga/internal/saga"
	"github.com/example/order-saga/internal/shipping"
)

// Delays are the simulated I/O latencies of the saga listeners.
type Delays struct {
	Inventory    time.Duration
	Shipping     time.Duration
	Notification time.Duration
}

// DefaultDelays mirror the latencies of the downstream systems each listener
// stands in for.
func DefaultDelays() Delays {
	return Delays{
		Inventory:    100 * time.Millisecond,
		Shipping:     150 * time.Millisecond,
		Notification: 200 * time.Millisecond,
	}
}

type Repositories struct {
	Orders        orders.Repository
	Inventory     inventory.Repository
	Shipments     shipping.Repository
	Notifications notification.Repository
}

func MemoryRepositories() Repositories {
	return Repositories{
		Orders:        orders.NewMemoryRepository(),
		Inventory:     inventory.NewMemoryRepository(),
		Shipments:     shipping.NewMemoryRepository(),
		Notifications: notification.NewMemoryRepository(),
	}
}

type App struct {
	Bus           eventbus.Bus
	Tracker       *saga.Tracker
	Orders        *orders.Service
	Inventory     *inventory.Service
	Shipping      *shipping.Service
	Notifications *notification.Service
	Runner        *bench.Runner

	logger *slog.Logger
}

// New builds the services, registers every saga listener on the bus, and
// returns the assembled application.
func New(bus eventbus.Bus, repos Repositories, delays Delays, logger *slog.Logger) *App {
	tracker := saga.NewTracker()

	orderService := orders.NewService(repos.Orders, bus, tracker, logger)
	inventoryService := inventory.NewService(repos.Inventory, logger)
	shippingService := shipping.NewService(repos.Shipments, logger)
	notificationService := notification.NewService(repos.Notifications, delays.Notification, logger)

	orders.NewListener(orderService, logger).Register(bus)
	inventory.NewListener(inventoryService, bus, tracker, delays.Inventory, logger).Register(bus)
	shipping.NewListener(shippingService, bus, tracker, delays.Shipping, logger).Register(bus)
	notification.NewListener(notificationService, logger).Register(bus)

	return &App{
		Bus:           bus,
		Tracker:       tracker,
		Orders:        orderService,
		Inventory:     inventoryService,
		Shipping:      shippingService,
		Notifications: notificationService,
		Runner:        bench.NewRunner(logger),
		logger:        logger,
	}
}

// NewInMemory assembles the application on the in-process bus and in-memory
// repositories.
func NewInMemory(delays Delays, logger *slog.Logger) *App {
	return New(eventbus.NewInProcessBus(logger), MemoryRepositories(), delays, logger)
}

// LoadTest drives requestCount concurrent order creations through the full
// saga pipeline under the chosen scheduling strategy. Stock is seeded at ten
// units per request so reservations do not run dry mid-test.
func (a *App) LoadTest(ctx context.Context, requestCount int, productID string, opts bench.Options) (bench.Result, error) {
	if _, err := a.Inventory.CreateInventoryItem(ctx, productID, requestCount*10); err != nil &&
		!errors.Is(err, inventory.ErrAlreadyExists) {
		return bench.Result{}, fmt.Errorf("seed inventory: %w", err)
	}

	opts.Requests = requestCount
	return a.Runner.Run(ctx, opts, func(ctx context.Context, i int) error {
		_, err := a.Orders.CreateOrder(ctx, orders.CreateOrderCommand{
			CustomerID: fmt.Sprintf("customer-%d", i),
			ProductID:  productID,
			Quantity:   1,
			UnitPrice:  1000,
		})
		return err
	})
}

// FindStuckSagas reports saga records with no progress within the given age.
func (a *App) FindStuckSagas(olderThan time.Duration) []saga.Record {
	return a.Tracker.FindStuck(olderThan)
}
