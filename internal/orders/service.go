package orders

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/order-saga/internal/domain"
	"github.com/example/order-saga/internal/eventbus"
	"github.com/example/order-saga/internal/saga"
)

type CreateOrderCommand struct {
	CustomerID string `json:"customer_id"`
	ProductID  string `json:"product_id"`
	Quantity   int    `json:"quantity"`
	UnitPrice  int64  `json:"unit_price"`
}

type Service struct {
	repo    Repository
	bus     eventbus.Bus
	tracker *saga.Tracker
	logger  *slog.Logger
}

func NewService(repo Repository, bus eventbus.Bus, tracker *saga.Tracker, logger *slog.Logger) *Service {
	return &Service{repo: repo, bus: bus, tracker: tracker, logger: logger}
}

// CreateOrder persists a pending order and publishes OrderCreated. It returns
// as soon as the event is handed to the bus; the rest of the saga is
// fire-and-forget from the caller's perspective.
func (s *Service) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error) {
	order, err := domain.NewOrder(cmd.CustomerID, cmd.ProductID, cmd.Quantity, cmd.UnitPrice)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}

	s.tracker.Begin(order.ID)

	event := domain.OrderCreatedEvent{
		OrderID:     order.ID,
		CustomerID:  order.CustomerID,
		ProductID:   order.ProductID,
		Quantity:    order.Quantity,
		TotalAmount: order.TotalAmount,
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		return nil, fmt.Errorf("publish order created: %w", err)
	}

	s.logger.Info("order created", "order_id", order.ID, "customer_id", order.CustomerID)
	return order, nil
}

func (s *Service) ConfirmOrder(ctx context.Context, orderID string) error {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}

	if err := order.Confirm(); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, order); err != nil {
		return fmt.Errorf("save order: %w", err)
	}

	event := domain.OrderConfirmedEvent{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		ProductID:  order.ProductID,
		Quantity:   order.Quantity,
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		return fmt.Errorf("publish order confirmed: %w", err)
	}

	s.logger.Info("order confirmed", "order_id", order.ID)
	return nil
}

func (s *Service) CancelOrder(ctx context.Context, orderID string) error {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}

	if err := order.Cancel(); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, order); err != nil {
		return fmt.Errorf("save order: %w", err)
	}

	event := domain.OrderCancelledEvent{
		OrderID:   order.ID,
		ProductID: order.ProductID,
		Quantity:  order.Quantity,
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		return fmt.Errorf("publish order cancelled: %w", err)
	}

	s.logger.Info("order cancelled", "order_id", order.ID)
	return nil
}

func (s *Service) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.repo.FindByID(ctx, orderID)
}
