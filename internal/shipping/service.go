package shipping

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/order-saga/internal/domain"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) CreateShipment(ctx context.Context, orderID, customerID string) (*domain.Shipment, error) {
	shipment := domain.NewShipment(orderID, customerID)
	if err := s.repo.Save(ctx, shipment); err != nil {
		return nil, fmt.Errorf("save shipment: %w", err)
	}

	s.logger.Info("shipment created", "shipment_id", shipment.ID, "order_id", orderID)
	return shipment, nil
}

func (s *Service) ProcessShipping(ctx context.Context, shipmentID string) (*domain.Shipment, error) {
	shipment, err := s.repo.FindByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}

	if err := shipment.Ship(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, shipment); err != nil {
		return nil, fmt.Errorf("save shipment: %w", err)
	}

	s.logger.Info("shipment shipped", "shipment_id", shipment.ID, "tracking_number", shipment.TrackingNumber)
	return shipment, nil
}

func (s *Service) GetShipment(ctx context.Context, orderID string) (*domain.Shipment, error) {
	return s.repo.FindByOrderID(ctx, orderID)
}
