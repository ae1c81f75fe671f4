package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/example/order-saga/internal/domain"
)

type Service struct {
	repo   Repository
	locks  *keyedMutex
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, locks: newKeyedMutex(), logger: logger}
}

func (s *Service) CreateInventoryItem(ctx context.Context, productID string, initialQuantity int) (*domain.InventoryItem, error) {
	unlock := s.locks.lock(productID)
	defer unlock()

	if _, err := s.repo.FindByProductID(ctx, productID); err == nil {
		return nil, fmt.Errorf("%w: product %s", ErrAlreadyExists, productID)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	item, err := domain.NewInventoryItem(productID, initialQuantity)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("save inventory item: %w", err)
	}

	s.logger.Info("inventory item created", "product_id", productID, "available", initialQuantity)
	return item, nil
}

func (s *Service) GetInventory(ctx context.Context, productID string) (*domain.InventoryItem, error) {
	return s.repo.FindByProductID(ctx, productID)
}

// Reserve applies the guarded stock movement. An unknown product is lazily
// created with zero stock, which then fails the stock check with a
// reservation outcome rather than a lookup error. The per-product lock
// serializes the lazy creation; the stock guard itself lives in the
// repository so concurrent writers elsewhere cannot race past it.
func (s *Service) Reserve(ctx context.Context, productID string, quantity int) error {
	unlock := s.locks.lock(productID)
	defer unlock()

	err := s.repo.Reserve(ctx, productID, quantity)
	if errors.Is(err, ErrNotFound) {
		s.logger.Warn("product not in inventory, creating empty entry", "product_id", productID)
		item, err := domain.NewInventoryItem(productID, 0)
		if err != nil {
			return err
		}
		if err := s.repo.Save(ctx, item); err != nil {
			return fmt.Errorf("save inventory item: %w", err)
		}
		return s.repo.Reserve(ctx, productID, quantity)
	}
	if err != nil {
		return err
	}

	s.logger.Info("stock reserved", "product_id", productID, "quantity", quantity)
	return nil
}

// Release compensates a prior reservation. The product must exist; a missing
// item is a fatal condition for the caller, not a domain outcome.
func (s *Service) Release(ctx context.Context, productID string, quantity int) error {
	unlock := s.locks.lock(productID)
	defer unlock()

	if err := s.repo.Release(ctx, productID, quantity); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("release for product %s: %w", productID, err)
		}
		return err
	}

	s.logger.Info("stock released", "product_id", productID, "quantity", quantity)
	return nil
}
