package shipping

import (
	"context"
	"errors"
	"sync"

	"github.com/example/order-saga/internal/domain"
)

var ErrNotFound = errors.New("shipment not found")

type Repository interface {
	Save(ctx context.Context, shipment *domain.Shipment) error
	FindByID(ctx context.Context, id string) (*domain.Shipment, error)
	FindByOrderID(ctx context.Context, orderID string) (*domain.Shipment, error)
}

type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]domain.Shipment
	byOrder map[string]string // orderID -> id
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]domain.Shipment),
		byOrder: make(map[string]string),
	}
}

func (r *MemoryRepository) Save(_ context.Context, shipment *domain.Shipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[shipment.ID] = *shipment
	r.byOrder[shipment.OrderID] = shipment.ID
	return nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*domain.Shipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	shipment, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &shipment, nil
}

func (r *MemoryRepository) FindByOrderID(_ context.Context, orderID string) (*domain.Shipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byOrder[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	shipment := r.byID[id]
	return &shipment, nil
}
