package inventory

import (
	"context"
	"errors"
	"sync"

	"github.com/example/order-saga/internal/domain"
)

var (
	ErrNotFound      = errors.New("product not found")
	ErrAlreadyExists = errors.New("product already exists")
)

// Repository persists inventory items. Reserve and Release apply the stock
// movement and its guard atomically at the storage boundary, so concurrent
// writers (including other processes sharing the store) cannot race past the
// stock check.
type Repository interface {
	Save(ctx context.Context, item *domain.InventoryItem) error
	FindByID(ctx context.Context, id string) (*domain.InventoryItem, error)
	FindByProductID(ctx context.Context, productID string) (*domain.InventoryItem, error)
	Reserve(ctx context.Context, productID string, quantity int) error
	Release(ctx context.Context, productID string, quantity int) error
}

type MemoryRepository struct {
	mu    sync.RWMutex
	byID  map[string]domain.InventoryItem
	byKey map[string]string // productID -> id
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:  make(map[string]domain.InventoryItem),
		byKey: make(map[string]string),
	}
}

func (r *MemoryRepository) Save(_ context.Context, item *domain.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[item.ID] = *item
	r.byKey[item.ProductID] = item.ID
	return nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*domain.InventoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (r *MemoryRepository) FindByProductID(_ context.Context, productID string) (*domain.InventoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byKey[productID]
	if !ok {
		return nil, ErrNotFound
	}
	item := r.byID[id]
	return &item, nil
}

func (r *MemoryRepository) Reserve(_ context.Context, productID string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byKey[productID]
	if !ok {
		return ErrNotFound
	}
	item := r.byID[id]
	if err := item.Reserve(quantity); err != nil {
		return err
	}
	r.byID[id] = item
	return nil
}

func (r *MemoryRepository) Release(_ context.Context, productID string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byKey[productID]
	if !ok {
		return ErrNotFound
	}
	item := r.byID[id]
	if err := item.Release(quantity); err != nil {
		return err
	}
	r.byID[id] = item
	return nil
}
