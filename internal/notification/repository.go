package notification

import (
	"context"
	"errors"
	"sync"

	"github.com/example/order-saga/internal/domain"
)

var ErrNotFound = errors.New("notification not found")

type Repository interface {
	Save(ctx context.Context, n *domain.Notification) error
	FindByID(ctx context.Context, id string) (*domain.Notification, error)
	FindByRecipient(ctx context.Context, recipientID string) ([]domain.Notification, error)
}

type MemoryRepository struct {
	mu            sync.RWMutex
	notifications map[string]domain.Notification
	order         []string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{notifications: make(map[string]domain.Notification)}
}

func (r *MemoryRepository) Save(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.notifications[n.ID]; !ok {
		r.order = append(r.order, n.ID)
	}
	r.notifications[n.ID] = *n
	return nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.notifications[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &n, nil
}

func (r *MemoryRepository) FindByRecipient(_ context.Context, recipientID string) ([]domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := []domain.Notification{}
	for _, id := range r.order {
		if n := r.notifications[id]; n.RecipientID == recipientID {
			result = append(result, n)
		}
	}
	return result, nil
}
