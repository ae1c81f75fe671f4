package notification

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/example/order-saga/internal/domain"
)

// statusRecorder remembers the notification status at each save, so the test
// can see the lifecycle the store observed, not just the final state.
type statusRecorder struct {
	*MemoryRepository
	statuses []domain.NotificationStatus
}

func (r *statusRecorder) Save(ctx context.Context, n *domain.Notification) error {
	r.statuses = append(r.statuses, n.Status)
	return r.MemoryRepository.Save(ctx, n)
}

func TestSend(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("persists pending before delivery, sent after", func(t *testing.T) {
		repo := &statusRecorder{MemoryRepository: NewMemoryRepository()}
		svc := NewService(repo, 0, logger)

		n, err := svc.Send(context.Background(), "customer-1", TypeOrderCreated, "Order #order-1 has been created and is being processed.")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(repo.statuses) != 2 ||
			repo.statuses[0] != domain.NotificationStatusPending ||
			repo.statuses[1] != domain.NotificationStatusSent {
			t.Errorf("unexpected persisted lifecycle: %v", repo.statuses)
		}
		if n.Status != domain.NotificationStatusSent || n.SentAt == nil {
			t.Errorf("expected SENT with timestamp, got %s", n.Status)
		}
	})

	t.Run("updates the row in place", func(t *testing.T) {
		repo := NewMemoryRepository()
		svc := NewService(repo, 0, logger)

		if _, err := svc.Send(context.Background(), "customer-1", TypeOrderConfirmed, "Order #order-1 has been confirmed. Preparing it for shipment."); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		ns, err := svc.GetByRecipient(context.Background(), "customer-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(ns) != 1 {
			t.Fatalf("expected 1 notification, got %d", len(ns))
		}
		if ns[0].Status != domain.NotificationStatusSent {
			t.Errorf("expected SENT, got %s", ns[0].Status)
		}
	})
}
