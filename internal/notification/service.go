package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/order-saga/internal/domain"
)

const (
	TypeOrderCreated    = "ORDER_CREATED"
	TypeOrderConfirmed  = "ORDER_CONFIRMED"
	TypeShipmentCreated = "SHIPMENT_CREATED"
)

type Service struct {
	repo    Repository
	ioDelay time.Duration
	logger  *slog.Logger
}

func NewService(repo Repository, ioDelay time.Duration, logger *slog.Logger) *Service {
	return &Service{repo: repo, ioDelay: ioDelay, logger: logger}
}

// Send persists a PENDING notification, delivers it, and updates it to SENT.
// The delivery itself is simulated; the notification turns FAILED only when a
// real delivery channel is plugged in.
func (s *Service) Send(ctx context.Context, recipientID, notificationType, message string) (*domain.Notification, error) {
	n := domain.NewNotification(recipientID, notificationType, message)
	if err := s.repo.Save(ctx, n); err != nil {
		return nil, fmt.Errorf("save notification: %w", err)
	}

	// Models the latency of an email/SMS/push provider call.
	time.Sleep(s.ioDelay)

	n.MarkAsSent()
	if err := s.repo.Save(ctx, n); err != nil {
		return nil, fmt.Errorf("save notification: %w", err)
	}

	s.logger.Info("notification sent", "notification_id", n.ID, "recipient_id", recipientID, "type", notificationType)
	return n, nil
}

func (s *Service) GetByRecipient(ctx context.Context, recipientID string) ([]domain.Notification, error) {
	return s.repo.FindByRecipient(ctx, recipientID)
}
