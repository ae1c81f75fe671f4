package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "PENDING"
	NotificationStatusSent    NotificationStatus = "SENT"
	NotificationStatusFailed  NotificationStatus = "FAILED"
)

type Notification struct {
	ID          string             `json:"id"`
	RecipientID string             `json:"recipient_id"`
	Type        string             `json:"type"`
	Message     string             `json:"message"`
	Status      NotificationStatus `json:"status"`
	SentAt      *time.Time         `json:"sent_at,omitempty"`
}

func NewNotification(recipientID, notificationType, message string) *Notification {
	return &Notification{
		ID:          uuid.New().String(),
		RecipientID: recipientID,
		Type:        notificationType,
		Message:     message,
		Status:      NotificationStatusPending,
	}
}

func (n *Notification) MarkAsSent() {
	now := time.Now().UTC()
	n.Status = NotificationStatusSent
	n.SentAt = &now
}

func (n *Notification) MarkAsFailed() {
	n.Status = NotificationStatusFailed
}
