package notification

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	"github.com/example/order-saga/internal/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Save(ctx context.Context, n *domain.Notification) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (id, recipient_id, type, message, status, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status, sent_at = EXCLUDED.sent_at
	`, n.ID, n.RecipientID, n.Type, n.Message, n.Status, n.SentAt)
	return err
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*domain.Notification, error) {
	n := &domain.Notification{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, recipient_id, type, message, status, sent_at
		FROM notifications
		WHERE id = $1
	`, id).Scan(&n.ID, &n.RecipientID, &n.Type, &n.Message, &n.Status, &n.SentAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return n, nil
}

func (r *PostgresRepository) FindByRecipient(ctx context.Context, recipientID string) ([]domain.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, recipient_id, type, message, status, sent_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY sent_at
	`, recipientID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := []domain.Notification{}
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Type, &n.Message, &n.Status, &n.SentAt); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}
