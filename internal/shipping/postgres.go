package shipping

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

func (r *PostgresRepository) Save(ctx context.Context, shipment *domain.Shipment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO shipments (id, order_id, customer_id, status, tracking_number, shipped_at, delivered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (order_id) DO UPDATE
		SET status = EXCLUDED.status,
		    shipped_at = EXCLUDED.shipped_at,
		    delivered_at = EXCLUDED.delivered_at
	`, shipment.ID, shipment.OrderID, shipment.CustomerID, shipment.Status,
		shipment.TrackingNumber, shipment.ShippedAt, shipment.DeliveredAt)
	return err
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*domain.Shipment, error) {
	return r.findOne(ctx, `
		SELECT id, order_id, customer_id, status, tracking_number, shipped_at, delivered_at
		FROM shipments
		WHERE id = $1
	`, id)
}

func (r *PostgresRepository) FindByOrderID(ctx context.Context, orderID string) (*domain.Shipment, error) {
	return r.findOne(ctx, `
		SELECT id, order_id, customer_id, status, tracking_number, shipped_at, delivered_at
		FROM shipments
		WHERE order_id = $1
	`, orderID)
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg any) (*domain.Shipment, error) {
	shipment := &domain.Shipment{}
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&shipment.ID, &shipment.OrderID, &shipment.CustomerID, &shipment.Status,
			&shipment.TrackingNumber, &shipment.ShippedAt, &shipment.DeliveredAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return shipment, nil
}
