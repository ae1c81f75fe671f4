package inventory

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/example/order-saga/internal/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Save(ctx context.Context, item *domain.InventoryItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO inventory_items (id, product_id, available_quantity, reserved_quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_id) DO UPDATE
		SET available_quantity = EXCLUDED.available_quantity,
		    reserved_quantity = EXCLUDED.reserved_quantity
	`, item.ID, item.ProductID, item.AvailableQuantity, item.ReservedQuantity)
	return err
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*domain.InventoryItem, error) {
	return r.findOne(ctx, `
		SELECT id, product_id, available_quantity, reserved_quantity
		FROM inventory_items
		WHERE id = $1
	`, id)
}

func (r *PostgresRepository) FindByProductID(ctx context.Context, productID string) (*domain.InventoryItem, error) {
	return r.findOne(ctx, `
		SELECT id, product_id, available_quantity, reserved_quantity
		FROM inventory_items
		WHERE product_id = $1
	`, productID)
}

// Reserve moves stock into the reservation with the guard in the UPDATE
// itself. Zero rows affected means either the product does not exist or the
// guard failed; one follow-up read tells them apart.
func (r *PostgresRepository) Reserve(ctx context.Context, productID string, quantity int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE inventory_items
		SET available_quantity = available_quantity - $2,
		    reserved_quantity = reserved_quantity + $2
		WHERE product_id = $1 AND available_quantity >= $2
	`, productID, quantity)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		if _, err := r.FindByProductID(ctx, productID); err != nil {
			return err
		}
		return fmt.Errorf("%w: product %s", domain.ErrInsufficientStock, productID)
	}
	return nil
}

func (r *PostgresRepository) Release(ctx context.Context, productID string, quantity int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE inventory_items
		SET available_quantity = available_quantity + $2,
		    reserved_quantity = reserved_quantity - $2
		WHERE product_id = $1 AND reserved_quantity >= $2
	`, productID, quantity)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		if _, err := r.FindByProductID(ctx, productID); err != nil {
			return err
		}
		return fmt.Errorf("%w: product %s", domain.ErrOverRelease, productID)
	}
	return nil
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg any) (*domain.InventoryItem, error) {
	item := &domain.InventoryItem{}
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&item.ID, &item.ProductID, &item.AvailableQuantity, &item.ReservedQuantity)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return item, nil
}
