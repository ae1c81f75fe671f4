package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

type Order struct {
	ID          string      `json:"id"`
	CustomerID  string      `json:"customer_id"`
	ProductID   string      `json:"product_id"`
	Quantity    int         `json:"quantity"`
	TotalAmount int64       `json:"total_amount"`
	Status      OrderStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
}

// NewOrder creates a pending order. TotalAmount is fixed here and never
// recomputed afterwards.
func NewOrder(customerID, productID string, quantity int, unitPrice int64) (*Order, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	if unitPrice < 0 {
		return nil, fmt.Errorf("%w: unit price must not be negative", ErrValidation)
	}
	return &Order{
		ID:          uuid.New().String(),
		CustomerID:  customerID,
		ProductID:   productID,
		Quantity:    quantity,
		TotalAmount: int64(quantity) * unitPrice,
		Status:      OrderStatusPending,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

func (o *Order) Confirm() error {
	if o.Status != OrderStatusPending {
		return fmt.Errorf("%w: order can only be confirmed from PENDING, current %s", ErrInvalidTransition, o.Status)
	}
	o.Status = OrderStatusConfirmed
	return nil
}

func (o *Order) Cancel() error {
	if o.Status == OrderStatusDelivered {
		return fmt.Errorf("%w: cannot cancel a delivered order", ErrInvalidTransition)
	}
	o.Status = OrderStatusCancelled
	return nil
}

func (o *Order) IsPending() bool   { return o.Status == OrderStatusPending }
func (o *Order) IsConfirmed() bool { return o.Status == OrderStatusConfirmed }
