package domain

import (
	"fmt"

	"github.com/google/uuid"
)

type InventoryItem struct {
	ID                string `json:"id"`
	ProductID         string `json:"product_id"`
	AvailableQuantity int    `json:"available_quantity"`
	ReservedQuantity  int    `json:"reserved_quantity"`
}

func NewInventoryItem(productID string, initialQuantity int) (*InventoryItem, error) {
	if initialQuantity < 0 {
		return nil, fmt.Errorf("%w: initial quantity must not be negative", ErrValidation)
	}
	return &InventoryItem{
		ID:                uuid.New().String(),
		ProductID:         productID,
		AvailableQuantity: initialQuantity,
		ReservedQuantity:  0,
	}, nil
}

func (i *InventoryItem) HasEnoughStock(quantity int) bool {
	return i.AvailableQuantity >= quantity
}

// Reserve moves quantity from available to reserved. Callers are responsible
// for serializing concurrent reservations on the same product.
func (i *InventoryItem) Reserve(quantity int) error {
	if !i.HasEnoughStock(quantity) {
		return fmt.Errorf("%w for product %s: available %d, requested %d",
			ErrInsufficientStock, i.ProductID, i.AvailableQuantity, quantity)
	}
	i.AvailableQuantity -= quantity
	i.ReservedQuantity += quantity
	return nil
}

// Release moves quantity from reserved back to available.
func (i *InventoryItem) Release(quantity int) error {
	if i.ReservedQuantity < quantity {
		return fmt.Errorf("%w: reserved %d, requested %d", ErrOverRelease, i.ReservedQuantity, quantity)
	}
	i.ReservedQuantity -= quantity
	i.AvailableQuantity += quantity
	return nil
}

func (i *InventoryItem) TotalQuantity() int {
	return i.AvailableQuantity + i.ReservedQuantity
}
