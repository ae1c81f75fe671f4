package domain

import (
	"errors"
	"math/rand"
	"testing"
)

func TestInventoryReserve(t *testing.T) {
	t.Run("moves stock from available to reserved", func(t *testing.T) {
		item, _ := NewInventoryItem("product-1", 10)
		if err := item.Reserve(4); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.AvailableQuantity != 6 || item.ReservedQuantity != 4 {
			t.Errorf("expected 6/4, got %d/%d", item.AvailableQuantity, item.ReservedQuantity)
		}
	})

	t.Run("fails without mutation when stock is insufficient", func(t *testing.T) {
		item, _ := NewInventoryItem("product-1", 3)
		if err := item.Reserve(4); !errors.Is(err, ErrInsufficientStock) {
			t.Fatalf("expected insufficient stock, got %v", err)
		}
		if item.AvailableQuantity != 3 || item.ReservedQuantity != 0 {
			t.Errorf("item mutated on failed reserve: %d/%d", item.AvailableQuantity, item.ReservedQuantity)
		}
	})
}

func TestInventoryRelease(t *testing.T) {
	t.Run("returns reserved stock", func(t *testing.T) {
		item, _ := NewInventoryItem("product-1", 10)
		_ = item.Reserve(7)
		if err := item.Release(5); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.AvailableQuantity != 8 || item.ReservedQuantity != 2 {
			t.Errorf("expected 8/2, got %d/%d", item.AvailableQuantity, item.ReservedQuantity)
		}
	})

	t.Run("fails when exceeding reserved quantity", func(t *testing.T) {
		item, _ := NewInventoryItem("product-1", 10)
		_ = item.Reserve(2)
		if err := item.Release(3); !errors.Is(err, ErrOverRelease) {
			t.Fatalf("expected over-release error, got %v", err)
		}
		if item.AvailableQuantity != 8 || item.ReservedQuantity != 2 {
			t.Errorf("item mutated on failed release: %d/%d", item.AvailableQuantity, item.ReservedQuantity)
		}
	})
}

// Total quantity must be conserved across any sequence of reserves and
// releases, and available must never go negative.
func TestInventoryConservation(t *testing.T) {
	item, _ := NewInventoryItem("product-1", 50)
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 1000; i++ {
		q := rng.Intn(20) + 1
		if rng.Intn(2) == 0 {
			_ = item.Reserve(q)
		} else {
			_ = item.Release(q)
		}

		if item.TotalQuantity() != 50 {
			t.Fatalf("step %d: total drifted to %d", i, item.TotalQuantity())
		}
		if item.AvailableQuantity < 0 || item.ReservedQuantity < 0 {
			t.Fatalf("step %d: negative quantity %d/%d", i, item.AvailableQuantity, item.ReservedQuantity)
		}
	}
}

func TestNewInventoryItemValidation(t *testing.T) {
	if _, err := NewInventoryItem("product-1", -1); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}
