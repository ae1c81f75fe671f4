package domain

import "errors"

var (
	// ErrValidation marks a rejected command argument.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition marks a state machine guard violation.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInsufficientStock is returned by InventoryItem.Reserve when the
	// available quantity does not cover the request.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrOverRelease is returned by InventoryItem.Release when more than the
	// reserved quantity would be released.
	ErrOverRelease = errors.New("cannot release more than reserved quantity")
)
