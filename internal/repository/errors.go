package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrOutOfStock is returned when a vehicle has no units left to reserve.
	ErrOutOfStock = errors.New("vehicle out of stock")

	// ErrConflict is returned when a write would break a uniqueness rule,
	// such as a second PAID payment for one rental.
	ErrConflict = errors.New("conflicting entity state")
)
