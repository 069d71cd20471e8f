package repository

import (
	"context"
	"time"

	"carshare/internal/domain"
)

// RentalFilter narrows a rental listing. Empty fields match everything.
type RentalFilter struct {
	OwnerID string
	Active  *bool
}

// RentalRepository defines the persistence operations for rentals.
type RentalRepository interface {
	// Create persists a new rental.
	Create(ctx context.Context, rental *domain.Rental) error

	// GetByID retrieves a rental by ID.
	GetByID(ctx context.Context, id string) (*domain.Rental, error)

	// GetByIDForUpdate retrieves a rental and locks its row until the
	// surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Rental, error)

	// List returns rentals matching the filter, newest first.
	List(ctx context.Context, filter RentalFilter) ([]*domain.Rental, error)

	// ListOverdue returns open rentals planned to return before the given day.
	ListOverdue(ctx context.Context, day time.Time) ([]*domain.Rental, error)

	// Update persists the status and actual return date of a rental.
	Update(ctx context.Context, rental *domain.Rental) error
}
