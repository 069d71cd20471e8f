package repository

import (
	"context"

	"carshare/internal/domain"
)

// VehicleRepository defines the persistence operations for vehicles.
type VehicleRepository interface {
	// Create persists a new vehicle including its initial unit count.
	Create(ctx context.Context, vehicle *domain.Vehicle) error

	// GetByID retrieves a vehicle by ID, retired vehicles included.
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)

	// List returns non-retired vehicles ordered by creation time.
	List(ctx context.Context, limit, offset int) ([]*domain.Vehicle, error)

	// Update persists descriptive fields. The unit count is owned by the
	// InventoryLedger and is never written here.
	Update(ctx context.Context, vehicle *domain.Vehicle) error

	// Retire soft-deletes a vehicle.
	Retire(ctx context.Context, id string) error
}

// InventoryLedger tracks available units per vehicle.
type InventoryLedger interface {
	// Reserve takes one unit. Returns ErrNotFound for unknown or retired
	// vehicles and ErrOutOfStock when no unit is left.
	Reserve(ctx context.Context, vehicleID string) error

	// Release puts one unit back.
	Release(ctx context.Context, vehicleID string) error
}
