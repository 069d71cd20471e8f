package repository

import "context"

// Store groups the repositories that share one unit of work.
type Store interface {
	Vehicles() VehicleRepository
	Inventory() InventoryLedger
	Rentals() RentalRepository
	Payments() PaymentRepository
}

// Transactor runs fn against a transaction-scoped Store. The transaction
// commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	Store
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
