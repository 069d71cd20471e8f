package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"carshare/internal/repository"
)

// Store is a PostgreSQL implementation of repository.Transactor.
type Store struct {
	db        *sql.DB
	vehicles  *VehicleRepository
	inventory *InventoryLedger
	rentals   *RentalRepository
	payments  *PaymentRepository
}

// NewStore creates a store whose repositories run on db.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:        db,
		vehicles:  NewVehicleRepository(db),
		inventory: NewInventoryLedger(db),
		rentals:   NewRentalRepository(db),
		payments:  NewPaymentRepository(db),
	}
}

func (s *Store) Vehicles() repository.VehicleRepository { return s.vehicles }
func (s *Store) Inventory() repository.InventoryLedger   { return s.inventory }
func (s *Store) Rentals() repository.RentalRepository    { return s.rentals }
func (s *Store) Payments() repository.PaymentRepository  { return s.payments }

// WithinTx runs fn inside a database transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(ctx, &txStore{tx: tx}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// txStore builds transaction-scoped repositories.
type txStore struct {
	tx *sql.Tx
}

func (s *txStore) Vehicles() repository.VehicleRepository { return NewVehicleRepositoryWithTx(s.tx) }
func (s *txStore) Inventory() repository.InventoryLedger   { return NewInventoryLedgerWithTx(s.tx) }
func (s *txStore) Rentals() repository.RentalRepository    { return NewRentalRepositoryWithTx(s.tx) }
func (s *txStore) Payments() repository.PaymentRepository  { return NewPaymentRepositoryWithTx(s.tx) }

var (
	_ repository.Transactor = (*Store)(nil)
	_ repository.Store      = (*txStore)(nil)
)
