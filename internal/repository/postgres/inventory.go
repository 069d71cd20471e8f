package postgres

import (
	"context"
	"database/sql"
	"errors"

	"carshare/internal/repository"
)

// InventoryLedger is a PostgreSQL implementation of repository.InventoryLedger.
// Every change is a single conditional statement so concurrent callers never
// drive available_units below zero.
type InventoryLedger struct {
	q Querier
}

// NewInventoryLedger creates a new PostgreSQL inventory ledger.
func NewInventoryLedger(db *sql.DB) *InventoryLedger {
	return &InventoryLedger{q: db}
}

// NewInventoryLedgerWithTx creates an inventory ledger using a transaction.
func NewInventoryLedgerWithTx(tx *sql.Tx) *InventoryLedger {
	return &InventoryLedger{q: tx}
}

// Reserve takes one unit of the vehicle.
func (l *InventoryLedger) Reserve(ctx context.Context, vehicleID string) error {
	query := `
		UPDATE vehicles SET available_units = available_units - 1
		WHERE id = $1 AND NOT retired AND available_units > 0
	`

	result, err := l.q.ExecContext(ctx, query, vehicleID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 1 {
		return nil
	}

	var exists bool
	err = l.q.QueryRowContext(ctx, `SELECT TRUE FROM vehicles WHERE id = $1 AND NOT retired`, vehicleID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		return err
	}
	return repository.ErrOutOfStock
}

// Release puts one unit of the vehicle back. Retired vehicles still take
// their units back so in-flight rentals can close.
func (l *InventoryLedger) Release(ctx context.Context, vehicleID string) error {
	result, err := l.q.ExecContext(ctx, `UPDATE vehicles SET available_units = available_units + 1 WHERE id = $1`, vehicleID)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}
