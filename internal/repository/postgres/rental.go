package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"carshare/internal/domain"
	"carshare/internal/repository"
)

// RentalRepository is a PostgreSQL implementation of repository.RentalRepository.
type RentalRepository struct {
	q Querier
}

// NewRentalRepository creates a new PostgreSQL rental repository.
func NewRentalRepository(db *sql.DB) *RentalRepository {
	return &RentalRepository{q: db}
}

// NewRentalRepositoryWithTx creates a rental repository using a transaction.
func NewRentalRepositoryWithTx(tx *sql.Tx) *RentalRepository {
	return &RentalRepository{q: tx}
}

const rentalColumns = `id, vehicle_id, owner_id, opened_on, planned_return_on, status, actual_return_on, created_at`

// Create persists a new rental.
func (r *RentalRepository) Create(ctx context.Context, rental *domain.Rental) error {
	query := `
		INSERT INTO rentals (id, vehicle_id, owner_id, opened_on, planned_return_on, status, actual_return_on, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.ExecContext(ctx, query,
		rental.ID,
		rental.VehicleID,
		rental.OwnerID,
		rental.OpenedOn,
		rental.PlannedReturnOn,
		rental.Status,
		actualReturnOn(rental),
		rental.CreatedAt,
	)
	return err
}

// GetByID retrieves a rental by ID.
func (r *RentalRepository) GetByID(ctx context.Context, id string) (*domain.Rental, error) {
	return r.get(ctx, `SELECT `+rentalColumns+` FROM rentals WHERE id = $1`, id)
}

// GetByIDForUpdate retrieves a rental and locks its row.
func (r *RentalRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Rental, error) {
	return r.get(ctx, `SELECT `+rentalColumns+` FROM rentals WHERE id = $1 FOR UPDATE`, id)
}

func (r *RentalRepository) get(ctx context.Context, query, id string) (*domain.Rental, error) {
	rental, err := scanRental(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return rental, nil
}

// List returns rentals matching the filter, newest first.
func (r *RentalRepository) List(ctx context.Context, filter repository.RentalFilter) ([]*domain.Rental, error) {
	var (
		where []string
		args  []any
	)
	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		where = append(where, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	if filter.Active != nil {
		status := domain.RentalStatusClosed
		if *filter.Active {
			status = domain.RentalStatusOpen
		}
		args = append(args, status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + rentalColumns + ` FROM rentals`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id`

	return r.list(ctx, query, args...)
}

// ListOverdue returns open rentals planned to return before day.
func (r *RentalRepository) ListOverdue(ctx context.Context, day time.Time) ([]*domain.Rental, error) {
	query := `
		SELECT ` + rentalColumns + `
		FROM rentals WHERE status = $1 AND planned_return_on < $2
		ORDER BY planned_return_on, id
	`
	return r.list(ctx, query, domain.RentalStatusOpen, domain.Day(day))
}

func (r *RentalRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Rental, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rentals []*domain.Rental
	for rows.Next() {
		rental, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, rental)
	}
	return rentals, rows.Err()
}

// Update persists the status and actual return date of a rental.
func (r *RentalRepository) Update(ctx context.Context, rental *domain.Rental) error {
	query := `UPDATE rentals SET status = $1, actual_return_on = $2 WHERE id = $3`

	result, err := r.q.ExecContext(ctx, query, rental.Status, actualReturnOn(rental), rental.ID)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

func actualReturnOn(rental *domain.Rental) sql.NullTime {
	if on, ok := rental.ReturnedOn(); ok {
		return sql.NullTime{Time: on, Valid: true}
	}
	return sql.NullTime{}
}

func scanRental(row rowScanner) (*domain.Rental, error) {
	var rental domain.Rental
	var returnedOn sql.NullTime
	if err := row.Scan(
		&rental.ID,
		&rental.VehicleID,
		&rental.OwnerID,
		&rental.OpenedOn,
		&rental.PlannedReturnOn,
		&rental.Status,
		&returnedOn,
		&rental.CreatedAt,
	); err != nil {
		return nil, err
	}
	rental.OpenedOn = domain.Day(rental.OpenedOn)
	rental.PlannedReturnOn = domain.Day(rental.PlannedReturnOn)
	if returnedOn.Valid {
		rental.ActualReturnOn = domain.Day(returnedOn.Time)
	}
	return &rental, nil
}
