package postgres

import (
	"context"
	"database/sql"
	"errors"

	"carshare/internal/domain"
	"carshare/internal/repository"
)

// VehicleRepository is a PostgreSQL implementation of repository.VehicleRepository.
type VehicleRepository struct {
	q Querier
}

// NewVehicleRepository creates a new PostgreSQL vehicle repository.
func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{q: db}
}

// NewVehicleRepositoryWithTx creates a vehicle repository using a transaction.
func NewVehicleRepositoryWithTx(tx *sql.Tx) *VehicleRepository {
	return &VehicleRepository{q: tx}
}

const vehicleColumns = `id, brand, model, category, available_units, daily_fee, retired, created_at`

// Create persists a new vehicle.
func (r *VehicleRepository) Create(ctx context.Context, v *domain.Vehicle) error {
	query := `
		INSERT INTO vehicles (id, brand, model, category, available_units, daily_fee, retired, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.ExecContext(ctx, query,
		v.ID,
		v.Brand,
		v.Model,
		v.Category,
		v.AvailableUnits,
		v.DailyFee,
		v.Retired,
		v.CreatedAt,
	)
	return err
}

// GetByID retrieves a vehicle by ID.
func (r *VehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`

	v, err := scanVehicle(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

// List returns non-retired vehicles, oldest first.
func (r *VehicleRepository) List(ctx context.Context, limit, offset int) ([]*domain.Vehicle, error) {
	query := `
		SELECT ` + vehicleColumns + `
		FROM vehicles WHERE NOT retired
		ORDER BY created_at, id LIMIT $1 OFFSET $2
	`

	rows, err := r.q.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*domain.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// Update persists descriptive fields of a vehicle.
func (r *VehicleRepository) Update(ctx context.Context, v *domain.Vehicle) error {
	query := `
		UPDATE vehicles SET brand = $1, model = $2, category = $3, daily_fee = $4
		WHERE id = $5 AND NOT retired
	`

	result, err := r.q.ExecContext(ctx, query, v.Brand, v.Model, v.Category, v.DailyFee, v.ID)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// Retire soft-deletes a vehicle.
func (r *VehicleRepository) Retire(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `UPDATE vehicles SET retired = TRUE WHERE id = $1 AND NOT retired`, id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVehicle(row rowScanner) (*domain.Vehicle, error) {
	var v domain.Vehicle
	if err := row.Scan(
		&v.ID,
		&v.Brand,
		&v.Model,
		&v.Category,
		&v.AvailableUnits,
		&v.DailyFee,
		&v.Retired,
		&v.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &v, nil
}

func expectOneRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
