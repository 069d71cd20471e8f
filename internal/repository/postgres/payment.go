package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"carshare/internal/domain"
	"carshare/internal/repository"
)

// PaymentRepository is a PostgreSQL implementation of repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// NewPaymentRepositoryWithTx creates a payment repository using a transaction.
func NewPaymentRepositoryWithTx(tx *sql.Tx) *PaymentRepository {
	return &PaymentRepository{q: tx}
}

const paymentColumns = `id, rental_id, status, kind, session_id, session_url, total_price, created_at, updated_at`

// Create persists a new payment.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, rental_id, status, kind, session_id, session_url, total_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.q.ExecContext(ctx, query,
		payment.ID,
		payment.RentalID,
		payment.Status,
		payment.Kind,
		payment.SessionID,
		payment.SessionURL,
		payment.TotalPrice,
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	return err
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	return r.get(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
}

// GetByIDForUpdate retrieves a payment and locks its row.
func (r *PaymentRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Payment, error) {
	return r.get(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, id)
}

func (r *PaymentRepository) get(ctx context.Context, query, id string) (*domain.Payment, error) {
	payment, err := scanPayment(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return payment, nil
}

// HasPaid reports whether the rental already has a PAID payment.
func (r *PaymentRepository) HasPaid(ctx context.Context, rentalID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM payments WHERE rental_id = $1 AND status = $2)`

	var paid bool
	if err := r.q.QueryRowContext(ctx, query, rentalID, domain.PaymentStatusPaid).Scan(&paid); err != nil {
		return false, err
	}
	return paid, nil
}

// ListByOwner returns payments of all rentals owned by the user.
func (r *PaymentRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Payment, error) {
	query := `
		SELECT p.id, p.rental_id, p.status, p.kind, p.session_id, p.session_url, p.total_price, p.created_at, p.updated_at
		FROM payments p JOIN rentals r ON r.id = p.rental_id
		WHERE r.owner_id = $1
		ORDER BY p.created_at DESC, p.id
	`

	rows, err := r.q.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

// Update persists status, kind, price and session fields of a payment.
func (r *PaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	query := `
		UPDATE payments
		SET status = $1, kind = $2, session_id = $3, session_url = $4, total_price = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := r.q.ExecContext(ctx, query,
		payment.Status,
		payment.Kind,
		payment.SessionID,
		payment.SessionURL,
		payment.TotalPrice,
		payment.UpdatedAt,
		payment.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return err
	}
	return expectOneRow(result)
}

// AttachSession stores the checkout session on a payment that is still PENDING.
func (r *PaymentRepository) AttachSession(ctx context.Context, payment *domain.Payment) error {
	query := `
		UPDATE payments
		SET kind = $1, session_id = $2, session_url = $3, total_price = $4, updated_at = $5
		WHERE id = $6 AND status = $7
	`

	result, err := r.q.ExecContext(ctx, query,
		payment.Kind,
		payment.SessionID,
		payment.SessionURL,
		payment.TotalPrice,
		payment.UpdatedAt,
		payment.ID,
		domain.PaymentStatusPending,
	)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrConflict
	}
	return nil
}

func scanPayment(row rowScanner) (*domain.Payment, error) {
	var payment domain.Payment
	if err := row.Scan(
		&payment.ID,
		&payment.RentalID,
		&payment.Status,
		&payment.Kind,
		&payment.SessionID,
		&payment.SessionURL,
		&payment.TotalPrice,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &payment, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
