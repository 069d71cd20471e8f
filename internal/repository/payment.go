package repository

import (
	"context"

	"carshare/internal/domain"
)

// PaymentRepository defines the persistence operations for payments.
type PaymentRepository interface {
	// Create persists a new payment.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by ID.
	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// GetByIDForUpdate retrieves a payment and locks its row until the
	// surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Payment, error)

	// HasPaid reports whether the rental already has a PAID payment.
	HasPaid(ctx context.Context, rentalID string) (bool, error)

	// ListByOwner returns payments of all rentals owned by the user.
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Payment, error)

	// Update persists status, kind, price and session fields of a payment.
	Update(ctx context.Context, payment *domain.Payment) error

	// AttachSession stores the opened checkout session, kind and price on a
	// PENDING payment without touching its status. It returns ErrConflict
	// when the payment is no longer PENDING.
	AttachSession(ctx context.Context, payment *domain.Payment) error
}
