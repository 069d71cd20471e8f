package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the current status of a payment.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// PaymentKind tells a regular rental charge apart from a late-return fine.
type PaymentKind string

const (
	PaymentKindPayment PaymentKind = "PAYMENT"
	PaymentKindFine    PaymentKind = "FINE"
)

// Payment represents a provider-backed charge attempt for a closed rental.
type Payment struct {
	ID         string
	RentalID   string
	Status     PaymentStatus
	Kind       PaymentKind
	SessionID  string
	SessionURL string
	TotalPrice decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsPaid reports whether the payment reached its terminal state.
func (p *Payment) IsPaid() bool {
	return p.Status == PaymentStatusPaid
}
