package service

import (
	"github.com/shopspring/decimal"

	"carshare/internal/domain"
)

// FineMultiplier applies to every billed day of a late return.
const FineMultiplier = 2

// Quote is the priced outcome of a closed rental.
type Quote struct {
	Days   int
	Late   bool
	Kind   domain.PaymentKind
	Amount decimal.Decimal
}

// AmountMinor returns the amount in minor currency units.
func (q Quote) AmountMinor() int64 {
	return q.Amount.Shift(2).Round(0).IntPart()
}

// Price computes the charge for a closed rental.
func Price(rental *domain.Rental, vehicle *domain.Vehicle) (Quote, error) {
	returnedOn, ok := rental.ReturnedOn()
	if !ok {
		return Quote{}, ErrRentalStillOpen
	}

	days := domain.DaysBetween(rental.OpenedOn, returnedOn)
	if days < 1 {
		days = 1
	}

	late := domain.Day(returnedOn).After(domain.Day(rental.PlannedReturnOn))

	multiplier := int64(1)
	kind := domain.PaymentKindPayment
	if late {
		multiplier = FineMultiplier
		kind = domain.PaymentKindFine
	}

	amount := vehicle.DailyFee.
		Mul(decimal.NewFromInt(int64(days))).
		Mul(decimal.NewFromInt(multiplier)).
		Round(2)

	return Quote{
		Days:   days,
		Late:   late,
		Kind:   kind,
		Amount: amount,
	}, nil
}
