package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"carshare/internal/domain"
	"carshare/internal/service"
)

func closedRental(opened, planned, returned time.Time) *domain.Rental {
	r := &domain.Rental{
		ID:              "rental-1",
		VehicleID:       "vehicle-1",
		OwnerID:         "user-1",
		OpenedOn:        domain.Day(opened),
		PlannedReturnOn: domain.Day(planned),
		Status:          domain.RentalStatusOpen,
	}
	if err := r.Close(returned); err != nil {
		panic(err)
	}
	return r
}

func TestPrice(t *testing.T) {
	t.Parallel()

	vehicle := &domain.Vehicle{ID: "vehicle-1", DailyFee: decimal.RequireFromString("50.00")}

	tests := []struct {
		name     string
		rental   *domain.Rental
		wantDays int
		wantKind domain.PaymentKind
		want     string
	}{
		{
			name:     "on time",
			rental:   closedRental(day(2024, 1, 1), day(2024, 1, 8), day(2024, 1, 8)),
			wantDays: 7,
			wantKind: domain.PaymentKindPayment,
			want:     "350.00",
		},
		{
			name:     "late return is a fine over every day",
			rental:   closedRental(day(2024, 1, 1), day(2024, 1, 8), day(2024, 1, 10)),
			wantDays: 9,
			wantKind: domain.PaymentKindFine,
			want:     "900.00",
		},
		{
			name:     "early return bills actual days",
			rental:   closedRental(day(2024, 1, 1), day(2024, 1, 8), day(2024, 1, 3)),
			wantDays: 2,
			wantKind: domain.PaymentKindPayment,
			want:     "100.00",
		},
		{
			name:     "same day bills one day",
			rental:   closedRental(day(2024, 1, 1), day(2024, 1, 2), day(2024, 1, 1)),
			wantDays: 1,
			wantKind: domain.PaymentKindPayment,
			want:     "50.00",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			quote, err := service.Price(tt.rental, vehicle)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if quote.Days != tt.wantDays {
				t.Errorf("expected %d days, got %d", tt.wantDays, quote.Days)
			}
			if quote.Kind != tt.wantKind {
				t.Errorf("expected kind %s, got %s", tt.wantKind, quote.Kind)
			}
			if got := quote.Amount.StringFixed(2); got != tt.want {
				t.Errorf("expected amount %s, got %s", tt.want, got)
			}
		})
	}
}

func TestPrice_OpenRental(t *testing.T) {
	t.Parallel()

	rental := &domain.Rental{
		OpenedOn:        domain.Day(day(2024, 1, 1)),
		PlannedReturnOn: domain.Day(day(2024, 1, 8)),
		Status:          domain.RentalStatusOpen,
	}
	vehicle := &domain.Vehicle{DailyFee: decimal.RequireFromString("50.00")}

	if _, err := service.Price(rental, vehicle); !errors.Is(err, service.ErrRentalStillOpen) {
		t.Errorf("expected ErrRentalStillOpen, got %v", err)
	}
}

func TestQuote_AmountMinor(t *testing.T) {
	t.Parallel()

	q := service.Quote{Amount: decimal.RequireFromString("123.45")}
	if got := q.AmountMinor(); got != 12345 {
		t.Errorf("expected 12345, got %d", got)
	}
}

func TestCanAccess(t *testing.T) {
	t.Parallel()

	if !service.CanAccess(customer, customer.ID) {
		t.Error("owner must access own resource")
	}
	if service.CanAccess(stranger, customer.ID) {
		t.Error("stranger must not access another user's resource")
	}
	if !service.CanAccess(manager, customer.ID) {
		t.Error("manager must access any resource")
	}
	if service.CanAccess(domain.Requester{}, "") {
		t.Error("anonymous requester must not match an empty owner")
	}
}
