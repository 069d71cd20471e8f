package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"carshare/internal/domain"
	"carshare/internal/repository/memory"
	"carshare/internal/service"
)

type paymentFixture struct {
	store    *memory.Store
	clock    *clock
	channel  *MockChannel
	provider *MockProvider
	rentals  *service.RentalService
	payments *service.PaymentService
	vehicle  *domain.Vehicle
}

func newPaymentFixture(t *testing.T, locker service.SessionLocker) *paymentFixture {
	t.Helper()

	f := &paymentFixture{
		store:    memory.NewStore(),
		clock:    newClock(day(2024, 1, 1)),
		channel:  &MockChannel{},
		provider: &MockProvider{},
	}
	f.vehicle = seedVehicle(t, f.store, "50.00", 3)

	notifications := service.NewNotificationService(f.channel)
	f.rentals = service.NewRentalService(f.store, notifications)
	f.rentals.SetClock(f.clock.Now)
	f.payments = service.NewPaymentService(f.store, f.provider, notifications, locker, service.PaymentConfig{
		PublicURL:       "https://cars.example/",
		ProviderTimeout: time.Second,
	})
	f.payments.SetClock(f.clock.Now)
	return f
}

// returnedRental opens a 7 day rental on 2024-01-01 and returns it on returnDay.
func (f *paymentFixture) returnedRental(t *testing.T, owner domain.Requester, returnDay int) *domain.Rental {
	t.Helper()
	ctx := context.Background()

	f.clock.Set(day(2024, 1, 1))
	rental, err := f.rentals.Open(ctx, service.OpenRentalRequest{VehicleID: f.vehicle.ID, DurationDays: 7}, owner)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	f.clock.Set(day(2024, 1, returnDay))
	if _, err := f.rentals.Close(ctx, rental.ID, owner); err != nil {
		t.Fatalf("close: %v", err)
	}
	return rental
}

// ──────────────────────────────────────────────
// 1. CREATING CHECKOUT SESSIONS
// ──────────────────────────────────────────────

func TestPayment_CreateSession(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture(t, nil)
	rental := f.returnedRental(t, customer, 8)

	payment, err := f.payments.CreateSession(context.Background(), rental.ID, customer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payment.Status != domain.PaymentStatusPending {
		t.Errorf("expected PENDING, got %s", payment.Status)
	}
	if payment.Kind != domain.PaymentKindPayment {
		t.Errorf("expected PAYMENT, got %s", payment.Kind)
	}
	if got := payment.TotalPrice.StringFixed(2); got != "350.00" {
		t.Errorf("expected 350.00, got %s", got)
	}
	if payment.SessionID == "" || payment.SessionURL == "" {
		t.Error("expected session id and url to be set")
	}

	req := f.provider.LastRequest()
	wantSuccess := "https://cars.example/v1/payments/success/" + payment.ID
	if req.SuccessURL != wantSuccess {
		t.Errorf("expected success url %s, got %s", wantSuccess, req.SuccessURL)
	}
	if !strings.HasSuffix(req.CancelURL, "/v1/payments/cancel/"+payment.ID) {
		t.Errorf("unexpected cancel url %s", req.CancelURL)
	}

	stored, err := f.store.Payments().GetByID(context.Background(), payment.ID)
	if err != nil {
		t.Fatalf("load payment: %v", err)
	}
	if stored.SessionID != payment.SessionID || !stored.TotalPrice.Equal(payment.TotalPrice) {
		t.Error("expected session and price to be persisted")
	}
}

func TestPayment_CreateSessionLateReturnIsFine(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture(t, nil)
	rental := f.returnedRental(t, customer, 10)

	payment, err := f.payments.CreateSession(context.Background(), rental.ID, customer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payment.Kind != domain.PaymentKindFine {
		t.Errorf("expected FINE, got %s", payment.Kind)
	}
	if got := payment.TotalPrice.StringFixed(2); got != "900.00" {
		t.Errorf("expected 900.00, got %s", got)
	}
}

func TestPayment_CreateSessionPreconditions(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture(t, nil)
	ctx := context.Background()

	open, err := f.rentals.Open(ctx, service.OpenRentalRequest{VehicleID: f.vehicle.ID, DurationDays: 1}, customer)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.payments.CreateSession(ctx, open.ID, customer); !errors.Is(err, service.ErrNotReturned) {
		t.Errorf("expected ErrNotReturned, got %v", err)
	}

	returned := f.returnedRental(t, customer, 8)
	if _, err := f.payments.CreateSession(ctx, returned.ID, stranger); !errors.Is(err, service.ErrNotOwner) {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}
	if _, err := f.payments.CreateSession(ctx, returned.ID, manager); err != nil {
		t.Errorf("manager: unexpected error: %v", err)
	}
	if _, err := f.payments.CreateSession(ctx, "missing", customer); !errors.Is(err, service.ErrRentalNotFound) {
		t.Errorf("expected ErrRentalNotFound, got %v", err)
	}

	if f.provider.CallCount != 1 {
		t.Errorf("expected the provider to be called once, got %d", f.provider.CallCount)
	}
}

func TestPayment_ProviderFailureLeavesPendingPlaceholder(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture(t, nil)
	rental := f.returnedRental(t, customer, 8)
	f.provider.Error = errBoom
	ctx := context.Background()

	if _, err := f.payments.CreateSession(ctx, rental.ID, customer); !errors.Is(err, service.ErrPaymentProvider) {
		t.Fatalf("expected ErrPaymentProvider, got %v", err)
	}

	payments, err := f.payments.ListByOwner(ctx, "", customer)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(payments) != 1 {
		t.Fatalf("expected 1 payment, got %d", len(payments))
	}
	if payments[0].Status != domain.PaymentStatusPending || payments[0].SessionID != "" {
		t.Errorf("expected pending payment without session, got %+v", payments[0])
	}

	// A retry opens a fresh session.
	f.provider.Error = nil
	if _, err := f.payments.CreateSession(ctx, rental.ID, customer); err != nil {
		t.Errorf("retry: unexpected error: %v", err)
	}
}

func TestPayment_PlaceholderWithoutSessionCannotBeConfirmed(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture(t, nil)
	rental := f.returnedRental(t, customer, 8)
	f.provider.Error = errBoom
	ctx := context.Background()

	if _, err := f.payments.CreateSession(ctx, rental.ID, customer); !errors.Is(err, service.ErrPaymentProvider) {
		t.Fatalf("expected ErrPaymentProvider, got %v", err)
	}
	payments, err := f.payments.ListByOwner(ctx, "", customer)
	if err != nil || len(payments) != 1 {
		t.Fatalf("list: %v (%d payments)", err, len(payments))
	}
	placeholder := payments[0]
	before := len(f.channel.Messages())

	if err := f.payments.Confirm(ctx, placeholder.ID); !errors.Is(err, service.ErrPaymentNotStarted) {
		t.Fatalf("expected ErrPaymentNotStarted, got %v", err)
	}

	stored, err := f.store.Payments().GetByID(ctx, placeholder.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != domain.PaymentStatusPending {
		t.Errorf("expected placeholder to stay PENDING, got %s", stored.Status)
	}
	if got := len(f.channel.Messages()); got != before {
		t.Errorf("expected no payment notification, got %d new message(s)", got-before)
	}

	// The rental is still payable through a real session.
	f.provider.Error = nil
	payment, err := f.payments.CreateSession(ctx, rental.ID, customer)
	if err != nil {
		t.Fatalf("retry: unexpected error: %v", err)
	}
	if err := f.payments.Confirm(ctx, payment.ID); err != nil {
		t.Fatalf("confirm: unexpected error: %v", err)
	}
	paid, err := f.store.Payments().GetByID(ctx, payment.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !paid.IsPaid() || paid.TotalPrice.StringFixed(2) != "350.00" {
		t.Errorf("expected PAID 350.00, got %s %s", paid.Status, paid.TotalPrice.StringFixed(2))
	}
}

func TestPayment_ProviderTimeout(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture(t, nil)
	rental := f.returnedRental(t, customer, 8)
	f.provider.Delay = 5 * time.Second

	start := time.Now()
	_, err := f.payments.CreateSession(context.Background(), rental.ID, customer)
	if !errors.Is(err, service.ErrPaymentProvider) {
		t.Fatalf("expected ErrPaymentProvider, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded in chain, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("provider call was not bounded, took %v", elapsed)
	}
}

func TestPayment_SessionLock(t *testing.T) {
	t.Parallel()

	locker := NewMockLocker()
	f := newPaymentFixture(t, locker)
	rental := f.returnedRental(t, customer, 8)
	ctx := context.Background()

	locker.Hold(rental.ID)
	if _, err := f.payments.CreateSession(ctx, rental.ID, customer); !errors.Is(err, service.ErrPaymentInProgress) {
		t.Errorf("expected ErrPaymentInProgress, got %v", err)
	}

	locker.ReleaseRentalLock(ctx, rental.ID)
	if _, err := f.payments.CreateSession(ctx, rental.ID, customer); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The lock is released once the session is open.
	if acquired, _ := locker.AcquireRentalLock(ctx, rental.ID, time.Second); !acquired {
		t.Error("expected the lock to be released after CreateSession")
	}
}

func TestPayment_SessionLockUnavailableFallsBack(t *testing.T) {
	t.Parallel()

	locker := NewMockLocker()
	locker.Error = errBoom
	f := newPaymentFixture(t, locker)
	rental := f.returnedRental(t, customer, 8)

	if _, err := f.payments.CreateSession(context.Background(), rental.ID, customer); err != nil {
		t.Errorf("expected fallback to the database guard, got %v", err)
	}
}

// ──────────────────────────────────────────────
// 2. CONFIRMATION
// ──────────────────────────────────────────────

func TestPayment_ConfirmIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture(t, nil)
	rental := f.returnedRental(t, customer, 8)
	ctx := context.Background()

	payment, err := f.payments.CreateSession(ctx, rental.ID, customer)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	before := len(f.channel.Messages())

	if err := f.payments.Confirm(ctx, payment.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if err := f.payments.Confirm(ctx, payment.ID); err != nil {
		t.Fatalf("second confirm: %v", err)
	}

	stored, err := f.store.Payments().GetByID(ctx, payment.ID)
	if err != nil {
		t.Fatalf("load payment: %v", err)
	}
	if !stored.IsPaid() {
		t.Errorf("expected PAID, got %s", stored.Status)
	}

	msgs := f.channel.Messages()[before:]
	if len(msgs) != 1 || !strings.Contains(msgs[0], rental.ID) {
		t.Errorf("expected exactly one paid notification, got %v", msgs)
	}

	if _, err := f.payments.CreateSession(ctx, rental.ID, customer); !errors.Is(err, service.ErrAlreadyPaid) {
		t.Errorf("expected ErrAlreadyPaid, got %v", err)
	}
}

func TestPayment_AtMostOnePaidPerRental(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture(t, nil)
	rental := f.returnedRental(t, customer, 8)
	ctx := context.Background()

	first, err := f.payments.CreateSession(ctx, rental.ID, customer)
	if err != nil {
		t.Fatalf("first session: %v", err)
	}
	second, err := f.payments.CreateSession(ctx, rental.ID, customer)
	if err != nil {
		t.Fatalf("second session: %v", err)
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{first.ID, second.ID} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			errs[i] = f.payments.Confirm(ctx, id)
		}(i, id)
	}
	wg.Wait()

	var ok, alreadyPaid int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, service.ErrAlreadyPaid):
			alreadyPaid++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 || alreadyPaid != 1 {
		t.Errorf("expected one confirm and one ErrAlreadyPaid, got %d and %d", ok, alreadyPaid)
	}

	payments, err := f.payments.ListByOwner(ctx, customer.ID, customer)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	paid := 0
	for _, p := range payments {
		if p.IsPaid() {
			paid++
		}
	}
	if paid != 1 {
		t.Errorf("expected exactly one PAID payment, got %d", paid)
	}
}

func TestPayment_NotificationFailureKeepsPaid(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture(t, nil)
	rental := f.returnedRental(t, customer, 8)
	ctx := context.Background()

	payment, err := f.payments.CreateSession(ctx, rental.ID, customer)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	f.channel.mu.Lock()
	f.channel.SendError = errBoom
	f.channel.mu.Unlock()

	if err := f.payments.Confirm(ctx, payment.ID); err != nil {
		t.Fatalf("expected confirm to succeed, got %v", err)
	}
	stored, err := f.store.Payments().GetByID(ctx, payment.ID)
	if err != nil {
		t.Fatalf("load payment: %v", err)
	}
	if !stored.IsPaid() {
		t.Errorf("expected PAID, got %s", stored.Status)
	}
}

func TestPayment_ConfirmAndCancelUnknown(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture(t, nil)
	ctx := context.Background()

	if err := f.payments.Confirm(ctx, "missing"); !errors.Is(err, service.ErrPaymentNotFound) {
		t.Errorf("expected ErrPaymentNotFound, got %v", err)
	}
	if _, err := f.payments.Cancel(ctx, "missing"); !errors.Is(err, service.ErrPaymentNotFound) {
		t.Errorf("expected ErrPaymentNotFound, got %v", err)
	}
}

func TestPayment_CancelKeepsPending(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture(t, nil)
	rental := f.returnedRental(t, customer, 8)
	ctx := context.Background()

	payment, err := f.payments.CreateSession(ctx, rental.ID, customer)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	cancelled, err := f.payments.Cancel(ctx, payment.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != domain.PaymentStatusPending || cancelled.SessionURL != payment.SessionURL {
		t.Errorf("expected unchanged pending payment, got %+v", cancelled)
	}
}

// ──────────────────────────────────────────────
// 3. LISTING
// ──────────────────────────────────────────────

func TestPayment_ListByOwnerAuthorization(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture(t, nil)
	rental := f.returnedRental(t, customer, 8)
	ctx := context.Background()

	if _, err := f.payments.CreateSession(ctx, rental.ID, customer); err != nil {
		t.Fatalf("create session: %v", err)
	}

	if _, err := f.payments.ListByOwner(ctx, customer.ID, stranger); !errors.Is(err, service.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}

	got, err := f.payments.ListByOwner(ctx, customer.ID, manager)
	if err != nil {
		t.Fatalf("manager list: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 payment, got %d", len(got))
	}

	got, err = f.payments.ListByOwner(ctx, "", stranger)
	if err != nil {
		t.Fatalf("stranger list: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no payments for stranger, got %d", len(got))
	}
}
