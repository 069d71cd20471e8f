package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"carshare/internal/domain"
	"carshare/internal/repository/memory"
	"carshare/internal/service"
)

// ──────────────────────────────────────────────
// FIXTURES
// ──────────────────────────────────────────────

var (
	customer = domain.Requester{ID: "user-1", Roles: []string{domain.RoleCustomer}}
	stranger = domain.Requester{ID: "user-2", Roles: []string{domain.RoleCustomer}}
	manager  = domain.Requester{ID: "admin-1", Roles: []string{domain.RoleManager}}
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 30, 0, 0, time.UTC)
}

// clock is a settable time source shared by services under test.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(t time.Time) *clock { return &clock{now: t} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func seedVehicle(t *testing.T, store *memory.Store, fee string, units int) *domain.Vehicle {
	t.Helper()
	v := &domain.Vehicle{
		ID:             "vehicle-" + fee,
		Brand:          "Toyota",
		Model:          "Corolla",
		Category:       domain.VehicleCategorySedan,
		AvailableUnits: units,
		DailyFee:       decimal.RequireFromString(fee),
		CreatedAt:      time.Now(),
	}
	if err := store.Vehicles().Create(context.Background(), v); err != nil {
		t.Fatalf("seed vehicle: %v", err)
	}
	return v
}

func availableUnits(t *testing.T, store *memory.Store, vehicleID string) int {
	t.Helper()
	v, err := store.Vehicles().GetByID(context.Background(), vehicleID)
	if err != nil {
		t.Fatalf("load vehicle: %v", err)
	}
	return v.AvailableUnits
}

// ──────────────────────────────────────────────
// MOCK NOTIFICATION CHANNEL
// ──────────────────────────────────────────────

// MockChannel records every message it is asked to send.
type MockChannel struct {
	mu       sync.Mutex
	messages []string

	// Error injection
	SendError error
}

func (c *MockChannel) Send(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SendError != nil {
		return c.SendError
	}
	c.messages = append(c.messages, text)
	return nil
}

func (c *MockChannel) Messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.messages...)
}

// ──────────────────────────────────────────────
// MOCK PAYMENT PROVIDER
// ──────────────────────────────────────────────

// MockProvider records checkout requests and returns canned sessions.
type MockProvider struct {
	mu       sync.Mutex
	requests []service.CheckoutRequest

	CallCount int32

	// Error injection
	Error error
	// Delay simulates a slow provider; the call honours ctx.
	Delay time.Duration
}

func (p *MockProvider) CreateCheckoutSession(ctx context.Context, req service.CheckoutRequest) (service.CheckoutSession, error) {
	n := atomic.AddInt32(&p.CallCount, 1)

	p.mu.Lock()
	p.requests = append(p.requests, req)
	p.mu.Unlock()

	if p.Delay > 0 {
		select {
		case <-time.After(p.Delay):
		case <-ctx.Done():
			return service.CheckoutSession{}, ctx.Err()
		}
	}
	if p.Error != nil {
		return service.CheckoutSession{}, p.Error
	}
	id := fmt.Sprintf("cs_test_%d", n)
	return service.CheckoutSession{ID: id, URL: "https://checkout.example/" + id}, nil
}

func (p *MockProvider) LastRequest() service.CheckoutRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.requests) == 0 {
		return service.CheckoutRequest{}
	}
	return p.requests[len(p.requests)-1]
}

// ──────────────────────────────────────────────
// MOCK SESSION LOCKER
// ──────────────────────────────────────────────

// MockLocker is an in-process SessionLocker.
type MockLocker struct {
	mu    sync.Mutex
	held  map[string]bool
	Error error
}

func NewMockLocker() *MockLocker {
	return &MockLocker{held: make(map[string]bool)}
}

func (l *MockLocker) AcquireRentalLock(_ context.Context, rentalID string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Error != nil {
		return false, l.Error
	}
	if l.held[rentalID] {
		return false, nil
	}
	l.held[rentalID] = true
	return true, nil
}

func (l *MockLocker) ReleaseRentalLock(_ context.Context, rentalID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, rentalID)
	return nil
}

func (l *MockLocker) Hold(rentalID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held[rentalID] = true
}

var errBoom = errors.New("boom")
