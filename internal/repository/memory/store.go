// Package memory provides an in-process repository.Transactor. Transactions
// are serialized and roll back by restoring a snapshot of the state.
package memory

import (
	"context"
	"sync"

	"carshare/internal/domain"
	"carshare/internal/repository"
)

type state struct {
	vehicles map[string]domain.Vehicle
	rentals  map[string]domain.Rental
	payments map[string]domain.Payment
	// order keeps insertion order for stable listings.
	vehicleOrder []string
	rentalOrder  []string
	paymentOrder []string
}

func newState() *state {
	return &state{
		vehicles: make(map[string]domain.Vehicle),
		rentals:  make(map[string]domain.Rental),
		payments: make(map[string]domain.Payment),
	}
}

func (s *state) clone() *state {
	c := &state{
		vehicles:     make(map[string]domain.Vehicle, len(s.vehicles)),
		rentals:      make(map[string]domain.Rental, len(s.rentals)),
		payments:     make(map[string]domain.Payment, len(s.payments)),
		vehicleOrder: append([]string(nil), s.vehicleOrder...),
		rentalOrder:  append([]string(nil), s.rentalOrder...),
		paymentOrder: append([]string(nil), s.paymentOrder...),
	}
	for k, v := range s.vehicles {
		c.vehicles[k] = v
	}
	for k, v := range s.rentals {
		c.rentals[k] = v
	}
	for k, v := range s.payments {
		c.payments[k] = v
	}
	return c
}

// runner executes fn against the state with whatever locking the caller needs.
type runner func(fn func(st *state) error) error

// Store is an in-memory implementation of repository.Transactor.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{st: newState()}
}

func (s *Store) locked(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

func (s *Store) Vehicles() repository.VehicleRepository { return &vehicleRepo{run: s.locked} }
func (s *Store) Inventory() repository.InventoryLedger   { return &inventoryLedger{run: s.locked} }
func (s *Store) Rentals() repository.RentalRepository    { return &rentalRepo{run: s.locked} }
func (s *Store) Payments() repository.PaymentRepository  { return &paymentRepo{run: s.locked} }

// WithinTx runs fn while holding the store lock. Any error restores the
// state as it was before fn ran.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snapshot := s.st.clone()
	if err := fn(ctx, &txStore{st: s.st}); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

type txStore struct {
	st *state
}

func (t *txStore) direct(fn func(st *state) error) error { return fn(t.st) }

func (t *txStore) Vehicles() repository.VehicleRepository { return &vehicleRepo{run: t.direct} }
func (t *txStore) Inventory() repository.InventoryLedger   { return &inventoryLedger{run: t.direct} }
func (t *txStore) Rentals() repository.RentalRepository    { return &rentalRepo{run: t.direct} }
func (t *txStore) Payments() repository.PaymentRepository  { return &paymentRepo{run: t.direct} }

var (
	_ repository.Transactor = (*Store)(nil)
	_ repository.Store      = (*txStore)(nil)
)
