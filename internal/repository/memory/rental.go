package memory

import (
	"context"
	"sort"
	"time"

	"carshare/internal/domain"
	"carshare/internal/repository"
)

type rentalRepo struct {
	run runner
}

func (r *rentalRepo) Create(_ context.Context, rental *domain.Rental) error {
	return r.run(func(st *state) error {
		if _, ok := st.rentals[rental.ID]; ok {
			return repository.ErrConflict
		}
		if _, ok := st.vehicles[rental.VehicleID]; !ok {
			return repository.ErrNotFound
		}
		st.rentals[rental.ID] = *rental
		st.rentalOrder = append(st.rentalOrder, rental.ID)
		return nil
	})
}

func (r *rentalRepo) GetByID(_ context.Context, id string) (*domain.Rental, error) {
	var out domain.Rental
	err := r.run(func(st *state) error {
		rental, ok := st.rentals[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = rental
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetByIDForUpdate is GetByID; transactions already hold the store lock.
func (r *rentalRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Rental, error) {
	return r.GetByID(ctx, id)
}

func (r *rentalRepo) List(_ context.Context, filter repository.RentalFilter) ([]*domain.Rental, error) {
	var out []*domain.Rental
	err := r.run(func(st *state) error {
		for i := len(st.rentalOrder) - 1; i >= 0; i-- {
			rental := st.rentals[st.rentalOrder[i]]
			if filter.OwnerID != "" && rental.OwnerID != filter.OwnerID {
				continue
			}
			if filter.Active != nil && *filter.Active == rental.IsClosed() {
				continue
			}
			out = append(out, &rental)
		}
		return nil
	})
	return out, err
}

func (r *rentalRepo) ListOverdue(_ context.Context, day time.Time) ([]*domain.Rental, error) {
	var out []*domain.Rental
	err := r.run(func(st *state) error {
		for _, id := range st.rentalOrder {
			rental := st.rentals[id]
			if rental.IsOverdue(day) {
				out = append(out, &rental)
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PlannedReturnOn.Before(out[j].PlannedReturnOn)
	})
	return out, err
}

func (r *rentalRepo) Update(_ context.Context, rental *domain.Rental) error {
	return r.run(func(st *state) error {
		cur, ok := st.rentals[rental.ID]
		if !ok {
			return repository.ErrNotFound
		}
		cur.Status = rental.Status
		cur.ActualReturnOn = rental.ActualReturnOn
		st.rentals[rental.ID] = cur
		return nil
	})
}
