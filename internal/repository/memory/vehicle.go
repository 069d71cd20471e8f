package memory

import (
	"context"

	"carshare/internal/domain"
	"carshare/internal/repository"
)

type vehicleRepo struct {
	run runner
}

func (r *vehicleRepo) Create(_ context.Context, v *domain.Vehicle) error {
	return r.run(func(st *state) error {
		if _, ok := st.vehicles[v.ID]; ok {
			return repository.ErrConflict
		}
		st.vehicles[v.ID] = *v
		st.vehicleOrder = append(st.vehicleOrder, v.ID)
		return nil
	})
}

func (r *vehicleRepo) GetByID(_ context.Context, id string) (*domain.Vehicle, error) {
	var out domain.Vehicle
	err := r.run(func(st *state) error {
		v, ok := st.vehicles[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *vehicleRepo) List(_ context.Context, limit, offset int) ([]*domain.Vehicle, error) {
	var out []*domain.Vehicle
	err := r.run(func(st *state) error {
		skipped := 0
		for _, id := range st.vehicleOrder {
			v := st.vehicles[id]
			if v.Retired {
				continue
			}
			if skipped < offset {
				skipped++
				continue
			}
			if limit > 0 && len(out) >= limit {
				break
			}
			out = append(out, &v)
		}
		return nil
	})
	return out, err
}

func (r *vehicleRepo) Update(_ context.Context, v *domain.Vehicle) error {
	return r.run(func(st *state) error {
		cur, ok := st.vehicles[v.ID]
		if !ok || cur.Retired {
			return repository.ErrNotFound
		}
		cur.Brand = v.Brand
		cur.Model = v.Model
		cur.Category = v.Category
		cur.DailyFee = v.DailyFee
		st.vehicles[v.ID] = cur
		return nil
	})
}

func (r *vehicleRepo) Retire(_ context.Context, id string) error {
	return r.run(func(st *state) error {
		cur, ok := st.vehicles[id]
		if !ok || cur.Retired {
			return repository.ErrNotFound
		}
		cur.Retired = true
		st.vehicles[id] = cur
		return nil
	})
}

type inventoryLedger struct {
	run runner
}

func (l *inventoryLedger) Reserve(_ context.Context, vehicleID string) error {
	return l.run(func(st *state) error {
		v, ok := st.vehicles[vehicleID]
		if !ok || v.Retired {
			return repository.ErrNotFound
		}
		if v.AvailableUnits <= 0 {
			return repository.ErrOutOfStock
		}
		v.AvailableUnits--
		st.vehicles[vehicleID] = v
		return nil
	})
}

func (l *inventoryLedger) Release(_ context.Context, vehicleID string) error {
	return l.run(func(st *state) error {
		v, ok := st.vehicles[vehicleID]
		if !ok {
			return repository.ErrNotFound
		}
		v.AvailableUnits++
		st.vehicles[vehicleID] = v
		return nil
	})
}
