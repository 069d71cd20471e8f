package memory

import (
	"context"

	"carshare/internal/domain"
	"carshare/internal/repository"
)

type paymentRepo struct {
	run runner
}

func (r *paymentRepo) Create(_ context.Context, payment *domain.Payment) error {
	return r.run(func(st *state) error {
		if _, ok := st.payments[payment.ID]; ok {
			return repository.ErrConflict
		}
		if _, ok := st.rentals[payment.RentalID]; !ok {
			return repository.ErrNotFound
		}
		if payment.IsPaid() && paidExists(st, payment.RentalID, payment.ID) {
			return repository.ErrConflict
		}
		st.payments[payment.ID] = *payment
		st.paymentOrder = append(st.paymentOrder, payment.ID)
		return nil
	})
}

func (r *paymentRepo) GetByID(_ context.Context, id string) (*domain.Payment, error) {
	var out domain.Payment
	err := r.run(func(st *state) error {
		payment, ok := st.payments[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = payment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetByIDForUpdate is GetByID; transactions already hold the store lock.
func (r *paymentRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Payment, error) {
	return r.GetByID(ctx, id)
}

func (r *paymentRepo) HasPaid(_ context.Context, rentalID string) (bool, error) {
	var paid bool
	err := r.run(func(st *state) error {
		paid = paidExists(st, rentalID, "")
		return nil
	})
	return paid, err
}

func (r *paymentRepo) ListByOwner(_ context.Context, ownerID string) ([]*domain.Payment, error) {
	var out []*domain.Payment
	err := r.run(func(st *state) error {
		for i := len(st.paymentOrder) - 1; i >= 0; i-- {
			payment := st.payments[st.paymentOrder[i]]
			if st.rentals[payment.RentalID].OwnerID == ownerID {
				out = append(out, &payment)
			}
		}
		return nil
	})
	return out, err
}

func (r *paymentRepo) Update(_ context.Context, payment *domain.Payment) error {
	return r.run(func(st *state) error {
		cur, ok := st.payments[payment.ID]
		if !ok {
			return repository.ErrNotFound
		}
		if payment.IsPaid() && paidExists(st, cur.RentalID, cur.ID) {
			return repository.ErrConflict
		}
		cur.Status = payment.Status
		cur.Kind = payment.Kind
		cur.SessionID = payment.SessionID
		cur.SessionURL = payment.SessionURL
		cur.TotalPrice = payment.TotalPrice
		cur.UpdatedAt = payment.UpdatedAt
		st.payments[payment.ID] = cur
		return nil
	})
}

func (r *paymentRepo) AttachSession(_ context.Context, payment *domain.Payment) error {
	return r.run(func(st *state) error {
		cur, ok := st.payments[payment.ID]
		if !ok {
			return repository.ErrNotFound
		}
		if cur.Status != domain.PaymentStatusPending {
			return repository.ErrConflict
		}
		cur.Kind = payment.Kind
		cur.SessionID = payment.SessionID
		cur.SessionURL = payment.SessionURL
		cur.TotalPrice = payment.TotalPrice
		cur.UpdatedAt = payment.UpdatedAt
		st.payments[payment.ID] = cur
		return nil
	})
}

func paidExists(st *state, rentalID, exceptID string) bool {
	for id, p := range st.payments {
		if id != exceptID && p.RentalID == rentalID && p.IsPaid() {
			return true
		}
	}
	return false
}
