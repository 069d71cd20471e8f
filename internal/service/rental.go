package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"carshare/internal/domain"
	"carshare/internal/logger"
	"carshare/internal/metrics"
	"carshare/internal/repository"
)

// RentalFilter narrows a rental listing.
type RentalFilter = repository.RentalFilter

// RentalService drives rentals from OPEN to CLOSED.
type RentalService struct {
	store         repository.Transactor
	notifications *NotificationService
	now           func() time.Time
	log           *logrus.Entry
}

// NewRentalService creates a new RentalService.
func NewRentalService(store repository.Transactor, notifications *NotificationService) *RentalService {
	return &RentalService{
		store:         store,
		notifications: notifications,
		now:           time.Now,
		log:           logger.WithService("rental"),
	}
}

// SetClock replaces the time source used to stamp rental dates.
func (s *RentalService) SetClock(now func() time.Time) {
	s.now = now
}

// OpenRentalRequest contains the parameters for opening a rental.
type OpenRentalRequest struct {
	VehicleID    string
	DurationDays int
}

// Open reserves one unit of the vehicle and records a rental for the requester.
// The reservation and the rental row are written in one transaction.
func (s *RentalService) Open(ctx context.Context, req OpenRentalRequest, requester domain.Requester) (*domain.Rental, error) {
	if requester.ID == "" {
		return nil, ErrUnauthorized
	}
	if req.VehicleID == "" {
		return nil, ErrVehicleNotFound
	}
	if req.DurationDays < 1 {
		return nil, ErrInvalidDuration
	}

	now := s.now()
	today := domain.Day(now)
	rental := &domain.Rental{
		ID:              uuid.New().String(),
		VehicleID:       req.VehicleID,
		OwnerID:         requester.ID,
		OpenedOn:        today,
		PlannedReturnOn: today.AddDate(0, 0, req.DurationDays),
		Status:          domain.RentalStatusOpen,
		CreatedAt:       now,
	}

	var vehicle *domain.Vehicle
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := tx.Inventory().Reserve(ctx, req.VehicleID); err != nil {
			switch {
			case errors.Is(err, repository.ErrNotFound):
				return ErrVehicleNotFound
			case errors.Is(err, repository.ErrOutOfStock):
				return ErrOutOfStock
			}
			return fmt.Errorf("reserve vehicle: %w", err)
		}

		if err := tx.Rentals().Create(ctx, rental); err != nil {
			return fmt.Errorf("create rental: %w", err)
		}

		v, err := tx.Vehicles().GetByID(ctx, req.VehicleID)
		if err != nil {
			return fmt.Errorf("load vehicle: %w", err)
		}
		vehicle = v
		return nil
	})
	metrics.IncRentalOp("open", metrics.Result(err))
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"rental_id":  rental.ID,
		"vehicle_id": rental.VehicleID,
		"owner_id":   rental.OwnerID,
	}).Info("rental opened")

	if s.notifications != nil {
		if err := s.notifications.NotifyRentalOpened(ctx, rental, vehicle); err != nil {
			s.log.WithError(err).WithField("rental_id", rental.ID).Warn("rental opened notification failed")
			metrics.IncNotificationFailure(string(NotificationRentalOpened))
		}
	}

	return rental, nil
}

// Close returns the vehicle. The terminal-state check runs on the locked row
// inside the same transaction as the release, so a second close never
// releases the unit twice.
func (s *RentalService) Close(ctx context.Context, rentalID string, requester domain.Requester) (*domain.Rental, error) {
	if rentalID == "" {
		return nil, ErrRentalNotFound
	}

	var closed *domain.Rental
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		rental, err := tx.Rentals().GetByIDForUpdate(ctx, rentalID)
		if err != nil {
			return rentalLookupError(err)
		}

		if !CanAccess(requester, rental.OwnerID) {
			return ErrUnauthorized
		}

		if err := rental.Close(s.now()); err != nil {
			return err
		}

		if err := tx.Inventory().Release(ctx, rental.VehicleID); err != nil {
			return fmt.Errorf("release vehicle: %w", err)
		}

		if err := tx.Rentals().Update(ctx, rental); err != nil {
			return fmt.Errorf("update rental: %w", err)
		}

		closed = rental
		return nil
	})
	metrics.IncRentalOp("close", metrics.Result(err))
	if err != nil {
		return nil, err
	}

	s.log.WithField("rental_id", closed.ID).Info("rental closed")
	return closed, nil
}

// List returns rentals visible to the requester. Non-managers only ever see
// their own rentals, whatever owner they ask for.
func (s *RentalService) List(ctx context.Context, filter RentalFilter, requester domain.Requester) ([]*domain.Rental, error) {
	if !requester.IsAdmin() {
		if requester.ID == "" {
			return nil, ErrUnauthorized
		}
		filter.OwnerID = requester.ID
	}
	return s.store.Rentals().List(ctx, filter)
}

// Get returns a rental the requester may access.
func (s *RentalService) Get(ctx context.Context, rentalID string, requester domain.Requester) (*domain.Rental, error) {
	if rentalID == "" {
		return nil, ErrRentalNotFound
	}

	rental, err := s.store.Rentals().GetByID(ctx, rentalID)
	if err != nil {
		return nil, rentalLookupError(err)
	}

	if !CanAccess(requester, rental.OwnerID) {
		return nil, ErrUnauthorized
	}
	return rental, nil
}

// ListOverdue returns open rentals whose planned return date has passed.
func (s *RentalService) ListOverdue(ctx context.Context) ([]*domain.Rental, error) {
	return s.store.Rentals().ListOverdue(ctx, s.now())
}

func rentalLookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrRentalNotFound
	}
	return fmt.Errorf("load rental: %w", err)
}
