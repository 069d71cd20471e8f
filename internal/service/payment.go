package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"carshare/internal/domain"
	"carshare/internal/logger"
	"carshare/internal/metrics"
	"carshare/internal/repository"
)

// SessionLocker serializes checkout session creation per rental across instances.
type SessionLocker interface {
	AcquireRentalLock(ctx context.Context, rentalID string, ttl time.Duration) (bool, error)
	ReleaseRentalLock(ctx context.Context, rentalID string) error
}

// PaymentConfig holds the settings of PaymentService.
type PaymentConfig struct {
	// PublicURL is the externally reachable base of this service, used for
	// provider redirects.
	PublicURL       string
	ProviderTimeout time.Duration
	LockTTL         time.Duration
}

// PaymentService opens checkout sessions for closed rentals and records their outcome.
type PaymentService struct {
	store         repository.Transactor
	provider      PaymentProvider
	notifications *NotificationService
	locker        SessionLocker
	cfg           PaymentConfig
	now           func() time.Time
	log           *logrus.Entry
}

// NewPaymentService creates a new PaymentService. locker may be nil.
func NewPaymentService(
	store repository.Transactor,
	provider PaymentProvider,
	notifications *NotificationService,
	locker SessionLocker,
	cfg PaymentConfig,
) *PaymentService {
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = 10 * time.Second
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Second
	}
	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")

	return &PaymentService{
		store:         store,
		provider:      provider,
		notifications: notifications,
		locker:        locker,
		cfg:           cfg,
		now:           time.Now,
		log:           logger.WithService("payment"),
	}
}

// SetClock replaces the time source used to stamp payments.
func (s *PaymentService) SetClock(now func() time.Time) {
	s.now = now
}

// CreateSession prices a closed rental and opens a checkout session for it.
// The provider is called outside any transaction. If it fails the PENDING
// placeholder stays behind and the caller may simply retry.
func (s *PaymentService) CreateSession(ctx context.Context, rentalID string, requester domain.Requester) (payment *domain.Payment, err error) {
	defer func() { metrics.IncPaymentOp("create_session", metrics.Result(err)) }()

	if rentalID == "" {
		return nil, ErrRentalNotFound
	}

	rental, err := s.store.Rentals().GetByID(ctx, rentalID)
	if err != nil {
		return nil, rentalLookupError(err)
	}

	paid, err := s.store.Payments().HasPaid(ctx, rental.ID)
	if err != nil {
		return nil, fmt.Errorf("check paid: %w", err)
	}
	if paid {
		return nil, ErrAlreadyPaid
	}

	if !CanAccess(requester, rental.OwnerID) {
		return nil, ErrNotOwner
	}

	vehicle, err := s.store.Vehicles().GetByID(ctx, rental.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("load vehicle: %w", err)
	}

	quote, err := Price(rental, vehicle)
	if err != nil {
		if errors.Is(err, ErrRentalStillOpen) {
			return nil, ErrNotReturned
		}
		return nil, err
	}

	if s.locker != nil {
		acquired, lockErr := s.locker.AcquireRentalLock(ctx, rental.ID, s.cfg.LockTTL)
		switch {
		case lockErr != nil:
			s.log.WithError(lockErr).Warn("session lock unavailable, relying on database guard")
		case !acquired:
			return nil, ErrPaymentInProgress
		default:
			defer func() {
				if err := s.locker.ReleaseRentalLock(context.WithoutCancel(ctx), rental.ID); err != nil {
					s.log.WithError(err).Warn("failed to release session lock")
				}
			}()
		}
	}

	now := s.now()
	payment = &domain.Payment{
		ID:         uuid.New().String(),
		RentalID:   rental.ID,
		Status:     domain.PaymentStatusPending,
		Kind:       quote.Kind,
		TotalPrice: decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Rentals().GetByIDForUpdate(ctx, rental.ID); err != nil {
			return rentalLookupError(err)
		}
		paid, err := tx.Payments().HasPaid(ctx, rental.ID)
		if err != nil {
			return fmt.Errorf("check paid: %w", err)
		}
		if paid {
			return ErrAlreadyPaid
		}
		if err := tx.Payments().Create(ctx, payment); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	session, err := s.openSession(ctx, payment, quote)
	if err != nil {
		s.log.WithError(err).WithField("payment_id", payment.ID).Warn("checkout session failed, payment left pending")
		return nil, err
	}

	payment.Kind = quote.Kind
	payment.TotalPrice = quote.Amount
	payment.SessionID = session.ID
	payment.SessionURL = session.URL
	payment.UpdatedAt = s.now()
	if err := s.store.Payments().AttachSession(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyPaid
		}
		return nil, fmt.Errorf("attach session: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"payment_id": payment.ID,
		"rental_id":  rental.ID,
		"kind":       payment.Kind,
		"amount":     payment.TotalPrice.StringFixed(2),
	}).Info("checkout session created")

	return payment, nil
}

func (s *PaymentService) openSession(ctx context.Context, payment *domain.Payment, quote Quote) (CheckoutSession, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ProviderTimeout)
	defer cancel()

	start := time.Now()
	session, err := s.provider.CreateCheckoutSession(ctx, CheckoutRequest{
		Amount:      quote.Amount,
		SuccessURL:  s.callbackURL("success", payment.ID),
		CancelURL:   s.callbackURL("cancel", payment.ID),
		Description: describeQuote(payment.RentalID, quote),
	})
	metrics.ObserveProvider(metrics.Result(err), time.Since(start))
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("%w: %w", ErrPaymentProvider, err)
	}
	return session, nil
}

func (s *PaymentService) callbackURL(outcome, paymentID string) string {
	return fmt.Sprintf("%s/v1/payments/%s/%s", s.cfg.PublicURL, outcome, paymentID)
}

func describeQuote(rentalID string, q Quote) string {
	if q.Late {
		return fmt.Sprintf("Late return fine for rental %s: %d day(s) at x%d", rentalID, q.Days, FineMultiplier)
	}
	return fmt.Sprintf("Payment for rental %s: %d day(s)", rentalID, q.Days)
}

// Confirm marks a payment PAID. Confirming an already PAID payment succeeds
// without side effects. A payment whose checkout session never opened
// cannot be confirmed.
func (s *PaymentService) Confirm(ctx context.Context, paymentID string) (err error) {
	defer func() { metrics.IncPaymentOp("confirm", metrics.Result(err)) }()

	if paymentID == "" {
		return ErrPaymentNotFound
	}

	var confirmed *domain.Payment
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		payment, err := tx.Payments().GetByIDForUpdate(ctx, paymentID)
		if err != nil {
			return paymentLookupError(err)
		}
		if payment.IsPaid() {
			return nil
		}
		if payment.SessionID == "" {
			return ErrPaymentNotStarted
		}

		paid, err := tx.Payments().HasPaid(ctx, payment.RentalID)
		if err != nil {
			return fmt.Errorf("check paid: %w", err)
		}
		if paid {
			return ErrAlreadyPaid
		}

		payment.Status = domain.PaymentStatusPaid
		payment.UpdatedAt = s.now()
		if err := tx.Payments().Update(ctx, payment); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrAlreadyPaid
			}
			return fmt.Errorf("update payment: %w", err)
		}
		confirmed = payment
		return nil
	})
	if err != nil {
		return err
	}
	if confirmed == nil {
		s.log.WithField("payment_id", paymentID).Debug("payment already confirmed")
		return nil
	}

	s.log.WithFields(logrus.Fields{
		"payment_id": confirmed.ID,
		"rental_id":  confirmed.RentalID,
	}).Info("payment confirmed")

	if s.notifications != nil {
		if err := s.notifications.NotifyPaymentConfirmed(ctx, confirmed.RentalID); err != nil {
			s.log.WithError(err).WithField("payment_id", confirmed.ID).Error("payment confirmed notification failed")
			metrics.IncNotificationFailure(string(NotificationPaymentConfirmed))
		}
	}
	return nil
}

// Cancel handles the provider's cancel redirect. The payment stays PENDING
// and can still be completed while its session is alive.
func (s *PaymentService) Cancel(ctx context.Context, paymentID string) (*domain.Payment, error) {
	if paymentID == "" {
		return nil, ErrPaymentNotFound
	}
	payment, err := s.store.Payments().GetByID(ctx, paymentID)
	if err != nil {
		return nil, paymentLookupError(err)
	}
	metrics.IncPaymentOp("cancel", metrics.ResultSuccess)
	return payment, nil
}

// ListByOwner returns the payments of a user's rentals.
func (s *PaymentService) ListByOwner(ctx context.Context, ownerID string, requester domain.Requester) ([]*domain.Payment, error) {
	if ownerID == "" {
		ownerID = requester.ID
	}
	if !CanAccess(requester, ownerID) {
		return nil, ErrUnauthorized
	}
	return s.store.Payments().ListByOwner(ctx, ownerID)
}

func paymentLookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPaymentNotFound
	}
	return fmt.Errorf("load payment: %w", err)
}
