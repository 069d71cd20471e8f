package service

import (
	"context"
	"fmt"
	"strings"

	"carshare/internal/domain"
	"carshare/internal/notify"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationRentalOpened     NotificationType = "RENTAL_OPENED"
	NotificationRentalsOverdue   NotificationType = "RENTALS_OVERDUE"
	NotificationPaymentConfirmed NotificationType = "PAYMENT_CONFIRMED"
)

// NotificationService renders operator messages and hands them to a channel.
type NotificationService struct {
	channel notify.Channel
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(channel notify.Channel) *NotificationService {
	return &NotificationService{channel: channel}
}

// NotifyRentalOpened announces a new rental.
func (s *NotificationService) NotifyRentalOpened(ctx context.Context, rental *domain.Rental, vehicle *domain.Vehicle) error {
	msg := fmt.Sprintf("New rental %s was created by user with id %s. Rented car is %s %s (%s), return planned on %s",
		rental.ID,
		rental.OwnerID,
		vehicle.Brand,
		vehicle.Model,
		vehicle.Category,
		rental.PlannedReturnOn.Format(dateLayout),
	)
	return s.send(ctx, NotificationRentalOpened, msg)
}

// NotifyPaymentConfirmed announces that a rental was paid.
func (s *NotificationService) NotifyPaymentConfirmed(ctx context.Context, rentalID string) error {
	return s.send(ctx, NotificationPaymentConfirmed, fmt.Sprintf("Rental with id %s was successfully paid", rentalID))
}

// NotifyOverdueRentals sends the daily overdue report.
func (s *NotificationService) NotifyOverdueRentals(ctx context.Context, rentals []*domain.Rental) error {
	if len(rentals) == 0 {
		return s.send(ctx, NotificationRentalsOverdue, "No rentals overdue today!")
	}

	var b strings.Builder
	b.WriteString("Rentals overdue:")
	for _, r := range rentals {
		fmt.Fprintf(&b, "\n- rental %s, user %s, vehicle %s, planned return %s",
			r.ID, r.OwnerID, r.VehicleID, r.PlannedReturnOn.Format(dateLayout))
	}
	return s.send(ctx, NotificationRentalsOverdue, b.String())
}

func (s *NotificationService) send(ctx context.Context, typ NotificationType, msg string) error {
	if err := s.channel.Send(ctx, msg); err != nil {
		return fmt.Errorf("send %s notification: %w", typ, err)
	}
	return nil
}

const dateLayout = "2006-01-02"
