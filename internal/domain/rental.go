package domain

import (
	"errors"
	"time"
)

// ErrRentalAlreadyClosed is returned when closing a rental that is already closed.
var ErrRentalAlreadyClosed = errors.New("rental already closed")

// RentalStatus represents the current state of a rental.
type RentalStatus string

const (
	RentalStatusOpen   RentalStatus = "OPEN"
	RentalStatusClosed RentalStatus = "CLOSED"
)

// Rental represents one customer's reservation of one vehicle.
type Rental struct {
	ID              string
	VehicleID       string
	OwnerID         string
	OpenedOn        time.Time
	PlannedReturnOn time.Time
	Status          RentalStatus
	ActualReturnOn  time.Time // Only meaningful when Status is CLOSED.
	CreatedAt       time.Time
}

// IsClosed reports whether the rental reached its terminal state.
func (r *Rental) IsClosed() bool {
	return r.Status == RentalStatusClosed
}

// ReturnedOn returns the actual return date and whether the rental is closed.
func (r *Rental) ReturnedOn() (time.Time, bool) {
	if !r.IsClosed() {
		return time.Time{}, false
	}
	return r.ActualReturnOn, true
}

// Close moves the rental to CLOSED. A closed rental never changes again.
func (r *Rental) Close(on time.Time) error {
	if r.IsClosed() {
		return ErrRentalAlreadyClosed
	}
	r.Status = RentalStatusClosed
	r.ActualReturnOn = Day(on)
	return nil
}

// IsOverdue reports whether an open rental passed its planned return date.
func (r *Rental) IsOverdue(today time.Time) bool {
	return !r.IsClosed() && r.PlannedReturnOn.Before(Day(today))
}

// Day truncates t to a calendar date in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}
