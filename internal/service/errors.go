package service

import (
	"errors"

	"carshare/internal/domain"
)

var (
	// ErrVehicleNotFound is returned when the vehicle does not exist or is retired.
	ErrVehicleNotFound = errors.New("vehicle not found")

	// ErrOutOfStock is returned when the vehicle has no available units.
	ErrOutOfStock = errors.New("vehicle has no available units")

	// ErrInvalidDuration is returned when a rental is opened for less than one day.
	ErrInvalidDuration = errors.New("rental duration must be at least one day")

	// ErrInvalidVehicle is returned when vehicle fields fail validation.
	ErrInvalidVehicle = errors.New("invalid vehicle")

	// ErrRentalNotFound is returned when the rental does not exist.
	ErrRentalNotFound = errors.New("rental not found")

	// ErrRentalAlreadyClosed is returned when closing a rental twice.
	ErrRentalAlreadyClosed = domain.ErrRentalAlreadyClosed

	// ErrRentalStillOpen is returned when pricing a rental that has not been returned.
	ErrRentalStillOpen = errors.New("rental is still open")

	// ErrUnauthorized is returned when the requester is neither the owner nor a manager.
	ErrUnauthorized = errors.New("access denied")

	// ErrNotOwner is returned when a payment session is requested for someone else's rental.
	ErrNotOwner = errors.New("rental belongs to another user")

	// ErrNotReturned is returned when paying for a rental that is still open.
	ErrNotReturned = errors.New("rental has not been returned yet")

	// ErrAlreadyPaid is returned when the rental already has a PAID payment.
	ErrAlreadyPaid = errors.New("rental already paid")

	// ErrPaymentNotStarted is returned when confirming a payment whose checkout
	// session was never opened.
	ErrPaymentNotStarted = errors.New("payment has no checkout session")

	// ErrPaymentNotFound is returned when the payment does not exist.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrPaymentInProgress is returned when another session for the rental is being created.
	ErrPaymentInProgress = errors.New("payment session creation already in progress")

	// ErrPaymentProvider is returned when the payment provider fails or times out.
	ErrPaymentProvider = errors.New("payment provider error")
)
