package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"carshare/internal/domain"
	"carshare/internal/middleware"
	"carshare/internal/repository"
	"carshare/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
// Unexpected errors are recorded on the context and reported generically.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	_ = c.Error(err)
	if code == http.StatusInternalServerError {
		c.JSON(code, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrVehicleNotFound),
		errors.Is(err, service.ErrRentalNotFound),
		errors.Is(err, service.ErrPaymentNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidDuration),
		errors.Is(err, service.ErrInvalidVehicle):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrOutOfStock),
		errors.Is(err, service.ErrRentalAlreadyClosed),
		errors.Is(err, service.ErrAlreadyPaid),
		errors.Is(err, service.ErrPaymentInProgress),
		errors.Is(err, repository.ErrConflict):
		return http.StatusConflict

	// Ownership and role errors
	case errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, service.ErrNotOwner):
		return http.StatusForbidden

	// Rental must be returned first
	case errors.Is(err, service.ErrNotReturned),
		errors.Is(err, service.ErrPaymentNotStarted),
		errors.Is(err, service.ErrRentalStillOpen):
		return http.StatusPreconditionFailed

	// Payment provider failed or timed out
	case errors.Is(err, service.ErrPaymentProvider):
		return http.StatusBadGateway

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}

// requester returns the authenticated caller. Routes are registered behind
// middleware.Auth, so a missing identity is an anonymous one.
func requester(c *gin.Context) domain.Requester {
	req, _ := middleware.RequesterFrom(c)
	return req
}
