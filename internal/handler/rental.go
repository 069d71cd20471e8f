package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"carshare/internal/domain"
	"carshare/internal/service"
)

// RentalHandler handles HTTP requests for rentals.
type RentalHandler struct {
	rentalService *service.RentalService
}

// NewRentalHandler creates a new RentalHandler.
func NewRentalHandler(rentalService *service.RentalService) *RentalHandler {
	return &RentalHandler{rentalService: rentalService}
}

// OpenRentalRequest is the HTTP request body for opening a rental.
type OpenRentalRequest struct {
	VehicleID    string `json:"vehicle_id"`
	DurationDays int    `json:"duration_days"`
}

// RentalResponse is the HTTP response for rental operations.
type RentalResponse struct {
	ID               string  `json:"id"`
	VehicleID        string  `json:"vehicle_id"`
	UserID           string  `json:"user_id"`
	Status           string  `json:"status"`
	RentalDate       string  `json:"rental_date"`
	ReturnDate       string  `json:"return_date"`
	ActualReturnDate *string `json:"actual_return_date"`
}

const dateLayout = "2006-01-02"

func toRentalResponse(r *domain.Rental) RentalResponse {
	resp := RentalResponse{
		ID:         r.ID,
		VehicleID:  r.VehicleID,
		UserID:     r.OwnerID,
		Status:     string(r.Status),
		RentalDate: r.OpenedOn.Format(dateLayout),
		ReturnDate: r.PlannedReturnOn.Format(dateLayout),
	}
	if on, ok := r.ReturnedOn(); ok {
		s := on.Format(dateLayout)
		resp.ActualReturnDate = &s
	}
	return resp
}

// Open handles POST /v1/rentals
func (h *RentalHandler) Open(c *gin.Context) {
	var req OpenRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.VehicleID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "vehicle_id is required"})
		return
	}

	rental, err := h.rentalService.Open(c.Request.Context(), service.OpenRentalRequest{
		VehicleID:    req.VehicleID,
		DurationDays: req.DurationDays,
	}, requester(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toRentalResponse(rental))
}

// List handles GET /v1/rentals?user_id=&is_active=
func (h *RentalHandler) List(c *gin.Context) {
	filter := service.RentalFilter{OwnerID: c.Query("user_id")}
	if raw, ok := c.GetQuery("is_active"); ok {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "is_active must be a boolean"})
			return
		}
		filter.Active = &active
	}

	rentals, err := h.rentalService.List(c.Request.Context(), filter, requester(c))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]RentalResponse, 0, len(rentals))
	for _, r := range rentals {
		resp = append(resp, toRentalResponse(r))
	}
	respondJSON(c, http.StatusOK, resp)
}

// Get handles GET /v1/rentals/:id
func (h *RentalHandler) Get(c *gin.Context) {
	rental, err := h.rentalService.Get(c.Request.Context(), c.Param("id"), requester(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toRentalResponse(rental))
}

// Return handles POST /v1/rentals/:id/return
func (h *RentalHandler) Return(c *gin.Context) {
	rental, err := h.rentalService.Close(c.Request.Context(), c.Param("id"), requester(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toRentalResponse(rental))
}
