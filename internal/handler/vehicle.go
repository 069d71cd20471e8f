package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"carshare/internal/domain"
	"carshare/internal/service"
)

// VehicleHandler handles HTTP requests for the fleet catalogue.
type VehicleHandler struct {
	vehicleService *service.VehicleService
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(vehicleService *service.VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicleService: vehicleService}
}

// VehicleRequest is the HTTP request body for creating or updating a vehicle.
type VehicleRequest struct {
	Brand    string          `json:"brand"`
	Model    string          `json:"model"`
	Category string          `json:"category"`
	Units    int             `json:"inventory"`
	DailyFee decimal.Decimal `json:"daily_fee"`
}

// VehicleResponse is the HTTP response for vehicle operations.
type VehicleResponse struct {
	ID             string    `json:"id"`
	Brand          string    `json:"brand"`
	Model          string    `json:"model"`
	Category       string    `json:"category"`
	AvailableUnits int       `json:"inventory"`
	DailyFee       string    `json:"daily_fee"`
	CreatedAt      time.Time `json:"created_at"`
}

func toVehicleResponse(v *domain.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:             v.ID,
		Brand:          v.Brand,
		Model:          v.Model,
		Category:       string(v.Category),
		AvailableUnits: v.AvailableUnits,
		DailyFee:       v.DailyFee.StringFixed(2),
		CreatedAt:      v.CreatedAt,
	}
}

func (r VehicleRequest) toService() service.VehicleRequest {
	return service.VehicleRequest{
		Brand:    r.Brand,
		Model:    r.Model,
		Category: r.Category,
		DailyFee: r.DailyFee,
		Units:    r.Units,
	}
}

// List handles GET /v1/vehicles
func (h *VehicleHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "0"))

	vehicles, err := h.vehicleService.List(c.Request.Context(), page, size)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]VehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		resp = append(resp, toVehicleResponse(v))
	}
	respondJSON(c, http.StatusOK, resp)
}

// Get handles GET /v1/vehicles/:id
func (h *VehicleHandler) Get(c *gin.Context) {
	v, err := h.vehicleService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toVehicleResponse(v))
}

// Create handles POST /v1/vehicles
func (h *VehicleHandler) Create(c *gin.Context) {
	var req VehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	v, err := h.vehicleService.Create(c.Request.Context(), req.toService(), requester(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, toVehicleResponse(v))
}

// Update handles PUT /v1/vehicles/:id
func (h *VehicleHandler) Update(c *gin.Context) {
	var req VehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	v, err := h.vehicleService.Update(c.Request.Context(), c.Param("id"), req.toService(), requester(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toVehicleResponse(v))
}

// Retire handles DELETE /v1/vehicles/:id
func (h *VehicleHandler) Retire(c *gin.Context) {
	if err := h.vehicleService.Retire(c.Request.Context(), c.Param("id"), requester(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
