package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"carshare/internal/domain"
	"carshare/internal/service"
)

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreatePaymentRequest is the HTTP request body for opening a checkout session.
type CreatePaymentRequest struct {
	RentalID string `json:"rental_id"`
}

// PaymentResponse is the HTTP response for payment operations.
type PaymentResponse struct {
	ID         string `json:"id"`
	RentalID   string `json:"rental_id"`
	Status     string `json:"status"`
	Type       string `json:"type"`
	SessionURL string `json:"session_url"`
	SessionID  string `json:"session_id"`
	TotalPrice string `json:"total_price"`
}

// RedirectResponse is returned to the browser after the provider redirects back.
type RedirectResponse struct {
	Message string          `json:"message"`
	Payment PaymentResponse `json:"payment"`
}

func toPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:         p.ID,
		RentalID:   p.RentalID,
		Status:     string(p.Status),
		Type:       string(p.Kind),
		SessionURL: p.SessionURL,
		SessionID:  p.SessionID,
		TotalPrice: p.TotalPrice.StringFixed(2),
	}
}

// Create handles POST /v1/payments
func (h *PaymentHandler) Create(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.RentalID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "rental_id is required"})
		return
	}

	payment, err := h.paymentService.CreateSession(c.Request.Context(), req.RentalID, requester(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toPaymentResponse(payment))
}

// List handles GET /v1/payments?user_id=
func (h *PaymentHandler) List(c *gin.Context) {
	payments, err := h.paymentService.ListByOwner(c.Request.Context(), c.Query("user_id"), requester(c))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		resp = append(resp, toPaymentResponse(p))
	}
	respondJSON(c, http.StatusOK, resp)
}

// Success handles GET /v1/payments/success/:id
func (h *PaymentHandler) Success(c *gin.Context) {
	paymentID := c.Param("id")

	if err := h.paymentService.Confirm(c.Request.Context(), paymentID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Payment with id %s was successfully paid", paymentID)})
}

// Cancel handles GET /v1/payments/cancel/:id
func (h *PaymentHandler) Cancel(c *gin.Context) {
	payment, err := h.paymentService.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, RedirectResponse{
		Message: fmt.Sprintf("Payment with id %s was canceled, but you can finish it for 24 hours.", payment.ID),
		Payment: toPaymentResponse(payment),
	})
}
