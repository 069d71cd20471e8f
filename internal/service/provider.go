package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CheckoutRequest describes a hosted checkout session to open.
type CheckoutRequest struct {
	Amount      decimal.Decimal
	SuccessURL  string
	CancelURL   string
	Description string
}

// CheckoutSession is the provider's handle on an opened session.
type CheckoutSession struct {
	ID  string
	URL string
}

// PaymentProvider opens hosted checkout sessions with an external provider.
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
}

// MockProvider is a PaymentProvider for local development. Always succeeds.
type MockProvider struct {
	baseURL string
}

// NewMockProvider creates a new mock provider whose session URLs start with baseURL.
func NewMockProvider(baseURL string) *MockProvider {
	return &MockProvider{baseURL: baseURL}
}

// CreateCheckoutSession returns a fake session that points at the success URL.
func (p *MockProvider) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error) {
	if err := ctx.Err(); err != nil {
		return CheckoutSession{}, err
	}
	id := "mock_" + uuid.NewString()
	return CheckoutSession{
		ID:  id,
		URL: fmt.Sprintf("%s/checkout/%s?next=%s", p.baseURL, id, req.SuccessURL),
	}, nil
}
