// Package stripe opens hosted Stripe Checkout sessions for rental payments.
package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	stripeapi "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"

	"carshare/internal/service"
)

// DefaultSessionTTL matches how long a customer may finish a cancelled checkout.
const DefaultSessionTTL = 24 * time.Hour

// Config holds Stripe settings.
type Config struct {
	SecretKey string
	Currency  string
	// BackendURL overrides the API endpoint. Empty means api.stripe.com.
	BackendURL string
	SessionTTL time.Duration
}

// Provider implements service.PaymentProvider on Stripe Checkout.
type Provider struct {
	client     session.Client
	currency   string
	sessionTTL time.Duration
	now        func() time.Time
}

// NewProvider creates a Stripe-backed payment provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("stripe: secret key is required")
	}
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}

	backendCfg := &stripeapi.BackendConfig{}
	if cfg.BackendURL != "" {
		backendCfg.URL = stripeapi.String(strings.TrimRight(cfg.BackendURL, "/"))
	}

	return &Provider{
		client: session.Client{
			B:   stripeapi.GetBackendWithConfig(stripeapi.APIBackend, backendCfg),
			Key: cfg.SecretKey,
		},
		currency:   strings.ToLower(cfg.Currency),
		sessionTTL: cfg.SessionTTL,
		now:        time.Now,
	}, nil
}

// CreateCheckoutSession opens a one-line-item payment session for req.Amount.
func (p *Provider) CreateCheckoutSession(ctx context.Context, req service.CheckoutRequest) (service.CheckoutSession, error) {
	amount := req.Amount.Shift(2).Round(0).IntPart()
	if amount <= 0 {
		return service.CheckoutSession{}, fmt.Errorf("stripe: amount must be positive, got %s", req.Amount.String())
	}

	params := &stripeapi.CheckoutSessionParams{
		Mode:       stripeapi.String(string(stripeapi.CheckoutSessionModePayment)),
		SuccessURL: stripeapi.String(req.SuccessURL),
		CancelURL:  stripeapi.String(req.CancelURL),
		ExpiresAt:  stripeapi.Int64(p.now().Add(p.sessionTTL).Unix()),
		LineItems: []*stripeapi.CheckoutSessionLineItemParams{
			{
				Quantity: stripeapi.Int64(1),
				PriceData: &stripeapi.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripeapi.String(p.currency),
					UnitAmount: stripeapi.Int64(amount),
					ProductData: &stripeapi.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripeapi.String(req.Description),
					},
				},
			},
		},
	}
	params.Context = ctx

	if txn := newrelic.FromContext(ctx); txn != nil {
		segment := newrelic.ExternalSegment{
			StartTime: txn.StartSegmentNow(),
			URL:       "https://api.stripe.com/v1/checkout/sessions",
			Procedure: "POST",
			Library:   "stripe-go",
		}
		defer segment.End()
	}

	s, err := p.client.New(params)
	if err != nil {
		return service.CheckoutSession{}, fmt.Errorf("stripe: create checkout session: %w", err)
	}
	return service.CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

var _ service.PaymentProvider = (*Provider)(nil)
