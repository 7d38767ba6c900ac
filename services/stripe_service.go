package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/yeremiapane/restaurant-site/utils"
)

// StripeConfig holds the checkout settings. BaseURL overrides the API host
// (tests point it at an httptest server).
type StripeConfig struct {
	SecretKey string
	BaseURL   string
	Currency  string
}

// StripeService creates hosted checkout sessions with stripe-go.
type StripeService struct {
	config  *StripeConfig
	backend stripe.Backend
}

func NewStripeService(config *StripeConfig) *StripeService {
	backendConfig := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: 30 * time.Second},
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     utils.ErrorLogger,
	}
	if config.BaseURL != "" {
		backendConfig.URL = stripe.String(config.BaseURL)
	}
	return &StripeService{
		config:  config,
		backend: stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig),
	}
}

func (s *StripeService) ValidateConfig() error {
	if s.config.SecretKey == "" {
		return fmt.Errorf("STRIPE_SECRET_KEY is not set")
	}
	if s.config.Currency == "" {
		return fmt.Errorf("CURRENCY is not set")
	}
	return nil
}

func (s *StripeService) Currency() string {
	return s.config.Currency
}

type CheckoutLineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

type CheckoutRequest struct {
	OrderID       string
	CustomerEmail string
	Items         []CheckoutLineItem
	SuccessURL    string
	CancelURL     string
}

type CheckoutSession struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	AmountTotal int64  `json:"amount_total"`
	Currency    string `json:"currency"`
}

func (s *StripeService) sessionParams(ctx context.Context, req CheckoutRequest) *stripe.CheckoutSessionParams {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
		ClientReferenceID:  stripe.String(req.OrderID),
		Metadata:           map[string]string{"order_id": req.OrderID},
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	for _, item := range req.Items {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(s.config.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
				UnitAmount: stripe.Int64(item.UnitAmount),
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}
	params.Context = ctx
	params.SetIdempotencyKey(uuid.NewString())
	return params
}

// CreateCheckoutSession creates one session with a line item per order item.
func (s *StripeService) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if err := s.ValidateConfig(); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("checkout needs at least one line item")
	}

	client := session.Client{B: s.backend, Key: s.config.SecretKey}
	created, err := client.New(s.sessionParams(ctx, req))
	if err != nil {
		var apiErr *stripe.Error
		if errors.As(err, &apiErr) && apiErr.Msg != "" {
			return nil, fmt.Errorf("Stripe API error: %s", apiErr.Msg)
		}
		return nil, fmt.Errorf("Stripe API error: %w", err)
	}
	if created.URL == "" {
		return nil, fmt.Errorf("Stripe API returned no checkout url")
	}
	return &CheckoutSession{
		ID:          created.ID,
		URL:         created.URL,
		AmountTotal: created.AmountTotal,
		Currency:    string(created.Currency),
	}, nil
}
