package service

import (
	"context"
	"fmt"

	"payment-core/config"
	"payment-core/internal/core/domain"
	"payment-core/internal/core/ports"
	"payment-core/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CheckoutServiceImpl implements ports.CheckoutService. It validates caller
// input, routes to a provider by amount, and delegates session creation to
// the selected adapter. The order service persists the order/gateway mapping;
// this service never writes.
type CheckoutServiceImpl struct {
	factory ports.ProviderFactory
	cfg     config.GatewaysConfig
	log     zerolog.Logger
}

// NewCheckoutService creates a new CheckoutServiceImpl.
func NewCheckoutService(factory ports.ProviderFactory, cfg config.GatewaysConfig, log zerolog.Logger) *CheckoutServiceImpl {
	return &CheckoutServiceImpl{
		factory: factory,
		cfg:     cfg,
		log:     log,
	}
}

// CreateCheckout validates the input and creates a hosted payment session.
// Validation failures are rejected before any network call.
func (s *CheckoutServiceImpl) CreateCheckout(ctx context.Context, in ports.CheckoutInput) (*domain.CheckoutSession, error) {
	if in.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if in.Description == "" {
		return nil, apperror.Validation("Description is required")
	}
	currency := in.Currency
	if currency == "" {
		currency = "IQD"
	}
	if currency != "IQD" {
		return nil, apperror.Validation(fmt.Sprintf("Unsupported currency %q: only IQD is accepted", currency))
	}

	referenceID := in.ReferenceID
	if referenceID == "" {
		referenceID = uuid.New().String()
	}

	adapter := s.factory.ByAmount(in.Amount)

	session, err := adapter.CreateCheckoutSession(ctx, domain.CheckoutRequest{
		ReferenceID:    referenceID,
		Amount:         in.Amount,
		Currency:       currency,
		Description:    in.Description,
		WebhookURL:     fmt.Sprintf("%s?provider=%s", s.cfg.WebhookBaseURL, adapter.Name()),
		WebhookSecret:  s.webhookSecretFor(adapter.Name()),
		RedirectionURL: s.cfg.RedirectionURL,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("provider", adapter.Name()).
		Str("reference_id", referenceID).
		Int64("amount", in.Amount).
		Str("currency", currency).
		Msg("checkout session created")

	return session, nil
}

func (s *CheckoutServiceImpl) webhookSecretFor(name string) string {
	switch name {
	case domain.ProviderZainDirect:
		return s.cfg.ZainDirect.WebhookSecret
	default:
		return s.cfg.Wayl.WebhookSecret
	}
}
