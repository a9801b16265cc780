package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"payment-core/config"
	"payment-core/internal/core/domain"
	"payment-core/internal/core/ports"
	"payment-core/pkg/apperror"

	"github.com/rs/zerolog"
)

const (
	// WaylName identifies the default hosted-checkout provider.
	WaylName = domain.ProviderWayl

	waylSignatureHeader = "x-wayl-signature"
	waylDefaultBaseURL  = "https://api.wayl.iq"
	waylAPIKeyHeader    = "X-Wayl-Api-Key"
)

// HTTPClient abstracts the outbound HTTP client for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// WaylAdapter implements ports.GatewayAdapter for the Wayl hosted checkout.
// Stateless given its immutable config; safe for concurrent use.
type WaylAdapter struct {
	cfg        config.GatewayConfig
	baseURL    string
	sigSvc     ports.SignatureService
	httpClient HTTPClient
	log        zerolog.Logger
}

// NewWaylAdapter creates a Wayl adapter from immutable gateway config.
func NewWaylAdapter(cfg config.GatewayConfig, sigSvc ports.SignatureService, httpClient HTTPClient, log zerolog.Logger) *WaylAdapter {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = waylDefaultBaseURL
	}
	return &WaylAdapter{
		cfg:        cfg,
		baseURL:    baseURL,
		sigSvc:     sigSvc,
		httpClient: httpClient,
		log:        log,
	}
}

// Name returns the provider identifier.
func (a *WaylAdapter) Name() string { return WaylName }

// SignatureHeader returns the header carrying Wayl's webhook signature.
func (a *WaylAdapter) SignatureHeader() string { return waylSignatureHeader }

// waylLineItem is one entry in Wayl's line-items array. The platform sells a
// single logical item per checkout, so the array always sums to the total.
type waylLineItem struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

type waylCreateRequest struct {
	ReferenceID    string         `json:"referenceId"`
	Total          int64          `json:"total"`
	Currency       string         `json:"currency"`
	LineItem       []waylLineItem `json:"lineItem"`
	WebhookURL     string         `json:"webhookUrl"`
	WebhookSecret  string         `json:"webhookSecret"`
	RedirectionURL string         `json:"redirectionUrl"`
}

type waylCreateResponse struct {
	URL string `json:"url"`
}

type waylErrorResponse struct {
	Message string `json:"message"`
}

type waylWebhookPayload struct {
	ID          string `json:"id"`
	ReferenceID string `json:"referenceId"`
	Status      string `json:"status"`
}

// CreateCheckoutSession issues the authenticated session-creation call and
// returns the hosted payment URL.
func (a *WaylAdapter) CreateCheckoutSession(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	wireReq := waylCreateRequest{
		ReferenceID: req.ReferenceID,
		Total:       req.Amount,
		Currency:    req.Currency,
		LineItem: []waylLineItem{
			{Name: req.Description, Price: req.Amount, Quantity: 1},
		},
		WebhookURL:     req.WebhookURL,
		WebhookSecret:  req.WebhookSecret,
		RedirectionURL: req.RedirectionURL,
	}
	body, err := json.Marshal(wireReq)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("marshal wayl request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/v1/payments", bytes.NewReader(body))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("build wayl request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(waylAPIKeyHeader, a.cfg.APIKey)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		a.logCreationFailure(req, err, 0, "")
		return nil, apperror.ErrPaymentCreation("", fmt.Errorf("wayl session request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		a.logCreationFailure(req, err, resp.StatusCode, "")
		return nil, apperror.ErrPaymentCreation("", fmt.Errorf("read wayl response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		providerMsg := ""
		var errResp waylErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil {
			providerMsg = errResp.Message
		}
		err := fmt.Errorf("wayl returned status %d", resp.StatusCode)
		a.logCreationFailure(req, err, resp.StatusCode, providerMsg)
		return nil, apperror.ErrPaymentCreation(providerMsg, err)
	}

	var created waylCreateResponse
	if err := json.Unmarshal(respBody, &created); err != nil {
		a.logCreationFailure(req, err, resp.StatusCode, "")
		return nil, apperror.ErrPaymentCreation("", fmt.Errorf("decode wayl response: %w", err))
	}
	if created.URL == "" {
		err := fmt.Errorf("wayl response missing payment url")
		a.logCreationFailure(req, err, resp.StatusCode, "")
		return nil, apperror.ErrPaymentCreation("", err)
	}

	return &domain.CheckoutSession{URL: created.URL}, nil
}

// VerifyWebhook authenticates the raw payload and maps the provider status to
// a normalized event. The signature is computed over the exact raw bytes.
func (a *WaylAdapter) VerifyWebhook(rawPayload []byte, signature string) (*domain.PaymentEvent, error) {
	if a.cfg.WebhookSecret == "" {
		return nil, apperror.ErrWebhookSecretMissing(WaylName)
	}
	if signature == "" {
		return nil, apperror.ErrMissingSignature()
	}
	if !a.sigSvc.Verify(a.cfg.WebhookSecret, string(rawPayload), signature) {
		return nil, apperror.ErrInvalidSignature()
	}

	var payload waylWebhookPayload
	if err := json.Unmarshal(rawPayload, &payload); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("parse wayl webhook payload: %w", err))
	}

	return &domain.PaymentEvent{
		ID:   payload.ID,
		Type: mapWaylStatus(payload.Status),
	}, nil
}

// mapWaylStatus is total: every provider status yields a valid event type.
func mapWaylStatus(status string) domain.EventType {
	switch status {
	case "Complete":
		return domain.EventPaymentSuccess
	case "Pending":
		return domain.EventPaymentPending
	case "Failed", "Cancelled":
		return domain.EventPaymentFailed
	default:
		return domain.EventPaymentUnhandled
	}
}

// logCreationFailure records enough context to correlate with provider-side
// logs. Credentials are never logged.
func (a *WaylAdapter) logCreationFailure(req domain.CheckoutRequest, err error, status int, providerMsg string) {
	event := a.log.Error().
		Err(err).
		Str("provider", WaylName).
		Str("reference_id", req.ReferenceID).
		Int64("amount", req.Amount).
		Str("currency", req.Currency).
		Str("description", req.Description)
	if status != 0 {
		event = event.Int("http_status", status)
	}
	if providerMsg != "" {
		event = event.Str("provider_message", providerMsg)
	}
	event.Msg("checkout session creation failed")
}
