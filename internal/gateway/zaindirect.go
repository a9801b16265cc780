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
	// ZainDirectName identifies the direct-debit provider reserved for
	// large-amount transactions.
	ZainDirectName = domain.ProviderZainDirect

	zainSignatureHeader = "x-zain-signature"
	zainDefaultBaseURL  = "https://pay.zaincash.iq"
)

// ZainDirectAdapter implements ports.GatewayAdapter for Zain's direct-debit
// flow. The debit order still yields a hosted confirmation page, so the
// adapter satisfies the same contract as the card-style providers.
type ZainDirectAdapter struct {
	cfg        config.GatewayConfig
	baseURL    string
	sigSvc     ports.SignatureService
	httpClient HTTPClient
	log        zerolog.Logger
}

// NewZainDirectAdapter creates a Zain Direct adapter from immutable gateway config.
func NewZainDirectAdapter(cfg config.GatewayConfig, sigSvc ports.SignatureService, httpClient HTTPClient, log zerolog.Logger) *ZainDirectAdapter {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = zainDefaultBaseURL
	}
	return &ZainDirectAdapter{
		cfg:        cfg,
		baseURL:    baseURL,
		sigSvc:     sigSvc,
		httpClient: httpClient,
		log:        log,
	}
}

// Name returns the provider identifier.
func (a *ZainDirectAdapter) Name() string { return ZainDirectName }

// SignatureHeader returns the header carrying Zain's webhook signature.
func (a *ZainDirectAdapter) SignatureHeader() string { return zainSignatureHeader }

type zainCreateRequest struct {
	Reference   string `json:"reference"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
	CallbackURL string `json:"callbackUrl"`
	RedirectURL string `json:"redirectUrl"`
}

type zainCreateResponse struct {
	ConfirmationURL string `json:"confirmationUrl"`
}

type zainErrorResponse struct {
	Error string `json:"error"`
}

type zainWebhookPayload struct {
	TransactionID string `json:"transactionId"`
	Reference     string `json:"reference"`
	State         string `json:"state"`
}

// CreateCheckoutSession creates a debit order and returns the hosted
// confirmation URL.
func (a *ZainDirectAdapter) CreateCheckoutSession(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	wireReq := zainCreateRequest{
		Reference:   req.ReferenceID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
		CallbackURL: req.WebhookURL,
		RedirectURL: req.RedirectionURL,
	}
	body, err := json.Marshal(wireReq)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("marshal zain request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/debit-orders", bytes.NewReader(body))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("build zain request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		a.logCreationFailure(req, err, 0)
		return nil, apperror.ErrPaymentCreation("", fmt.Errorf("zain debit-order request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		a.logCreationFailure(req, err, resp.StatusCode)
		return nil, apperror.ErrPaymentCreation("", fmt.Errorf("read zain response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		providerMsg := ""
		var errResp zainErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil {
			providerMsg = errResp.Error
		}
		err := fmt.Errorf("zain returned status %d", resp.StatusCode)
		a.logCreationFailure(req, err, resp.StatusCode)
		return nil, apperror.ErrPaymentCreation(providerMsg, err)
	}

	var created zainCreateResponse
	if err := json.Unmarshal(respBody, &created); err != nil {
		a.logCreationFailure(req, err, resp.StatusCode)
		return nil, apperror.ErrPaymentCreation("", fmt.Errorf("decode zain response: %w", err))
	}
	if created.ConfirmationURL == "" {
		err := fmt.Errorf("zain response missing confirmation url")
		a.logCreationFailure(req, err, resp.StatusCode)
		return nil, apperror.ErrPaymentCreation("", err)
	}

	return &domain.CheckoutSession{URL: created.ConfirmationURL}, nil
}

// VerifyWebhook authenticates the raw payload and maps the provider state to
// a normalized event.
func (a *ZainDirectAdapter) VerifyWebhook(rawPayload []byte, signature string) (*domain.PaymentEvent, error) {
	if a.cfg.WebhookSecret == "" {
		return nil, apperror.ErrWebhookSecretMissing(ZainDirectName)
	}
	if signature == "" {
		return nil, apperror.ErrMissingSignature()
	}
	if !a.sigSvc.Verify(a.cfg.WebhookSecret, string(rawPayload), signature) {
		return nil, apperror.ErrInvalidSignature()
	}

	var payload zainWebhookPayload
	if err := json.Unmarshal(rawPayload, &payload); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("parse zain webhook payload: %w", err))
	}

	return &domain.PaymentEvent{
		ID:   payload.TransactionID,
		Type: mapZainState(payload.State),
	}, nil
}

// mapZainState is total: every provider state yields a valid event type.
func mapZainState(state string) domain.EventType {
	switch state {
	case "SUCCESS":
		return domain.EventPaymentSuccess
	case "PENDING":
		return domain.EventPaymentPending
	case "FAILED", "REJECTED":
		return domain.EventPaymentFailed
	default:
		return domain.EventPaymentUnhandled
	}
}

func (a *ZainDirectAdapter) logCreationFailure(req domain.CheckoutRequest, err error, status int) {
	event := a.log.Error().
		Err(err).
		Str("provider", ZainDirectName).
		Str("reference_id", req.ReferenceID).
		Int64("amount", req.Amount).
		Str("currency", req.Currency).
		Str("description", req.Description)
	if status != 0 {
		event = event.Int("http_status", status)
	}
	event.Msg("checkout session creation failed")
}
