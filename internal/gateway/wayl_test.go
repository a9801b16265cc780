package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"payment-core/config"
	"payment-core/internal/core/domain"
	"payment-core/internal/service"
	"payment-core/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWaylAdapter(baseURL, webhookSecret string) *WaylAdapter {
	cfg := config.GatewayConfig{
		APIKey:        "test-api-key",
		WebhookSecret: webhookSecret,
		BaseURL:       baseURL,
	}
	return NewWaylAdapter(cfg, service.NewHMACSignatureService(), &http.Client{}, zerolog.Nop())
}

func checkoutRequest() domain.CheckoutRequest {
	return domain.CheckoutRequest{
		ReferenceID:    "ref-123",
		Amount:         1000,
		Currency:       "IQD",
		Description:    "Subscription: Premium for user@example.com",
		WebhookURL:     "https://shop.example.com/api/webhooks/payment?provider=wayl",
		WebhookSecret:  "cb-secret",
		RedirectionURL: "https://shop.example.com/orders/thanks",
	}
}

func TestWayl_CreateCheckoutSession_Success(t *testing.T) {
	var gotReq waylCreateRequest
	var gotAPIKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/payments", r.URL.Path)
		gotAPIKey = r.Header.Get(waylAPIKeyHeader)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"url":"https://pay.wayl.iq/s/abc123"}`))
	}))
	defer srv.Close()

	a := newWaylAdapter(srv.URL, "secret")
	session, err := a.CreateCheckoutSession(context.Background(), checkoutRequest())

	require.NoError(t, err)
	assert.Equal(t, "https://pay.wayl.iq/s/abc123", session.URL)
	assert.Equal(t, "test-api-key", gotAPIKey)
	assert.Equal(t, "ref-123", gotReq.ReferenceID)
	assert.Equal(t, int64(1000), gotReq.Total)
	assert.Equal(t, "IQD", gotReq.Currency)
	require.Len(t, gotReq.LineItem, 1)
	assert.Equal(t, int64(1000), gotReq.LineItem[0].Price, "line items must sum to the total")
	assert.Equal(t, 1, gotReq.LineItem[0].Quantity)
	assert.Equal(t, "cb-secret", gotReq.WebhookSecret)
}

func TestWayl_CreateCheckoutSession_ProviderRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"amount exceeds limit"}`))
	}))
	defer srv.Close()

	a := newWaylAdapter(srv.URL, "secret")
	_, err := a.CreateCheckoutSession(context.Background(), checkoutRequest())

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodePaymentCreation))
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Message, "amount exceeds limit", "provider message is preserved when available")
}

func TestWayl_CreateCheckoutSession_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused

	a := newWaylAdapter(srv.URL, "secret")
	_, err := a.CreateCheckoutSession(context.Background(), checkoutRequest())

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodePaymentCreation))
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Payment creation failed", appErr.Message, "no provider message on transport failure")
}

func TestWayl_CreateCheckoutSession_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	cfg := config.GatewayConfig{APIKey: "k", WebhookSecret: "s", BaseURL: srv.URL}
	a := NewWaylAdapter(cfg, service.NewHMACSignatureService(), &http.Client{Timeout: 20 * time.Millisecond}, zerolog.Nop())

	_, err := a.CreateCheckoutSession(context.Background(), checkoutRequest())
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodePaymentCreation), "timeout surfaces as payment creation failure")
}

func TestWayl_CreateCheckoutSession_MissingURLInResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	a := newWaylAdapter(srv.URL, "secret")
	_, err := a.CreateCheckoutSession(context.Background(), checkoutRequest())
	assert.True(t, apperror.HasCode(err, apperror.CodePaymentCreation))
}

func TestWayl_CreateCheckoutSession_NonPositiveAmount(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	a := newWaylAdapter(srv.URL, "secret")
	req := checkoutRequest()
	req.Amount = -5

	_, err := a.CreateCheckoutSession(context.Background(), req)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidAmount))
	assert.False(t, called, "rejected before any network call")
}

func TestWayl_VerifyWebhook_RoundTrip(t *testing.T) {
	secret := "webhook-secret"
	a := newWaylAdapter("", secret)
	payload := []byte(`{"id":"test-id","referenceId":"ref-123","status":"Complete"}`)
	sig := service.NewHMACSignatureService().Sign(secret, string(payload))

	event, err := a.VerifyWebhook(payload, sig)

	require.NoError(t, err)
	assert.Equal(t, "test-id", event.ID)
	assert.Equal(t, domain.EventPaymentSuccess, event.Type)
}

func TestWayl_VerifyWebhook_SignedOverRawBytes(t *testing.T) {
	// Key order and whitespace differ from what a parse-then-stringify pass
	// would produce; verification must still succeed over the exact bytes.
	secret := "webhook-secret"
	a := newWaylAdapter("", secret)
	payload := []byte("{\n  \"status\": \"Complete\",  \"id\": \"oddly-formatted\" }")
	sig := service.NewHMACSignatureService().Sign(secret, string(payload))

	event, err := a.VerifyWebhook(payload, sig)
	require.NoError(t, err)
	assert.Equal(t, "oddly-formatted", event.ID)
}

func TestWayl_VerifyWebhook_MissingSignature(t *testing.T) {
	a := newWaylAdapter("", "webhook-secret")

	_, err := a.VerifyWebhook([]byte(`{"id":"x","status":"Complete"}`), "")
	assert.True(t, apperror.HasCode(err, apperror.CodeMissingSignature))
}

func TestWayl_VerifyWebhook_InvalidSignature(t *testing.T) {
	a := newWaylAdapter("", "webhook-secret")

	_, err := a.VerifyWebhook([]byte(`{"id":"x","status":"Complete"}`), "not-the-real-signature")
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidSignature))
}

func TestWayl_VerifyWebhook_SecretNotConfigured(t *testing.T) {
	a := newWaylAdapter("", "")
	payload := []byte(`{"id":"x","status":"Complete"}`)
	// Signature valid under some other secret; the configuration check wins.
	sig := service.NewHMACSignatureService().Sign("another-secret", string(payload))

	_, err := a.VerifyWebhook(payload, sig)
	assert.True(t, apperror.HasCode(err, apperror.CodeWebhookSecretMissing))

	_, err = a.VerifyWebhook(payload, "")
	assert.True(t, apperror.HasCode(err, apperror.CodeWebhookSecretMissing),
		"configuration error is reported regardless of signature presence")
}

func TestWayl_VerifyWebhook_MalformedPayloadAfterValidSignature(t *testing.T) {
	secret := "webhook-secret"
	a := newWaylAdapter("", secret)
	payload := []byte(`not-json`)
	sig := service.NewHMACSignatureService().Sign(secret, string(payload))

	_, err := a.VerifyWebhook(payload, sig)
	assert.True(t, apperror.HasCode(err, apperror.CodeDatabaseError))
}

func TestMapWaylStatus_IsTotal(t *testing.T) {
	tests := []struct {
		status string
		want   domain.EventType
	}{
		{"Complete", domain.EventPaymentSuccess},
		{"Pending", domain.EventPaymentPending},
		{"Failed", domain.EventPaymentFailed},
		{"Cancelled", domain.EventPaymentFailed},
		{"SomethingNew", domain.EventPaymentUnhandled},
		{"", domain.EventPaymentUnhandled},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.want, mapWaylStatus(tt.status))
		})
	}
}
