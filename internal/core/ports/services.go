package ports

import (
	"context"
	"time"

	"payment-core/internal/core/domain"
)

// GatewayAdapter is the uniform contract every payment provider implements.
type GatewayAdapter interface {
	// Name returns the provider identifier used for routing (e.g. "wayl").
	Name() string
	// SignatureHeader returns the HTTP header carrying the webhook signature.
	SignatureHeader() string
	// CreateCheckoutSession issues the provider's session-creation call and
	// returns the hosted payment URL.
	CreateCheckoutSession(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error)
	// VerifyWebhook authenticates a raw webhook payload against signature and
	// parses it into a normalized event. rawPayload must be the exact bytes
	// received on the wire; signature is passed through even when empty so the
	// adapter produces the correct missing-signature error.
	VerifyWebhook(rawPayload []byte, signature string) (*domain.PaymentEvent, error)
}

// ProviderFactory selects a gateway adapter by business rule or by name.
type ProviderFactory interface {
	// ByAmount routes by transaction amount: strictly above the large-amount
	// threshold goes to the direct-debit provider, everything else to the
	// default provider.
	ByAmount(amount int64) GatewayAdapter
	// ByName resolves by exact, case-sensitive adapter name; unknown names
	// fall back to the default provider.
	ByName(name string) GatewayAdapter
}

// SignatureService handles HMAC-SHA256 signing and verification.
type SignatureService interface {
	Sign(secretKey string, payload string) string
	Verify(secretKey string, payload string, signature string) bool
}

// EventDedupeCache is the Redis fast-path guard against duplicate webhook
// delivery. The conditional order update remains the authoritative guard.
type EventDedupeCache interface {
	// FirstSeen atomically records the event id and reports whether this is
	// the first delivery.
	FirstSeen(ctx context.Context, provider string, eventID string, ttl time.Duration) (bool, error)
	// Forget removes a recorded event id. Callers that fail after FirstSeen
	// must clear the entry so the gateway's retry is not mistaken for a
	// duplicate.
	Forget(ctx context.Context, provider string, eventID string) error
}

// CheckoutInput holds validated caller input for checkout creation.
type CheckoutInput struct {
	ReferenceID string // optional; generated when empty
	Amount      int64
	Currency    string
	Description string
}

// CheckoutService defines checkout-session creation business logic.
type CheckoutService interface {
	CreateCheckout(ctx context.Context, in CheckoutInput) (*domain.CheckoutSession, error)
}

// WebhookService converts a verified gateway callback into an order transition.
type WebhookService interface {
	HandleWebhook(ctx context.Context, providerName string, rawBody []byte, signature string) error
}
