package domain

// Provider identifiers used for routing and webhook resolution.
const (
	ProviderWayl       = "wayl"
	ProviderZainDirect = "zain-direct"
)

// CheckoutRequest is the input to create a hosted payment session.
type CheckoutRequest struct {
	ReferenceID    string // unique per logical transaction; generated when absent
	Amount         int64  // must be positive
	Currency       string // fixed to IQD in this platform
	Description    string
	WebhookURL     string
	WebhookSecret  string
	RedirectionURL string
}

// CheckoutSession is the result of session creation. Ephemeral: the caller
// persists the order/gateway-reference mapping, not this.
type CheckoutSession struct {
	URL string `json:"url"`
}

// EventType is the normalized webhook event classification.
type EventType string

const (
	EventPaymentSuccess   EventType = "payment.success"
	EventPaymentPending   EventType = "payment.pending"
	EventPaymentFailed    EventType = "payment.failed"
	EventPaymentUnhandled EventType = "payment.unhandled"
)

// PaymentEvent is the normalized result of verifying a gateway webhook.
type PaymentEvent struct {
	ID   string    // gateway's transaction/reference identifier
	Type EventType
}
