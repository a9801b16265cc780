package ports

import (
	"context"

	"payment-core/internal/core/domain"

	"github.com/google/uuid"
)

// OrderRepository defines the order interactions the payment core depends on:
// fetch by gateway reference and transition to paid.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	// GetByGatewayLinkID returns nil, nil when no order matches.
	GetByGatewayLinkID(ctx context.Context, gatewayLinkID string) (*domain.Order, error)
	// MarkPaid transitions the matching order to paid with a single conditional
	// update guarded against every settled state (paid, shipped, delivered).
	// Returns true if a row was updated, false if the order was already settled
	// or does not exist.
	MarkPaid(ctx context.Context, gatewayLinkID string) (bool, error)
}
