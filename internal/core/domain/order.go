package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order correlates a platform order with a gateway-side transaction.
// The order record is owned by the order service; the payment core only
// looks it up by gateway reference and transitions it to paid.
type Order struct {
	ID            uuid.UUID   `json:"id"`
	ReferenceID   string      `json:"reference_id"`
	Amount        int64       `json:"amount"` // IQD has no minor unit
	Currency      string      `json:"currency"`
	Status        OrderStatus `json:"status"`
	GatewayName   string      `json:"gateway_name"`
	GatewayLinkID string      `json:"gateway_link_id"` // matches PaymentEvent.ID
	Description   string      `json:"description,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	PaidAt        *time.Time  `json:"paid_at,omitempty"`
}

// IsPaid returns true once the order has reached (or passed) the paid state.
func (o *Order) IsPaid() bool {
	return o.Status == OrderStatusPaid ||
		o.Status == OrderStatusShipped ||
		o.Status == OrderStatusDelivered
}
