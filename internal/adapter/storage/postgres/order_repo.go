package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"payment-core/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const orderColumns = `id, reference_id, amount, currency, status, gateway_name, gateway_link_id, description, created_at, paid_at`

// OrderRepo implements ports.OrderRepository.
type OrderRepo struct {
	pool Pool
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(pool Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

// Create inserts a new order into the database.
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	query := `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		o.ID, o.ReferenceID, o.Amount, o.Currency, string(o.Status),
		o.GatewayName, o.GatewayLinkID, o.Description, o.CreatedAt, o.PaidAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID fetches an order by its UUID.
func (r *OrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.scanOrder(r.pool.QueryRow(ctx, query, id), "get order by id")
}

// GetByGatewayLinkID fetches the order a gateway callback references.
// Returns (nil, nil) when no order matches.
func (r *OrderRepo) GetByGatewayLinkID(ctx context.Context, gatewayLinkID string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE gateway_link_id = $1`
	return r.scanOrder(r.pool.QueryRow(ctx, query, gatewayLinkID), "get order by gateway_link_id")
}

// MarkPaid transitions the matching order to paid unless it has already
// been settled. The status guard lives in the WHERE clause so concurrent
// webhook deliveries cannot both observe an unpaid order; exactly one UPDATE
// wins. The guard excludes every post-payment state, not just paid: a late
// duplicate delivery must not pull a shipped or delivered order back.
// Returns true when this call performed the transition.
func (r *OrderRepo) MarkPaid(ctx context.Context, gatewayLinkID string) (bool, error) {
	query := `UPDATE orders SET status = $1, paid_at = $2
		WHERE gateway_link_id = $3 AND status NOT IN ('paid', 'shipped', 'delivered')`

	tag, err := r.pool.Exec(ctx, query, string(domain.OrderStatusPaid), time.Now(), gatewayLinkID)
	if err != nil {
		return false, fmt.Errorf("mark order paid: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *OrderRepo) scanOrder(row pgx.Row, op string) (*domain.Order, error) {
	o := &domain.Order{}
	var status string
	err := row.Scan(
		&o.ID, &o.ReferenceID, &o.Amount, &o.Currency, &status,
		&o.GatewayName, &o.GatewayLinkID, &o.Description, &o.CreatedAt, &o.PaidAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	o.Status = domain.OrderStatus(status)
	return o, nil
}
