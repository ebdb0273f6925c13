package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/b2b-portal/opscenter/services/command-center/internal/domain"
)

// Customers active since $1 (order or cart) plus the explicitly requested ids
const customerProfilesSQL = `
SELECT c.id::text, c.name, COALESCE(c.payment_plan_code, ''), COALESCE(c.credit_limit, 0),
       COALESCE(b.balance_rows, 0) > 0, COALESCE(b.total_balance, 0), COALESCE(b.past_due_balance, 0),
       COALESCE(d.delays, 0), COALESCE(h.avg_value, 0), COALESCE(h.recent_orders, 0)
FROM customers c
LEFT JOIN LATERAL (
	SELECT count(*) AS balance_rows, sum(total_balance) AS total_balance, sum(past_due_balance) AS past_due_balance
	FROM customer_balances WHERE customer_id = c.id
) b ON true
LEFT JOIN LATERAL (
	SELECT count(*) AS delays
	FROM customer_payment_delays
	WHERE customer_id = c.id AND delayed_at >= now() - interval '6 months'
) d ON true
LEFT JOIN LATERAL (
	SELECT avg(total_amount) AS avg_value,
	       count(*) FILTER (WHERE created_at >= $1) AS recent_orders
	FROM orders WHERE customer_id = c.id
) h ON true
WHERE c.is_active
  AND (
	c.id::text = ANY($2::text[])
	OR EXISTS (SELECT 1 FROM orders o WHERE o.customer_id = c.id AND o.created_at >= $1)
	OR EXISTS (SELECT 1 FROM carts ct WHERE ct.customer_id = c.id AND ct.updated_at >= $1)
  )
ORDER BY c.id`

// Latest cart per customer is the last row
const activeCartsSQL = `
SELECT ct.customer_id::text, COALESCE(sum(ci.quantity * ci.unit_price), 0), count(ci.id), ct.updated_at
FROM carts ct
LEFT JOIN cart_items ci ON ci.cart_id = ct.id
WHERE ct.updated_at >= $1
GROUP BY ct.id, ct.customer_id, ct.updated_at
ORDER BY ct.updated_at, ct.id`

// CustomerSource reads customer master, balance and order history
type CustomerSource struct {
	db *DB
}

// NewCustomerSource creates a new CustomerSource
func NewCustomerSource(db *DB) *CustomerSource {
	return &CustomerSource{db: db}
}

// ListCustomerProfiles returns profiles for recently active customers and the requested ids
func (s *CustomerSource) ListCustomerProfiles(ctx context.Context, filter domain.CustomerFilter) ([]domain.CustomerProfile, error) {
	ids := filter.CustomerIDs
	if ids == nil {
		ids = []string{}
	}

	return selectRows(ctx, s.db, "customers", customerProfilesSQL, func(rows pgx.Rows) (domain.CustomerProfile, error) {
		var p domain.CustomerProfile
		var delays, recent int64
		err := rows.Scan(
			&p.CustomerID, &p.CustomerName, &p.PaymentPlanCode, &p.CreditLimit,
			&p.HasBalanceHistory, &p.TotalBalance, &p.PastDueBalance,
			&delays, &p.AvgOrderValue, &recent,
		)
		p.PaymentDelays6M = int(delays)
		p.OrdersLast90Days = int(recent)
		return p, err
	}, filter.ActiveSince, ids)
}

// CartSource reads open portal carts
type CartSource struct {
	db *DB
}

// NewCartSource creates a new CartSource
func NewCartSource(db *DB) *CartSource {
	return &CartSource{db: db}
}

// ListActiveCarts returns carts updated since the given instant
func (s *CartSource) ListActiveCarts(ctx context.Context, since time.Time) ([]domain.Cart, error) {
	return selectRows(ctx, s.db, "carts", activeCartsSQL, func(rows pgx.Rows) (domain.Cart, error) {
		var c domain.Cart
		var items int64
		err := rows.Scan(&c.CustomerID, &c.Amount, &items, &c.UpdatedAt)
		c.ItemCount = int(items)
		return c, err
	}, since)
}
