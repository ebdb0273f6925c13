package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/b2b-portal/opscenter/services/command-center/internal/domain"
)

// Oldest open orders first, limited before the join so the limit counts
// orders rather than lines
const openOrdersSQL = `
WITH open_orders AS (
	SELECT po.id, po.order_number, po.series, po.customer_id, po.order_date,
	       po.total_amount, po.is_approved
	FROM pending_orders po
	WHERE po.status = 'PENDING'
	  AND (cardinality($1::text[]) = 0 OR po.series = ANY($1::text[]))
	ORDER BY po.order_date, po.id
	LIMIT $2
)
SELECT o.id::text, o.order_number, o.series, o.customer_id::text, COALESCE(c.name, ''),
       o.order_date, COALESCE(o.total_amount, 0), o.is_approved,
       l.id::text, l.line_no, l.product_code, COALESCE(p.name, l.product_name, ''),
       l.quantity, COALESCE(l.delivered_quantity, 0)
FROM open_orders o
JOIN pending_order_lines l ON l.order_id = o.id
LEFT JOIN customers c ON c.id = o.customer_id
LEFT JOIN products p ON p.code = l.product_code
ORDER BY o.order_date, o.id, l.line_no`

// orderLineRow is one row of the open order join
type orderLineRow struct {
	OrderID      string
	OrderNumber  string
	Series       string
	CustomerID   string
	CustomerName string
	OrderDate    time.Time
	Amount       decimal.Decimal
	Approved     bool
	LineKey      string
	LineNo       int
	ProductCode  string
	ProductName  string
	RequestedQty decimal.Decimal
	ShippedQty   decimal.Decimal
}

// OrderSource reads open orders from the portal's pending order tables
type OrderSource struct {
	db *DB
}

// NewOrderSource creates a new OrderSource
func NewOrderSource(db *DB) *OrderSource {
	return &OrderSource{db: db}
}

// ListOpenOrders returns pending orders with their lines, oldest first
func (s *OrderSource) ListOpenOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.OpenOrder, error) {
	series := filter.Series
	if series == nil {
		series = []string{}
	}

	rows, err := selectRows(ctx, s.db, "pending_orders", openOrdersSQL, scanOrderLineRow, series, filter.Limit)
	if err != nil {
		return nil, err
	}
	return groupOrderRows(rows), nil
}

func scanOrderLineRow(rows pgx.Rows) (orderLineRow, error) {
	var r orderLineRow
	err := rows.Scan(
		&r.OrderID, &r.OrderNumber, &r.Series, &r.CustomerID, &r.CustomerName,
		&r.OrderDate, &r.Amount, &r.Approved,
		&r.LineKey, &r.LineNo, &r.ProductCode, &r.ProductName,
		&r.RequestedQty, &r.ShippedQty,
	)
	return r, err
}

// groupOrderRows folds joined rows into orders, keeping row order
func groupOrderRows(rows []orderLineRow) []domain.OpenOrder {
	orders := []domain.OpenOrder{}
	index := make(map[string]int)

	for _, r := range rows {
		i, ok := index[r.OrderID]
		if !ok {
			i = len(orders)
			index[r.OrderID] = i
			orders = append(orders, domain.OpenOrder{
				OrderID:      r.OrderID,
				OrderNumber:  r.OrderNumber,
				Series:       r.Series,
				CustomerID:   r.CustomerID,
				CustomerName: r.CustomerName,
				OrderDate:    r.OrderDate,
				Amount:       r.Amount,
				Approved:     r.Approved,
			})
		}
		orders[i].Lines = append(orders[i].Lines, domain.OpenOrderLine{
			LineKey:      r.LineKey,
			LineNo:       r.LineNo,
			ProductCode:  r.ProductCode,
			ProductName:  r.ProductName,
			RequestedQty: r.RequestedQty,
			ShippedQty:   r.ShippedQty,
		})
	}

	return orders
}
