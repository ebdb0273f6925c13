package postgres

import (
	"context"
	"fmt"

	"github.com/b2b-portal/opscenter/services/command-center/internal/domain"
)

// violationQuery counts rows breaking one rule. Scoped queries take the
// warehouse list as $1.
type violationQuery struct {
	sql    string
	scoped bool
}

var violationQueries = map[domain.DataQualityCode]violationQuery{
	domain.CheckProductMissingCost: {
		sql: `SELECT count(*) FROM products WHERE is_active AND (unit_cost IS NULL OR unit_cost <= 0)`,
	},
	domain.CheckCustomerMissingPaymentPlan: {
		sql: `SELECT count(*) FROM customers WHERE is_active AND COALESCE(payment_plan_code, '') = ''`,
	},
	domain.CheckNegativeStock: {
		sql:    `SELECT count(*) FROM product_stocks WHERE quantity < 0 AND warehouse_code = ANY($1::text[])`,
		scoped: true,
	},
	domain.CheckProductMissingCategory: {
		sql: `SELECT count(*) FROM products WHERE is_active AND category_id IS NULL`,
	},
	domain.CheckCustomerMissingCreditLimit: {
		sql: `SELECT count(*) FROM customers WHERE is_active AND (credit_limit IS NULL OR credit_limit <= 0)`,
	},
	domain.CheckOrderLineUnknownProduct: {
		sql: `SELECT count(*)
FROM pending_order_lines l
JOIN pending_orders o ON o.id = l.order_id
WHERE o.status = 'PENDING'
  AND NOT EXISTS (SELECT 1 FROM products p WHERE p.code = l.product_code)`,
	},
}

// DataQualitySource counts master data violations
type DataQualitySource struct {
	db *DB
}

// NewDataQualitySource creates a new DataQualitySource
func NewDataQualitySource(db *DB) *DataQualitySource {
	return &DataQualitySource{db: db}
}

// CountViolations runs the count query registered for code
func (s *DataQualitySource) CountViolations(ctx context.Context, code domain.DataQualityCode, scope domain.DataQualityScope) (int, error) {
	q, ok := violationQueries[code]
	if !ok {
		return 0, fmt.Errorf("no violation query for rule %s", code)
	}

	var args []any
	if q.scoped {
		warehouses := scope.Warehouses
		if warehouses == nil {
			warehouses = []string{}
		}
		args = append(args, warehouses)
	}

	return selectCount(ctx, s.db, "dq."+string(code), q.sql, args...)
}
