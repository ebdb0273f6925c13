package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/b2b-portal/opscenter/services/command-center/internal/domain"
)

const stockSQL = `
SELECT product_code, warehouse_code, quantity - COALESCE(reserved_quantity, 0)
FROM product_stocks
WHERE warehouse_code = ANY($1::text[])
  AND product_code = ANY($2::text[])`

// InventorySource reads per-warehouse stock rows
type InventorySource struct {
	db *DB
}

// NewInventorySource creates a new InventorySource
func NewInventorySource(db *DB) *InventorySource {
	return &InventorySource{db: db}
}

// ListStock returns raw positions; negative rows are passed through and
// ignored by allocation
func (s *InventorySource) ListStock(ctx context.Context, warehouses []string, productCodes []string) ([]domain.StockPosition, error) {
	return selectRows(ctx, s.db, "product_stocks", stockSQL, func(rows pgx.Rows) (domain.StockPosition, error) {
		var p domain.StockPosition
		err := rows.Scan(&p.ProductCode, &p.WarehouseCode, &p.AvailableQty)
		return p, err
	}, warehouses, productCodes)
}
