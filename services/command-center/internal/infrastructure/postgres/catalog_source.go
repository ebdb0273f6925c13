package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/b2b-portal/opscenter/services/command-center/internal/domain"
)

const substitutionPoolSQL = `
WITH src AS (
	SELECT category_id, product_family FROM products WHERE code = ANY($1::text[])
)
SELECT p.code, p.name, COALESCE(p.category_id::text, ''), COALESCE(p.product_family, ''),
       COALESCE(p.unit_price, 0), p.is_active
FROM products p
WHERE p.code = ANY($1::text[])
   OR p.product_family IN (SELECT product_family FROM src WHERE COALESCE(product_family, '') <> '')
   OR p.category_id IN (SELECT category_id FROM src WHERE category_id IS NOT NULL)
ORDER BY p.code`

// CatalogSource reads the product catalog
type CatalogSource struct {
	db *DB
}

// NewCatalogSource creates a new CatalogSource
func NewCatalogSource(db *DB) *CatalogSource {
	return &CatalogSource{db: db}
}

// ListSubstitutionPool returns the source products and their category or family peers
func (s *CatalogSource) ListSubstitutionPool(ctx context.Context, sourceCodes []string) ([]domain.CatalogProduct, error) {
	return selectRows(ctx, s.db, "products", substitutionPoolSQL, func(rows pgx.Rows) (domain.CatalogProduct, error) {
		var p domain.CatalogProduct
		err := rows.Scan(&p.ProductCode, &p.ProductName, &p.CategoryID, &p.ProductFamily, &p.UnitPrice, &p.Active)
		return p, err
	}, sourceCodes)
}
