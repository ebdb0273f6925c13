package guarded

import (
	"context"
	"time"

	"github.com/b2b-portal/opscenter/services/command-center/internal/domain"
)

var (
	_ domain.OrderSource        = (*OrderSource)(nil)
	_ domain.InventorySource    = (*InventorySource)(nil)
	_ domain.CustomerSource     = (*CustomerSource)(nil)
	_ domain.CartSource         = (*CartSource)(nil)
	_ domain.CatalogSource      = (*CatalogSource)(nil)
	_ domain.CoOccurrenceSource = (*CoOccurrenceSource)(nil)
	_ domain.PickingSource      = (*PickingSource)(nil)
	_ domain.DataQualitySource  = (*DataQualitySource)(nil)
)

// OrderSource guards a domain.OrderSource
type OrderSource struct {
	next  domain.OrderSource
	guard *Guard
}

// NewOrderSource creates a new OrderSource
func NewOrderSource(next domain.OrderSource, guard *Guard) *OrderSource {
	return &OrderSource{next: next, guard: guard}
}

// ListOpenOrders reads open orders through the guard
func (s *OrderSource) ListOpenOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.OpenOrder, error) {
	return run(ctx, s.guard, func() ([]domain.OpenOrder, error) {
		return s.next.ListOpenOrders(ctx, filter)
	})
}

// InventorySource guards a domain.InventorySource
type InventorySource struct {
	next  domain.InventorySource
	guard *Guard
}

// NewInventorySource creates a new InventorySource
func NewInventorySource(next domain.InventorySource, guard *Guard) *InventorySource {
	return &InventorySource{next: next, guard: guard}
}

// ListStock reads stock positions through the guard
func (s *InventorySource) ListStock(ctx context.Context, warehouses []string, productCodes []string) ([]domain.StockPosition, error) {
	return run(ctx, s.guard, func() ([]domain.StockPosition, error) {
		return s.next.ListStock(ctx, warehouses, productCodes)
	})
}

// CustomerSource guards a domain.CustomerSource
type CustomerSource struct {
	next  domain.CustomerSource
	guard *Guard
}

// NewCustomerSource creates a new CustomerSource
func NewCustomerSource(next domain.CustomerSource, guard *Guard) *CustomerSource {
	return &CustomerSource{next: next, guard: guard}
}

// ListCustomerProfiles reads customer profiles through the guard
func (s *CustomerSource) ListCustomerProfiles(ctx context.Context, filter domain.CustomerFilter) ([]domain.CustomerProfile, error) {
	return run(ctx, s.guard, func() ([]domain.CustomerProfile, error) {
		return s.next.ListCustomerProfiles(ctx, filter)
	})
}

// CartSource guards a domain.CartSource
type CartSource struct {
	next  domain.CartSource
	guard *Guard
}

// NewCartSource creates a new CartSource
func NewCartSource(next domain.CartSource, guard *Guard) *CartSource {
	return &CartSource{next: next, guard: guard}
}

// ListActiveCarts reads carts updated since the given time through the guard
func (s *CartSource) ListActiveCarts(ctx context.Context, since time.Time) ([]domain.Cart, error) {
	return run(ctx, s.guard, func() ([]domain.Cart, error) {
		return s.next.ListActiveCarts(ctx, since)
	})
}

// CatalogSource guards a domain.CatalogSource
type CatalogSource struct {
	next  domain.CatalogSource
	guard *Guard
}

// NewCatalogSource creates a new CatalogSource
func NewCatalogSource(next domain.CatalogSource, guard *Guard) *CatalogSource {
	return &CatalogSource{next: next, guard: guard}
}

// ListSubstitutionPool reads the catalog pool through the guard
func (s *CatalogSource) ListSubstitutionPool(ctx context.Context, sourceCodes []string) ([]domain.CatalogProduct, error) {
	return run(ctx, s.guard, func() ([]domain.CatalogProduct, error) {
		return s.next.ListSubstitutionPool(ctx, sourceCodes)
	})
}

// CoOccurrenceSource guards a domain.CoOccurrenceSource
type CoOccurrenceSource struct {
	next  domain.CoOccurrenceSource
	guard *Guard
}

// NewCoOccurrenceSource creates a new CoOccurrenceSource
func NewCoOccurrenceSource(next domain.CoOccurrenceSource, guard *Guard) *CoOccurrenceSource {
	return &CoOccurrenceSource{next: next, guard: guard}
}

// CoOccurrences reads co-purchase counts through the guard
func (s *CoOccurrenceSource) CoOccurrences(ctx context.Context, sourceCodes []string) ([]domain.CoOccurrence, error) {
	return run(ctx, s.guard, func() ([]domain.CoOccurrence, error) {
		return s.next.CoOccurrences(ctx, sourceCodes)
	})
}

// PickingSource guards a domain.PickingSource
type PickingSource struct {
	next  domain.PickingSource
	guard *Guard
}

// NewPickingSource creates a new PickingSource
func NewPickingSource(next domain.PickingSource, guard *Guard) *PickingSource {
	return &PickingSource{next: next, guard: guard}
}

// ListPickerWorkload reads picker workload through the guard
func (s *PickingSource) ListPickerWorkload(ctx context.Context) ([]domain.PickerWorkload, error) {
	return run(ctx, s.guard, func() ([]domain.PickerWorkload, error) {
		return s.next.ListPickerWorkload(ctx)
	})
}

// DataQualitySource guards a domain.DataQualitySource
type DataQualitySource struct {
	next  domain.DataQualitySource
	guard *Guard
}

// NewDataQualitySource creates a new DataQualitySource
func NewDataQualitySource(next domain.DataQualitySource, guard *Guard) *DataQualitySource {
	return &DataQualitySource{next: next, guard: guard}
}

// CountViolations counts rule violations through the guard
func (s *DataQualitySource) CountViolations(ctx context.Context, code domain.DataQualityCode, scope domain.DataQualityScope) (int, error) {
	return run(ctx, s.guard, func() (int, error) {
		return s.next.CountViolations(ctx, code, scope)
	})
}
