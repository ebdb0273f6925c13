package domain

import (
	"context"
	"time"
)

// OrderFilter narrows the open-order read
type OrderFilter struct {
	Series []string
	// Limit keeps the oldest N open orders
	Limit int
}

// OrderSource reads open orders from the order-tracking store
type OrderSource interface {
	ListOpenOrders(ctx context.Context, filter OrderFilter) ([]OpenOrder, error)
}

// InventorySource reads stock positions from the inventory store
type InventorySource interface {
	// ListStock returns positions for the given products in the given warehouses
	ListStock(ctx context.Context, warehouses []string, productCodes []string) ([]StockPosition, error)
}

// CustomerFilter narrows the customer profile read
type CustomerFilter struct {
	// ActiveSince includes customers with an order or cart update after this instant
	ActiveSince time.Time
	// CustomerIDs are always included, used for customers of open orders
	CustomerIDs []string
}

// CustomerSource reads customer master, balance and order-history data
type CustomerSource interface {
	ListCustomerProfiles(ctx context.Context, filter CustomerFilter) ([]CustomerProfile, error)
}

// CartSource reads open portal carts
type CartSource interface {
	ListActiveCarts(ctx context.Context, since time.Time) ([]Cart, error)
}

// CatalogSource reads the product catalog
type CatalogSource interface {
	// ListSubstitutionPool returns the source products plus every product
	// sharing a category or family with one of them
	ListSubstitutionPool(ctx context.Context, sourceCodes []string) ([]CatalogProduct, error)
}

// CoOccurrenceSource reads co-ordering statistics
type CoOccurrenceSource interface {
	CoOccurrences(ctx context.Context, sourceCodes []string) ([]CoOccurrence, error)
}

// PickingSource reads open picking sessions from the warehouse execution system
type PickingSource interface {
	ListPickerWorkload(ctx context.Context) ([]PickerWorkload, error)
}

// DataQualitySource counts rule violations in master data
type DataQualitySource interface {
	CountViolations(ctx context.Context, code DataQualityCode, scope DataQualityScope) (int, error)
}

// SnapshotCache stores recently built snapshots
type SnapshotCache interface {
	Get(ctx context.Context, key string) (*CommandCenterSnapshot, bool, error)
	Set(ctx context.Context, key string, snapshot *CommandCenterSnapshot, ttl time.Duration) error
}

// SnapshotPublisher announces built snapshots
type SnapshotPublisher interface {
	PublishSnapshotGenerated(ctx context.Context, snapshot *CommandCenterSnapshot) error
}
