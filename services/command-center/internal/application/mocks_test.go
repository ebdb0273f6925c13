package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/b2b-portal/opscenter/services/command-center/internal/domain"
)

type MockOrderSource struct {
	mock.Mock
}

func (m *MockOrderSource) ListOpenOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.OpenOrder, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OpenOrder), args.Error(1)
}

type MockInventorySource struct {
	mock.Mock
}

func (m *MockInventorySource) ListStock(ctx context.Context, warehouses []string, productCodes []string) ([]domain.StockPosition, error) {
	args := m.Called(ctx, warehouses, productCodes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StockPosition), args.Error(1)
}

type MockCustomerSource struct {
	mock.Mock
}

func (m *MockCustomerSource) ListCustomerProfiles(ctx context.Context, filter domain.CustomerFilter) ([]domain.CustomerProfile, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CustomerProfile), args.Error(1)
}

type MockCartSource struct {
	mock.Mock
}

func (m *MockCartSource) ListActiveCarts(ctx context.Context, since time.Time) ([]domain.Cart, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Cart), args.Error(1)
}

type MockCatalogSource struct {
	mock.Mock
}

func (m *MockCatalogSource) ListSubstitutionPool(ctx context.Context, sourceCodes []string) ([]domain.CatalogProduct, error) {
	args := m.Called(ctx, sourceCodes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CatalogProduct), args.Error(1)
}

type MockCoOccurrenceSource struct {
	mock.Mock
}

func (m *MockCoOccurrenceSource) CoOccurrences(ctx context.Context, sourceCodes []string) ([]domain.CoOccurrence, error) {
	args := m.Called(ctx, sourceCodes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CoOccurrence), args.Error(1)
}

type MockPickingSource struct {
	mock.Mock
}

func (m *MockPickingSource) ListPickerWorkload(ctx context.Context) ([]domain.PickerWorkload, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PickerWorkload), args.Error(1)
}

type MockDataQualitySource struct {
	mock.Mock
}

func (m *MockDataQualitySource) CountViolations(ctx context.Context, code domain.DataQualityCode, scope domain.DataQualityScope) (int, error) {
	args := m.Called(ctx, code, scope)
	return args.Int(0), args.Error(1)
}

type MockSnapshotCache struct {
	mock.Mock
}

func (m *MockSnapshotCache) Get(ctx context.Context, key string) (*domain.CommandCenterSnapshot, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.CommandCenterSnapshot), args.Bool(1), args.Error(2)
}

func (m *MockSnapshotCache) Set(ctx context.Context, key string, snapshot *domain.CommandCenterSnapshot, ttl time.Duration) error {
	args := m.Called(ctx, key, snapshot, ttl)
	return args.Error(0)
}

type MockSnapshotPublisher struct {
	mock.Mock
}

func (m *MockSnapshotPublisher) PublishSnapshotGenerated(ctx context.Context, snapshot *domain.CommandCenterSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

// blockingPickingSource waits for its context, like a store that never answers
type blockingPickingSource struct{}

func (blockingPickingSource) ListPickerWorkload(ctx context.Context) ([]domain.PickerWorkload, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// panickingCartSource simulates a bug inside a source adapter
type panickingCartSource struct{}

func (panickingCartSource) ListActiveCarts(context.Context, time.Time) ([]domain.Cart, error) {
	panic("nil map write")
}

var baseTime = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func qty(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func assertDecimal(t *testing.T, want float64, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, got.Equal(decimal.NewFromFloat(want)), append([]interface{}{"want %v got %s", want, got.String()}, msgAndArgs...)...)
}

func order(id string, daysAgo int, lines ...domain.OpenOrderLine) domain.OpenOrder {
	return domain.OpenOrder{
		OrderID:      id,
		OrderNumber:  "SIP-" + id,
		Series:       "SIP",
		CustomerID:   "C-" + id,
		CustomerName: "Customer " + id,
		OrderDate:    baseTime.AddDate(0, 0, -daysAgo),
		Amount:       qty(1000),
		Lines:        lines,
	}
}

func line(no int, product string, requested float64) domain.OpenOrderLine {
	return domain.OpenOrderLine{
		LineKey:      product + "-" + string(rune('a'+no)),
		LineNo:       no,
		ProductCode:  product,
		ProductName:  "Product " + product,
		RequestedQty: qty(requested),
		ShippedQty:   decimal.Zero,
	}
}

func stock(product, warehouse string, available float64) domain.StockPosition {
	return domain.StockPosition{ProductCode: product, WarehouseCode: warehouse, AvailableQty: qty(available)}
}
