package guarded

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b2b-portal/opscenter/services/command-center/internal/domain"
	"github.com/b2b-portal/opscenter/shared/pkg/resilience"
)

type stubPickingSource struct {
	calls    int
	failures int
	err      error
}

func (s *stubPickingSource) ListPickerWorkload(ctx context.Context) ([]domain.PickerWorkload, error) {
	s.calls++
	if s.calls <= s.failures {
		return nil, s.err
	}
	return []domain.PickerWorkload{{PickerUserID: "u-1", ActiveOrders: 1, OpenLines: 3}}, nil
}

func testBreaker(name string, threshold uint32) *resilience.CircuitBreaker {
	cfg := resilience.DefaultCircuitBreakerConfig(name)
	cfg.FailureThreshold = threshold
	cfg.Timeout = time.Minute
	return resilience.NewCircuitBreaker(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
}

func fastRetry(attempts int) *resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.MaxAttempts = attempts
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = time.Millisecond
	return cfg
}

func TestGuard_RetriesTransientFailure(t *testing.T) {
	next := &stubPickingSource{failures: 1, err: errors.New("connection reset by peer")}
	source := NewPickingSource(next, NewGuard(testBreaker(BreakerPicking, 5), fastRetry(2)))

	workload, err := source.ListPickerWorkload(context.Background())

	require.NoError(t, err)
	assert.Len(t, workload, 1)
	assert.Equal(t, 2, next.calls)
}

func TestGuard_OpenCircuitFailsFast(t *testing.T) {
	breaker := testBreaker(BreakerPicking, 2)
	next := &stubPickingSource{failures: 100, err: errors.New("connection refused")}
	source := NewPickingSource(next, NewGuard(breaker, fastRetry(2)))

	_, err := source.ListPickerWorkload(context.Background())
	require.Error(t, err)
	assert.Equal(t, gobreaker.StateOpen, breaker.State())

	callsBefore := next.calls
	_, err = source.ListPickerWorkload(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Contains(t, err.Error(), "source unavailable")
	assert.Equal(t, callsBefore, next.calls)
}

func TestGuard_CancelledContextIsNotRetried(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	next := &stubPickingSource{}
	source := NewPickingSource(next, NewGuard(testBreaker(BreakerPicking, 5), fastRetry(3)))

	_, err := source.ListPickerWorkload(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, next.calls)
}

func TestGuard_NilRetryRunsOnce(t *testing.T) {
	next := &stubPickingSource{failures: 1, err: errors.New("boom")}
	source := NewPickingSource(next, NewGuard(testBreaker(BreakerPicking, 5), nil))

	_, err := source.ListPickerWorkload(context.Background())

	assert.Error(t, err)
	assert.Equal(t, 1, next.calls)
}

func TestFromRegistry_SharesBreakerByName(t *testing.T) {
	registry := resilience.NewCircuitBreakerRegistry(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	a := FromRegistry(registry, BreakerOrders)
	b := FromRegistry(registry, BreakerOrders)

	assert.Same(t, a.breaker, b.breaker)
	assert.Contains(t, registry.Status(), BreakerOrders)
}

type recordingInventory struct {
	warehouses []string
	codes      []string
}

func (r *recordingInventory) ListStock(ctx context.Context, warehouses []string, productCodes []string) ([]domain.StockPosition, error) {
	r.warehouses = warehouses
	r.codes = productCodes
	return []domain.StockPosition{{ProductCode: "SKU-2", WarehouseCode: "MERKEZ"}}, nil
}

func TestInventorySource_ForwardsFilter(t *testing.T) {
	next := &recordingInventory{}
	source := NewInventorySource(next, NewGuard(testBreaker(BreakerInventory, 5), fastRetry(2)))

	positions, err := source.ListStock(context.Background(), []string{"MERKEZ"}, []string{"SKU-2"})

	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, []string{"MERKEZ"}, next.warehouses)
	assert.Equal(t, []string{"SKU-2"}, next.codes)
}
