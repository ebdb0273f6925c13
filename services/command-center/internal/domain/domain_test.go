package domain

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestCoverageStatusFor(t *testing.T) {
	tests := []struct {
		name      string
		remaining decimal.Decimal
		shortage  decimal.Decimal
		want      CoverageStatus
	}{
		{"no shortage", d(10), d(0), CoverageFull},
		{"partial", d(50), d(20), CoveragePartial},
		{"nothing coverable", d(10), d(10), CoverageNone},
		{"zero remaining", d(0), d(0), CoverageFull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoverageStatusFor(tt.remaining, tt.shortage))
		})
	}
}

func TestCoveragePercent(t *testing.T) {
	assert.Equal(t, 60, CoveragePercent(d(50), d(20)))
	assert.Equal(t, 100, CoveragePercent(d(0), d(0)))
	assert.Equal(t, 0, CoveragePercent(d(3), d(3)))
	// 2/3 rounds half away from zero
	assert.Equal(t, 67, CoveragePercent(d(3), d(1)))
}

func TestCoverageStatusRank(t *testing.T) {
	assert.Less(t, CoverageFull.Rank(), CoveragePartial.Rank())
	assert.Less(t, CoveragePartial.Rank(), CoverageNone.Rank())
}

func TestOpenOrderLineRemainingQty(t *testing.T) {
	line := OpenOrderLine{RequestedQty: d(5), ShippedQty: d(8)}
	assert.True(t, line.RemainingQty().IsZero())

	line = OpenOrderLine{RequestedQty: d(5), ShippedQty: d(2)}
	assert.True(t, line.RemainingQty().Equal(d(3)))
}

func TestSection(t *testing.T) {
	t.Run("populated", func(t *testing.T) {
		s := Populated(ATPReport{Orders: []AllocationResult{{OrderID: "O-1"}}}, "note")

		v, ok := s.Value()
		assert.True(t, ok)
		assert.Len(t, v.Orders, 1)
		assert.False(t, s.IsDegraded())
		assert.Empty(t, s.Reason())
		assert.Equal(t, []string{"note"}, s.Warnings)
	})

	t.Run("degraded", func(t *testing.T) {
		s := Degraded(RiskReport{}, Issue{Code: IssueTimeout, Message: "slow"})

		_, ok := s.Value()
		assert.False(t, ok)
		assert.True(t, s.IsDegraded())
		assert.Equal(t, IssueTimeout, s.Reason())
	})
}

func TestIssueFromError(t *testing.T) {
	tests := []struct {
		err  error
		want IssueCode
	}{
		{context.DeadlineExceeded, IssueTimeout},
		{fmt.Errorf("stock read: %w", ErrTimeout), IssueTimeout},
		{ErrConfigurationMissing, IssueConfigurationMissing},
		{fmt.Errorf("atp: %w", ErrDependencyUnavailable), IssueDependencyUnavailable},
		{fmt.Errorf("boom"), IssueSourceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, IssueFromError(tt.err).Code)
		})
	}
}

func TestHealthScore(t *testing.T) {
	checks := []DataQualityCheck{
		{Code: CheckNegativeStock, Blocked: true, Weight: 25, Count: 2},
		{Code: CheckProductMissingCost, Blocked: true, Weight: 20, Count: 0},
		{Code: CheckProductMissingCategory, Blocked: false, Weight: 10, Count: 7},
	}
	assert.Equal(t, 75, HealthScore(checks))
	assert.Equal(t, 1, DataQualityReport{Checks: checks}.BlockingCount())

	heavy := []DataQualityCheck{
		{Blocked: true, Weight: 70, Count: 1},
		{Blocked: true, Weight: 70, Count: 1},
	}
	assert.Equal(t, 0, HealthScore(heavy))
	assert.Equal(t, 100, HealthScore(nil))
}
