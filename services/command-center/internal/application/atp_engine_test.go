package application

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/b2b-portal/opscenter/services/command-center/internal/domain"
)

var included = []string{"DEPO2", "MERKEZ"}

func TestATPEngine_Allocate_PartialCoverageScenario(t *testing.T) {
	engine := NewATPEngine(nil)

	orders := []domain.OpenOrder{order("O-100", 3, line(1, "SKU-1", 50))}
	positions := []domain.StockPosition{
		stock("SKU-1", "MERKEZ", 20),
		stock("SKU-1", "DEPO2", 10),
		stock("SKU-1", "DEPO9", 500), // not included
	}

	result := engine.Allocate(orders, positions, included)

	require.Len(t, result.Orders, 1)
	o := result.Orders[0]
	assertDecimal(t, 50, o.RemainingQty)
	assertDecimal(t, 20, o.ShortageQty)
	assert.Equal(t, 60, o.CoveredPercent)
	assert.Equal(t, domain.CoveragePartial, o.CoverageStatus)

	require.Len(t, o.Lines, 1)
	assertDecimal(t, 30, o.Lines[0].CoverableQty)
	assert.Equal(t, domain.CoveragePartial, o.Lines[0].CoverageStatus)
	assertDecimal(t, 0, result.RemainingPool["SKU-1"])
}

func TestATPEngine_Allocate_FirstComeFirstServed(t *testing.T) {
	engine := NewATPEngine(nil)

	orders := []domain.OpenOrder{
		order("O-3", 1, line(1, "SKU-1", 10)),
		order("O-2", 5, line(1, "SKU-1", 10)),
		order("O-1", 5, line(1, "SKU-1", 10)), // same date as O-2, wins on id
	}
	positions := []domain.StockPosition{stock("SKU-1", "MERKEZ", 15)}

	result := engine.Allocate(orders, positions, included)

	require.Len(t, result.Orders, 3)
	assert.Equal(t, "O-1", result.Orders[0].OrderID)
	assert.Equal(t, domain.CoverageFull, result.Orders[0].CoverageStatus)
	assert.Equal(t, "O-2", result.Orders[1].OrderID)
	assert.Equal(t, 50, result.Orders[1].CoveredPercent)
	assert.Equal(t, "O-3", result.Orders[2].OrderID)
	assert.Equal(t, domain.CoverageNone, result.Orders[2].CoverageStatus)
}

func TestATPEngine_Allocate_LineOrderWithinOrder(t *testing.T) {
	engine := NewATPEngine(nil)

	orders := []domain.OpenOrder{
		order("O-1", 1, line(2, "SKU-1", 5), line(1, "SKU-1", 5)),
	}
	positions := []domain.StockPosition{stock("SKU-1", "MERKEZ", 5)}

	result := engine.Allocate(orders, positions, included)

	lines := result.Orders[0].Lines
	require.Len(t, lines, 2)
	assert.Equal(t, 1, lines[0].LineNo)
	assert.Equal(t, domain.CoverageFull, lines[0].CoverageStatus)
	assert.Equal(t, 2, lines[1].LineNo)
	assert.Equal(t, domain.CoverageNone, lines[1].CoverageStatus)
}

func TestATPEngine_Allocate_EdgeCases(t *testing.T) {
	engine := NewATPEngine(nil)

	shipped := line(1, "SKU-1", 10)
	shipped.ShippedQty = qty(10)

	orders := []domain.OpenOrder{
		order("O-SHIPPED", 2, shipped),
		order("O-UNKNOWN", 1, line(1, "SKU-404", 4)),
		order("O-NEG", 0, line(1, "SKU-NEG", 4)),
	}
	positions := []domain.StockPosition{
		stock("SKU-NEG", "MERKEZ", -7),
		stock("SKU-NEG", "DEPO2", 3),
	}

	result := engine.Allocate(orders, positions, included)

	require.Len(t, result.Orders, 2, "fully shipped orders are excluded")
	assert.Equal(t, "O-UNKNOWN", result.Orders[0].OrderID)
	assert.Equal(t, domain.CoverageNone, result.Orders[0].CoverageStatus)
	assertDecimal(t, 4, result.Orders[0].ShortageQty)

	// negative rows do not drain the pool
	assert.Equal(t, "O-NEG", result.Orders[1].OrderID)
	assertDecimal(t, 1, result.Orders[1].ShortageQty)
	assert.Equal(t, 75, result.Orders[1].CoveredPercent)
}

func TestATPEngine_Allocate_Invariants(t *testing.T) {
	engine := NewATPEngine(nil)

	var orders []domain.OpenOrder
	for i := 0; i < 30; i++ {
		orders = append(orders, order(fmt.Sprintf("O-%02d", i), i%7,
			line(1, "SKU-1", float64(1+i%9)),
			line(2, "SKU-2", float64(3+i%4)),
		))
	}
	positions := []domain.StockPosition{stock("SKU-1", "MERKEZ", 40), stock("SKU-2", "DEPO2", 17)}

	result := engine.Allocate(orders, positions, included)

	for _, o := range result.Orders {
		assert.False(t, o.ShortageQty.IsNegative())
		assert.True(t, o.ShortageQty.LessThanOrEqual(o.RemainingQty))
		assert.Equal(t, domain.CoverageStatusFor(o.RemainingQty, o.ShortageQty), o.CoverageStatus)
		assert.GreaterOrEqual(t, o.CoveredPercent, 0)
		assert.LessOrEqual(t, o.CoveredPercent, 100)
		for _, l := range o.Lines {
			assert.True(t, l.ShortageQty.Equal(l.RemainingQty.Sub(l.CoverableQty)))
			assert.True(t, l.ShortageQty.LessThanOrEqual(l.RemainingQty))
		}
	}
	assert.False(t, result.RemainingPool["SKU-1"].IsNegative())
	assert.False(t, result.RemainingPool["SKU-2"].IsNegative())
}

func TestATPEngine_Run(t *testing.T) {
	ctx := context.Background()
	orders := []domain.OpenOrder{
		order("O-1", 1, line(1, "SKU-2", 5), line(2, "SKU-1", 5)),
	}

	t.Run("reads stock for referenced products", func(t *testing.T) {
		inventory := new(MockInventorySource)
		inventory.On("ListStock", mock.Anything, included, []string{"SKU-1", "SKU-2"}).
			Return([]domain.StockPosition{stock("SKU-1", "MERKEZ", 5), stock("SKU-2", "MERKEZ", 5)}, nil)

		result, err := NewATPEngine(inventory).Run(ctx, orders, included)

		require.NoError(t, err)
		require.Len(t, result.Orders, 1)
		assert.Equal(t, domain.CoverageFull, result.Orders[0].CoverageStatus)
		inventory.AssertExpectations(t)
	})

	t.Run("no included warehouses", func(t *testing.T) {
		inventory := new(MockInventorySource)

		result, err := NewATPEngine(inventory).Run(ctx, orders, nil)

		assert.ErrorIs(t, err, domain.ErrConfigurationMissing)
		assert.NotNil(t, result.Orders)
		assert.Empty(t, result.Orders)
		inventory.AssertNotCalled(t, "ListStock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("stock source failure", func(t *testing.T) {
		inventory := new(MockInventorySource)
		inventory.On("ListStock", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

		result, err := NewATPEngine(inventory).Run(ctx, orders, included)

		assert.Error(t, err)
		assert.Empty(t, result.Orders)
	})

	t.Run("no orders skips the stock read", func(t *testing.T) {
		inventory := new(MockInventorySource)

		result, err := NewATPEngine(inventory).Run(ctx, nil, included)

		require.NoError(t, err)
		assert.Empty(t, result.Orders)
		inventory.AssertNotCalled(t, "ListStock", mock.Anything, mock.Anything, mock.Anything)
	})
}
