package application

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/b2b-portal/opscenter/services/command-center/internal/domain"
)

// ATPResult is the allocation outcome plus the stock left in each product pool
// once every order has been served. Substitution offers only that leftover
// for products allocation pooled.
type ATPResult struct {
	Orders        []domain.AllocationResult
	RemainingPool map[string]decimal.Decimal
	Warehouses    []string
}

// Report returns the section payload
func (r ATPResult) Report() domain.ATPReport {
	return domain.ATPReport{Orders: r.Orders}
}

// ATPEngine allocates open order lines against pooled stock, first come first served
type ATPEngine struct {
	inventory domain.InventorySource
}

// NewATPEngine creates a new ATPEngine
func NewATPEngine(inventory domain.InventorySource) *ATPEngine {
	return &ATPEngine{inventory: inventory}
}

// Run reads stock for the products referenced by orders and allocates
func (e *ATPEngine) Run(ctx context.Context, orders []domain.OpenOrder, warehouses []string) (ATPResult, error) {
	if len(warehouses) == 0 {
		return ATPResult{Orders: []domain.AllocationResult{}, Warehouses: warehouses}, domain.ErrConfigurationMissing
	}

	codes := productCodes(orders)
	if len(codes) == 0 {
		return e.Allocate(orders, nil, warehouses), nil
	}

	stock, err := e.inventory.ListStock(ctx, warehouses, codes)
	if err != nil {
		return ATPResult{Orders: []domain.AllocationResult{}, Warehouses: warehouses}, fmt.Errorf("stock read: %w", err)
	}

	return e.Allocate(orders, stock, warehouses), nil
}

// Allocate is the pure allocation step. Positions outside warehouses are
// ignored and negative positions contribute nothing to the pool.
func (e *ATPEngine) Allocate(orders []domain.OpenOrder, stock []domain.StockPosition, warehouses []string) ATPResult {
	included := make(map[string]bool, len(warehouses))
	for _, w := range warehouses {
		included[w] = true
	}

	pool := make(map[string]decimal.Decimal)
	for _, pos := range stock {
		if !included[pos.WarehouseCode] || !pos.AvailableQty.IsPositive() {
			continue
		}
		pool[pos.ProductCode] = pool[pos.ProductCode].Add(pos.AvailableQty)
	}

	results := make([]domain.AllocationResult, 0, len(orders))
	for _, order := range sortOrdersFCFS(orders) {
		result := domain.AllocationResult{
			OrderID:      order.OrderID,
			OrderNumber:  order.OrderNumber,
			CustomerID:   order.CustomerID,
			CustomerName: order.CustomerName,
			OrderDate:    order.OrderDate,
			RemainingQty: decimal.Zero,
			ShortageQty:  decimal.Zero,
		}

		for _, line := range sortLines(order.Lines) {
			remaining := line.RemainingQty()
			if !remaining.IsPositive() {
				continue
			}

			available := pool[line.ProductCode]
			coverable := decimal.Min(remaining, available)
			pool[line.ProductCode] = available.Sub(coverable)
			shortage := remaining.Sub(coverable)

			result.Lines = append(result.Lines, domain.LineAllocation{
				OrderID:         order.OrderID,
				LineKey:         line.LineKey,
				LineNo:          line.LineNo,
				ProductCode:     line.ProductCode,
				ProductName:     line.ProductName,
				RequestedQty:    line.RequestedQty,
				RemainingQty:    remaining,
				CoverableQty:    coverable,
				ShortageQty:     shortage,
				CoveragePercent: domain.CoveragePercent(remaining, shortage),
				CoverageStatus:  domain.CoverageStatusFor(remaining, shortage),
			})
			result.RemainingQty = result.RemainingQty.Add(remaining)
			result.ShortageQty = result.ShortageQty.Add(shortage)
		}

		// Nothing left to ship
		if !result.RemainingQty.IsPositive() {
			continue
		}

		result.CoveredPercent = domain.CoveragePercent(result.RemainingQty, result.ShortageQty)
		result.CoverageStatus = domain.CoverageStatusFor(result.RemainingQty, result.ShortageQty)
		results = append(results, result)
	}

	return ATPResult{Orders: results, RemainingPool: pool, Warehouses: warehouses}
}

// sortOrdersFCFS orders by orderDate, then orderId
func sortOrdersFCFS(orders []domain.OpenOrder) []domain.OpenOrder {
	sorted := make([]domain.OpenOrder, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].OrderDate.Equal(sorted[j].OrderDate) {
			return sorted[i].OrderDate.Before(sorted[j].OrderDate)
		}
		return sorted[i].OrderID < sorted[j].OrderID
	})
	return sorted
}

func sortLines(lines []domain.OpenOrderLine) []domain.OpenOrderLine {
	sorted := make([]domain.OpenOrderLine, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].LineNo != sorted[j].LineNo {
			return sorted[i].LineNo < sorted[j].LineNo
		}
		return sorted[i].LineKey < sorted[j].LineKey
	})
	return sorted
}

func productCodes(orders []domain.OpenOrder) []string {
	seen := make(map[string]bool)
	var codes []string
	for _, o := range orders {
		for _, l := range o.Lines {
			if l.ProductCode != "" && !seen[l.ProductCode] {
				seen[l.ProductCode] = true
				codes = append(codes, l.ProductCode)
			}
		}
	}
	sort.Strings(codes)
	return codes
}
