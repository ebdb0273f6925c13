package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CoverageStatus classifies how much of an order or line stock can supply
type CoverageStatus string

const (
	CoverageFull    CoverageStatus = "FULL"
	CoveragePartial CoverageStatus = "PARTIAL"
	CoverageNone    CoverageStatus = "NONE"
)

// Rank orders coverage statuses for wave planning, FULL first
func (s CoverageStatus) Rank() int {
	switch s {
	case CoverageFull:
		return 0
	case CoveragePartial:
		return 1
	default:
		return 2
	}
}

// CoverageStatusFor derives the status from remaining and shortage quantities.
// A zero remaining quantity is treated as fully covered.
func CoverageStatusFor(remaining, shortage decimal.Decimal) CoverageStatus {
	switch {
	case !shortage.IsPositive():
		return CoverageFull
	case shortage.GreaterThanOrEqual(remaining):
		return CoverageNone
	default:
		return CoveragePartial
	}
}

// CoveragePercent returns round(100 * (remaining - shortage) / remaining) clamped to [0,100]
func CoveragePercent(remaining, shortage decimal.Decimal) int {
	if !remaining.IsPositive() {
		return 100
	}
	pct := remaining.Sub(shortage).Mul(decimal.NewFromInt(100)).Div(remaining).Round(0).IntPart()
	return int(ClampInt64(pct, 0, 100))
}

// OpenOrder is an order reported open by the order-tracking store
type OpenOrder struct {
	OrderID      string          `json:"orderId"`
	OrderNumber  string          `json:"orderNumber"`
	Series       string          `json:"series"`
	CustomerID   string          `json:"customerId"`
	CustomerName string          `json:"customerName"`
	OrderDate    time.Time       `json:"orderDate"`
	Amount       decimal.Decimal `json:"amount"`
	Approved     bool            `json:"approved"`
	Lines        []OpenOrderLine `json:"lines"`
}

// OpenOrderLine is one product line of an open order
type OpenOrderLine struct {
	LineKey      string          `json:"lineKey"`
	LineNo       int             `json:"lineNo"`
	ProductCode  string          `json:"productCode"`
	ProductName  string          `json:"productName"`
	RequestedQty decimal.Decimal `json:"requestedQty"`
	ShippedQty   decimal.Decimal `json:"shippedQty"`
}

// RemainingQty is requested minus shipped, never negative
func (l OpenOrderLine) RemainingQty() decimal.Decimal {
	return decimal.Max(decimal.Zero, l.RequestedQty.Sub(l.ShippedQty))
}

// StockPosition is the sellable quantity of a product in one warehouse
type StockPosition struct {
	ProductCode   string          `json:"productCode"`
	WarehouseCode string          `json:"warehouseCode"`
	AvailableQty  decimal.Decimal `json:"availableQty"`
}

// LineAllocation is the coverage outcome of one order line
type LineAllocation struct {
	OrderID         string          `json:"orderId"`
	LineKey         string          `json:"lineKey"`
	LineNo          int             `json:"lineNo"`
	ProductCode     string          `json:"productCode"`
	ProductName     string          `json:"productName"`
	RequestedQty    decimal.Decimal `json:"requestedQty"`
	RemainingQty    decimal.Decimal `json:"remainingQty"`
	CoverableQty    decimal.Decimal `json:"coverableQty"`
	ShortageQty     decimal.Decimal `json:"shortageQty"`
	CoveragePercent int             `json:"coveragePercent"`
	CoverageStatus  CoverageStatus  `json:"coverageStatus"`
}

// AllocationResult is the outcome of matching one order's lines against stock
type AllocationResult struct {
	OrderID        string           `json:"orderId"`
	OrderNumber    string           `json:"mikroOrderNumber"`
	CustomerID     string           `json:"customerId"`
	CustomerName   string           `json:"customerName"`
	OrderDate      time.Time        `json:"orderDate"`
	RemainingQty   decimal.Decimal  `json:"remainingQty"`
	ShortageQty    decimal.Decimal  `json:"shortageQty"`
	CoveredPercent int              `json:"coveredPercent"`
	CoverageStatus CoverageStatus   `json:"coverageStatus"`
	Lines          []LineAllocation `json:"lines"`
}

// ShortageLines returns the lines with a positive shortage
func (a AllocationResult) ShortageLines() []LineAllocation {
	var out []LineAllocation
	for _, l := range a.Lines {
		if l.ShortageQty.IsPositive() {
			out = append(out, l)
		}
	}
	return out
}

// ATPReport is the payload of the atp section
type ATPReport struct {
	Orders []AllocationResult `json:"orders"`
}
