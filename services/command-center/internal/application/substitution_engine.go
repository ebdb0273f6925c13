package application

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/b2b-portal/opscenter/services/command-center/internal/config"
	"github.com/b2b-portal/opscenter/services/command-center/internal/domain"
)

// SubstitutionEngine ranks alternative products for shortage lines
type SubstitutionEngine struct {
	catalog      domain.CatalogSource
	inventory    domain.InventorySource
	coOccurrence domain.CoOccurrenceSource
	policy       config.SubstitutionPolicy
}

// NewSubstitutionEngine creates a new SubstitutionEngine. coOccurrence may be nil.
func NewSubstitutionEngine(
	catalog domain.CatalogSource,
	inventory domain.InventorySource,
	coOccurrence domain.CoOccurrenceSource,
	policy config.SubstitutionPolicy,
) *SubstitutionEngine {
	return &SubstitutionEngine{catalog: catalog, inventory: inventory, coOccurrence: coOccurrence, policy: policy}
}

// Run reads the catalog pool, stock for peers that allocation never pooled
// and co-occurrence statistics for the shortage products. A co-occurrence
// failure is reported as a warning only.
func (e *SubstitutionEngine) Run(ctx context.Context, atp ATPResult) (domain.SubstitutionReport, []string, error) {
	report := domain.SubstitutionReport{Suggestions: []domain.SubstitutionSuggestion{}}

	sources := shortageProductCodes(atp.Orders)
	if len(sources) == 0 {
		return report, nil, nil
	}

	products, err := e.catalog.ListSubstitutionPool(ctx, sources)
	if err != nil {
		return report, nil, fmt.Errorf("catalog read: %w", err)
	}

	atp, err = e.withPeerStock(ctx, atp, sources, products)
	if err != nil {
		return report, nil, err
	}

	var warnings []string
	var coOccurrences []domain.CoOccurrence
	if e.coOccurrence != nil {
		coOccurrences, err = e.coOccurrence.CoOccurrences(ctx, sources)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("co-occurrence signal unavailable: %v", err))
			coOccurrences = nil
		}
	}

	report.Suggestions = e.Suggest(atp, products, coOccurrences)
	return report, warnings, nil
}

// withPeerStock extends the post-allocation pool with the stock of candidate
// peers that no open order referenced. Codes already in the pool keep their
// remainder.
func (e *SubstitutionEngine) withPeerStock(ctx context.Context, atp ATPResult, sources []string, products []domain.CatalogProduct) (ATPResult, error) {
	missing := missingPeerCodes(sources, products, atp.RemainingPool)
	if len(missing) == 0 || e.inventory == nil {
		return atp, nil
	}

	positions, err := e.inventory.ListStock(ctx, atp.Warehouses, missing)
	if err != nil {
		return atp, fmt.Errorf("peer stock read: %w", err)
	}

	included := make(map[string]bool, len(atp.Warehouses))
	for _, w := range atp.Warehouses {
		included[w] = true
	}
	wanted := make(map[string]bool, len(missing))
	for _, code := range missing {
		wanted[code] = true
	}

	pool := make(map[string]decimal.Decimal, len(atp.RemainingPool)+len(missing))
	for code, qty := range atp.RemainingPool {
		pool[code] = qty
	}
	for _, pos := range positions {
		if !wanted[pos.ProductCode] || !included[pos.WarehouseCode] || !pos.AvailableQty.IsPositive() {
			continue
		}
		pool[pos.ProductCode] = pool[pos.ProductCode].Add(pos.AvailableQty)
	}

	atp.RemainingPool = pool
	return atp, nil
}

// missingPeerCodes lists active same-group peers of the shortage products
// that are absent from pool
func missingPeerCodes(sources []string, products []domain.CatalogProduct, pool map[string]decimal.Decimal) []string {
	byCode := make(map[string]domain.CatalogProduct, len(products))
	for _, p := range products {
		byCode[p.ProductCode] = p
	}

	seen := make(map[string]bool)
	var codes []string
	for _, code := range sources {
		source, ok := byCode[code]
		if !ok {
			continue
		}
		for _, p := range products {
			if !p.Active || p.ProductCode == source.ProductCode || !sameGroup(source, p) {
				continue
			}
			if _, pooled := pool[p.ProductCode]; pooled || seen[p.ProductCode] {
				continue
			}
			seen[p.ProductCode] = true
			codes = append(codes, p.ProductCode)
		}
	}
	sort.Strings(codes)
	return codes
}

// Suggest builds one suggestion per shortage line in allocation order
func (e *SubstitutionEngine) Suggest(atp ATPResult, products []domain.CatalogProduct, coOccurrences []domain.CoOccurrence) []domain.SubstitutionSuggestion {
	byCode := make(map[string]domain.CatalogProduct, len(products))
	for _, p := range products {
		byCode[p.ProductCode] = p
	}

	times := make(map[string]map[string]int64)
	for _, c := range coOccurrences {
		if times[c.SourceProductCode] == nil {
			times[c.SourceProductCode] = make(map[string]int64)
		}
		times[c.SourceProductCode][c.ProductCode] += c.Times
	}

	suggestions := []domain.SubstitutionSuggestion{}
	for _, order := range atp.Orders {
		for _, line := range order.ShortageLines() {
			needed := line.ShortageQty.Ceil()

			candidates := []domain.SubstitutionCandidate{}
			if source, ok := byCode[line.ProductCode]; ok {
				candidates = e.rank(source, products, atp.RemainingPool, times[source.ProductCode], needed)
			}

			suggestions = append(suggestions, domain.SubstitutionSuggestion{
				OrderID:           order.OrderID,
				OrderNumber:       order.OrderNumber,
				LineKey:           line.LineKey,
				SourceProductCode: line.ProductCode,
				ShortageQty:       line.ShortageQty,
				NeededQty:         needed,
				Candidates:        candidates,
			})
		}
	}

	return suggestions
}

func (e *SubstitutionEngine) rank(
	source domain.CatalogProduct,
	products []domain.CatalogProduct,
	pool map[string]decimal.Decimal,
	coTimes map[string]int64,
	needed decimal.Decimal,
) []domain.SubstitutionCandidate {
	type eligible struct {
		product   domain.CatalogProduct
		available decimal.Decimal
	}

	var eligibles []eligible
	var maxTimes int64
	for _, p := range products {
		if !p.Active || p.ProductCode == source.ProductCode || !sameGroup(source, p) {
			continue
		}
		available := pool[p.ProductCode]
		if !available.IsPositive() {
			continue
		}
		eligibles = append(eligibles, eligible{product: p, available: available})
		if coTimes[p.ProductCode] > maxTimes {
			maxTimes = coTimes[p.ProductCode]
		}
	}

	totalWeight := e.policy.PriceWeight + e.policy.StockWeight + e.policy.CoOccurrenceWeight
	if totalWeight == 0 {
		totalWeight = 1
	}

	candidates := make([]domain.SubstitutionCandidate, 0, len(eligibles))
	for _, c := range eligibles {
		price := e.priceProximity(source.UnitPrice, c.product.UnitPrice)
		stock := domain.Clamp01(c.available.Div(needed).InexactFloat64())
		co := 0.0
		if maxTimes > 0 {
			co = float64(coTimes[c.product.ProductCode]) / float64(maxTimes)
		}

		score := 100 * (e.policy.PriceWeight*price + e.policy.StockWeight*stock + e.policy.CoOccurrenceWeight*co) / totalWeight
		candidates = append(candidates, domain.SubstitutionCandidate{
			ProductCode:  c.product.ProductCode,
			ProductName:  c.product.ProductName,
			Score:        roundTo(score, 2),
			AvailableQty: c.available,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].ProductCode < candidates[j].ProductCode
	})

	if len(candidates) > e.policy.MaxCandidates {
		candidates = candidates[:e.policy.MaxCandidates]
	}
	return candidates
}

func (e *SubstitutionEngine) priceProximity(sourcePrice, candidatePrice decimal.Decimal) float64 {
	if !sourcePrice.IsPositive() {
		return e.policy.UnknownPriceProximity
	}
	delta := candidatePrice.Sub(sourcePrice).Abs().Div(sourcePrice).InexactFloat64()
	return 1 - domain.Clamp01(delta)
}

// sameGroup matches on product family when the source has one, else on category
func sameGroup(source, candidate domain.CatalogProduct) bool {
	if source.ProductFamily != "" {
		return candidate.ProductFamily == source.ProductFamily
	}
	return source.CategoryID != "" && candidate.CategoryID == source.CategoryID
}

func shortageProductCodes(orders []domain.AllocationResult) []string {
	seen := make(map[string]bool)
	var codes []string
	for _, o := range orders {
		for _, l := range o.ShortageLines() {
			if !seen[l.ProductCode] {
				seen[l.ProductCode] = true
				codes = append(codes, l.ProductCode)
			}
		}
	}
	sort.Strings(codes)
	return codes
}
