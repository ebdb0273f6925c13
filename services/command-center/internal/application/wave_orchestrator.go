package application

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/b2b-portal/opscenter/services/command-center/internal/config"
	"github.com/b2b-portal/opscenter/services/command-center/internal/domain"
)

// WaveOrchestrator groups allocated orders into picking waves and reports picker load
type WaveOrchestrator struct {
	picking domain.PickingSource
	policy  config.OrchestrationPolicy
}

// NewWaveOrchestrator creates a new WaveOrchestrator
func NewWaveOrchestrator(picking domain.PickingSource, policy config.OrchestrationPolicy) *WaveOrchestrator {
	return &WaveOrchestrator{picking: picking, policy: policy}
}

// Run plans waves and reads current picker workload. When the workload read
// fails the planned waves are still returned alongside the error.
func (o *WaveOrchestrator) Run(ctx context.Context, allocations []domain.AllocationResult) (domain.OrchestrationPlan, error) {
	plan := domain.OrchestrationPlan{
		Waves:          o.PlanWaves(allocations),
		PickerWorkload: []domain.PickerWorkload{},
	}

	workload, err := o.picking.ListPickerWorkload(ctx)
	if err != nil {
		return plan, fmt.Errorf("picker workload read: %w", err)
	}

	sort.SliceStable(workload, func(i, j int) bool {
		if workload[i].OpenLines != workload[j].OpenLines {
			return workload[i].OpenLines > workload[j].OpenLines
		}
		return workload[i].PickerUserID < workload[j].PickerUserID
	})
	plan.PickerWorkload = workload

	return plan, nil
}

// PlanWaves greedily packs orders into waves bounded by line and order count.
// An order is never split; one larger than the line bound gets its own wave.
func (o *WaveOrchestrator) PlanWaves(allocations []domain.AllocationResult) []domain.Wave {
	waves := []domain.Wave{}
	var current *waveBuilder

	closeWave := func() {
		if current == nil || current.orders == 0 {
			return
		}
		waves = append(waves, o.finish(current, len(waves)+1))
		current = nil
	}

	for _, order := range sortAllocationsForWave(allocations) {
		lines := len(order.Lines)

		if current != nil &&
			(current.lines+lines > o.policy.MaxLinesPerWave || current.orders+1 > o.policy.MaxOrdersPerWave) {
			closeWave()
		}
		if current == nil {
			current = newWaveBuilder()
		}
		current.add(order)
	}
	closeWave()

	return waves
}

func (o *WaveOrchestrator) finish(b *waveBuilder, seq int) domain.Wave {
	estimated := roundTo(o.policy.WaveSetupMinutes+o.policy.MinutesPerLine*float64(b.lines), 1)
	pickers := int(math.Ceil(estimated / o.policy.TargetWaveMinutes))
	if pickers < 1 {
		pickers = 1
	}

	return domain.Wave{
		WaveID:                 fmt.Sprintf("WV-%03d", seq),
		OrderCount:             b.orders,
		LineCount:              b.lines,
		DistinctSkuCount:       len(b.skus),
		EstimatedMinutes:       estimated,
		RecommendedPickerCount: pickers,
		OrderIDs:               b.orderIDs,
		OrderNumbers:           b.orderNumbers,
	}
}

type waveBuilder struct {
	orders       int
	lines        int
	skus         map[string]bool
	orderIDs     []string
	orderNumbers []string
}

func newWaveBuilder() *waveBuilder {
	return &waveBuilder{skus: make(map[string]bool)}
}

func (b *waveBuilder) add(order domain.AllocationResult) {
	b.orders++
	b.lines += len(order.Lines)
	for _, l := range order.Lines {
		b.skus[l.ProductCode] = true
	}
	b.orderIDs = append(b.orderIDs, order.OrderID)
	b.orderNumbers = append(b.orderNumbers, order.OrderNumber)
}

// sortAllocationsForWave puts fully coverable orders first to avoid picker
// dead time, then oldest first
func sortAllocationsForWave(allocations []domain.AllocationResult) []domain.AllocationResult {
	sorted := make([]domain.AllocationResult, len(allocations))
	copy(sorted, allocations)
	sort.SliceStable(sorted, func(i, j int) bool {
		if ri, rj := sorted[i].CoverageStatus.Rank(), sorted[j].CoverageStatus.Rank(); ri != rj {
			return ri < rj
		}
		if !sorted[i].OrderDate.Equal(sorted[j].OrderDate) {
			return sorted[i].OrderDate.Before(sorted[j].OrderDate)
		}
		return sorted[i].OrderID < sorted[j].OrderID
	})
	return sorted
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
