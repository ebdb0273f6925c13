package application

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/b2b-portal/opscenter/services/command-center/internal/config"
	"github.com/b2b-portal/opscenter/services/command-center/internal/domain"
)

func allocation(id string, daysAgo int, status domain.CoverageStatus, lines int) domain.AllocationResult {
	a := domain.AllocationResult{
		OrderID:        id,
		OrderNumber:    "SIP-" + id,
		OrderDate:      baseTime.AddDate(0, 0, -daysAgo),
		CoverageStatus: status,
	}
	for i := 0; i < lines; i++ {
		a.Lines = append(a.Lines, domain.LineAllocation{
			LineNo:      i + 1,
			ProductCode: fmt.Sprintf("SKU-%d", i%5),
		})
	}
	return a
}

func defaultOrchestrator(picking domain.PickingSource) *WaveOrchestrator {
	return NewWaveOrchestrator(picking, config.DefaultPolicy().Orchestration)
}

func TestWaveOrchestrator_PlanWaves_Empty(t *testing.T) {
	waves := defaultOrchestrator(nil).PlanWaves(nil)

	assert.NotNil(t, waves)
	assert.Empty(t, waves)
}

func TestWaveOrchestrator_PlanWaves_EveryOrderInExactlyOneWave(t *testing.T) {
	var allocations []domain.AllocationResult
	statuses := []domain.CoverageStatus{domain.CoverageFull, domain.CoveragePartial, domain.CoverageNone}
	for i := 0; i < 60; i++ {
		allocations = append(allocations, allocation(fmt.Sprintf("O-%02d", i), i%10, statuses[i%3], 1+i%6))
	}

	waves := defaultOrchestrator(nil).PlanWaves(allocations)

	seen := make(map[string]int)
	total := 0
	for _, w := range waves {
		total += w.OrderCount
		assert.LessOrEqual(t, w.OrderCount, 25)
		assert.LessOrEqual(t, w.LineCount, 40)
		assert.Len(t, w.OrderIDs, w.OrderCount)
		for _, id := range w.OrderIDs {
			seen[id]++
		}
	}

	assert.Equal(t, len(allocations), total)
	assert.Len(t, seen, len(allocations))
	for id, n := range seen {
		assert.Equal(t, 1, n, "order %s", id)
	}
}

func TestWaveOrchestrator_PlanWaves_Ordering(t *testing.T) {
	allocations := []domain.AllocationResult{
		allocation("O-NONE", 9, domain.CoverageNone, 1),
		allocation("O-PART", 9, domain.CoveragePartial, 1),
		allocation("O-FULL-NEW", 1, domain.CoverageFull, 1),
		allocation("O-FULL-OLD", 5, domain.CoverageFull, 1),
	}

	waves := defaultOrchestrator(nil).PlanWaves(allocations)

	require.Len(t, waves, 1)
	assert.Equal(t, []string{"O-FULL-OLD", "O-FULL-NEW", "O-PART", "O-NONE"}, waves[0].OrderIDs)
	assert.Equal(t, []string{"SIP-O-FULL-OLD", "SIP-O-FULL-NEW", "SIP-O-PART", "SIP-O-NONE"}, waves[0].OrderNumbers)
}

func TestWaveOrchestrator_PlanWaves_Bounds(t *testing.T) {
	tests := []struct {
		name       string
		lines      []int
		wantOrders []int
		wantLines  []int
	}{
		{
			name:       "line bound closes the wave",
			lines:      []int{20, 15, 10},
			wantOrders: []int{2, 1},
			wantLines:  []int{35, 10},
		},
		{
			name:       "oversize order gets its own wave",
			lines:      []int{5, 55, 5},
			wantOrders: []int{1, 1, 1},
			wantLines:  []int{5, 55, 5},
		},
		{
			name:       "exact fit",
			lines:      []int{20, 20, 1},
			wantOrders: []int{2, 1},
			wantLines:  []int{40, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var allocations []domain.AllocationResult
			for i, n := range tt.lines {
				allocations = append(allocations, allocation(fmt.Sprintf("O-%d", i), 10-i, domain.CoverageFull, n))
			}

			waves := defaultOrchestrator(nil).PlanWaves(allocations)

			require.Len(t, waves, len(tt.wantOrders))
			for i, w := range waves {
				assert.Equal(t, tt.wantOrders[i], w.OrderCount)
				assert.Equal(t, tt.wantLines[i], w.LineCount)
			}
		})
	}

	t.Run("order bound closes the wave", func(t *testing.T) {
		var allocations []domain.AllocationResult
		for i := 0; i < 30; i++ {
			allocations = append(allocations, allocation(fmt.Sprintf("O-%02d", i), 30-i, domain.CoverageFull, 1))
		}

		waves := defaultOrchestrator(nil).PlanWaves(allocations)

		require.Len(t, waves, 2)
		assert.Equal(t, 25, waves[0].OrderCount)
		assert.Equal(t, 5, waves[1].OrderCount)
	})
}

func TestWaveOrchestrator_PlanWaves_Estimates(t *testing.T) {
	waves := defaultOrchestrator(nil).PlanWaves([]domain.AllocationResult{
		allocation("O-1", 3, domain.CoverageFull, 10),
		allocation("O-2", 2, domain.CoverageFull, 30),
		allocation("O-3", 1, domain.CoverageFull, 7),
	})

	require.Len(t, waves, 2)

	assert.Equal(t, "WV-001", waves[0].WaveID)
	assert.Equal(t, 40, waves[0].LineCount)
	assert.Equal(t, 53.0, waves[0].EstimatedMinutes)
	assert.Equal(t, 2, waves[0].RecommendedPickerCount)
	assert.Equal(t, 5, waves[0].DistinctSkuCount)

	assert.Equal(t, "WV-002", waves[1].WaveID)
	assert.Equal(t, 13.4, waves[1].EstimatedMinutes)
	assert.Equal(t, 1, waves[1].RecommendedPickerCount)
}

func TestWaveOrchestrator_Run(t *testing.T) {
	allocations := []domain.AllocationResult{allocation("O-1", 1, domain.CoverageFull, 2)}

	t.Run("sorts picker workload", func(t *testing.T) {
		picking := new(MockPickingSource)
		picking.On("ListPickerWorkload", mock.Anything).Return([]domain.PickerWorkload{
			{PickerUserID: "u-3", OpenLines: 4, ActiveOrders: 1},
			{PickerUserID: "u-2", OpenLines: 9, ActiveOrders: 2},
			{PickerUserID: "u-1", OpenLines: 4, ActiveOrders: 1},
		}, nil)

		plan, err := defaultOrchestrator(picking).Run(context.Background(), allocations)

		require.NoError(t, err)
		require.Len(t, plan.PickerWorkload, 3)
		assert.Equal(t, "u-2", plan.PickerWorkload[0].PickerUserID)
		assert.Equal(t, "u-1", plan.PickerWorkload[1].PickerUserID)
		assert.Equal(t, "u-3", plan.PickerWorkload[2].PickerUserID)
		assert.Len(t, plan.Waves, 1)
	})

	t.Run("workload failure keeps the waves", func(t *testing.T) {
		picking := new(MockPickingSource)
		picking.On("ListPickerWorkload", mock.Anything).Return(nil, errors.New("mongo down"))

		plan, err := defaultOrchestrator(picking).Run(context.Background(), allocations)

		assert.Error(t, err)
		assert.Len(t, plan.Waves, 1)
		assert.NotNil(t, plan.PickerWorkload)
		assert.Empty(t, plan.PickerWorkload)
	})
}
