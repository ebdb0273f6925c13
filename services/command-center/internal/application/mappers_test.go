package application

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/b2b-portal/opscenter/services/command-center/internal/domain"
)

func TestToSnapshotDTO_EmptySectionsAreNotNull(t *testing.T) {
	dto := ToSnapshotDTO(&domain.CommandCenterSnapshot{
		GeneratedAt: baseTime,
		ATP:         domain.Populated(domain.ATPReport{}),
		Orchestration: domain.Degraded(domain.OrchestrationPlan{}, domain.Issue{
			Code:    domain.IssueDependencyUnavailable,
			Message: "atp section degraded",
		}),
	})

	assert.Equal(t, baseTime, dto.GeneratedAt)
	assert.NotNil(t, dto.ATP.Orders)
	assert.NotNil(t, dto.Orchestration.Waves)
	assert.NotNil(t, dto.Orchestration.PickerWorkload)
	assert.NotNil(t, dto.CustomerIntent.Customers)
	assert.NotNil(t, dto.Risk.Orders)
	assert.NotNil(t, dto.Substitution.Suggestions)
	assert.NotNil(t, dto.DataQuality.Checks)
	assert.Equal(t, []string{}, dto.DegradedSections)

	assert.Equal(t, "populated", dto.ATP.Status)
	assert.Empty(t, dto.ATP.DegradedReason)
	assert.Equal(t, "degraded", dto.Orchestration.Status)
	assert.Equal(t, "DEPENDENCY_UNAVAILABLE", dto.Orchestration.DegradedReason)
	assert.Equal(t, "atp section degraded", dto.Orchestration.DegradedMessage)
}

func TestToSnapshotDTO_ConvertsQuantities(t *testing.T) {
	dto := ToSnapshotDTO(&domain.CommandCenterSnapshot{
		Summary: domain.Summary{ShortageQty: qty(20.5), HealthScore: 75},
		Orchestration: domain.Populated(domain.OrchestrationPlan{
			Waves: []domain.Wave{{WaveID: "WV-001", OrderCount: 1, LineCount: 2}},
		}),
		DataQuality: domain.Populated(domain.DataQualityReport{
			Checks: []domain.DataQualityCheck{
				{Code: domain.CheckNegativeStock, Severity: domain.SeverityCritical, Count: 3, Blocked: true, Weight: 25},
			},
			HealthScore: 75,
		}),
	})

	assert.Equal(t, 20.5, dto.Summary.ShortageQty)
	assert.Equal(t, 75, dto.Summary.HealthScore)
	assert.Equal(t, []string{}, dto.Orchestration.Waves[0].OrderNumbers)
	assert.Equal(t, "NEGATIVE_STOCK", dto.DataQuality.Checks[0].Code)
	assert.Equal(t, "critical", dto.DataQuality.Checks[0].Severity)
	assert.Equal(t, 75, dto.DataQuality.Summary.HealthScore)
}
