package application

import (
	"github.com/b2b-portal/opscenter/services/command-center/internal/domain"
)

// ToSnapshotDTO converts a snapshot to its response shape. Collections are
// never null so the dashboard can tell "empty" from "not computed".
func ToSnapshotDTO(s *domain.CommandCenterSnapshot) SnapshotDTO {
	degraded := s.DegradedSections
	if degraded == nil {
		degraded = []string{}
	}

	return SnapshotDTO{
		GeneratedAt:      s.GeneratedAt,
		Summary:          toSummaryDTO(s.Summary),
		ATP:              toATPSectionDTO(s.ATP),
		Orchestration:    toOrchestrationSectionDTO(s.Orchestration),
		CustomerIntent:   toIntentSectionDTO(s.CustomerIntent),
		Risk:             toRiskSectionDTO(s.Risk),
		Substitution:     toSubstitutionSectionDTO(s.Substitution),
		DataQuality:      toDataQualitySectionDTO(s.DataQuality),
		DegradedSections: degraded,
	}
}

func toSectionMeta[T any](s domain.Section[T]) SectionMetaDTO {
	meta := SectionMetaDTO{
		Status:   string(s.Status),
		Warnings: s.Warnings,
	}
	if s.Issue != nil {
		meta.DegradedReason = string(s.Issue.Code)
		meta.DegradedMessage = s.Issue.Message
	}
	return meta
}

func toSummaryDTO(s domain.Summary) SummaryDTO {
	return SummaryDTO{
		LowCoverageOrderCount: s.LowCoverageOrderCount,
		OpenOrderCount:        s.OpenOrderCount,
		HighRiskOrderCount:    s.HighRiskOrderCount,
		ShortageQty:           s.ShortageQty.InexactFloat64(),
		HotCustomerCount:      s.HotCustomerCount,
		ActivePickerCount:     s.ActivePickerCount,
		SubstitutionNeedCount: s.SubstitutionNeedCount,
		BlockedDataChecks:     s.BlockedDataChecks,
		HealthScore:           s.HealthScore,
	}
}

func toATPSectionDTO(s domain.Section[domain.ATPReport]) ATPSectionDTO {
	report := s.Partial()
	orders := make([]AllocationDTO, 0, len(report.Orders))
	for _, o := range report.Orders {
		lines := make([]LineDTO, 0, len(o.Lines))
		for _, l := range o.Lines {
			lines = append(lines, LineDTO{
				LineKey:         l.LineKey,
				LineNo:          l.LineNo,
				ProductCode:     l.ProductCode,
				ProductName:     l.ProductName,
				RequestedQty:    l.RequestedQty.InexactFloat64(),
				RemainingQty:    l.RemainingQty.InexactFloat64(),
				ShortageQty:     l.ShortageQty.InexactFloat64(),
				CoveragePercent: l.CoveragePercent,
				CoverageStatus:  string(l.CoverageStatus),
			})
		}
		orders = append(orders, AllocationDTO{
			OrderID:          o.OrderID,
			MikroOrderNumber: o.OrderNumber,
			CustomerID:       o.CustomerID,
			CustomerName:     o.CustomerName,
			OrderDate:        o.OrderDate,
			RemainingQty:     o.RemainingQty.InexactFloat64(),
			ShortageQty:      o.ShortageQty.InexactFloat64(),
			CoveredPercent:   o.CoveredPercent,
			CoverageStatus:   string(o.CoverageStatus),
			Lines:            lines,
		})
	}
	return ATPSectionDTO{SectionMetaDTO: toSectionMeta(s), Orders: orders}
}

func toOrchestrationSectionDTO(s domain.Section[domain.OrchestrationPlan]) OrchestrationSectionDTO {
	plan := s.Partial()

	waves := make([]WaveDTO, 0, len(plan.Waves))
	for _, w := range plan.Waves {
		numbers := w.OrderNumbers
		if numbers == nil {
			numbers = []string{}
		}
		waves = append(waves, WaveDTO{
			WaveID:                 w.WaveID,
			OrderCount:             w.OrderCount,
			LineCount:              w.LineCount,
			DistinctSkuCount:       w.DistinctSkuCount,
			EstimatedMinutes:       w.EstimatedMinutes,
			RecommendedPickerCount: w.RecommendedPickerCount,
			OrderNumbers:           numbers,
		})
	}

	pickers := make([]PickerWorkloadDTO, 0, len(plan.PickerWorkload))
	for _, p := range plan.PickerWorkload {
		pickers = append(pickers, PickerWorkloadDTO(p))
	}

	return OrchestrationSectionDTO{SectionMetaDTO: toSectionMeta(s), Waves: waves, PickerWorkload: pickers}
}

func toIntentSectionDTO(s domain.Section[domain.IntentReport]) IntentSectionDTO {
	report := s.Partial()
	customers := make([]CustomerIntentDTO, 0, len(report.Customers))
	for _, c := range report.Customers {
		customers = append(customers, CustomerIntentDTO{
			CustomerID:     c.CustomerID,
			CustomerName:   c.CustomerName,
			IntentScore:    c.IntentScore,
			IntentSegment:  string(c.IntentSegment),
			NextBestAction: c.NextBestAction,
			CartAmount:     c.CartAmount.InexactFloat64(),
		})
	}
	return IntentSectionDTO{SectionMetaDTO: toSectionMeta(s), Customers: customers}
}

func toRiskSectionDTO(s domain.Section[domain.RiskReport]) RiskSectionDTO {
	report := s.Partial()
	orders := make([]RiskAssessmentDTO, 0, len(report.Orders))
	for _, r := range report.Orders {
		reasons := r.Reasons
		if reasons == nil {
			reasons = []string{}
		}
		orders = append(orders, RiskAssessmentDTO{
			OrderID:      r.OrderID,
			OrderNumber:  r.OrderNumber,
			CustomerID:   r.CustomerID,
			CustomerName: r.CustomerName,
			OrderAmount:  r.OrderAmount.InexactFloat64(),
			RiskScore:    r.RiskScore,
			Decision:     string(r.Decision),
			Reasons:      reasons,
		})
	}
	return RiskSectionDTO{SectionMetaDTO: toSectionMeta(s), Orders: orders}
}

func toSubstitutionSectionDTO(s domain.Section[domain.SubstitutionReport]) SubstitutionSectionDTO {
	report := s.Partial()
	suggestions := make([]SubstitutionSuggestionDTO, 0, len(report.Suggestions))
	for _, sg := range report.Suggestions {
		candidates := make([]SubstitutionCandidateDTO, 0, len(sg.Candidates))
		for _, c := range sg.Candidates {
			candidates = append(candidates, SubstitutionCandidateDTO{
				ProductCode:  c.ProductCode,
				ProductName:  c.ProductName,
				Score:        c.Score,
				AvailableQty: c.AvailableQty.InexactFloat64(),
			})
		}
		suggestions = append(suggestions, SubstitutionSuggestionDTO{
			MikroOrderNumber:  sg.OrderNumber,
			LineKey:           sg.LineKey,
			SourceProductCode: sg.SourceProductCode,
			ShortageQty:       sg.ShortageQty.InexactFloat64(),
			NeededQty:         sg.NeededQty.InexactFloat64(),
			Candidates:        candidates,
		})
	}
	return SubstitutionSectionDTO{SectionMetaDTO: toSectionMeta(s), Suggestions: suggestions}
}

func toDataQualitySectionDTO(s domain.Section[domain.DataQualityReport]) DataQualitySectionDTO {
	report := s.Partial()
	checks := make([]DataQualityCheckDTO, 0, len(report.Checks))
	for _, c := range report.Checks {
		checks = append(checks, DataQualityCheckDTO{
			Code:        string(c.Code),
			Title:       c.Title,
			Description: c.Description,
			Severity:    string(c.Severity),
			Count:       c.Count,
			Blocked:     c.Blocked,
		})
	}
	return DataQualitySectionDTO{
		SectionMetaDTO: toSectionMeta(s),
		Checks:         checks,
		Summary:        DataQualitySummaryDTO{HealthScore: report.HealthScore},
	}
}
