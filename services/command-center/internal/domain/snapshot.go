package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Section names as they appear in the snapshot
const (
	SectionNameATP            = "atp"
	SectionNameOrchestration  = "orchestration"
	SectionNameCustomerIntent = "customerIntent"
	SectionNameRisk           = "risk"
	SectionNameSubstitution   = "substitution"
	SectionNameDataQuality    = "dataQuality"
)

// SectionNames lists every section in response order
var SectionNames = []string{
	SectionNameATP,
	SectionNameOrchestration,
	SectionNameCustomerIntent,
	SectionNameRisk,
	SectionNameSubstitution,
	SectionNameDataQuality,
}

// Summary carries the roll-up counters shown on the dashboard header
type Summary struct {
	LowCoverageOrderCount int             `json:"lowCoverageOrderCount"`
	OpenOrderCount        int             `json:"openOrderCount"`
	HighRiskOrderCount    int             `json:"highRiskOrderCount"`
	ShortageQty           decimal.Decimal `json:"shortageQty"`
	HotCustomerCount      int             `json:"hotCustomerCount"`
	ActivePickerCount     int             `json:"activePickerCount"`
	SubstitutionNeedCount int             `json:"substitutionNeedCount"`
	BlockedDataChecks     int             `json:"blockedDataChecks"`
	HealthScore           int             `json:"healthScore"`
}

// CommandCenterSnapshot is one point-in-time aggregated view. It is built once
// and never mutated afterwards.
type CommandCenterSnapshot struct {
	GeneratedAt      time.Time                   `json:"generatedAt"`
	Summary          Summary                     `json:"summary"`
	ATP              Section[ATPReport]          `json:"atp"`
	Orchestration    Section[OrchestrationPlan]  `json:"orchestration"`
	CustomerIntent   Section[IntentReport]       `json:"customerIntent"`
	Risk             Section[RiskReport]         `json:"risk"`
	Substitution     Section[SubstitutionReport] `json:"substitution"`
	DataQuality      Section[DataQualityReport]  `json:"dataQuality"`
	DegradedSections []string                    `json:"degradedSections"`
}

// SectionStatuses maps each section name to its status and issue code
func (s *CommandCenterSnapshot) SectionStatuses() map[string]IssueCode {
	return map[string]IssueCode{
		SectionNameATP:            s.ATP.Reason(),
		SectionNameOrchestration:  s.Orchestration.Reason(),
		SectionNameCustomerIntent: s.CustomerIntent.Reason(),
		SectionNameRisk:           s.Risk.Reason(),
		SectionNameSubstitution:   s.Substitution.Reason(),
		SectionNameDataQuality:    s.DataQuality.Reason(),
	}
}

// FullyPopulated reports whether no section is degraded
func (s *CommandCenterSnapshot) FullyPopulated() bool {
	return len(s.DegradedSections) == 0
}
