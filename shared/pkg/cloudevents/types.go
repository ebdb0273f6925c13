package cloudevents

import (
	"time"
)

// Event types published by the command center
const (
	SnapshotGenerated      = "portal.opscenter.snapshot-generated"
	DataQualityGateBlocked = "portal.opscenter.data-quality-blocked"
)

// Source constants for event sources
const (
	SourceCommandCenter = "/portal/command-center"
)

// PortalCloudEvent represents a CloudEvents v1.0 compliant event
type PortalCloudEvent struct {
	SpecVersion     string                 `json:"specversion"`
	Type            string                 `json:"type"`
	Source          string                 `json:"source"`
	Subject         string                 `json:"subject,omitempty"`
	ID              string                 `json:"id"`
	Time            time.Time              `json:"time"`
	DataContentType string                 `json:"datacontenttype"`
	Data            interface{}            `json:"data"`
	Extensions      map[string]interface{} `json:"-"`

	CorrelationID string `json:"correlationid,omitempty"`
	TenantID      string `json:"tenantid,omitempty"`

	// W3C trace context
	TraceParent string `json:"traceparent,omitempty"`
	TraceState  string `json:"tracestate,omitempty"`
}

// SnapshotGeneratedData is the payload of SnapshotGenerated
type SnapshotGeneratedData struct {
	GeneratedAt           time.Time `json:"generatedAt"`
	DegradedSections      []string  `json:"degradedSections"`
	LowCoverageOrderCount int       `json:"lowCoverageOrderCount"`
	OpenOrderCount        int       `json:"openOrderCount"`
	HighRiskOrderCount    int       `json:"highRiskOrderCount"`
	ShortageQty           float64   `json:"shortageQty"`
	HotCustomerCount      int       `json:"hotCustomerCount"`
	ActivePickerCount     int       `json:"activePickerCount"`
	SubstitutionNeedCount int       `json:"substitutionNeedCount"`
	BlockedDataChecks     int       `json:"blockedDataChecks"`
	HealthScore           int       `json:"healthScore"`
}

// DataQualityGateBlockedData is the payload of DataQualityGateBlocked
type DataQualityGateBlockedData struct {
	GeneratedAt   time.Time      `json:"generatedAt"`
	HealthScore   int            `json:"healthScore"`
	BlockedChecks map[string]int `json:"blockedChecks"`
}
