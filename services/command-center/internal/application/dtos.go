package application

import "time"

// SectionMetaDTO carries the status tag of a section
type SectionMetaDTO struct {
	Status          string   `json:"status"`
	DegradedReason  string   `json:"degradedReason,omitempty"`
	DegradedMessage string   `json:"degradedMessage,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
}

// SnapshotDTO is the operations command center response
type SnapshotDTO struct {
	GeneratedAt      time.Time               `json:"generatedAt"`
	Summary          SummaryDTO              `json:"summary"`
	ATP              ATPSectionDTO           `json:"atp"`
	Orchestration    OrchestrationSectionDTO `json:"orchestration"`
	CustomerIntent   IntentSectionDTO        `json:"customerIntent"`
	Risk             RiskSectionDTO          `json:"risk"`
	Substitution     SubstitutionSectionDTO  `json:"substitution"`
	DataQuality      DataQualitySectionDTO   `json:"dataQuality"`
	DegradedSections []string                `json:"degradedSections"`
}

// SummaryDTO represents the roll-up counters
type SummaryDTO struct {
	LowCoverageOrderCount int     `json:"lowCoverageOrderCount"`
	OpenOrderCount        int     `json:"openOrderCount"`
	HighRiskOrderCount    int     `json:"highRiskOrderCount"`
	ShortageQty           float64 `json:"shortageQty"`
	HotCustomerCount      int     `json:"hotCustomerCount"`
	ActivePickerCount     int     `json:"activePickerCount"`
	SubstitutionNeedCount int     `json:"substitutionNeedCount"`
	BlockedDataChecks     int     `json:"blockedDataChecks"`
	HealthScore           int     `json:"healthScore"`
}

// ATPSectionDTO represents the atp section
type ATPSectionDTO struct {
	SectionMetaDTO
	Orders []AllocationDTO `json:"orders"`
}

// AllocationDTO represents one order's coverage
type AllocationDTO struct {
	OrderID          string    `json:"orderId"`
	MikroOrderNumber string    `json:"mikroOrderNumber"`
	CustomerID       string    `json:"customerId"`
	CustomerName     string    `json:"customerName"`
	OrderDate        time.Time `json:"orderDate"`
	RemainingQty     float64   `json:"remainingQty"`
	ShortageQty      float64   `json:"shortageQty"`
	CoveredPercent   int       `json:"coveredPercent"`
	CoverageStatus   string    `json:"coverageStatus"`
	Lines            []LineDTO `json:"lines"`
}

// LineDTO represents one order line's coverage
type LineDTO struct {
	LineKey         string  `json:"lineKey"`
	LineNo          int     `json:"lineNo"`
	ProductCode     string  `json:"productCode"`
	ProductName     string  `json:"productName"`
	RequestedQty    float64 `json:"requestedQty"`
	RemainingQty    float64 `json:"remainingQty"`
	ShortageQty     float64 `json:"shortageQty"`
	CoveragePercent int     `json:"coveragePercent"`
	CoverageStatus  string  `json:"coverageStatus"`
}

// OrchestrationSectionDTO represents the orchestration section
type OrchestrationSectionDTO struct {
	SectionMetaDTO
	Waves          []WaveDTO           `json:"waves"`
	PickerWorkload []PickerWorkloadDTO `json:"pickerWorkload"`
}

// WaveDTO represents a planned wave
type WaveDTO struct {
	WaveID                 string   `json:"waveId"`
	OrderCount             int      `json:"orderCount"`
	LineCount              int      `json:"lineCount"`
	DistinctSkuCount       int      `json:"distinctSkuCount"`
	EstimatedMinutes       float64  `json:"estimatedMinutes"`
	RecommendedPickerCount int      `json:"recommendedPickerCount"`
	OrderNumbers           []string `json:"orderNumbers"`
}

// PickerWorkloadDTO represents one picker's load
type PickerWorkloadDTO struct {
	PickerUserID string `json:"pickerUserId"`
	PickerName   string `json:"pickerName"`
	ActiveOrders int    `json:"activeOrders"`
	OpenLines    int    `json:"openLines"`
}

// IntentSectionDTO represents the customerIntent section
type IntentSectionDTO struct {
	SectionMetaDTO
	Customers []CustomerIntentDTO `json:"customers"`
}

// CustomerIntentDTO represents one customer's intent score
type CustomerIntentDTO struct {
	CustomerID     string  `json:"customerId"`
	CustomerName   string  `json:"customerName"`
	IntentScore    int     `json:"intentScore"`
	IntentSegment  string  `json:"intentSegment"`
	NextBestAction string  `json:"nextBestAction"`
	CartAmount     float64 `json:"cartAmount"`
}

// RiskSectionDTO represents the risk section
type RiskSectionDTO struct {
	SectionMetaDTO
	Orders []RiskAssessmentDTO `json:"orders"`
}

// RiskAssessmentDTO represents one order's credit decision
type RiskAssessmentDTO struct {
	OrderID      string   `json:"orderId"`
	OrderNumber  string   `json:"orderNumber"`
	CustomerID   string   `json:"customerId"`
	CustomerName string   `json:"customerName"`
	OrderAmount  float64  `json:"orderAmount"`
	RiskScore    int      `json:"riskScore"`
	Decision     string   `json:"decision"`
	Reasons      []string `json:"reasons"`
}

// SubstitutionSectionDTO represents the substitution section
type SubstitutionSectionDTO struct {
	SectionMetaDTO
	Suggestions []SubstitutionSuggestionDTO `json:"suggestions"`
}

// SubstitutionSuggestionDTO represents alternatives for one shortage line
type SubstitutionSuggestionDTO struct {
	MikroOrderNumber  string                     `json:"mikroOrderNumber"`
	LineKey           string                     `json:"lineKey"`
	SourceProductCode string                     `json:"sourceProductCode"`
	ShortageQty       float64                    `json:"shortageQty"`
	NeededQty         float64                    `json:"neededQty"`
	Candidates        []SubstitutionCandidateDTO `json:"candidates"`
}

// SubstitutionCandidateDTO represents one ranked alternative
type SubstitutionCandidateDTO struct {
	ProductCode  string  `json:"productCode"`
	ProductName  string  `json:"productName"`
	Score        float64 `json:"score"`
	AvailableQty float64 `json:"availableQty"`
}

// DataQualitySectionDTO represents the dataQuality section
type DataQualitySectionDTO struct {
	SectionMetaDTO
	Checks  []DataQualityCheckDTO `json:"checks"`
	Summary DataQualitySummaryDTO `json:"summary"`
}

// DataQualityCheckDTO represents one rule result
type DataQualityCheckDTO struct {
	Code        string `json:"code"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Count       int    `json:"count"`
	Blocked     bool   `json:"blocked"`
}

// DataQualitySummaryDTO represents the data quality roll-up
type DataQualitySummaryDTO struct {
	HealthScore int `json:"healthScore"`
}
