package domain

// Wave is a batch of orders picked together in one warehouse pass
type Wave struct {
	WaveID                 string   `json:"waveId"`
	OrderCount             int      `json:"orderCount"`
	LineCount              int      `json:"lineCount"`
	DistinctSkuCount       int      `json:"distinctSkuCount"`
	EstimatedMinutes       float64  `json:"estimatedMinutes"`
	RecommendedPickerCount int      `json:"recommendedPickerCount"`
	OrderIDs               []string `json:"orderIds"`
	OrderNumbers           []string `json:"orderNumbers"`
}

// PickerWorkload is the current load of one active picker
type PickerWorkload struct {
	PickerUserID string `json:"pickerUserId"`
	PickerName   string `json:"pickerName"`
	ActiveOrders int    `json:"activeOrders"`
	OpenLines    int    `json:"openLines"`
}

// OrchestrationPlan is the payload of the orchestration section
type OrchestrationPlan struct {
	Waves          []Wave           `json:"waves"`
	PickerWorkload []PickerWorkload `json:"pickerWorkload"`
}
