package domain

// Severity ranks data quality rules
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// DataQualityCode identifies a master data integrity rule
type DataQualityCode string

const (
	CheckProductMissingCost         DataQualityCode = "PRODUCT_MISSING_COST"
	CheckCustomerMissingPaymentPlan DataQualityCode = "CUSTOMER_MISSING_PAYMENT_PLAN"
	CheckNegativeStock              DataQualityCode = "NEGATIVE_STOCK"
	CheckProductMissingCategory     DataQualityCode = "PRODUCT_MISSING_CATEGORY"
	CheckCustomerMissingCreditLimit DataQualityCode = "CUSTOMER_MISSING_CREDIT_LIMIT"
	CheckOrderLineUnknownProduct    DataQualityCode = "ORDER_LINE_UNKNOWN_PRODUCT"
)

// DataQualityRule describes one check of the battery
type DataQualityRule struct {
	Code        DataQualityCode `json:"code" yaml:"code"`
	Title       string          `json:"title" yaml:"title"`
	Description string          `json:"description" yaml:"description"`
	Severity    Severity        `json:"severity" yaml:"severity"`
	Blocked     bool            `json:"blocked" yaml:"blocked"`
	Weight      int             `json:"weight" yaml:"weight"`
}

// DataQualityCheck is the evaluated result of one rule
type DataQualityCheck struct {
	Code        DataQualityCode `json:"code"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Severity    Severity        `json:"severity"`
	Count       int             `json:"count"`
	Blocked     bool            `json:"blocked"`
	Weight      int             `json:"weight"`
}

// Failing reports whether the check found violations
func (c DataQualityCheck) Failing() bool {
	return c.Count > 0
}

// Blocking reports whether the check gates automated actions
func (c DataQualityCheck) Blocking() bool {
	return c.Blocked && c.Count > 0
}

// DataQualityScope narrows checks that have a warehouse dimension
type DataQualityScope struct {
	Warehouses []string
}

// DataQualityReport is the payload of the dataQuality section
type DataQualityReport struct {
	Checks      []DataQualityCheck `json:"checks"`
	HealthScore int                `json:"healthScore"`
}

// BlockingCount returns the number of blocked checks with violations
func (r DataQualityReport) BlockingCount() int {
	n := 0
	for _, c := range r.Checks {
		if c.Blocking() {
			n++
		}
	}
	return n
}

// HealthScore is 100 minus the weights of blocking checks, clamped to [0,100]
func HealthScore(checks []DataQualityCheck) int {
	score := 100
	for _, c := range checks {
		if c.Blocking() {
			score -= c.Weight
		}
	}
	return ClampInt(score, 0, 100)
}
