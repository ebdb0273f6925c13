package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/b2b-portal/opscenter/services/command-center/internal/domain"
)

// Policy holds every tunable of the command center engines. Operators change
// weights and thresholds through the policy file without a deploy.
type Policy struct {
	ATP           ATPPolicy           `yaml:"atp"`
	Orchestration OrchestrationPolicy `yaml:"orchestration"`
	Intent        IntentPolicy        `yaml:"intent"`
	Risk          RiskPolicy          `yaml:"risk"`
	Substitution  SubstitutionPolicy  `yaml:"substitution"`
	DataQuality   DataQualityPolicy   `yaml:"dataQuality"`
	Aggregator    AggregatorPolicy    `yaml:"aggregator"`
	Query         QueryPolicy         `yaml:"query"`
}

// ATPPolicy configures allocation
type ATPPolicy struct {
	IncludedWarehouses []string `yaml:"includedWarehouses"`
}

// OrchestrationPolicy configures wave planning
type OrchestrationPolicy struct {
	MaxLinesPerWave   int     `yaml:"maxLinesPerWave"`
	MaxOrdersPerWave  int     `yaml:"maxOrdersPerWave"`
	WaveSetupMinutes  float64 `yaml:"waveSetupMinutes"`
	MinutesPerLine    float64 `yaml:"minutesPerLine"`
	TargetWaveMinutes float64 `yaml:"targetWaveMinutes"`
}

// IntentPolicy configures customer intent scoring
type IntentPolicy struct {
	CartWeight          float64 `yaml:"cartWeight"`
	RecencyWeight       float64 `yaml:"recencyWeight"`
	FrequencyWeight     float64 `yaml:"frequencyWeight"`
	RecencyWindowDays   float64 `yaml:"recencyWindowDays"`
	FrequencySaturation float64 `yaml:"frequencySaturation"`
	ActivityWindowDays  int     `yaml:"activityWindowDays"`
	HotFrom             int     `yaml:"hotFrom"`
	WarmFrom            int     `yaml:"warmFrom"`
}

// RiskPolicy configures credit risk scoring
type RiskPolicy struct {
	PastDueWeight       float64 `yaml:"pastDueWeight"`
	AmountWeight        float64 `yaml:"amountWeight"`
	DelayWeight         float64 `yaml:"delayWeight"`
	AmountRatioCeiling  float64 `yaml:"amountRatioCeiling"`
	DelaySaturation     float64 `yaml:"delaySaturation"`
	NeutralAmountSignal float64 `yaml:"neutralAmountSignal"`
	AutoApproveBelow    int     `yaml:"autoApproveBelow"`
	RejectFrom          int     `yaml:"rejectFrom"`
}

// SubstitutionPolicy configures substitution ranking
type SubstitutionPolicy struct {
	PriceWeight           float64 `yaml:"priceWeight"`
	StockWeight           float64 `yaml:"stockWeight"`
	CoOccurrenceWeight    float64 `yaml:"coOccurrenceWeight"`
	UnknownPriceProximity float64 `yaml:"unknownPriceProximity"`
	MaxCandidates         int     `yaml:"maxCandidates"`
}

// DataQualityPolicy is the rule battery of the data quality firewall
type DataQualityPolicy struct {
	Rules []domain.DataQualityRule `yaml:"rules"`
}

// AggregatorPolicy configures the snapshot fan-out
type AggregatorPolicy struct {
	SnapshotTimeout    time.Duration `yaml:"snapshotTimeout"`
	EngineTimeout      time.Duration `yaml:"engineTimeout"`
	LowCoveragePercent int           `yaml:"lowCoveragePercent"`
	// CacheTTL of zero disables the snapshot cache
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// QueryPolicy bounds the request parameters
type QueryPolicy struct {
	DefaultOrderLimit    int `yaml:"defaultOrderLimit"`
	MaxOrderLimit        int `yaml:"maxOrderLimit"`
	DefaultCustomerLimit int `yaml:"defaultCustomerLimit"`
	MaxCustomerLimit     int `yaml:"maxCustomerLimit"`
	MaxSeriesTokens      int `yaml:"maxSeriesTokens"`
}

// DefaultRules returns the standard master data battery
func DefaultRules() []domain.DataQualityRule {
	return []domain.DataQualityRule{
		{
			Code:        domain.CheckProductMissingCost,
			Title:       "Maliyet bilgisi eksik ürünler",
			Description: "Active products without a cost basis cannot be priced or margin-checked.",
			Severity:    domain.SeverityHigh,
			Blocked:     true,
			Weight:      20,
		},
		{
			Code:        domain.CheckCustomerMissingPaymentPlan,
			Title:       "Ödeme planı eksik cariler",
			Description: "Customers without a payment-plan code must not be auto-approved.",
			Severity:    domain.SeverityCritical,
			Blocked:     true,
			Weight:      25,
		},
		{
			Code:        domain.CheckNegativeStock,
			Title:       "Negatif stok kayıtları",
			Description: "Warehouse stock rows with a negative quantity make allocation untrustworthy.",
			Severity:    domain.SeverityCritical,
			Blocked:     true,
			Weight:      25,
		},
		{
			Code:        domain.CheckProductMissingCategory,
			Title:       "Kategorisi olmayan ürünler",
			Description: "Products without a category never receive substitution candidates.",
			Severity:    domain.SeverityMedium,
			Blocked:     false,
			Weight:      10,
		},
		{
			Code:        domain.CheckCustomerMissingCreditLimit,
			Title:       "Kredi limiti tanımsız cariler",
			Description: "Risk scoring falls back to average order value for these customers.",
			Severity:    domain.SeverityMedium,
			Blocked:     false,
			Weight:      10,
		},
		{
			Code:        domain.CheckOrderLineUnknownProduct,
			Title:       "Katalogda olmayan sipariş satırları",
			Description: "Open order lines referencing a product code missing from the catalog.",
			Severity:    domain.SeverityHigh,
			Blocked:     true,
			Weight:      15,
		},
	}
}

// DefaultPolicy returns the default policy
func DefaultPolicy() *Policy {
	return &Policy{
		ATP: ATPPolicy{},
		Orchestration: OrchestrationPolicy{
			MaxLinesPerWave:   40,
			MaxOrdersPerWave:  25,
			WaveSetupMinutes:  5,
			MinutesPerLine:    1.2,
			TargetWaveMinutes: 30,
		},
		Intent: IntentPolicy{
			CartWeight:          0.4,
			RecencyWeight:       0.3,
			FrequencyWeight:     0.3,
			RecencyWindowDays:   14,
			FrequencySaturation: 6,
			ActivityWindowDays:  90,
			HotFrom:             70,
			WarmFrom:            40,
		},
		Risk: RiskPolicy{
			PastDueWeight:       0.5,
			AmountWeight:        0.3,
			DelayWeight:         0.2,
			AmountRatioCeiling:  3,
			DelaySaturation:     5,
			NeutralAmountSignal: 0.5,
			AutoApproveBelow:    30,
			RejectFrom:          70,
		},
		Substitution: SubstitutionPolicy{
			PriceWeight:           0.45,
			StockWeight:           0.35,
			CoOccurrenceWeight:    0.20,
			UnknownPriceProximity: 0.5,
			MaxCandidates:         3,
		},
		DataQuality: DataQualityPolicy{
			Rules: DefaultRules(),
		},
		Aggregator: AggregatorPolicy{
			SnapshotTimeout:    5 * time.Second,
			EngineTimeout:      4 * time.Second,
			LowCoveragePercent: 80,
		},
		Query: QueryPolicy{
			DefaultOrderLimit:    50,
			MaxOrderLimit:        500,
			DefaultCustomerLimit: 20,
			MaxCustomerLimit:     200,
			MaxSeriesTokens:      20,
		},
	}
}

// LoadPolicy reads a YAML policy file and overlays it on the defaults. An
// empty path returns the defaults.
func LoadPolicy(path string) (*Policy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	return LoadPolicyFromBytes(data)
}

// LoadPolicyFromBytes parses a YAML policy and overlays it on the defaults
func LoadPolicyFromBytes(data []byte) (*Policy, error) {
	policy := DefaultPolicy()
	if err := yaml.Unmarshal(data, policy); err != nil {
		return nil, fmt.Errorf("failed to parse policy: %w", err)
	}

	if err := policy.Validate(); err != nil {
		return nil, err
	}

	return policy, nil
}

// Validate checks weights, thresholds and bounds
func (p *Policy) Validate() error {
	var errs []error

	o := p.Orchestration
	if o.MaxLinesPerWave <= 0 || o.MaxOrdersPerWave <= 0 {
		errs = append(errs, errors.New("orchestration: wave bounds must be positive"))
	}
	if o.WaveSetupMinutes < 0 || o.MinutesPerLine < 0 || o.TargetWaveMinutes <= 0 {
		errs = append(errs, errors.New("orchestration: invalid timing constants"))
	}

	i := p.Intent
	if !nonNegative(i.CartWeight, i.RecencyWeight, i.FrequencyWeight) || i.CartWeight+i.RecencyWeight+i.FrequencyWeight == 0 {
		errs = append(errs, errors.New("intent: weights must be non-negative and not all zero"))
	}
	if i.RecencyWindowDays <= 0 || i.FrequencySaturation <= 0 || i.ActivityWindowDays <= 0 {
		errs = append(errs, errors.New("intent: windows must be positive"))
	}
	if !(0 <= i.WarmFrom && i.WarmFrom <= i.HotFrom && i.HotFrom <= 100) {
		errs = append(errs, errors.New("intent: segment thresholds must satisfy 0 <= warmFrom <= hotFrom <= 100"))
	}

	r := p.Risk
	if !nonNegative(r.PastDueWeight, r.AmountWeight, r.DelayWeight) || r.PastDueWeight+r.AmountWeight+r.DelayWeight == 0 {
		errs = append(errs, errors.New("risk: weights must be non-negative and not all zero"))
	}
	if r.AmountWeight == 0 {
		errs = append(errs, errors.New("risk: amountWeight is required for customers without balance history"))
	}
	if r.AmountRatioCeiling <= 0 || r.DelaySaturation <= 0 {
		errs = append(errs, errors.New("risk: saturation constants must be positive"))
	}
	if r.NeutralAmountSignal < 0 || r.NeutralAmountSignal > 1 {
		errs = append(errs, errors.New("risk: neutralAmountSignal must be within [0,1]"))
	}
	if !(0 < r.AutoApproveBelow && r.AutoApproveBelow < r.RejectFrom && r.RejectFrom <= 100) {
		errs = append(errs, errors.New("risk: thresholds must satisfy 0 < autoApproveBelow < rejectFrom <= 100"))
	}

	s := p.Substitution
	if !nonNegative(s.PriceWeight, s.StockWeight, s.CoOccurrenceWeight) {
		errs = append(errs, errors.New("substitution: weights must be non-negative"))
	}
	if s.MaxCandidates <= 0 {
		errs = append(errs, errors.New("substitution: maxCandidates must be positive"))
	}

	if len(p.DataQuality.Rules) == 0 {
		errs = append(errs, errors.New("dataQuality: at least one rule is required"))
	}
	seen := make(map[domain.DataQualityCode]bool)
	for _, rule := range p.DataQuality.Rules {
		if rule.Code == "" || seen[rule.Code] {
			errs = append(errs, fmt.Errorf("dataQuality: missing or duplicate rule code %q", rule.Code))
		}
		seen[rule.Code] = true
		if rule.Weight < 0 {
			errs = append(errs, fmt.Errorf("dataQuality: rule %s has a negative weight", rule.Code))
		}
	}

	a := p.Aggregator
	if a.SnapshotTimeout <= 0 || a.EngineTimeout <= 0 {
		errs = append(errs, errors.New("aggregator: timeouts must be positive"))
	}
	if a.CacheTTL < 0 {
		errs = append(errs, errors.New("aggregator: cacheTTL must not be negative"))
	}

	q := p.Query
	if q.DefaultOrderLimit < 1 || q.DefaultOrderLimit > q.MaxOrderLimit {
		errs = append(errs, errors.New("query: defaultOrderLimit must be within [1, maxOrderLimit]"))
	}
	if q.DefaultCustomerLimit < 1 || q.DefaultCustomerLimit > q.MaxCustomerLimit {
		errs = append(errs, errors.New("query: defaultCustomerLimit must be within [1, maxCustomerLimit]"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid policy: %w", errors.Join(errs...))
	}
	return nil
}

// WarehouseIncluded reports whether code is one of the included warehouses
func (p *Policy) WarehouseIncluded(code string) bool {
	for _, w := range p.ATP.IncludedWarehouses {
		if w == code {
			return true
		}
	}
	return false
}

func nonNegative(values ...float64) bool {
	for _, v := range values {
		if v < 0 {
			return false
		}
	}
	return true
}
