package application

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/b2b-portal/opscenter/services/command-center/internal/domain"
)

// DataQualityFirewall evaluates the master data rule battery
type DataQualityFirewall struct {
	source domain.DataQualitySource
	rules  []domain.DataQualityRule
}

// NewDataQualityFirewall creates a new DataQualityFirewall
func NewDataQualityFirewall(source domain.DataQualitySource, rules []domain.DataQualityRule) *DataQualityFirewall {
	return &DataQualityFirewall{source: source, rules: rules}
}

// Run evaluates every rule concurrently. Rules whose query fails are left
// out of the report and the joined error is returned with the partial report.
func (f *DataQualityFirewall) Run(ctx context.Context, scope domain.DataQualityScope) (domain.DataQualityReport, error) {
	counts := make([]int, len(f.rules))
	failures := make([]error, len(f.rules))

	var g errgroup.Group
	for i, rule := range f.rules {
		g.Go(func() error {
			count, err := f.source.CountViolations(ctx, rule.Code, scope)
			if err != nil {
				failures[i] = fmt.Errorf("%s: %w", rule.Code, err)
				return nil
			}
			counts[i] = count
			return nil
		})
	}
	_ = g.Wait()

	checks := make([]domain.DataQualityCheck, 0, len(f.rules))
	for i, rule := range f.rules {
		if failures[i] != nil {
			continue
		}
		checks = append(checks, domain.DataQualityCheck{
			Code:        rule.Code,
			Title:       rule.Title,
			Description: rule.Description,
			Severity:    rule.Severity,
			Count:       counts[i],
			Blocked:     rule.Blocked,
			Weight:      rule.Weight,
		})
	}

	report := domain.DataQualityReport{
		Checks:      checks,
		HealthScore: domain.HealthScore(checks),
	}

	if err := errors.Join(failures...); err != nil {
		return report, fmt.Errorf("data quality checks failed: %w", err)
	}
	return report, nil
}
