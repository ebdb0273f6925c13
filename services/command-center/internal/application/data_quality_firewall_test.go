package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/b2b-portal/opscenter/services/command-center/internal/config"
	"github.com/b2b-portal/opscenter/services/command-center/internal/domain"
)

func TestDataQualityFirewall_Run(t *testing.T) {
	scope := domain.DataQualityScope{Warehouses: included}

	t.Run("blocking violation lowers the health score", func(t *testing.T) {
		source := new(MockDataQualitySource)
		source.On("CountViolations", mock.Anything, domain.CheckNegativeStock, scope).Return(3, nil)
		source.On("CountViolations", mock.Anything, domain.CheckProductMissingCategory, scope).Return(12, nil)
		source.On("CountViolations", mock.Anything, mock.Anything, scope).Return(0, nil)

		report, err := NewDataQualityFirewall(source, config.DefaultRules()).Run(context.Background(), scope)

		require.NoError(t, err)
		assert.Len(t, report.Checks, 6)
		assert.Equal(t, 75, report.HealthScore, "non-blocking rules do not cost health")
		assert.Equal(t, 1, report.BlockingCount())

		// rule order is preserved
		assert.Equal(t, domain.CheckProductMissingCost, report.Checks[0].Code)
		assert.Equal(t, domain.CheckNegativeStock, report.Checks[2].Code)
		assert.Equal(t, 3, report.Checks[2].Count)
		source.AssertNumberOfCalls(t, "CountViolations", 6)
	})

	t.Run("failed check is left out and reported", func(t *testing.T) {
		source := new(MockDataQualitySource)
		source.On("CountViolations", mock.Anything, domain.CheckCustomerMissingPaymentPlan, scope).Return(0, errors.New("relation does not exist"))
		source.On("CountViolations", mock.Anything, domain.CheckProductMissingCost, scope).Return(1, nil)
		source.On("CountViolations", mock.Anything, mock.Anything, scope).Return(0, nil)

		report, err := NewDataQualityFirewall(source, config.DefaultRules()).Run(context.Background(), scope)

		require.Error(t, err)
		assert.Contains(t, err.Error(), string(domain.CheckCustomerMissingPaymentPlan))
		assert.Len(t, report.Checks, 5)
		assert.Equal(t, 80, report.HealthScore)
		for _, c := range report.Checks {
			assert.NotEqual(t, domain.CheckCustomerMissingPaymentPlan, c.Code)
		}
	})

	t.Run("weights saturate at zero", func(t *testing.T) {
		source := new(MockDataQualitySource)
		source.On("CountViolations", mock.Anything, mock.Anything, scope).Return(1, nil)

		report, err := NewDataQualityFirewall(source, config.DefaultRules()).Run(context.Background(), scope)

		require.NoError(t, err)
		assert.Equal(t, 0, report.HealthScore)
		assert.Equal(t, 4, report.BlockingCount())
	})
}
