package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b2b-portal/opscenter/services/command-center/internal/config"
	"github.com/b2b-portal/opscenter/services/command-center/internal/domain"
)

func defaultRiskEngine() *RiskEngine {
	return NewRiskEngine(config.DefaultPolicy().Risk)
}

func riskOrder(id, customerID string, amount float64) domain.OpenOrder {
	o := order(id, 1)
	o.CustomerID = customerID
	o.Amount = qty(amount)
	return o
}

func TestRiskEngine_Assess(t *testing.T) {
	tests := []struct {
		name         string
		order        domain.OpenOrder
		profile      *domain.CustomerProfile
		wantScore    int
		wantDecision domain.RiskDecision
		wantReason   string
	}{
		{
			name:  "healthy customer well within credit limit",
			order: riskOrder("O-1", "C-1", 1000),
			profile: &domain.CustomerProfile{
				CustomerID: "C-1", PaymentPlanCode: "30G", CreditLimit: qty(10000),
				HasBalanceHistory: true, TotalBalance: qty(1000), PastDueBalance: qty(0),
			},
			wantScore:    1,
			wantDecision: domain.DecisionAutoApprove,
		},
		{
			name:  "mostly past due, at the amount ceiling, frequent delays",
			order: riskOrder("O-2", "C-2", 30000),
			profile: &domain.CustomerProfile{
				CustomerID: "C-2", PaymentPlanCode: "30G", CreditLimit: qty(10000),
				HasBalanceHistory: true, TotalBalance: qty(1000), PastDueBalance: qty(900), PaymentDelays6M: 5,
			},
			wantScore:    95,
			wantDecision: domain.DecisionReject,
			wantReason:   "past-due balance is 90% of total",
		},
		{
			name:  "no balance history is lifted to manual review",
			order: riskOrder("O-3", "C-3", 1000),
			profile: &domain.CustomerProfile{
				CustomerID: "C-3", PaymentPlanCode: "30G", CreditLimit: qty(10000),
			},
			wantScore:    30,
			wantDecision: domain.DecisionManualReview,
			wantReason:   "no balance history",
		},
		{
			name:  "missing payment plan never auto approves",
			order: riskOrder("O-4", "C-4", 1000),
			profile: &domain.CustomerProfile{
				CustomerID: "C-4", CreditLimit: qty(10000),
				HasBalanceHistory: true, TotalBalance: qty(1000),
			},
			wantScore:    30,
			wantDecision: domain.DecisionManualReview,
			wantReason:   "payment plan missing",
		},
		{
			name:         "unknown customer",
			order:        riskOrder("O-5", "C-404", 1000),
			wantScore:    50,
			wantDecision: domain.DecisionManualReview,
			wantReason:   "customer profile not found",
		},
		{
			name:  "no amount reference yields the neutral signal",
			order: riskOrder("O-6", "C-6", 1000),
			profile: &domain.CustomerProfile{
				CustomerID: "C-6", PaymentPlanCode: "30G",
			},
			wantScore:    50,
			wantDecision: domain.DecisionManualReview,
			wantReason:   "no credit limit or order history to compare amount against",
		},
		{
			name:  "average order value stands in for a missing credit limit",
			order: riskOrder("O-7", "C-7", 2000),
			profile: &domain.CustomerProfile{
				CustomerID: "C-7", PaymentPlanCode: "30G", AvgOrderValue: qty(1000),
				HasBalanceHistory: true, TotalBalance: qty(1000),
			},
			wantScore:    20,
			wantDecision: domain.DecisionAutoApprove,
			wantReason:   "order amount is 2.0x the average order value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var profiles []domain.CustomerProfile
			if tt.profile != nil {
				profiles = append(profiles, *tt.profile)
			}

			assessments := defaultRiskEngine().Assess([]domain.OpenOrder{tt.order}, profiles)

			require.Len(t, assessments, 1)
			got := assessments[0]
			assert.Equal(t, tt.wantScore, got.RiskScore)
			assert.Equal(t, tt.wantDecision, got.Decision)
			assert.NotNil(t, got.Reasons)
			if tt.wantReason != "" {
				assert.Contains(t, got.Reasons, tt.wantReason)
			}
		})
	}
}

func TestRiskEngine_Assess_SkipsApprovedAndSorts(t *testing.T) {
	approved := riskOrder("O-approved", "C-1", 50000)
	approved.Approved = true

	orders := []domain.OpenOrder{
		riskOrder("O-b", "C-404", 1000),
		approved,
		riskOrder("O-a", "C-404", 1000),
		riskOrder("O-c", "C-1", 100),
	}
	profiles := []domain.CustomerProfile{{
		CustomerID: "C-1", PaymentPlanCode: "30G", CreditLimit: qty(10000),
		HasBalanceHistory: true, TotalBalance: qty(100),
	}}

	assessments := defaultRiskEngine().Assess(orders, profiles)

	require.Len(t, assessments, 3)
	assert.Equal(t, "O-a", assessments[0].OrderID)
	assert.Equal(t, "O-b", assessments[1].OrderID)
	assert.Equal(t, "O-c", assessments[2].OrderID)
}

func TestRiskEngine_Decide_IsMonotonic(t *testing.T) {
	engine := defaultRiskEngine()
	rank := map[domain.RiskDecision]int{
		domain.DecisionAutoApprove:  0,
		domain.DecisionManualReview: 1,
		domain.DecisionReject:       2,
	}

	assert.Equal(t, domain.DecisionAutoApprove, engine.Decide(29))
	assert.Equal(t, domain.DecisionManualReview, engine.Decide(30))
	assert.Equal(t, domain.DecisionManualReview, engine.Decide(69))
	assert.Equal(t, domain.DecisionReject, engine.Decide(70))

	for score := 1; score <= 100; score++ {
		assert.GreaterOrEqual(t, rank[engine.Decide(score)], rank[engine.Decide(score-1)], "score %d", score)
	}
}

func TestRiskEngine_Run_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := defaultRiskEngine().Run(ctx, []domain.OpenOrder{riskOrder("O-1", "C-1", 10)}, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, report.Orders)
}
