package application

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/b2b-portal/opscenter/services/command-center/internal/config"
	"github.com/b2b-portal/opscenter/services/command-center/internal/domain"
)

// RiskEngine scores credit risk of open, unapproved orders
type RiskEngine struct {
	policy config.RiskPolicy
}

// NewRiskEngine creates a new RiskEngine
func NewRiskEngine(policy config.RiskPolicy) *RiskEngine {
	return &RiskEngine{policy: policy}
}

// Run assesses orders against the already loaded customer profiles
func (e *RiskEngine) Run(ctx context.Context, orders []domain.OpenOrder, profiles []domain.CustomerProfile) (domain.RiskReport, error) {
	if err := ctx.Err(); err != nil {
		return domain.RiskReport{Orders: []domain.RiskAssessment{}}, err
	}
	return domain.RiskReport{Orders: e.Assess(orders, profiles)}, nil
}

// Assess scores every unapproved order, sorted by riskScore desc then orderId
func (e *RiskEngine) Assess(orders []domain.OpenOrder, profiles []domain.CustomerProfile) []domain.RiskAssessment {
	byCustomer := make(map[string]domain.CustomerProfile, len(profiles))
	for _, p := range profiles {
		byCustomer[p.CustomerID] = p
	}

	assessments := make([]domain.RiskAssessment, 0, len(orders))
	for _, order := range orders {
		if order.Approved {
			continue
		}

		profile, found := byCustomer[order.CustomerID]
		score, reasons := e.score(order, profile, found)

		assessments = append(assessments, domain.RiskAssessment{
			OrderID:      order.OrderID,
			OrderNumber:  order.OrderNumber,
			CustomerID:   order.CustomerID,
			CustomerName: order.CustomerName,
			OrderAmount:  order.Amount,
			RiskScore:    score,
			Decision:     e.Decide(score),
			Reasons:      reasons,
		})
	}

	sort.SliceStable(assessments, func(i, j int) bool {
		if assessments[i].RiskScore != assessments[j].RiskScore {
			return assessments[i].RiskScore > assessments[j].RiskScore
		}
		return assessments[i].OrderID < assessments[j].OrderID
	})

	return assessments
}

// Decide maps a score onto a decision. It is monotonic in score.
func (e *RiskEngine) Decide(score int) domain.RiskDecision {
	switch {
	case score >= e.policy.RejectFrom:
		return domain.DecisionReject
	case score < e.policy.AutoApproveBelow:
		return domain.DecisionAutoApprove
	default:
		return domain.DecisionManualReview
	}
}

func (e *RiskEngine) score(order domain.OpenOrder, profile domain.CustomerProfile, found bool) (int, []string) {
	reasons := []string{}

	amountSignal, amountReason := e.amountSignal(order.Amount, profile)
	if amountReason != "" {
		reasons = append(reasons, amountReason)
	}

	var raw float64
	if found && profile.HasBalanceHistory {
		pastDueSignal := 0.0
		if profile.TotalBalance.IsPositive() {
			pastDueSignal = domain.Clamp01(profile.PastDueBalance.Div(profile.TotalBalance).InexactFloat64())
		}
		if pastDueSignal > 0 {
			reasons = append(reasons, fmt.Sprintf("past-due balance is %d%% of total", int(math.Round(100*pastDueSignal))))
		}

		delaySignal := domain.Clamp01(float64(profile.PaymentDelays6M) / e.policy.DelaySaturation)
		if profile.PaymentDelays6M > 0 {
			reasons = append(reasons, fmt.Sprintf("%d payment delays in the last 6 months", profile.PaymentDelays6M))
		}

		totalWeight := e.policy.PastDueWeight + e.policy.AmountWeight + e.policy.DelayWeight
		raw = (e.policy.PastDueWeight*pastDueSignal +
			e.policy.AmountWeight*amountSignal +
			e.policy.DelayWeight*delaySignal) / totalWeight
	} else {
		raw = amountSignal
	}

	score := domain.ClampInt(int(math.Round(100*raw)), 0, 100)

	// Insufficient data never auto-approves; the score is lifted to the
	// review threshold so Decide stays monotonic
	floor := false
	switch {
	case !found:
		reasons = append(reasons, "customer profile not found")
		floor = true
	case !profile.HasBalanceHistory:
		reasons = append(reasons, "no balance history")
		floor = true
	}
	if !found || !profile.HasPaymentPlan() {
		reasons = append(reasons, "payment plan missing")
		floor = true
	}
	if floor && score < e.policy.AutoApproveBelow {
		score = e.policy.AutoApproveBelow
	}

	return score, reasons
}

// amountSignal compares the order amount with the credit limit, falling back
// to the average order value. No reference at all yields the neutral signal.
func (e *RiskEngine) amountSignal(amount decimal.Decimal, profile domain.CustomerProfile) (float64, string) {
	reference, label := profile.CreditLimit, "credit limit"
	if !reference.IsPositive() {
		reference, label = profile.AvgOrderValue, "average order value"
	}
	if !reference.IsPositive() {
		return e.policy.NeutralAmountSignal, "no credit limit or order history to compare amount against"
	}

	ratio := amount.Div(reference).InexactFloat64()
	signal := domain.Clamp01(ratio / e.policy.AmountRatioCeiling)
	if ratio > 1 {
		return signal, fmt.Sprintf("order amount is %.1fx the %s", ratio, label)
	}
	return signal, ""
}
