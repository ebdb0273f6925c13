package application

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/b2b-portal/opscenter/services/command-center/internal/config"
	"github.com/b2b-portal/opscenter/services/command-center/internal/domain"
)

// Next best actions keyed on segment and whether the cart holds anything
var nextBestActions = map[domain.IntentSegment][2]string{
	//                    non-empty cart                     empty cart
	domain.SegmentHot:  {"sepeti tamamlamaya yönlendir", "kişiye özel teklif gönder"},
	domain.SegmentWarm: {"sepet hatırlatma mesajı gönder", "yeni ürün önerisi paylaş"},
	domain.SegmentCold: {"sepete özel indirim tanımla", "yeniden etkileşim kampanyası"},
}

// NextBestAction returns the recommended action for a segment
func NextBestAction(segment domain.IntentSegment, cartEmpty bool) string {
	actions := nextBestActions[segment]
	if cartEmpty {
		return actions[1]
	}
	return actions[0]
}

// IntentEngine scores customer urgency from cart and order signals
type IntentEngine struct {
	carts  domain.CartSource
	policy config.IntentPolicy
}

// NewIntentEngine creates a new IntentEngine
func NewIntentEngine(carts domain.CartSource, policy config.IntentPolicy) *IntentEngine {
	return &IntentEngine{carts: carts, policy: policy}
}

// ActivitySince is the start of the trailing activity window
func (e *IntentEngine) ActivitySince(asOf time.Time) time.Time {
	return asOf.AddDate(0, 0, -e.policy.ActivityWindowDays)
}

// Run reads active carts and scores the given profiles
func (e *IntentEngine) Run(ctx context.Context, profiles []domain.CustomerProfile, asOf time.Time, limit int) (domain.IntentReport, error) {
	carts, err := e.carts.ListActiveCarts(ctx, e.ActivitySince(asOf))
	if err != nil {
		return domain.IntentReport{Customers: []domain.CustomerIntentScore{}}, fmt.Errorf("cart read: %w", err)
	}
	return e.Score(profiles, carts, asOf, limit), nil
}

// Score computes intent for every profile, sorted by score desc then customerId.
// HotCustomerCount is taken before the result is truncated to limit.
func (e *IntentEngine) Score(profiles []domain.CustomerProfile, carts []domain.Cart, asOf time.Time, limit int) domain.IntentReport {
	cartsByCustomer := make(map[string]domain.Cart, len(carts))
	for _, c := range carts {
		cartsByCustomer[c.CustomerID] = c
	}

	scores := make([]domain.CustomerIntentScore, 0, len(profiles))
	hot := 0
	for _, p := range profiles {
		cart, hasCart := cartsByCustomer[p.CustomerID]
		empty := !hasCart || cart.IsEmpty()

		score := e.intentScore(p, cart, empty, asOf)
		segment := e.segment(score)
		if segment == domain.SegmentHot {
			hot++
		}

		amount := decimal.Zero
		if !empty {
			amount = cart.Amount
		}

		scores = append(scores, domain.CustomerIntentScore{
			CustomerID:     p.CustomerID,
			CustomerName:   p.CustomerName,
			IntentScore:    score,
			IntentSegment:  segment,
			NextBestAction: NextBestAction(segment, empty),
			CartAmount:     amount,
		})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].IntentScore != scores[j].IntentScore {
			return scores[i].IntentScore > scores[j].IntentScore
		}
		return scores[i].CustomerID < scores[j].CustomerID
	})

	if limit > 0 && len(scores) > limit {
		scores = scores[:limit]
	}

	return domain.IntentReport{Customers: scores, HotCustomerCount: hot}
}

func (e *IntentEngine) intentScore(p domain.CustomerProfile, cart domain.Cart, cartEmpty bool, asOf time.Time) int {
	var cartSignal, recencySignal float64

	if !cartEmpty {
		// No order history means no baseline to compare the cart against
		if p.AvgOrderValue.IsPositive() {
			cartSignal = domain.Clamp01(cart.Amount.Div(p.AvgOrderValue).InexactFloat64())
		}

		days := asOf.Sub(cart.UpdatedAt).Hours() / 24
		if days < 0 {
			days = 0
		}
		recencySignal = domain.Clamp01(1 - days/e.policy.RecencyWindowDays)
	}

	frequencySignal := domain.Clamp01(float64(p.OrdersLast90Days) / e.policy.FrequencySaturation)

	totalWeight := e.policy.CartWeight + e.policy.RecencyWeight + e.policy.FrequencyWeight
	weighted := e.policy.CartWeight*cartSignal +
		e.policy.RecencyWeight*recencySignal +
		e.policy.FrequencyWeight*frequencySignal

	return domain.ClampInt(int(math.Round(100*weighted/totalWeight)), 0, 100)
}

func (e *IntentEngine) segment(score int) domain.IntentSegment {
	switch {
	case score >= e.policy.HotFrom:
		return domain.SegmentHot
	case score >= e.policy.WarmFrom:
		return domain.SegmentWarm
	default:
		return domain.SegmentCold
	}
}
