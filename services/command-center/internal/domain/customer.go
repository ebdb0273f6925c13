package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerProfile joins the customer master record with balance and order history
type CustomerProfile struct {
	CustomerID      string          `json:"customerId"`
	CustomerName    string          `json:"customerName"`
	PaymentPlanCode string          `json:"paymentPlanCode"`
	CreditLimit     decimal.Decimal `json:"creditLimit"`

	// HasBalanceHistory is false when the customer/balance store holds no
	// balance rows for the customer
	HasBalanceHistory bool            `json:"hasBalanceHistory"`
	TotalBalance      decimal.Decimal `json:"totalBalance"`
	PastDueBalance    decimal.Decimal `json:"pastDueBalance"`
	PaymentDelays6M   int             `json:"paymentDelays6m"`

	AvgOrderValue    decimal.Decimal `json:"avgOrderValue"`
	OrdersLast90Days int             `json:"ordersLast90Days"`
}

// HasPaymentPlan reports whether a payment-plan code is on file
func (p CustomerProfile) HasPaymentPlan() bool {
	return p.PaymentPlanCode != ""
}

// Cart is a customer's open portal cart
type Cart struct {
	CustomerID string          `json:"customerId"`
	Amount     decimal.Decimal `json:"amount"`
	ItemCount  int             `json:"itemCount"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// IsEmpty reports whether the cart has no value
func (c Cart) IsEmpty() bool {
	return c.ItemCount == 0 || !c.Amount.IsPositive()
}

// IntentSegment buckets intent scores
type IntentSegment string

const (
	SegmentHot  IntentSegment = "HOT"
	SegmentWarm IntentSegment = "WARM"
	SegmentCold IntentSegment = "COLD"
)

// CustomerIntentScore is the urgency and engagement of one customer
type CustomerIntentScore struct {
	CustomerID     string          `json:"customerId"`
	CustomerName   string          `json:"customerName"`
	IntentScore    int             `json:"intentScore"`
	IntentSegment  IntentSegment   `json:"intentSegment"`
	NextBestAction string          `json:"nextBestAction"`
	CartAmount     decimal.Decimal `json:"cartAmount"`
}

// IntentReport is the payload of the customerIntent section
type IntentReport struct {
	Customers []CustomerIntentScore `json:"customers"`

	// HotCustomerCount counts every HOT customer, including those cut by the limit
	HotCustomerCount int `json:"hotCustomerCount"`
}

// RiskDecision is the approval recommendation for an order
type RiskDecision string

const (
	DecisionAutoApprove  RiskDecision = "AUTO_APPROVE"
	DecisionManualReview RiskDecision = "MANUAL_REVIEW"
	DecisionReject       RiskDecision = "REJECT"
)

// RiskAssessment is the credit decision for one open order
type RiskAssessment struct {
	OrderID      string          `json:"orderId"`
	OrderNumber  string          `json:"orderNumber"`
	CustomerID   string          `json:"customerId"`
	CustomerName string          `json:"customerName"`
	OrderAmount  decimal.Decimal `json:"orderAmount"`
	RiskScore    int             `json:"riskScore"`
	Decision     RiskDecision    `json:"decision"`
	Reasons      []string        `json:"reasons"`
}

// RiskReport is the payload of the risk section
type RiskReport struct {
	Orders []RiskAssessment `json:"orders"`
}
