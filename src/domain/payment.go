package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

const (
	DefaultProcessor  = "default"
	FallbackProcessor = "fallback"
)

// PaymentRequest is the inbound unit of work. CorrelationID is the
// caller-assigned idempotency key and survives retries and escalation.
type PaymentRequest struct {
	CorrelationID string          `json:"correlationId"`
	Amount        decimal.Decimal `json:"amount"`
}

// ProcessedPayment is the ledger record written after a processor accepted
// a payment.
type ProcessedPayment struct {
	CorrelationID string          `json:"correlationId"`
	ProcessedBy   string          `json:"processedBy"`
	Amount        decimal.Decimal `json:"amount"`
	RequestedAt   time.Time       `json:"requestedAt"`
}

// NewProcessedPayment stamps a request with the processing route and the
// current time truncated to seconds, so summary range filters work at
// second granularity on both bounds.
func NewProcessedPayment(processedBy string, req PaymentRequest) ProcessedPayment {
	return ProcessedPayment{
		CorrelationID: req.CorrelationID,
		ProcessedBy:   processedBy,
		Amount:        req.Amount,
		RequestedAt:   time.Now().UTC().Truncate(time.Second),
	}
}

// CreatedBetween reports whether the payment was requested inside the given
// bounds, inclusive on both sides. A nil bound is unconstrained.
func (p ProcessedPayment) CreatedBetween(from, to *time.Time) bool {
	if from != nil && p.RequestedAt.Before(*from) {
		return false
	}
	if to != nil && p.RequestedAt.After(*to) {
		return false
	}
	return true
}

type PaymentSummary struct {
	TotalRequests int64           `json:"totalRequests"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
}

// Add folds one payment into the summary.
func (s PaymentSummary) Add(p ProcessedPayment) PaymentSummary {
	return PaymentSummary{
		TotalRequests: s.TotalRequests + 1,
		TotalAmount:   s.TotalAmount.Add(p.Amount),
	}
}

// Merge combines two summaries. Merge is associative and commutative, so
// the order payments were folded in does not matter.
func (s PaymentSummary) Merge(other PaymentSummary) PaymentSummary {
	return PaymentSummary{
		TotalRequests: s.TotalRequests + other.TotalRequests,
		TotalAmount:   s.TotalAmount.Add(other.TotalAmount),
	}
}

// PaymentsSummary always carries both routes; a route with no payments
// reports the zero summary, never an absent key.
type PaymentsSummary struct {
	Default  PaymentSummary `json:"default"`
	Fallback PaymentSummary `json:"fallback"`
}

// Summarize folds a batch of processed payments into per-route summaries.
func Summarize(payments []ProcessedPayment) PaymentsSummary {
	var summary PaymentsSummary
	for _, p := range payments {
		switch p.ProcessedBy {
		case FallbackProcessor:
			summary.Fallback = summary.Fallback.Add(p)
		default:
			summary.Default = summary.Default.Add(p)
		}
	}
	return summary
}
