package payment

import "shopgate/internal/model"

// Risk thresholds. Amounts are in the store currency's major unit.
const (
	highValueAmount   = 10000.0
	manyRetryAttempts = 2
)

// AssessRisk derives a risk annotation for an order from its processing
// outcome. A confirmed amount mismatch always dominates; otherwise the level
// accumulates from order characteristics.
func AssessRisk(o *model.Order, oc Outcome) (model.RiskLevel, []string) {
	var factors []string

	if oc.Reason == ReasonAmountMismatch {
		factors = append(factors, "amount_mismatch")
		return model.RiskLevelHigh, factors
	}

	score := 0
	if o.TotalAmount >= highValueAmount {
		score++
		factors = append(factors, "high_value")
	}
	if o.RetryAttempts >= manyRetryAttempts {
		score++
		factors = append(factors, "repeated_retries")
	}
	if oc.Reason == ReasonTransactionFailed {
		score++
		factors = append(factors, "gateway_failure")
	}

	switch {
	case score >= 2:
		return model.RiskLevelHigh, factors
	case score == 1:
		return model.RiskLevelMedium, factors
	default:
		return model.RiskLevelLow, factors
	}
}
