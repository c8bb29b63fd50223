package payment

import "shopgate/internal/model"

// Reason is the machine-readable outcome code for callback processing. The
// frontend uses it to distinguish a failed payment (retry option) from a
// missing order (generic error) from tampering (generic failure page).
type Reason string

const (
	ReasonSuccess           Reason = "success"
	ReasonSecurityError     Reason = "security_error"
	ReasonOrderNotFound     Reason = "order_not_found"
	ReasonAmountMismatch    Reason = "security_amount_mismatch"
	ReasonTransactionFailed Reason = "transaction_failed"
	ReasonInternalError     Reason = "internal_error"
)

// Outcome is the structured result of processing one gateway callback. The
// webhook and redirect handlers render the same outcome differently (ack vs.
// redirect); neither re-implements the state machine.
type Outcome struct {
	Success    bool
	Idempotent bool
	Reason     Reason
	Message    string
	Amount     string

	// Order is the resolved order, nil when lookup never happened
	// (hash mismatch) or found nothing.
	Order *model.Order
}
