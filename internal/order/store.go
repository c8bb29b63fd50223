package order

import (
	"time"

	"shopgate/internal/model"
)

// Store is the order persistence collaborator. Every status mutation goes
// through an audited transition so the audit trail stays consistent no
// matter which component moved the order.
type Store interface {
	Create(o *model.Order) error
	FindByID(id int) (*model.Order, error)
	FindByTransactionID(txnID string) (*model.Order, error)

	// Transition appends an audit entry and sets the status.
	Transition(o *model.Order, newStatus model.OrderStatus, reason string) error

	// ClaimSuccess transitions to PAYMENT_SUCCESS with a conditional update
	// (status <> PAYMENT_SUCCESS). It reports false when another callback
	// already claimed the success, which closes the webhook/redirect race.
	ClaimSuccess(o *model.Order, paymentID, reason string) (bool, error)

	// MarkFailed transitions to PAYMENT_FAILED recording the gateway id.
	MarkFailed(o *model.Order, paymentID, reason string) error

	// BeginRetry mints the new attempt: swaps in the fresh transaction id,
	// bumps the retry counter and moves the order to PAYMENT_PENDING.
	BeginRetry(o *model.Order, newTxnID, reason string) error

	// SetRisk persists the derived risk annotation.
	SetRisk(o *model.Order, level model.RiskLevel, factors []string) error

	// FindStale returns orders in the given statuses created before the
	// cutoff. Used by the abandoned-order reaper.
	FindStale(statuses []model.OrderStatus, cutoff time.Time) ([]model.Order, error)
}
