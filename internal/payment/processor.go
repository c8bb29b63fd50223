package payment

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"shopgate/internal/events"
	"shopgate/internal/model"
	"shopgate/internal/order"
	"shopgate/internal/payu"
)

// Notifier pushes order status changes to subscribed storefront clients.
// Push failure must never affect callback processing.
type Notifier interface {
	NotifyOrderStatus(orderID int, status, reason string)
}

// NoopNotifier is used when the realtime channel is disabled
type NoopNotifier struct{}

// NotifyOrderStatus discards the notification
func (NoopNotifier) NotifyOrderStatus(orderID int, status, reason string) {}

// Processor is the transaction state machine shared by the webhook and the
// browser-redirect entry points.
type Processor struct {
	store       order.Store
	gateway     *payu.Client
	publisher   events.Publisher
	notifier    Notifier
	logger      *logrus.Entry
	frontendURL string
}

// NewProcessor creates a transaction processor
func NewProcessor(store order.Store, gateway *payu.Client, publisher events.Publisher, notifier Notifier, logger *logrus.Entry, frontendURL string) *Processor {
	return &Processor{
		store:       store,
		gateway:     gateway,
		publisher:   publisher,
		notifier:    notifier,
		logger:      logger.WithField("component", "txn-processor"),
		frontendURL: frontendURL,
	}
}

// Process runs the callback through the verification gates and applies the
// idempotent status transition. Each gate is hard: failure stops processing
// and yields a typed outcome. Process never panics outward and never writes
// order state before the order is both located and amount-verified, with one
// exception: a confirmed amount mismatch marks the order PAYMENT_FAILED so
// the discrepancy is never left ambiguous.
func (p *Processor) Process(ctx context.Context, cb payu.Callback) Outcome {
	// Gate 1: integrity. A bad hash means tampering or key/salt
	// misconfiguration; log the full context for forensics and touch nothing.
	if !p.gateway.Verify(cb) {
		p.logger.WithFields(logrus.Fields{
			"txnid":    cb.TxnID,
			"status":   cb.Status,
			"amount":   cb.Amount,
			"mihpayid": cb.MihPayID,
		}).Error("Callback hash verification failed")
		return Outcome{Reason: ReasonSecurityError, Message: "hash verification failed"}
	}

	// Gate 2: locate the attempt.
	o, err := p.store.FindByTransactionID(cb.TxnID)
	if err != nil {
		p.logger.Errorf("Order lookup failed for txnid %s: %v", cb.TxnID, err)
		return Outcome{Reason: ReasonInternalError, Message: "order lookup failed"}
	}
	if o == nil {
		p.logger.Warnf("No order for callback txnid %s", cb.TxnID)
		return Outcome{Reason: ReasonOrderNotFound, Message: "order not found"}
	}

	// Gate 3: amount match, both sides normalized to 2 decimals.
	stored := payu.FormatAmount(o.TotalAmount)
	reported := normalizeAmount(cb.Amount)
	if stored != reported {
		p.logger.WithFields(logrus.Fields{
			"txnid":    cb.TxnID,
			"orderId":  o.ID,
			"stored":   stored,
			"reported": reported,
		}).Error("Callback amount mismatch")

		reason := fmt.Sprintf("amount mismatch: gateway reported %s, order total %s", reported, stored)
		if err := p.store.MarkFailed(o, cb.MihPayID, reason); err != nil {
			p.logger.Errorf("Failed to mark order %d failed on amount mismatch: %v", o.ID, err)
		}
		p.emit(ctx, events.TopicPaymentFailed, o, string(ReasonAmountMismatch))
		return Outcome{Reason: ReasonAmountMismatch, Message: reason, Amount: reported, Order: o}
	}

	// Gate 4: idempotency. PAYMENT_SUCCESS is terminal for gateway input;
	// duplicate webhook deliveries and the webhook/redirect race both land
	// here.
	if o.Status == model.OrderStatusSuccess {
		return Outcome{Success: true, Idempotent: true, Reason: ReasonSuccess, Amount: stored, Order: o}
	}

	// Gate 5: apply the reported status.
	if strings.EqualFold(cb.Status, "success") {
		claimed, err := p.store.ClaimSuccess(o, cb.MihPayID, "payment confirmed by gateway")
		if err != nil {
			p.logger.Errorf("Failed to record success on order %d: %v", o.ID, err)
			return Outcome{Reason: ReasonInternalError, Message: "status update failed", Order: o}
		}
		if !claimed {
			// A concurrent callback won the conditional update.
			return Outcome{Success: true, Idempotent: true, Reason: ReasonSuccess, Amount: stored, Order: o}
		}

		p.logger.WithFields(logrus.Fields{
			"orderId":  o.ID,
			"txnid":    cb.TxnID,
			"mihpayid": cb.MihPayID,
		}).Info("Payment confirmed")
		p.emit(ctx, events.TopicPaymentSuccess, o, string(ReasonSuccess))
		p.notifier.NotifyOrderStatus(o.ID, string(o.Status), string(ReasonSuccess))
		return Outcome{Success: true, Reason: ReasonSuccess, Amount: stored, Order: o}
	}

	failureReason := cb.ErrorMessage
	if failureReason == "" {
		failureReason = "gateway reported status " + cb.Status
	}
	if err := p.store.MarkFailed(o, cb.MihPayID, failureReason); err != nil {
		p.logger.Errorf("Failed to record failure on order %d: %v", o.ID, err)
		return Outcome{Reason: ReasonInternalError, Message: "status update failed", Order: o}
	}

	p.emit(ctx, events.TopicPaymentFailed, o, failureReason)
	p.notifier.NotifyOrderStatus(o.ID, string(o.Status), string(ReasonTransactionFailed))
	return Outcome{Reason: ReasonTransactionFailed, Message: failureReason, Amount: stored, Order: o}
}

// AnnotateRisk derives and persists the risk annotation. The redirect path
// calls it for every outcome that resolved an order, success or failure.
func (p *Processor) AnnotateRisk(oc Outcome) {
	if oc.Order == nil {
		return
	}
	level, factors := AssessRisk(oc.Order, oc)
	if err := p.store.SetRisk(oc.Order, level, factors); err != nil {
		p.logger.Errorf("Failed to persist risk annotation on order %d: %v", oc.Order.ID, err)
	}
}

// RedirectURL picks where to send the browser after a redirect callback.
// Precedence: the order's stored tenant domain, the callback's udf1, the
// configured default frontend.
func (p *Processor) RedirectURL(oc Outcome, cb payu.Callback) string {
	base := p.frontendURL
	if oc.Order != nil && oc.Order.Domain != "" {
		base = withScheme(oc.Order.Domain)
	} else if cb.UDF1 != "" {
		base = withScheme(cb.UDF1)
	}
	base = strings.TrimSuffix(base, "/")

	q := url.Values{}
	if oc.Order != nil {
		q.Set("orderId", strconv.Itoa(oc.Order.ID))
	}
	if oc.Success {
		q.Set("amount", oc.Amount)
		return base + "/payment-success?" + q.Encode()
	}

	q.Set("reason", string(oc.Reason))
	return base + "/payment-failed?" + q.Encode()
}

// FailureURL is the safe fallback redirect when processing itself blew up
func (p *Processor) FailureURL() string {
	return strings.TrimSuffix(p.frontendURL, "/") + "/payment-failed?reason=" + string(ReasonInternalError)
}

func (p *Processor) emit(ctx context.Context, topic string, o *model.Order, reason string) {
	err := p.publisher.Publish(ctx, topic, map[string]any{
		"orderId":       o.ID,
		"transactionId": o.TransactionID,
		"status":        o.Status,
		"amount":        payu.FormatAmount(o.TotalAmount),
		"domain":        o.Domain,
		"reason":        reason,
	})
	if err != nil {
		p.logger.Errorf("Failed to publish %s for order %d: %v", topic, o.ID, err)
	}
}

// normalizeAmount forces the gateway-reported amount through the same
// 2-decimal formatting as stored totals, so "250.0" and "250.00" compare
// equal and only real discrepancies trip the mismatch gate.
func normalizeAmount(amount string) string {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil {
		return strings.TrimSpace(amount)
	}
	return payu.FormatAmount(parsed)
}

func withScheme(domain string) string {
	if strings.Contains(domain, "://") {
		return domain
	}
	return "https://" + domain
}
