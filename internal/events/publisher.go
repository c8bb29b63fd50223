package events

import "context"

// Routing keys for payment lifecycle events
const (
	TopicPaymentSuccess   = "payment.success"
	TopicPaymentFailed    = "payment.failed"
	TopicPaymentAbandoned = "payment.abandoned"
)

// Publisher emits payment lifecycle events to downstream consumers
// (notification service, analytics). Delivery is best-effort; callers must
// not fail the payment flow on publish errors.
type Publisher interface {
	Publish(ctx context.Context, topic string, data any) error
}

// NoopPublisher is used when no broker is configured
type NoopPublisher struct{}

// Publish discards the event
func (NoopPublisher) Publish(ctx context.Context, topic string, data any) error {
	return nil
}
