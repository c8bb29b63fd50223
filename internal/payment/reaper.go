package payment

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"shopgate/internal/events"
	"shopgate/internal/model"
	"shopgate/internal/order"
)

// ReaperConfig holds abandoned-order reaper configuration
type ReaperConfig struct {
	Enabled       bool
	IntervalSec   int
	StaleAfterMin int
}

// Reaper periodically transitions stale CREATED/PAYMENT_PENDING orders to
// PAYMENT_ABANDONED. It uses the same audited transition primitive as the
// transaction processor, so the audit trail reads the same regardless of
// who moved the order. In multi-process deployments exactly one process
// should run the reaper.
type Reaper struct {
	store     order.Store
	publisher events.Publisher
	config    ReaperConfig
	logger    *logrus.Entry
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

// NewReaper creates an abandoned-order reaper
func NewReaper(store order.Store, publisher events.Publisher, config ReaperConfig, logger *logrus.Entry) *Reaper {
	return &Reaper{
		store:     store,
		publisher: publisher,
		config:    config,
		logger:    logger.WithField("component", "order-reaper"),
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Start starts the reaper loop
func (r *Reaper) Start() {
	if !r.config.Enabled {
		r.logger.Info("Disabled, not starting")
		close(r.stoppedCh)
		return
	}

	r.logger.Infof("Starting with interval=%ds, stale_after=%dmin",
		r.config.IntervalSec, r.config.StaleAfterMin)

	go r.run()
}

// Stop stops the reaper and waits for the loop to exit
func (r *Reaper) Stop() {
	if !r.config.Enabled {
		return
	}
	close(r.stopCh)
	<-r.stoppedCh
	r.logger.Info("Stopped")
}

func (r *Reaper) run() {
	defer close(r.stoppedCh)

	ticker := time.NewTicker(time.Duration(r.config.IntervalSec) * time.Second)
	defer ticker.Stop()

	// Run immediately on start
	r.Sweep()

	for {
		select {
		case <-ticker.C:
			r.Sweep()
		case <-r.stopCh:
			return
		}
	}
}

// Sweep runs one pass. Orders are processed independently; one failure must
// not abort the rest of the sweep.
func (r *Reaper) Sweep() {
	cutoff := time.Now().Add(-time.Duration(r.config.StaleAfterMin) * time.Minute)

	stale, err := r.store.FindStale(
		[]model.OrderStatus{model.OrderStatusCreated, model.OrderStatusPending},
		cutoff,
	)
	if err != nil {
		r.logger.Errorf("Failed to query stale orders: %v", err)
		return
	}

	if len(stale) == 0 {
		return
	}

	abandoned := 0
	for i := range stale {
		o := &stale[i]
		if err := r.store.Transition(o, model.OrderStatusAbandoned, "abandoned: no payment callback received"); err != nil {
			r.logger.Errorf("Failed to abandon order %d: %v", o.ID, err)
			continue
		}
		abandoned++

		err := r.publisher.Publish(context.Background(), events.TopicPaymentAbandoned, map[string]any{
			"orderId":       o.ID,
			"transactionId": o.TransactionID,
			"domain":        o.Domain,
		})
		if err != nil {
			r.logger.Errorf("Failed to publish abandonment for order %d: %v", o.ID, err)
		}
	}

	r.logger.Infof("Sweep done: candidates=%d, abandoned=%d", len(stale), abandoned)
}
