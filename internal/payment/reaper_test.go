package payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"shopgate/internal/model"
)

func backdate(t *testing.T, db *gorm.DB, id int, age time.Duration) {
	t.Helper()
	require.NoError(t, db.Model(&model.Order{}).
		Where("id = ?", id).
		Update("created_at", time.Now().Add(-age)).Error)
}

func TestSweep_AbandonsStaleOrders(t *testing.T) {
	store, db := newTestStore(t)
	pub := &capturePublisher{}
	reaper := NewReaper(store, pub, ReaperConfig{
		Enabled:       true,
		IntervalSec:   600,
		StaleAfterMin: 30,
	}, testLogger())

	stale := pendingOrder(t, store, "TXN-stale", 100.00, "shop.example.com")
	fresh := pendingOrder(t, store, "TXN-fresh", 100.00, "shop.example.com")
	paid := pendingOrder(t, store, "TXN-paid", 100.00, "shop.example.com")
	_, err := store.ClaimSuccess(paid, "mih-1", "payment confirmed by gateway")
	require.NoError(t, err)

	backdate(t, db, stale.ID, 31*time.Minute)
	backdate(t, db, fresh.ID, 29*time.Minute)
	backdate(t, db, paid.ID, 45*time.Minute)

	reaper.Sweep()

	reloaded, err := store.FindByID(stale.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusAbandoned, reloaded.Status)
	last := reloaded.StatusHistory[len(reloaded.StatusHistory)-1]
	assert.Equal(t, "abandoned: no payment callback received", last.Message)

	untouched, err := store.FindByID(fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, untouched.Status)

	done, err := store.FindByID(paid.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusSuccess, done.Status)

	assert.Equal(t, []string{"payment.abandoned"}, pub.topics)
}

func TestSweep_AbandonedOrderIsRetryable(t *testing.T) {
	store, db := newTestStore(t)
	reaper := NewReaper(store, &capturePublisher{}, ReaperConfig{
		Enabled:       true,
		IntervalSec:   600,
		StaleAfterMin: 30,
	}, testLogger())

	o := pendingOrder(t, store, "TXN-a", 100.00, "shop.example.com")
	backdate(t, db, o.ID, 40*time.Minute)
	reaper.Sweep()

	reloaded, err := store.FindByID(o.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsRetryable())
}

func TestReaper_DisabledStartStop(t *testing.T) {
	store, _ := newTestStore(t)
	reaper := NewReaper(store, &capturePublisher{}, ReaperConfig{Enabled: false}, testLogger())

	// Must not hang.
	reaper.Start()
	reaper.Stop()
}
