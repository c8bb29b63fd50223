package order

import (
	"testing"
	"time"

	"shopgate/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Order{}))
	return NewStore(db)
}

func newTestOrder(t *testing.T, s Store, txnID string) *model.Order {
	t.Helper()
	o := &model.Order{
		UserID:        "u-1",
		TotalAmount:   250.00,
		PaymentMode:   "payu",
		TransactionID: txnID,
		Status:        model.OrderStatusCreated,
		Domain:        "shop.example.com",
	}
	require.NoError(t, s.Create(o))
	return o
}

func TestFindByTransactionID(t *testing.T) {
	s := newTestStore(t)
	created := newTestOrder(t, s, "TXN-1")

	found, err := s.FindByTransactionID("TXN-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)

	missing, err := s.FindByTransactionID("TXN-unknown")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTransition_AppendsAudit(t *testing.T) {
	s := newTestStore(t)
	o := newTestOrder(t, s, "TXN-2")

	require.NoError(t, s.Transition(o, model.OrderStatusPending, "payment initiated"))
	require.NoError(t, s.Transition(o, model.OrderStatusFailed, "gateway reported failure"))

	reloaded, err := s.FindByID(o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusFailed, reloaded.Status)
	require.Len(t, reloaded.StatusHistory, 2)
	assert.Equal(t, "payment initiated", reloaded.StatusHistory[0].Message)
	assert.Equal(t, "gateway reported failure", reloaded.StatusHistory[1].Message)
}

func TestClaimSuccess_Idempotent(t *testing.T) {
	s := newTestStore(t)
	o := newTestOrder(t, s, "TXN-3")
	require.NoError(t, s.Transition(o, model.OrderStatusPending, "payment initiated"))

	claimed, err := s.ClaimSuccess(o, "mih-1", "payment confirmed by gateway")
	require.NoError(t, err)
	assert.True(t, claimed)

	// Second delivery of the same callback must not re-claim.
	second, err := s.FindByTransactionID("TXN-3")
	require.NoError(t, err)
	claimed, err = s.ClaimSuccess(second, "mih-1", "payment confirmed by gateway")
	require.NoError(t, err)
	assert.False(t, claimed)

	reloaded, err := s.FindByID(o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusSuccess, reloaded.Status)
	assert.Equal(t, "mih-1", reloaded.PaymentID)

	// Exactly one success audit entry.
	successEntries := 0
	for _, e := range reloaded.StatusHistory {
		if e.Message == "payment confirmed by gateway" {
			successEntries++
		}
	}
	assert.Equal(t, 1, successEntries)
}

func TestBeginRetry_MintsNewTransactionID(t *testing.T) {
	s := newTestStore(t)
	o := newTestOrder(t, s, "TXN-4")
	require.NoError(t, s.MarkFailed(o, "mih-2", "gateway reported failure"))

	require.NoError(t, s.BeginRetry(o, "TXN-4-retry", "retry attempt 1"))

	assert.Equal(t, "TXN-4-retry", o.TransactionID)
	assert.Equal(t, 1, o.RetryAttempts)
	assert.Equal(t, model.OrderStatusPending, o.Status)

	// Old transaction id no longer resolves.
	old, err := s.FindByTransactionID("TXN-4")
	require.NoError(t, err)
	assert.Nil(t, old)

	fresh, err := s.FindByTransactionID("TXN-4-retry")
	require.NoError(t, err)
	require.NotNil(t, fresh)
	assert.Equal(t, o.ID, fresh.ID)
}

func TestSetRisk(t *testing.T) {
	s := newTestStore(t)
	o := newTestOrder(t, s, "TXN-5")

	require.NoError(t, s.SetRisk(o, model.RiskLevelHigh, []string{"amount_mismatch"}))

	reloaded, err := s.FindByID(o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RiskLevelHigh, reloaded.RiskLevel)
	assert.Contains(t, string(reloaded.RiskFactors), "amount_mismatch")
}

func TestFindStale(t *testing.T) {
	s := newTestStore(t)
	stale := newTestOrder(t, s, "TXN-6")
	fresh := newTestOrder(t, s, "TXN-7")
	done := newTestOrder(t, s, "TXN-8")
	_, err := s.ClaimSuccess(done, "mih-3", "payment confirmed by gateway")
	require.NoError(t, err)

	// FindStale cuts on created_at, so age the stale order directly.
	gdb := s.(*gormStore).db
	require.NoError(t, gdb.Model(&model.Order{}).
		Where("id = ?", stale.ID).
		Update("created_at", time.Now().Add(-31*time.Minute)).Error)

	orders, err := s.FindStale(
		[]model.OrderStatus{model.OrderStatusCreated, model.OrderStatusPending},
		time.Now().Add(-30*time.Minute),
	)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, stale.ID, orders[0].ID)
	_ = fresh
}
