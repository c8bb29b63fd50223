package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shopgate/internal/model"

	"gorm.io/gorm"
)

type gormStore struct {
	db *gorm.DB
}

// NewStore creates a gorm-backed order store
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Create(o *model.Order) error {
	if err := s.db.Create(o).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (s *gormStore) FindByID(id int) (*model.Order, error) {
	var o model.Order
	if err := s.db.First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query order %d: %w", id, err)
	}
	return &o, nil
}

func (s *gormStore) FindByTransactionID(txnID string) (*model.Order, error) {
	var o model.Order
	if err := s.db.Where("transaction_id = ?", txnID).First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query order by txnid %s: %w", txnID, err)
	}
	return &o, nil
}

func appended(o *model.Order, reason string) model.StatusHistory {
	return append(o.StatusHistory, model.StatusEvent{
		Timestamp: time.Now(),
		Message:   reason,
	})
}

func (s *gormStore) Transition(o *model.Order, newStatus model.OrderStatus, reason string) error {
	history := appended(o, reason)
	err := s.db.Model(&model.Order{}).
		Where("id = ?", o.ID).
		Updates(map[string]interface{}{
			"status":         newStatus,
			"status_history": history,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to transition order %d to %s: %w", o.ID, newStatus, err)
	}

	o.Status = newStatus
	o.StatusHistory = history
	return nil
}

func (s *gormStore) ClaimSuccess(o *model.Order, paymentID, reason string) (bool, error) {
	history := appended(o, reason)
	res := s.db.Model(&model.Order{}).
		Where("id = ? AND status <> ?", o.ID, model.OrderStatusSuccess).
		Updates(map[string]interface{}{
			"status":         model.OrderStatusSuccess,
			"payment_id":     paymentID,
			"status_history": history,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to claim success on order %d: %w", o.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		// Lost the race: another callback already recorded the success.
		o.Status = model.OrderStatusSuccess
		return false, nil
	}

	o.Status = model.OrderStatusSuccess
	o.PaymentID = paymentID
	o.StatusHistory = history
	return true, nil
}

func (s *gormStore) MarkFailed(o *model.Order, paymentID, reason string) error {
	history := appended(o, reason)
	err := s.db.Model(&model.Order{}).
		Where("id = ?", o.ID).
		Updates(map[string]interface{}{
			"status":         model.OrderStatusFailed,
			"payment_id":     paymentID,
			"status_history": history,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark order %d failed: %w", o.ID, err)
	}

	o.Status = model.OrderStatusFailed
	o.PaymentID = paymentID
	o.StatusHistory = history
	return nil
}

func (s *gormStore) BeginRetry(o *model.Order, newTxnID, reason string) error {
	history := appended(o, reason)
	err := s.db.Model(&model.Order{}).
		Where("id = ?", o.ID).
		Updates(map[string]interface{}{
			"transaction_id": newTxnID,
			"retry_attempts": o.RetryAttempts + 1,
			"status":         model.OrderStatusPending,
			"status_history": history,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to begin retry on order %d: %w", o.ID, err)
	}

	o.TransactionID = newTxnID
	o.RetryAttempts++
	o.Status = model.OrderStatusPending
	o.StatusHistory = history
	return nil
}

func (s *gormStore) SetRisk(o *model.Order, level model.RiskLevel, factors []string) error {
	factorsJSON, err := json.Marshal(factors)
	if err != nil {
		return fmt.Errorf("failed to marshal risk factors: %w", err)
	}

	err = s.db.Model(&model.Order{}).
		Where("id = ?", o.ID).
		Updates(map[string]interface{}{
			"risk_level":   level,
			"risk_factors": factorsJSON,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to set risk on order %d: %w", o.ID, err)
	}

	o.RiskLevel = level
	o.RiskFactors = factorsJSON
	return nil
}

func (s *gormStore) FindStale(statuses []model.OrderStatus, cutoff time.Time) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.Where("status IN ? AND created_at < ?", statuses, cutoff).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query stale orders: %w", err)
	}
	return orders, nil
}
