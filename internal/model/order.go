package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// OrderStatus represents the payment lifecycle state of an order
type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "CREATED"
	OrderStatusPending   OrderStatus = "PAYMENT_PENDING"
	OrderStatusSuccess   OrderStatus = "PAYMENT_SUCCESS"
	OrderStatusFailed    OrderStatus = "PAYMENT_FAILED"
	OrderStatusAbandoned OrderStatus = "PAYMENT_ABANDONED"
)

// RiskLevel is the derived risk annotation attached after callback processing
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// StatusEvent is one entry of the order's audit trail
type StatusEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// StatusHistory is the append-only audit trail (JSON column). Entries are
// only ever appended, never rewritten.
type StatusHistory []StatusEvent

// Value implements driver.Valuer interface
func (h StatusHistory) Value() (driver.Value, error) {
	return json.Marshal(h)
}

// Scan implements sql.Scanner interface
func (h *StatusHistory) Scan(value interface{}) error {
	if value == nil {
		*h = StatusHistory{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return nil
		}
	}

	return json.Unmarshal(bytes, h)
}

// Order represents one purchase attempt and its lifecycle.
//
// TransactionID uniquely identifies one payment attempt: a retry mints a new
// id and bumps RetryAttempts, old ids are never reused. TotalAmount keeps
// 2-place decimal precision because the gateway hash is computed over the
// exact amount string.
type Order struct {
	BaseModel
	UserID        string         `gorm:"type:varchar(64);index" json:"userId"`
	Products      datatypes.JSON `gorm:"type:json" json:"products"` // snapshot at checkout, not a live reference
	TotalAmount   float64        `gorm:"type:decimal(10,2);not null" json:"totalAmount"`
	PaymentMode   string         `gorm:"type:varchar(32)" json:"paymentMode"`
	TransactionID string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"transactionId"`
	Status        OrderStatus    `gorm:"type:varchar(24);default:'CREATED';index" json:"status"`
	PaymentID     string         `gorm:"type:varchar(64)" json:"paymentId"` // gateway's id once known
	RetryAttempts int            `gorm:"default:0" json:"retryAttempts"`
	Domain        string         `gorm:"type:varchar(255);index" json:"domain"` // originating tenant, drives post-payment redirect
	RiskLevel     RiskLevel      `gorm:"type:varchar(16)" json:"riskLevel"`
	RiskFactors   datatypes.JSON `gorm:"type:json" json:"riskFactors"`
	StatusHistory StatusHistory  `gorm:"type:json" json:"statusHistory"`
}

// TableName specifies the table name for Order model
func (Order) TableName() string {
	return "orders"
}

// IsRetryable reports whether a new payment attempt may be started for the
// order's current status
func (o *Order) IsRetryable() bool {
	switch o.Status {
	case OrderStatusFailed, OrderStatusAbandoned, OrderStatusCreated:
		return true
	default:
		return false
	}
}
