package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// DomainStatus represents tenant access status
type DomainStatus string

const (
	DomainStatusActive   DomainStatus = "active"
	DomainStatusInactive DomainStatus = "inactive"
)

// Provisioning status constants (apache vhost / TLS cert), written by the
// out-of-process provisioning worker
const (
	ProvisionStatusPending = "pending"
	ProvisionStatusActive  = "active"
	ProvisionStatusFailed  = "failed"
)

// SetupLogEntry is one line of the domain provisioning log
type SetupLogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// SetupLogs is the append-only provisioning log (JSON column)
type SetupLogs []SetupLogEntry

// Value implements driver.Valuer interface
func (l SetupLogs) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// Scan implements sql.Scanner interface
func (l *SetupLogs) Scan(value interface{}) error {
	if value == nil {
		*l = SetupLogs{}
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

	return json.Unmarshal(bytes, l)
}

// Domain represents one tenant storefront served by the shared backend.
// DomainName is the join key for every tenant-scoped lookup (brand config,
// CORS allow-list).
type Domain struct {
	BaseModel
	DomainName   string       `gorm:"type:varchar(255);uniqueIndex;not null" json:"domainName"`
	MetaPixelID  string       `gorm:"type:varchar(64)" json:"metaPixelId"`
	Status       DomainStatus `gorm:"type:varchar(16);default:'active';index" json:"status"`
	ApacheStatus string       `gorm:"type:varchar(16);default:'pending'" json:"apacheStatus"` // pending|active|failed
	SSLStatus    string       `gorm:"type:varchar(16);default:'pending'" json:"sslStatus"`    // pending|active|failed
	SetupLogs    SetupLogs    `gorm:"type:json" json:"setupLogs"`
}

// TableName specifies the table name for Domain model
func (Domain) TableName() string {
	return "domains"
}

// AppendSetupLog appends a provisioning log line. Past entries are never
// mutated.
func (d *Domain) AppendSetupLog(message string) {
	d.SetupLogs = append(d.SetupLogs, SetupLogEntry{
		Timestamp: time.Now(),
		Message:   message,
	})
}
