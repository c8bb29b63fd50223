package model

import (
	"database/sql/driver"
	"encoding/json"

	"gorm.io/datatypes"
)

// Theme holds per-tenant visual overrides
type Theme struct {
	PrimaryColor string `json:"primaryColor"`
	LogoURL      string `json:"logoUrl"`
}

// Value implements driver.Valuer interface
func (t Theme) Value() (driver.Value, error) {
	return json.Marshal(t)
}

// Scan implements sql.Scanner interface
func (t *Theme) Scan(value interface{}) error {
	if value == nil {
		*t = Theme{}
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

	return json.Unmarshal(bytes, t)
}

// BrandConfig is the optional per-domain presentation overlay. The Domain
// record stays the source of truth for access and pixel id; this overlay only
// customizes what the storefront renders.
type BrandConfig struct {
	BaseModel
	DomainName            string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"domainName"`
	BrandName             string         `gorm:"type:varchar(128)" json:"brandName"`
	MetaPixelID           string         `gorm:"type:varchar(64)" json:"metaPixelId"`
	EnabledPaymentMethods datatypes.JSON `gorm:"type:json" json:"enabledPaymentMethods"`
	Theme                 Theme          `gorm:"type:json" json:"theme"`
	Status                string         `gorm:"type:varchar(16);default:'active'" json:"status"`
}

// TableName specifies the table name for BrandConfig model
func (BrandConfig) TableName() string {
	return "brand_configs"
}
