package model

import "time"

// AllowedDomain is one origin permitted to call the API cross-origin. Kept
// separate from Domain: the tenant registry gates brand/bootstrap reads,
// this set gates the CORS layer.
type AllowedDomain struct {
	ID       int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Domain   string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"domain"`
	IsActive bool      `gorm:"default:true;index" json:"isActive"`
	AddedAt  time.Time `gorm:"autoCreateTime" json:"addedAt"`
}

// TableName specifies the table name for AllowedDomain model
func (AllowedDomain) TableName() string {
	return "allowed_domains"
}
