package domain

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"shopgate/internal/model"
	"shopgate/internal/tenant"
)

var (
	_ tenant.DomainReader        = (*Readers)(nil)
	_ tenant.BrandReader         = (*Readers)(nil)
	_ tenant.AllowedDomainReader = (*Readers)(nil)
)

// Readers are the request-path lookups behind the tenant resolver and gate.
// Kept separate from the admin services: these run on every storefront
// request and must stay lean.
type Readers struct {
	db *gorm.DB
}

// NewReaders creates the tenant lookup readers
func NewReaders(db *gorm.DB) *Readers {
	return &Readers{db: db}
}

// FindByName returns the domain record for a canonical name, nil when absent
func (r *Readers) FindByName(name string) (*model.Domain, error) {
	var d model.Domain
	if err := r.db.Where("domain_name = ?", name).First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query domain %s: %w", name, err)
	}
	return &d, nil
}

// FindByDomain returns the active brand overlay for a domain, nil when absent
func (r *Readers) FindByDomain(name string) (*model.BrandConfig, error) {
	var bc model.BrandConfig
	err := r.db.Where("domain_name = ? AND status = ?", name, "active").First(&bc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query brand config %s: %w", name, err)
	}
	return &bc, nil
}

// ExistsActive reports whether an active allow-list entry matches the
// normalized or raw origin form
func (r *Readers) ExistsActive(normalized, raw string) (bool, error) {
	var count int64
	err := r.db.Model(&model.AllowedDomain{}).
		Where("domain IN ? AND is_active = ?", []string{normalized, raw}, true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to query allow-list: %w", err)
	}
	return count > 0, nil
}
