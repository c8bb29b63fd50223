package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"shopgate/internal/domainutil"
	"shopgate/internal/model"
)

// BrandAdmin manages per-domain brand overlays. Every write evicts the
// cached brand payload for the touched domain.
type BrandAdmin struct {
	db         *gorm.DB
	brandCache Invalidator
}

// NewBrandAdmin creates a brand overlay admin service
func NewBrandAdmin(db *gorm.DB, brandCache Invalidator) *BrandAdmin {
	if brandCache == nil {
		brandCache = noopInvalidator{}
	}
	return &BrandAdmin{db: db, brandCache: brandCache}
}

// UpsertParams are the writable brand overlay fields
type UpsertParams struct {
	DomainName            string
	BrandName             string
	MetaPixelID           string
	EnabledPaymentMethods []string
	Theme                 model.Theme
}

// Upsert creates or replaces the brand overlay for a domain
func (a *BrandAdmin) Upsert(ctx context.Context, p UpsertParams) (*model.BrandConfig, error) {
	name, err := domainutil.Normalize(p.DomainName)
	if err != nil {
		return nil, fmt.Errorf("invalid domain name: %w", err)
	}

	methodsJSON, err := json.Marshal(p.EnabledPaymentMethods)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payment methods: %w", err)
	}

	var bc model.BrandConfig
	err = a.db.Where("domain_name = ?", name).First(&bc).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		bc = model.BrandConfig{
			DomainName:            name,
			BrandName:             p.BrandName,
			MetaPixelID:           p.MetaPixelID,
			EnabledPaymentMethods: methodsJSON,
			Theme:                 p.Theme,
			Status:                "active",
		}
		if err := a.db.Create(&bc).Error; err != nil {
			return nil, fmt.Errorf("failed to create brand config: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to query brand config for %s: %w", name, err)
	default:
		bc.BrandName = p.BrandName
		bc.MetaPixelID = p.MetaPixelID
		bc.EnabledPaymentMethods = methodsJSON
		bc.Theme = p.Theme
		if err := a.db.Model(&model.BrandConfig{}).Where("id = ?", bc.ID).
			Updates(map[string]interface{}{
				"brand_name":              bc.BrandName,
				"meta_pixel_id":           bc.MetaPixelID,
				"enabled_payment_methods": bc.EnabledPaymentMethods,
				"theme":                   bc.Theme,
			}).Error; err != nil {
			return nil, fmt.Errorf("failed to update brand config %d: %w", bc.ID, err)
		}
	}

	a.brandCache.Invalidate(ctx, name)
	log.Printf("[BrandAdmin] Upserted brand config for %s", name)
	return &bc, nil
}

// Get returns the brand overlay for a domain, nil when none exists
func (a *BrandAdmin) Get(ctx context.Context, domainName string) (*model.BrandConfig, error) {
	name, err := domainutil.Normalize(domainName)
	if err != nil {
		return nil, fmt.Errorf("invalid domain name: %w", err)
	}

	var bc model.BrandConfig
	if err := a.db.Where("domain_name = ?", name).First(&bc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query brand config for %s: %w", name, err)
	}
	return &bc, nil
}
