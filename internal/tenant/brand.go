package tenant

import (
	"context"
	"errors"
	"fmt"
	"log"

	"shopgate/internal/cache"
	"shopgate/internal/model"
)

// ErrDomainInactive is returned for an explicitly deactivated tenant. The
// HTTP layer renders it as 403 so the storefront can show its maintenance
// page instead of a generic error.
var ErrDomainInactive = errors.New("domain is inactive")

// SupportedPaymentMethods is the static list of globally supported payment
// method tags advertised to every storefront.
var SupportedPaymentMethods = []string{"payu", "cod"}

// DefaultPrimaryColor is used when a tenant has no theme overlay
const DefaultPrimaryColor = "#1a73e8"

// DomainReader reads tenant domain records
type DomainReader interface {
	FindByName(name string) (*model.Domain, error)
}

// BrandReader reads the optional per-domain presentation overlay
type BrandReader interface {
	FindByDomain(name string) (*model.BrandConfig, error)
}

// BrandPayload is the composed per-tenant bootstrap response
type BrandPayload struct {
	BrandName      string      `json:"brandName"`
	MetaPixelID    string      `json:"metaPixelId"`
	DomainName     string      `json:"domainName"`
	Status         string      `json:"status"`
	Theme          model.Theme `json:"theme"`
	PaymentMethods []string    `json:"paymentMethods"`
}

// BrandService composes the per-tenant branding payload, cache-first
type BrandService struct {
	domains    DomainReader
	brands     BrandReader
	cache      cache.Store
	production bool
}

// NewBrandService creates a brand config resolver
func NewBrandService(domains DomainReader, brands BrandReader, cacheStore cache.Store, production bool) *BrandService {
	return &BrandService{
		domains:    domains,
		brands:     brands,
		cache:      cacheStore,
		production: production,
	}
}

// Resolve returns the branding payload for a tenant domain.
//
// An inactive Domain record yields ErrDomainInactive; this is deliberately
// distinct from not-found. In non-production mode a missing Domain record
// synthesizes a permissive default so local development needs no seed data.
func (s *BrandService) Resolve(ctx context.Context, domainName string) (*BrandPayload, error) {
	var cached BrandPayload
	hit, err := s.cache.GetJSON(ctx, domainName, &cached)
	if err != nil {
		// Cache trouble is not fatal; fall through to the database.
		log.Printf("[BrandService] cache read failed for %s: %v", domainName, err)
	}
	if hit {
		return &cached, nil
	}

	domain, err := s.domains.FindByName(domainName)
	if err != nil {
		return nil, fmt.Errorf("failed to load domain %s: %w", domainName, err)
	}

	if domain != nil && domain.Status != model.DomainStatusActive {
		return nil, ErrDomainInactive
	}

	if domain == nil {
		if s.production {
			return nil, fmt.Errorf("no domain record for %s", domainName)
		}
		// Development fallback: synthesize a permissive config.
		payload := &BrandPayload{
			BrandName:      "Dev Store",
			DomainName:     domainName,
			Status:         "active",
			Theme:          model.Theme{PrimaryColor: DefaultPrimaryColor},
			PaymentMethods: SupportedPaymentMethods,
		}
		return payload, nil
	}

	overlay, err := s.brands.FindByDomain(domainName)
	if err != nil {
		return nil, fmt.Errorf("failed to load brand config for %s: %w", domainName, err)
	}

	payload := &BrandPayload{
		BrandName:  "Online Store",
		DomainName: domainName,
		// Reaching this line already proved activeness.
		Status:         "active",
		Theme:          model.Theme{PrimaryColor: DefaultPrimaryColor},
		PaymentMethods: SupportedPaymentMethods,
	}

	if overlay != nil {
		if overlay.BrandName != "" {
			payload.BrandName = overlay.BrandName
		}
		if overlay.MetaPixelID != "" {
			payload.MetaPixelID = overlay.MetaPixelID
		}
		if overlay.Theme.PrimaryColor != "" || overlay.Theme.LogoURL != "" {
			payload.Theme = overlay.Theme
			if payload.Theme.PrimaryColor == "" {
				payload.Theme.PrimaryColor = DefaultPrimaryColor
			}
		}
	}

	// Domain's pixel id wins over the overlay's.
	if domain.MetaPixelID != "" {
		payload.MetaPixelID = domain.MetaPixelID
	}

	if err := s.cache.SetJSON(ctx, domainName, payload); err != nil {
		log.Printf("[BrandService] cache write failed for %s: %v", domainName, err)
	}

	return payload, nil
}

// Invalidate evicts the cached payload for a domain. Must be called on every
// admin write touching the domain or its brand overlay.
func (s *BrandService) Invalidate(ctx context.Context, domainName string) {
	if err := s.cache.Delete(ctx, domainName); err != nil {
		log.Printf("[BrandService] cache eviction failed for %s: %v", domainName, err)
	}
}
