package domain

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"shopgate/internal/domainutil"
	"shopgate/internal/model"
)

// ErrAlreadyAllowed rejects a duplicate allow-list entry
var ErrAlreadyAllowed = errors.New("domain already on allow-list")

// Allowlist manages the cross-origin allow-list consumed by the CORS gate.
// Writes evict the gate's cached verdict for the touched origin.
type Allowlist struct {
	db        *gorm.DB
	gateCache Invalidator
}

// NewAllowlist creates an allow-list admin service
func NewAllowlist(db *gorm.DB, gateCache Invalidator) *Allowlist {
	if gateCache == nil {
		gateCache = noopInvalidator{}
	}
	return &Allowlist{db: db, gateCache: gateCache}
}

// Add registers an origin. Stored in normalized form so lookups are
// scheme- and port-insensitive.
func (l *Allowlist) Add(ctx context.Context, origin string) (*model.AllowedDomain, error) {
	normalized := domainutil.NormalizeOrigin(origin)
	if normalized == "" {
		return nil, fmt.Errorf("invalid origin: %q", origin)
	}

	var count int64
	if err := l.db.Model(&model.AllowedDomain{}).Where("domain = ?", normalized).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check allow-list: %w", err)
	}
	if count > 0 {
		return nil, ErrAlreadyAllowed
	}

	entry := &model.AllowedDomain{
		Domain:   normalized,
		IsActive: true,
	}
	if err := l.db.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to create allow-list entry: %w", err)
	}

	l.gateCache.Invalidate(ctx, normalized)
	log.Printf("[Allowlist] Added %s", normalized)
	return entry, nil
}

// SetActive toggles an entry without deleting it, so an origin can be
// suspended and restored with its history intact.
func (l *Allowlist) SetActive(ctx context.Context, id int, active bool) (*model.AllowedDomain, error) {
	var entry model.AllowedDomain
	if err := l.db.First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDomainNotFound
		}
		return nil, fmt.Errorf("failed to query allow-list entry %d: %w", id, err)
	}

	if entry.IsActive != active {
		if err := l.db.Model(&model.AllowedDomain{}).Where("id = ?", id).
			Update("is_active", active).Error; err != nil {
			return nil, fmt.Errorf("failed to update allow-list entry %d: %w", id, err)
		}
		entry.IsActive = active
	}

	l.gateCache.Invalidate(ctx, entry.Domain)
	log.Printf("[Allowlist] Entry %s active=%v", entry.Domain, active)
	return &entry, nil
}

// List returns all allow-list entries, newest first
func (l *Allowlist) List(ctx context.Context) ([]model.AllowedDomain, error) {
	var entries []model.AllowedDomain
	if err := l.db.Order("added_at DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list allow-list: %w", err)
	}
	return entries, nil
}
