package domain

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"shopgate/internal/domainutil"
	"shopgate/internal/model"
)

var (
	// ErrDomainExists rejects registering a name that is already present
	ErrDomainExists = errors.New("domain already registered")

	// ErrDomainDenied rejects names on the configured denylist
	ErrDomainDenied = errors.New("domain is not allowed")

	// ErrDomainNotFound is returned when a lookup resolves to nothing
	ErrDomainNotFound = errors.New("domain not found")
)

// DNSCheckError wraps a failed pre-registration DNS lookup. The failure is
// transient from the caller's perspective: the registration can simply be
// retried once DNS propagates.
type DNSCheckError struct {
	Domain string
	Err    error
}

func (e *DNSCheckError) Error() string {
	return fmt.Sprintf("dns check failed for %s: %v", e.Domain, e.Err)
}

func (e *DNSCheckError) Unwrap() error { return e.Err }

// HostResolver is the DNS lookup used to verify a domain resolves before
// registration. *net.Resolver satisfies it.
type HostResolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// Invalidator evicts one cached entry. Both the brand resolver and the CORS
// gate expose this shape.
type Invalidator interface {
	Invalidate(ctx context.Context, key string)
}

// noopInvalidator lets the registry run without caches wired (tests, tools)
type noopInvalidator struct{}

func (noopInvalidator) Invalidate(context.Context, string) {}

// Registry manages tenant domain records and their provisioning state. All
// admin writes flow through it so cache eviction cannot be forgotten.
type Registry struct {
	db         *gorm.DB
	resolver   HostResolver
	brandCache Invalidator
	gateCache  Invalidator
	denylist   map[string]struct{}
	dnsCheck   bool
}

// NewRegistry creates a domain registry. resolver may be nil when dnsCheck
// is disabled; either cache may be nil.
func NewRegistry(db *gorm.DB, resolver HostResolver, brandCache, gateCache Invalidator, denylist []string, dnsCheck bool) *Registry {
	deny := make(map[string]struct{}, len(denylist))
	for _, d := range denylist {
		deny[strings.ToLower(strings.TrimSpace(d))] = struct{}{}
	}
	if brandCache == nil {
		brandCache = noopInvalidator{}
	}
	if gateCache == nil {
		gateCache = noopInvalidator{}
	}
	return &Registry{
		db:         db,
		resolver:   resolver,
		brandCache: brandCache,
		gateCache:  gateCache,
		denylist:   deny,
		dnsCheck:   dnsCheck,
	}
}

// AddParams are the registration inputs for a new tenant domain
type AddParams struct {
	DomainName  string
	MetaPixelID string
}

// Add registers a tenant domain. The name is canonicalized, checked against
// the denylist, optionally verified to resolve in DNS, and created with both
// provisioning tracks pending. The actual vhost/TLS provisioning runs out of
// process and reports back through UpdateProvisioning.
func (r *Registry) Add(ctx context.Context, p AddParams) (*model.Domain, error) {
	name, err := domainutil.Normalize(p.DomainName)
	if err != nil {
		return nil, fmt.Errorf("invalid domain name: %w", err)
	}

	if r.denied(name) {
		return nil, ErrDomainDenied
	}

	var count int64
	if err := r.db.Model(&model.Domain{}).Where("domain_name = ?", name).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check domain existence: %w", err)
	}
	if count > 0 {
		return nil, ErrDomainExists
	}

	if r.dnsCheck {
		if _, err := r.resolver.LookupHost(ctx, name); err != nil {
			return nil, &DNSCheckError{Domain: name, Err: err}
		}
	}

	d := &model.Domain{
		DomainName:   name,
		MetaPixelID:  p.MetaPixelID,
		Status:       model.DomainStatusActive,
		ApacheStatus: model.ProvisionStatusPending,
		SSLStatus:    model.ProvisionStatusPending,
	}
	d.AppendSetupLog("domain registered, provisioning queued")

	if err := r.db.Create(d).Error; err != nil {
		return nil, fmt.Errorf("failed to create domain: %w", err)
	}

	log.Printf("[DomainRegistry] Registered %s (id=%d)", name, d.ID)
	return d, nil
}

// Get returns a domain by its canonical name, including setup logs
func (r *Registry) Get(ctx context.Context, name string) (*model.Domain, error) {
	name, err := domainutil.Normalize(name)
	if err != nil {
		return nil, fmt.Errorf("invalid domain name: %w", err)
	}

	var d model.Domain
	if err := r.db.Where("domain_name = ?", name).First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDomainNotFound
		}
		return nil, fmt.Errorf("failed to query domain %s: %w", name, err)
	}
	return &d, nil
}

// SetStatus activates or deactivates a tenant and evicts its cached brand
// payload so the change is visible immediately, not after TTL expiry.
func (r *Registry) SetStatus(ctx context.Context, id int, status model.DomainStatus) (*model.Domain, error) {
	if status != model.DomainStatusActive && status != model.DomainStatusInactive {
		return nil, fmt.Errorf("invalid domain status: %s", status)
	}

	var d model.Domain
	if err := r.db.First(&d, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDomainNotFound
		}
		return nil, fmt.Errorf("failed to query domain %d: %w", id, err)
	}

	if d.Status == status {
		return &d, nil
	}

	d.Status = status
	d.AppendSetupLog(fmt.Sprintf("status changed to %s", status))
	if err := r.db.Model(&model.Domain{}).Where("id = ?", d.ID).
		Updates(map[string]interface{}{
			"status":     d.Status,
			"setup_logs": d.SetupLogs,
		}).Error; err != nil {
		return nil, fmt.Errorf("failed to update domain %d: %w", id, err)
	}

	r.brandCache.Invalidate(ctx, d.DomainName)
	r.gateCache.Invalidate(ctx, d.DomainName)
	log.Printf("[DomainRegistry] Domain %s set %s", d.DomainName, status)
	return &d, nil
}

// ProvisionUpdate is one progress report from the provisioning worker
type ProvisionUpdate struct {
	ApacheStatus string // empty leaves the track unchanged
	SSLStatus    string
	LogMessage   string
}

// UpdateProvisioning records provisioning progress reported by the external
// worker. Unknown status values are rejected; the setup log is append-only.
func (r *Registry) UpdateProvisioning(ctx context.Context, name string, u ProvisionUpdate) (*model.Domain, error) {
	if u.ApacheStatus != "" && !validProvisionStatus(u.ApacheStatus) {
		return nil, fmt.Errorf("invalid apache status: %s", u.ApacheStatus)
	}
	if u.SSLStatus != "" && !validProvisionStatus(u.SSLStatus) {
		return nil, fmt.Errorf("invalid ssl status: %s", u.SSLStatus)
	}

	d, err := r.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if u.ApacheStatus != "" {
		d.ApacheStatus = u.ApacheStatus
		updates["apache_status"] = u.ApacheStatus
	}
	if u.SSLStatus != "" {
		d.SSLStatus = u.SSLStatus
		updates["ssl_status"] = u.SSLStatus
	}
	if u.LogMessage != "" {
		d.AppendSetupLog(u.LogMessage)
		updates["setup_logs"] = d.SetupLogs
	}
	if len(updates) == 0 {
		return d, nil
	}

	if err := r.db.Model(&model.Domain{}).Where("id = ?", d.ID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update provisioning for %s: %w", name, err)
	}
	return d, nil
}

// ListParams are the filters for the admin domain list
type ListParams struct {
	Page     int
	PageSize int
	Keyword  string
	Status   string
}

// ListResult is one page of domains
type ListResult struct {
	Items    []model.Domain `json:"items"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}

// List queries domains with keyword and status filters
func (r *Registry) List(ctx context.Context, p ListParams) (*ListResult, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}

	query := r.db.Model(&model.Domain{})
	if p.Keyword != "" {
		query = query.Where("domain_name LIKE ?", "%"+p.Keyword+"%")
	}
	if p.Status != "" {
		query = query.Where("status = ?", p.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count domains: %w", err)
	}

	var items []model.Domain
	err := query.Order("created_at DESC").
		Offset((p.Page - 1) * p.PageSize).
		Limit(p.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}

	return &ListResult{
		Items:    items,
		Total:    total,
		Page:     p.Page,
		PageSize: p.PageSize,
	}, nil
}

func (r *Registry) denied(name string) bool {
	if _, ok := r.denylist[name]; ok {
		return true
	}
	// A denylisted apex blocks its subdomains too.
	if apex, err := domainutil.EffectiveApex(name); err == nil {
		if _, ok := r.denylist[apex]; ok {
			return true
		}
	}
	return false
}

func validProvisionStatus(s string) bool {
	switch s {
	case model.ProvisionStatusPending, model.ProvisionStatusActive, model.ProvisionStatusFailed:
		return true
	default:
		return false
	}
}
