package tenant

import (
	"context"
	"log"

	"shopgate/internal/cache"
	"shopgate/internal/domainutil"
)

// AllowedDomainReader checks the cross-origin allow-list
type AllowedDomainReader interface {
	// ExistsActive reports whether an active allow-list entry matches either
	// the normalized or the raw origin form.
	ExistsActive(normalized, raw string) (bool, error)
}

// Gate decides whether to admit a cross-origin request. Verdicts are cached
// with a short TTL, so a newly allowed domain becomes effective within the
// TTL window; that staleness is an accepted request-path tradeoff.
type Gate struct {
	allowed    AllowedDomainReader
	cache      cache.Store
	production bool
}

// NewGate creates a tenant CORS gate
func NewGate(allowed AllowedDomainReader, cacheStore cache.Store, production bool) *Gate {
	return &Gate{
		allowed:    allowed,
		cache:      cacheStore,
		production: production,
	}
}

// Allow decides admission for an Origin header value. Requests without an
// Origin (non-browser clients) are always admitted, as is everything outside
// production. The decision is deterministic; lookups that fail log and deny.
func (g *Gate) Allow(ctx context.Context, origin string) bool {
	if origin == "" {
		return true
	}
	if !g.production {
		return true
	}

	normalized := domainutil.NormalizeOrigin(origin)
	if normalized == "" {
		return false
	}

	var verdict bool
	hit, err := g.cache.GetJSON(ctx, normalized, &verdict)
	if err != nil {
		log.Printf("[TenantGate] cache read failed for %s: %v", normalized, err)
	}
	if hit {
		return verdict
	}

	verdict, err = g.allowed.ExistsActive(normalized, origin)
	if err != nil {
		log.Printf("[TenantGate] allow-list lookup failed for %s: %v", normalized, err)
		return false
	}

	if err := g.cache.SetJSON(ctx, normalized, verdict); err != nil {
		log.Printf("[TenantGate] cache write failed for %s: %v", normalized, err)
	}

	return verdict
}

// Invalidate evicts the cached verdict for an origin. Called when the
// allow-list changes.
func (g *Gate) Invalidate(ctx context.Context, origin string) {
	normalized := domainutil.NormalizeOrigin(origin)
	if normalized == "" {
		return
	}
	if err := g.cache.Delete(ctx, normalized); err != nil {
		log.Printf("[TenantGate] cache eviction failed for %s: %v", normalized, err)
	}
}
