package tenant

import (
	"shopgate/internal/domainutil"
)

// Sentinels returned by the resolver. DevDomain keeps local development
// working without tenant records; UnknownOrigin marks requests carrying
// neither Origin nor Host.
const (
	DevDomain     = "localhost"
	UnknownOrigin = "unknown-origin"
)

// Resolver maps an inbound request to its canonical tenant domain
type Resolver struct {
	production bool
}

// NewResolver creates a resolver for the given deployment mode
func NewResolver(production bool) *Resolver {
	return &Resolver{production: production}
}

// Resolve produces the tenant domain for a request. Every code path returns
// a string; the resolver never fails.
func (r *Resolver) Resolve(origin, host string) string {
	if !r.production {
		return DevDomain
	}

	header := origin
	if header == "" {
		header = host
	}
	if header == "" {
		return UnknownOrigin
	}

	if normalized := domainutil.NormalizeOrigin(header); normalized != "" {
		return normalized
	}
	return UnknownOrigin
}
