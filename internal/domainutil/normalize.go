package domainutil

import (
	"fmt"
	"net"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/publicsuffix"
)

// Normalize canonicalizes a tenant domain name:
//   - lowercase, trimmed
//   - trailing dot removed
//   - port suffix removed (example.com:443)
//   - IP literals rejected (IPv4/IPv6)
//   - empty strings and illegal characters rejected
func Normalize(host string) (string, error) {
	host = strings.TrimSpace(host)

	if host == "" {
		return "", fmt.Errorf("domain must not be empty")
	}

	host = strings.ToLower(host)
	host = strings.TrimSuffix(host, ".")

	// Strip port suffix
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	if host == "" {
		return "", fmt.Errorf("domain must not be empty after normalization")
	}

	if net.ParseIP(host) != nil {
		return "", fmt.Errorf("IP address is not allowed as domain: %s", host)
	}

	// Bracketed IPv6 form
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		inner := host[1 : len(host)-1]
		if net.ParseIP(inner) != nil {
			return "", fmt.Errorf("IP address is not allowed as domain: %s", host)
		}
	}

	// Only a-z 0-9 . - are allowed
	for i := 0; i < len(host); {
		r, size := utf8.DecodeRuneInString(host[i:])
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '-') {
			return "", fmt.Errorf("domain contains invalid character: %c in %s", r, host)
		}
		i += size
	}

	if strings.HasPrefix(host, ".") || strings.HasPrefix(host, "-") {
		return "", fmt.Errorf("domain must not start with '.' or '-': %s", host)
	}

	if !strings.Contains(host, ".") {
		return "", fmt.Errorf("domain must contain at least one dot: %s", host)
	}

	return host, nil
}

// EffectiveApex computes the eTLD+1 (registrable domain) via the public
// suffix list:
//   - www.example.com -> example.com
//   - a.b.example.co.uk -> example.co.uk
//
// Domain onboarding rejects names whose apex cannot be computed (bare TLDs,
// public suffixes).
func EffectiveApex(domain string) (string, error) {
	normalized, err := Normalize(domain)
	if err != nil {
		return "", fmt.Errorf("normalize failed for %s: %w", domain, err)
	}

	apex, err := publicsuffix.EffectiveTLDPlusOne(normalized)
	if err != nil {
		return "", fmt.Errorf("PSL lookup failed for %s: %w", domain, err)
	}

	return apex, nil
}

// NormalizeOrigin reduces a browser Origin/Host header value to a bare host
// for allow-list lookups: scheme, trailing slash and port are stripped and
// the result is lowercased. Unlike Normalize it never fails; gating code
// needs a deterministic string for any input.
func NormalizeOrigin(origin string) string {
	origin = strings.TrimSpace(origin)
	origin = strings.ToLower(origin)

	if i := strings.Index(origin, "://"); i >= 0 {
		origin = origin[i+3:]
	}
	origin = strings.TrimSuffix(origin, "/")

	if h, _, err := net.SplitHostPort(origin); err == nil && h != "" {
		origin = h
	}

	return origin
}
