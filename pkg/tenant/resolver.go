package tenant

import (
	"net/http"
	"strings"
)

// Resolver extracts a tenant slug from an HTTP request. Returning an
// empty slug with a nil error means "no signal here, try the next
// resolver"; resolution errors abort the chain.
type Resolver interface {
	Resolve(r *http.Request) (string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(r *http.Request) (string, error)

// Resolve calls the function.
func (f ResolverFunc) Resolve(r *http.Request) (string, error) {
	return f(r)
}

// reservedSubdomains are platform-owned labels that never identify a tenant.
var reservedSubdomains = map[string]bool{
	"www": true, "api": true, "admin": true, "mail": true, "ftp": true, "docs": true,
}

// CleanHost returns the request host lower-cased with any port stripped.
func CleanHost(r *http.Request) string {
	host := r.Host
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return strings.ToLower(host)
}

// NewClaimResolver resolves the tenant slug from a signed bearer token.
// This is the most trusted signal, so it runs first. Missing, malformed,
// expired, or otherwise unverifiable tokens are skipped silently: the
// chain falls through to URL-based signals instead of failing.
func NewClaimResolver(verify func(token string) (slug string, err error)) Resolver {
	return ResolverFunc(func(r *http.Request) (string, error) {
		auth := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || token == "" {
			return "", nil
		}

		slug, err := verify(token)
		if err != nil {
			return "", nil
		}
		return slug, nil
	})
}

// NewSubdomainResolver resolves the tenant slug from the first subdomain
// label under baseDomain. A leading www label is peeled off and the next
// label tried instead, provided one remains before the base domain.
// Reserved platform labels never resolve.
func NewSubdomainResolver(baseDomain string) Resolver {
	baseParts := strings.Split(strings.ToLower(baseDomain), ".")

	return ResolverFunc(func(r *http.Request) (string, error) {
		host := CleanHost(r)
		if host == "" {
			return "", nil
		}

		hostParts := strings.Split(host, ".")
		if len(hostParts) <= len(baseParts) {
			return "", nil
		}

		subdomain := hostParts[0]
		if subdomain == "www" {
			if len(hostParts) > len(baseParts)+1 {
				subdomain = hostParts[1]
			} else {
				return "", nil
			}
		}

		if reservedSubdomains[subdomain] {
			return "", nil
		}
		return subdomain, nil
	})
}

// DefaultTenantHeader is the explicit tenant-identification header for
// API clients that cannot use subdomains.
const DefaultTenantHeader = "X-Tenant-ID"

// NewHeaderResolver resolves the tenant slug from an explicit header,
// lower-casing the value to match slug canonical form.
func NewHeaderResolver(headerName string) Resolver {
	if headerName == "" {
		headerName = DefaultTenantHeader
	}
	return ResolverFunc(func(r *http.Request) (string, error) {
		return strings.ToLower(r.Header.Get(headerName)), nil
	})
}

// NewChainResolver tries each resolver in order; the first non-empty
// slug wins. Resolution priority is deterministic: a request carrying
// both a signed claim and a different subdomain resolves to the claim.
func NewChainResolver(resolvers ...Resolver) Resolver {
	return ResolverFunc(func(r *http.Request) (string, error) {
		for _, resolver := range resolvers {
			slug, err := resolver.Resolve(r)
			if err != nil {
				return "", err
			}
			if slug != "" {
				return slug, nil
			}
		}
		return "", nil
	})
}
