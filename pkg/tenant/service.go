package tenant

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"
)

// DefaultCacheTTL balances config freshness against store load: tenant
// changes propagate within five minutes.
const DefaultCacheTTL = 5 * time.Minute

var slugPattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]*[a-z0-9])?$`)

// Service resolves and manages tenants with a cache-first read path.
type Service struct {
	store Store
	cache Cache
	ttl   time.Duration
	log   *slog.Logger
}

// ServiceOption configures the Service.
type ServiceOption func(*Service)

// WithCacheTTL overrides the tenant cache TTL.
func WithCacheTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates a tenant service over the given store and cache.
func NewService(store Store, cache Cache, opts ...ServiceOption) *Service {
	s := &Service{
		store: store,
		cache: cache,
		ttl:   DefaultCacheTTL,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateParams are the administrative inputs for tenant provisioning.
type CreateParams struct {
	Slug         string     `json:"slug"`
	Name         string     `json:"name"`
	Tier         Tier       `json:"tier"`
	CustomDomain string     `json:"customDomain,omitempty"`
	WhiteLabel   WhiteLabel `json:"whiteLabel,omitempty"`
}

// Create provisions a tenant: tier defaults are copied in whole at
// creation time, branding falls back to the platform defaults, and the
// tenant starts active.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Tenant, error) {
	if !slugPattern.MatchString(params.Slug) {
		return nil, fmt.Errorf("%w: %q must be lowercase alphanumeric with hyphens", ErrInvalidSlug, params.Slug)
	}
	settings, err := DefaultSettings(params.Tier)
	if err != nil {
		return nil, err
	}

	wl := params.WhiteLabel
	if wl.CompanyName == "" {
		wl.CompanyName = params.Name
	}
	if wl.PrimaryColor == "" {
		wl.PrimaryColor = DefaultPrimaryColor
	}

	t := &Tenant{
		Slug:         params.Slug,
		Name:         params.Name,
		CustomDomain: params.CustomDomain,
		Tier:         params.Tier,
		Settings:     settings,
		WhiteLabel:   wl,
		Status:       StatusActive,
	}
	if err := s.store.Insert(ctx, t); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "tenant created",
		slog.String("slug", t.Slug), slog.String("tier", string(t.Tier)))
	return t, nil
}

// FindBySlug resolves a tenant by slug: cache first, then the store,
// then a best-effort cache populate. Inactive tenants are invisible to
// this path; suspended tenants ARE returned so callers can surface the
// suspension to the client.
func (s *Service) FindBySlug(ctx context.Context, slug string) (*Tenant, error) {
	key := slugKey(slug)

	if t, ok := s.cache.GetTenant(ctx, key); ok {
		return t, nil
	}

	t, err := s.store.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	s.cache.SetTenant(ctx, key, t, s.ttl)
	return t, nil
}

// FindByCustomDomain resolves a tenant registered for a white-label
// domain. The domain→slug mapping and the slug→tenant snapshot are both
// populated so later requests take the forward slug path directly.
func (s *Service) FindByCustomDomain(ctx context.Context, domain string) (*Tenant, error) {
	key := domainKey(domain)

	if slug, ok := s.cache.GetString(ctx, key); ok {
		return s.FindBySlug(ctx, slug)
	}

	t, err := s.store.FindByCustomDomain(ctx, domain)
	if err != nil {
		return nil, err
	}

	s.cache.SetString(ctx, key, t.Slug, s.ttl)
	s.cache.SetTenant(ctx, slugKey(t.Slug), t, s.ttl)
	return t, nil
}

// List returns every tenant, including inactive ones. Admin surface only.
func (s *Service) List(ctx context.Context) ([]Tenant, error) {
	return s.store.List(ctx)
}

// SetStatusBySlug transitions the named tenant's lifecycle state. The
// lookup ignores status so inactive tenants can be reactivated.
func (s *Service) SetStatusBySlug(ctx context.Context, slug string, status Status) (*Tenant, error) {
	t, err := s.store.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.SetStatus(ctx, t, status); err != nil {
		return nil, err
	}
	t.Status = status
	return t, nil
}

// SetStatus transitions a tenant's lifecycle state and invalidates its
// cache entries so the change takes effect before the TTL expires.
func (s *Service) SetStatus(ctx context.Context, t *Tenant, status Status) error {
	if err := s.store.UpdateStatus(ctx, t.ID, status); err != nil {
		return err
	}
	s.cache.Delete(ctx, slugKey(t.Slug))
	if t.CustomDomain != "" {
		s.cache.Delete(ctx, domainKey(t.CustomDomain))
	}
	return nil
}
