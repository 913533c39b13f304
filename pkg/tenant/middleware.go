package tenant

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/salmankhan-prs/multi-tenant-payment-platform/core"
)

// ErrorHandler renders tenant resolution failures.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// DefaultErrorHandler maps tenant errors to their API error codes.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotResolved), errors.Is(err, ErrNotFound):
		core.RespondError(w, core.ErrTenantNotResolved)
	case errors.Is(err, ErrSuspended):
		core.RespondError(w, core.ErrTenantSuspended)
	case errors.Is(err, ErrInactive):
		core.RespondError(w, core.ErrTenantInactive)
	case errors.Is(err, ErrContextRequired):
		core.RespondError(w, core.ErrTenantContextRequired)
	default:
		core.RespondError(w, err)
	}
}

type middlewareConfig struct {
	skipPaths    []string
	errorHandler ErrorHandler
	log          *slog.Logger
}

// MiddlewareOption configures the resolution middleware.
type MiddlewareOption func(*middlewareConfig)

// WithSkipPaths exempts path prefixes (health checks, admin surface)
// from tenant resolution.
func WithSkipPaths(paths ...string) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.skipPaths = append(c.skipPaths, paths...)
	}
}

// WithErrorHandler overrides failure rendering.
func WithErrorHandler(h ErrorHandler) MiddlewareOption {
	return func(c *middlewareConfig) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// WithMiddlewareLogger sets the middleware logger.
func WithMiddlewareLogger(log *slog.Logger) MiddlewareOption {
	return func(c *middlewareConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// Middleware resolves the tenant for every request and binds it to the
// request context. Resolution order: signed claim, subdomain, explicit
// header (via resolver), then the bare host as a registered custom
// domain. Requests that resolve to no tenant are rejected; suspended
// tenants resolve but are rejected with their specific error so clients
// can distinguish a billing hold from an unknown tenant.
func Middleware(svc *Service, resolver Resolver, baseDomain string, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{
		errorHandler: DefaultErrorHandler,
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	baseDomain = strings.ToLower(baseDomain)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			slug, err := resolver.Resolve(r)
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}

			var t *Tenant
			if slug != "" {
				t, err = svc.FindBySlug(r.Context(), slug)
				if err != nil && !errors.Is(err, ErrNotFound) {
					cfg.log.ErrorContext(r.Context(), "tenant lookup failed",
						slog.String("slug", slug), slog.Any("error", err))
					cfg.errorHandler(w, r, err)
					return
				}
			}

			// No slug signal, or slug matched nothing: the bare host may
			// be a registered white-label domain.
			if t == nil {
				if host := CleanHost(r); host != "" && host != baseDomain {
					t, err = svc.FindByCustomDomain(r.Context(), host)
					if err != nil && !errors.Is(err, ErrNotFound) {
						cfg.log.ErrorContext(r.Context(), "custom domain lookup failed",
							slog.String("host", host), slog.Any("error", err))
						cfg.errorHandler(w, r, err)
						return
					}
				}
			}

			if t == nil {
				cfg.errorHandler(w, r, ErrNotResolved)
				return
			}

			if t.Status == StatusSuspended {
				cfg.errorHandler(w, r, ErrSuspended)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), t)))
		})
	}
}

// RequireActive is the defense-in-depth status guard: independent of the
// resolver, it re-checks at the point of use that a tenant is bound and
// active, so a route accidentally mounted outside the resolution
// middleware still cannot serve tenant traffic.
func RequireActive(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = DefaultErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t, err := Current(r.Context())
			if err != nil {
				errorHandler(w, r, err)
				return
			}
			if !t.IsActive() {
				errorHandler(w, r, ErrInactive)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
