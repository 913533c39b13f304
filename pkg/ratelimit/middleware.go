package ratelimit

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/salmankhan-prs/multi-tenant-payment-platform/core"
	"github.com/salmankhan-prs/multi-tenant-payment-platform/pkg/tenant"
)

// Middleware enforces the bound tenant's tier rate limit on every
// request. Decision metadata is exposed via X-RateLimit-* headers on
// success and rejection alike. The check fails closed: a store error is
// a 500, never a silent allow, because this is the billing-enforcement
// path.
func Middleware(registry *Registry, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t, err := tenant.Current(r.Context())
			if err != nil {
				core.RespondError(w, core.ErrTenantContextRequired)
				return
			}

			limiter, err := registry.Limiter(t.Settings.APIRateLimit)
			if err != nil {
				log.ErrorContext(r.Context(), "rate limiter init failed",
					slog.Int("limit", t.Settings.APIRateLimit), slog.Any("error", err))
				core.RespondError(w, core.ErrInternal)
				return
			}

			result, err := limiter.Allow(r.Context(), t.ID.Hex())
			if err != nil {
				log.ErrorContext(r.Context(), "rate limit check failed", slog.Any("error", err))
				core.RespondError(w, core.ErrInternal)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed {
				retryAfter := result.ResetInSeconds()
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				core.RespondError(w, core.ErrRateLimitExceeded.WithMessage(fmt.Sprintf(
					"API rate limit exceeded. Limit: %d requests/minute. Retry after %d seconds.",
					result.Limit, retryAfter,
				)))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
