package usage

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/salmankhan-prs/multi-tenant-payment-platform/pkg/tenant"
)

// Middleware records one API call for the bound tenant after the handler
// completes. Recording is advisory: it runs fire-and-forget on a context
// detached from the request (the client disconnecting must not cancel
// accounting), and a failed increment only loses a data point, it never
// fails the user-visible response.
func Middleware(tracker *Tracker, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)

			id, ok := tenant.IDFromContext(r.Context())
			if !ok {
				return
			}

			ctx := context.WithoutCancel(r.Context())
			go func() {
				if err := tracker.IncrementAPICalls(ctx, id.Hex()); err != nil {
					log.WarnContext(ctx, "api usage increment failed",
						slog.String("tenant_id", id.Hex()), slog.Any("error", err))
				}
			}()
		})
	}
}
