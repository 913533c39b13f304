package usagereport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/salmankhan-prs/multi-tenant-payment-platform/core"
	"github.com/salmankhan-prs/multi-tenant-payment-platform/pkg/ratelimit"
	"github.com/salmankhan-prs/multi-tenant-payment-platform/pkg/tenant"
	"github.com/salmankhan-prs/multi-tenant-payment-platform/pkg/usage"
)

// Report is the tenant-facing usage and limits snapshot.
type Report struct {
	Tenant string `json:"tenant"`
	Tier   string `json:"tier"`
	Period string `json:"period"`
	Usage  struct {
		APICalls              int64 `json:"apiCalls"`
		Transactions          int64 `json:"transactions"`
		TransactionsRemaining any   `json:"transactionsRemaining"`
	} `json:"usage"`
	Limits struct {
		MaxUsers                any `json:"maxUsers"`
		MaxTransactionsPerMonth any `json:"maxTransactionsPerMonth"`
		APIRateLimit            int `json:"apiRateLimit"`
	} `json:"limits"`
	RateLimit struct {
		Remaining int `json:"remaining"`
		ResetIn   int `json:"resetInSeconds"`
	} `json:"rateLimit"`
}

// Router mounts the usage reporting endpoint.
func Router(tracker *usage.Tracker, registry *ratelimit.Registry, log *slog.Logger) chi.Router {
	if log == nil {
		log = slog.Default()
	}
	r := chi.NewRouter()
	r.Get("/", handleReport(tracker, registry, log))
	return r
}

func handleReport(tracker *usage.Tracker, registry *ratelimit.Registry, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		t, err := tenant.Current(ctx)
		if err != nil {
			core.RespondError(w, core.ErrTenantContextRequired)
			return
		}

		summary, err := tracker.GetSummary(ctx, t.ID.Hex())
		if err != nil {
			log.ErrorContext(ctx, "usage summary failed", slog.Any("error", err))
			core.RespondError(w, err)
			return
		}

		report := Report{
			Tenant: t.Slug,
			Tier:   string(t.Tier),
			Period: summary.Period,
		}
		report.Usage.APICalls = summary.APICalls
		report.Usage.Transactions = summary.Transactions
		report.Usage.TransactionsRemaining = remainingTransactions(
			t.Settings.MaxTransactionsPerMonth, summary.Transactions)
		report.Limits.MaxUsers = displayLimit(t.Settings.MaxUsers)
		report.Limits.MaxTransactionsPerMonth = displayLimit(t.Settings.MaxTransactionsPerMonth)
		report.Limits.APIRateLimit = t.Settings.APIRateLimit

		// Non-consuming probe: reading your own usage must not spend a
		// rate-limit point beyond the one the middleware already charged.
		limiter, err := registry.Limiter(t.Settings.APIRateLimit)
		if err == nil {
			if status, serr := limiter.Status(ctx, t.ID.Hex()); serr == nil {
				report.RateLimit.Remaining = status.Remaining
				report.RateLimit.ResetIn = status.ResetInSeconds()
			} else {
				log.WarnContext(ctx, "rate limit status probe failed", slog.Any("error", serr))
			}
		}

		core.RespondJSON(w, http.StatusOK, report)
	}
}

// displayLimit renders the unlimited sentinel as a word instead of -1.
func displayLimit(v int64) any {
	if v == tenant.Unlimited {
		return "unlimited"
	}
	return v
}

func remainingTransactions(limit, used int64) any {
	if limit == tenant.Unlimited {
		return "unlimited"
	}
	if remaining := limit - used; remaining > 0 {
		return remaining
	}
	return int64(0)
}
