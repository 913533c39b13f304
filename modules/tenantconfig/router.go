package tenantconfig

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/salmankhan-prs/multi-tenant-payment-platform/core"
	"github.com/salmankhan-prs/multi-tenant-payment-platform/pkg/tenant"
)

// Config is the branding and capability snapshot frontends use to render
// a white-labeled surface for the bound tenant.
type Config struct {
	Slug       string            `json:"slug"`
	Name       string            `json:"name"`
	Tier       string            `json:"tier"`
	Features   []string          `json:"features"`
	WhiteLabel tenant.WhiteLabel `json:"whiteLabel"`
}

// Router mounts the tenant configuration endpoint.
func Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/config", handleConfig())
	return r
}

func handleConfig() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := tenant.Current(r.Context())
		if err != nil {
			core.RespondError(w, core.ErrTenantContextRequired)
			return
		}

		core.RespondJSON(w, http.StatusOK, Config{
			Slug:       t.Slug,
			Name:       t.Name,
			Tier:       string(t.Tier),
			Features:   t.Settings.Features,
			WhiteLabel: t.WhiteLabel,
		})
	}
}
