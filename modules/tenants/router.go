package tenants

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/salmankhan-prs/multi-tenant-payment-platform/core"
	"github.com/salmankhan-prs/multi-tenant-payment-platform/pkg/tenant"
)

// Router mounts the tenant administration endpoints. These run on the
// platform surface, outside tenant resolution: they manage tenants
// rather than act on behalf of one.
func Router(svc *tenant.Service) chi.Router {
	r := chi.NewRouter()
	r.Post("/", handleCreate(svc))
	r.Get("/", handleList(svc))
	r.Patch("/{slug}/status", handleSetStatus(svc))
	return r
}

func handleCreate(svc *tenant.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params tenant.CreateParams
		if err := core.DecodeJSON(r, &params); err != nil {
			core.RespondError(w, err)
			return
		}

		t, err := svc.Create(r.Context(), params)
		if err != nil {
			core.RespondError(w, mapAdminError(err))
			return
		}
		core.RespondJSON(w, http.StatusCreated, t)
	}
}

func handleList(svc *tenant.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenants, err := svc.List(r.Context())
		if err != nil {
			core.RespondError(w, err)
			return
		}
		core.RespondJSON(w, http.StatusOK, tenants)
	}
}

type statusParams struct {
	Status tenant.Status `json:"status"`
}

func handleSetStatus(svc *tenant.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params statusParams
		if err := core.DecodeJSON(r, &params); err != nil {
			core.RespondError(w, err)
			return
		}
		if !params.Status.Valid() {
			core.RespondError(w, core.ErrBadRequest.WithMessage("status must be active, suspended or inactive"))
			return
		}

		t, err := svc.SetStatusBySlug(r.Context(), chi.URLParam(r, "slug"), params.Status)
		if err != nil {
			core.RespondError(w, mapAdminError(err))
			return
		}
		core.RespondJSON(w, http.StatusOK, t)
	}
}

func mapAdminError(err error) error {
	switch {
	case errors.Is(err, tenant.ErrSlugTaken):
		return core.ErrConflict.WithMessage("Tenant slug or custom domain already registered")
	case errors.Is(err, tenant.ErrInvalidSlug), errors.Is(err, tenant.ErrUnknownTier):
		return core.ErrBadRequest.WithMessage(err.Error())
	case errors.Is(err, tenant.ErrNotFound):
		return core.ErrNotFound.WithMessage("Tenant not found")
	default:
		return err
	}
}
