package payments

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/salmankhan-prs/multi-tenant-payment-platform/core"
)

// Router mounts the payment endpoints.
func Router(svc *Service) chi.Router {
	r := chi.NewRouter()
	r.Post("/", handleCreate(svc))
	r.Get("/", handleList(svc))
	r.Get("/{id}", handleGet(svc))
	r.Delete("/{id}", handleDelete(svc))
	return r
}

func handleCreate(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params CreateParams
		if err := core.DecodeJSON(r, &params); err != nil {
			core.RespondError(w, err)
			return
		}

		payment, err := svc.Create(r.Context(), params)
		if err != nil {
			core.RespondError(w, err)
			return
		}
		core.RespondJSON(w, http.StatusCreated, payment)
	}
}

func handleList(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		result, err := svc.List(r.Context(), page, limit)
		if err != nil {
			core.RespondError(w, err)
			return
		}
		core.RespondJSON(w, http.StatusOK, result)
	}
}

func handleGet(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payment, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			core.RespondError(w, err)
			return
		}
		core.RespondJSON(w, http.StatusOK, payment)
	}
}

func handleDelete(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			core.RespondError(w, err)
			return
		}
		core.RespondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
	}
}
