package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/salmankhan-prs/multi-tenant-payment-platform/core"
)

// Router mounts the auth endpoints.
func Router(svc *Service) chi.Router {
	r := chi.NewRouter()
	r.Post("/register", handleRegister(svc))
	r.Post("/login", handleLogin(svc))
	return r
}

func handleRegister(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params RegisterParams
		if err := core.DecodeJSON(r, &params); err != nil {
			core.RespondError(w, err)
			return
		}

		result, err := svc.Register(r.Context(), params)
		if err != nil {
			core.RespondError(w, err)
			return
		}
		core.RespondJSON(w, http.StatusCreated, result)
	}
}

func handleLogin(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params LoginParams
		if err := core.DecodeJSON(r, &params); err != nil {
			core.RespondError(w, err)
			return
		}

		result, err := svc.Login(r.Context(), params)
		if err != nil {
			core.RespondError(w, err)
			return
		}
		core.RespondJSON(w, http.StatusOK, result)
	}
}
