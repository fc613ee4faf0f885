package routes

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mdserver/mdserver/config"
	"mdserver/mdserver/controllers"
	"mdserver/mdserver/middlewares"
)

// generic wrapper to reduce boilerplate
func handleJSON(handler func(r *http.Request) (any, int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, status, err := handler(r)
		if err != nil {
			http.Error(w, err.Error(), status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(res)
	}
}

func ConvertRoutes(ctrl *controllers.ConvertController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Use(middlewares.APIKeyMiddleware(cfg))
	r.Post("/", ctrl.Convert)
	return r
}

func FormatsRoutes(ctrl *controllers.FormatsController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Use(middlewares.APIKeyMiddleware(cfg))
	r.Get("/", handleJSON(ctrl.ListFormats))
	return r
}
