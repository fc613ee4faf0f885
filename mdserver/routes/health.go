package routes

import (
	"github.com/go-chi/chi/v5"

	"mdserver/mdserver/controllers"
)

// HealthRoutes stays unauthenticated so load balancers can probe it.
func HealthRoutes(ctrl *controllers.HealthController) chi.Router {
	r := chi.NewRouter()
	r.Get("/", handleJSON(ctrl.HealthCheck))
	return r
}
