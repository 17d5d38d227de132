package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"subjectswap_server/controllers"
)

// Middleware wraps a handler.
type Middleware = func(http.Handler) http.Handler

// RegisterRoutes sets up the public routes for the application
func RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", controllers.HealthCheckHandler).Methods("GET")
	r.HandleFunc("/", controllers.WelcomeHandler).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
}

// protected returns an /api subrouter behind auth.
func protected(r *mux.Router, prefix string, auth Middleware) *mux.Router {
	sub := r.PathPrefix(prefix).Subrouter()
	sub.Use(mux.MiddlewareFunc(auth))
	return sub
}
