package httpapi

import (
	"expvar"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fairyhunter13/storefront-service/internal/obs"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Use(WithRequestID, WithLogging, WithMetrics, WithCORS)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	})

	r.Get("/", app.rootHandler)
	r.Get("/api/hello", app.helloHandler)
	r.Get("/test", app.diagnosticsHandler)
	r.Get("/api/products", app.listProductsHandler)
	r.Post("/api/orders", app.createOrderHandler)

	r.Get("/healthz", app.healthHandler)
	r.Get("/debug/metrics", app.metricsHandler)
	r.Handle("/debug/vars", expvar.Handler())
	r.Handle("/metrics", obs.Metrics.Handler())
	r.Get("/openapi.yaml", app.openapiHandler)
	r.Get("/docs", app.docsHandler)
	return r
}
