package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fairyhunter13/storefront-service/internal/catalog"
	"github.com/fairyhunter13/storefront-service/internal/config"
	"github.com/fairyhunter13/storefront-service/internal/events"
	httpopenapi "github.com/fairyhunter13/storefront-service/internal/http/openapi"
	"github.com/fairyhunter13/storefront-service/internal/model"
	"github.com/fairyhunter13/storefront-service/internal/pricing"
	"github.com/fairyhunter13/storefront-service/internal/store"
)

// maxOrderBody caps the size of an order submission.
const maxOrderBody = 1 << 20

type App struct {
	Cfg     config.Config
	Store   store.Store
	Catalog *catalog.Service
	Orders  *pricing.Engine
	Events  *events.Manager
	closing atomic.Bool
	started time.Time
}

// NewApp wires the handlers to their services. st may be nil when no
// document store is configured.
func NewApp(cfg config.Config, st store.Store, cat *catalog.Service, eng *pricing.Engine, m *events.Manager) *App {
	return &App{Cfg: cfg, Store: st, Catalog: cat, Orders: eng, Events: m, started: time.Now()}
}

func (a *App) StartShutdown() {
	a.closing.Store(true)
	a.Events.CloseIntake()
}

func (a *App) rootHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Hello from the storefront backend!"})
}

func (a *App) helloHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Hello from the backend API!"})
}

type diagnostics struct {
	Backend          string   `json:"backend"`
	Store            string   `json:"store,omitempty"`
	Database         string   `json:"database"`
	DatabaseURL      string   `json:"database_url"`
	DatabaseName     string   `json:"database_name"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
}

func setFlag(v string) string {
	if v != "" {
		return "set"
	}
	return "not set"
}

// diagnosticsHandler reports whether the document store is configured and reachable.
func (a *App) diagnosticsHandler(w http.ResponseWriter, r *http.Request) {
	resp := diagnostics{
		Backend:          "running",
		Database:         "not available",
		DatabaseURL:      setFlag(a.Cfg.DatabaseURL),
		DatabaseName:     setFlag(a.Cfg.DatabaseName),
		ConnectionStatus: "not connected",
		Collections:      []string{},
	}
	if a.Store != nil {
		resp.Database = "available"
		resp.Store = a.Store.Name()
		resp.ConnectionStatus = "connected"
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		names, err := a.Store.Collections(ctx)
		if err == nil {
			err = a.Store.Ping(ctx)
		}
		if err != nil {
			resp.Database = "connected but error: " + truncate(err.Error(), 50)
		} else {
			if len(names) > 10 {
				names = names[:10]
			}
			resp.Collections = append(resp.Collections, names...)
			resp.Database = "connected & working"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func (a *App) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	q := catalog.Query{Limit: catalog.DefaultLimit, Category: r.URL.Query().Get("category")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			WriteJSONError(w, http.StatusUnprocessableEntity, "validation_error", "limit must be an integer")
			return
		}
		q.Limit = n
	}
	if q.Limit < catalog.MinLimit || q.Limit > catalog.MaxLimit {
		WriteJSONError(w, http.StatusUnprocessableEntity, "validation_error",
			fmt.Sprintf("limit must be between %d and %d", catalog.MinLimit, catalog.MaxLimit))
		return
	}
	products, err := a.Catalog.ListProducts(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, "list_products", err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// validateOrder checks the shape the pricing engine assumes.
func validateOrder(o model.Order) string {
	for i, it := range o.Items {
		switch {
		case strings.TrimSpace(it.Product) == "":
			return fmt.Sprintf("items[%d].product is required", i)
		case it.Price < 0:
			return fmt.Sprintf("items[%d].price must be >= 0", i)
		case it.Quantity < 1:
			return fmt.Sprintf("items[%d].quantity must be >= 1", i)
		}
	}
	return ""
}

func (a *App) createOrderHandler(w http.ResponseWriter, r *http.Request) {
	if a.closing.Load() || a.Events.IsShuttingDown() {
		WriteJSONError(w, http.StatusServiceUnavailable, "shutting_down", "")
		return
	}
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		WriteJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return
	}
	var o model.Order
	// Extra keys such as a client total or item titles are ignored.
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxOrderBody)).Decode(&o); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if msg := validateOrder(o); msg != "" {
		WriteJSONError(w, http.StatusUnprocessableEntity, "validation_error", msg)
		return
	}
	rc, err := a.Orders.CreateOrder(r.Context(), o)
	if err != nil {
		writeServiceError(w, r, "create_order", err)
		return
	}
	writeJSON(w, http.StatusCreated, rc)
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) metricsHandler(w http.ResponseWriter, r *http.Request) {
	enq, proc, backlog, inflight := a.Events.QueueStats()
	storeName := "none"
	if a.Store != nil {
		storeName = a.Store.Name()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"events_enqueued":  enq,
		"events_processed": proc,
		"backlog_size":     backlog,
		"in_flight":        inflight,
		"events_rejected":  a.Events.Rejected(),
		"worker_count":     a.Events.WorkerCount(),
		"store":            storeName,
		"uptime_sec":       time.Since(a.started).Seconds(),
	})
}

func (a *App) openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

func (a *App) docsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Storefront API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`
	_, _ = w.Write([]byte(html))
}
