package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry groups the prometheus collectors exported on /metrics.
type Registry struct {
	reg *prometheus.Registry

	HTTPRequests   *prometheus.CounterVec
	HTTPLatencySec *prometheus.HistogramVec

	ProductsSeeded prometheus.Counter
	ProductsListed prometheus.Counter
	OrdersCreated  prometheus.Counter
	OrderTotal     prometheus.Histogram
	StoreErrors    *prometheus.CounterVec

	EventsPublished prometheus.Counter
	EventsFailed    prometheus.Counter
	EventsDropped   prometheus.Counter
}

// Metrics is the process-wide registry.
var Metrics = NewRegistry()

// NewRegistry builds a registry with every collector registered.
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})
	httpLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	seeded := prometheus.NewCounter(prometheus.CounterOpts{Name: "storefront_products_seeded_total"})
	listed := prometheus.NewCounter(prometheus.CounterOpts{Name: "storefront_products_listed_total"})
	created := prometheus.NewCounter(prometheus.CounterOpts{Name: "storefront_orders_created_total"})
	orderTotal := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "storefront_order_total_amount",
		Help:    "Distribution of priced order totals.",
		Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 5000},
	})
	storeErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_store_errors_total",
		Help: "Document store failures by operation.",
	}, []string{"op"})
	published := prometheus.NewCounter(prometheus.CounterOpts{Name: "storefront_events_published_total"})
	failed := prometheus.NewCounter(prometheus.CounterOpts{Name: "storefront_events_failed_total"})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{Name: "storefront_events_dropped_total"})

	r.MustRegister(httpRequests, httpLatency, seeded, listed, created, orderTotal, storeErrors, published, failed, dropped)
	return &Registry{
		reg:             r,
		HTTPRequests:    httpRequests,
		HTTPLatencySec:  httpLatency,
		ProductsSeeded:  seeded,
		ProductsListed:  listed,
		OrdersCreated:   created,
		OrderTotal:      orderTotal,
		StoreErrors:     storeErrors,
		EventsPublished: published,
		EventsFailed:    failed,
		EventsDropped:   dropped,
	}
}

// Handler serves the registry in the prometheus exposition format.
func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
