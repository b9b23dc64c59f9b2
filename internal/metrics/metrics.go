package metrics

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "docsearch"

// Request kinds
const (
	KindSearch  = "search"
	KindPreview = "preview"
)

// Outcomes
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
	OutcomeCacheHit = "cache_hit"
)

// Collection holds the search service collectors
type Collection struct {
	gatherer prometheus.Gatherer

	SearchRequests   *prometheus.CounterVec
	SearchDuration   *prometheus.HistogramVec
	PreviewCacheHits prometheus.Counter
}

// New registers the collectors on a fresh registry
func New() *Collection {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	factory := promauto.With(reg)

	return &Collection{
		gatherer: reg,
		SearchRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "search_requests_total",
			Help:      "Search and preview requests by outcome.",
		}, []string{"kind", "outcome"}),
		SearchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "search_duration_seconds",
			Help:      "Time spent compiling and executing a search or preview.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		PreviewCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "preview_cache_hits_total",
			Help:      "Preview counts answered from the cache.",
		}),
	}
}

// Observe records one finished request
func (c *Collection) Observe(kind, outcome string, started time.Time) {
	if c == nil {
		return
	}
	c.SearchRequests.WithLabelValues(kind, outcome).Inc()
	c.SearchDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
}

// CacheHit counts a preview served from cache
func (c *Collection) CacheHit() {
	if c == nil {
		return
	}
	c.PreviewCacheHits.Inc()
}

// Handler exposes the registry in the Prometheus text format
func (c *Collection) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{}))
}
