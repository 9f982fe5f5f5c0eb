package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "territorymap",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "territorymap",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "territorymap",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Scene pipeline metrics
	SceneLoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "territorymap",
		Subsystem: "scene",
		Name:      "load_duration_seconds",
		Help:      "Duration of a full dataset + catalog load and composition",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	SceneLoadFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "territorymap",
		Subsystem: "scene",
		Name:      "load_failures_total",
		Help:      "Total aborted scene loads",
	})

	FeaturesRendered = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "territorymap",
		Subsystem: "scene",
		Name:      "features_rendered",
		Help:      "Features in the published scene per layer",
	}, []string{"role"})

	DegenerateBounds = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "territorymap",
		Subsystem: "scene",
		Name:      "degenerate_bounds_total",
		Help:      "Loads whose shared bounding box was empty or flat",
	})

	// Interaction metrics
	Selections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "territorymap",
		Subsystem: "selection",
		Name:      "transitions_total",
		Help:      "Selection transitions by resulting status",
	}, []string{"status"})

	CatalogMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "territorymap",
		Subsystem: "selection",
		Name:      "catalog_misses_total",
		Help:      "Selections of features without a catalog record",
	})

	HitTests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "territorymap",
		Subsystem: "selection",
		Name:      "hit_tests_total",
		Help:      "Pixel hit tests by outcome",
	}, []string{"outcome"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "territorymap",
		Subsystem: "selection",
		Name:      "active_sessions",
		Help:      "Viewer sessions currently held in memory",
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "territorymap",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "territorymap",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "territorymap",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
