package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes application metrics that are safe to scrape via Prometheus.
type Metrics struct {
	registry            *prometheus.Registry
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	refreshesTotal      prometheus.Counter
	refreshFailures     prometheus.Counter
	refreshSkipped      prometheus.Counter
	refreshDuration     prometheus.Histogram
	graphNodes          prometheus.Gauge
	graphLinks          prometheus.Gauge
}

// New creates a fresh Metrics registry with HTTP and refresh metrics registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "topo",
		Name:      "http_requests_total",
		Help:      "Count of HTTP requests processed by topo-core",
	}, []string{"method", "path", "status"})

	httpRequestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "topo",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests served by topo-core",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	refreshesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "topo",
		Name:      "refreshes_total",
		Help:      "Total number of topology refresh attempts",
	})

	refreshFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "topo",
		Name:      "refresh_failures_total",
		Help:      "Refresh attempts that failed to fetch devices",
	})

	refreshSkipped := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "topo",
		Name:      "refresh_ticks_skipped_total",
		Help:      "Timer ticks skipped because a refresh was still in flight",
	})

	refreshDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "topo",
		Name:      "refresh_duration_seconds",
		Help:      "Duration of topology refreshes from fetch to synthesized graph",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	graphNodes := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "topo",
		Name:      "graph_nodes",
		Help:      "Node count of the current synthesized topology",
	})

	graphLinks := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "topo",
		Name:      "graph_links",
		Help:      "Link count of the current synthesized topology",
	})

	registry.MustRegister(
		httpRequests,
		httpRequestDuration,
		refreshesTotal,
		refreshFailures,
		refreshSkipped,
		refreshDuration,
		graphNodes,
		graphLinks,
	)

	return &Metrics{
		registry:            registry,
		httpRequests:        httpRequests,
		httpRequestDuration: httpRequestDuration,
		refreshesTotal:      refreshesTotal,
		refreshFailures:     refreshFailures,
		refreshSkipped:      refreshSkipped,
		refreshDuration:     refreshDuration,
		graphNodes:          graphNodes,
		graphLinks:          graphLinks,
	}
}

// ObserveHTTPRequest records a single HTTP request/response cycle.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{
		"method": method,
		"path":   path,
		"status": strconv.Itoa(status),
	}
	m.httpRequests.With(labels).Inc()
	m.httpRequestDuration.With(labels).Observe(duration.Seconds())
}

// ObserveRefresh records one refresh attempt.
func (m *Metrics) ObserveRefresh(duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.refreshesTotal.Inc()
	if err != nil {
		m.refreshFailures.Inc()
	}
	m.refreshDuration.Observe(duration.Seconds())
}

// IncSkippedTick counts a timer tick skipped due to an in-flight refresh.
func (m *Metrics) IncSkippedTick() {
	if m == nil {
		return
	}
	m.refreshSkipped.Inc()
}

// SetGraphSize records the size of the current topology.
func (m *Metrics) SetGraphSize(nodes, links int) {
	if m == nil {
		return
	}
	m.graphNodes.Set(float64(nodes))
	m.graphLinks.Set(float64(links))
}

// Handler exposes the Prometheus registry over HTTP.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("metrics unavailable"))
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
