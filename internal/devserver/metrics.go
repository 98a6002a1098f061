package devserver

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Build results used as the result label.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

const metricsNamespace = "blog"

// Metrics records rebuild outcomes on its own registry, so several servers
// (and tests) never collide on the global one.
type Metrics struct {
	registry *prometheus.Registry
	builds   *prometheus.CounterVec
	duration prometheus.Histogram
	posts    prometheus.Gauge
}

// NewMetrics creates and registers the rebuild metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "builds_total",
			Help:      "Site builds by result",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "build_duration_seconds",
			Help:      "Total site build duration",
			Buckets:   prometheus.DefBuckets,
		}),
		posts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "posts",
			Help:      "Posts in the last successful build",
		}),
	}
	m.registry.MustRegister(m.builds, m.duration, m.posts)
	return m
}

// ObserveBuild records one build. posts is ignored for failed builds.
func (m *Metrics) ObserveBuild(d time.Duration, posts int, err error) {
	m.duration.Observe(d.Seconds())
	if err != nil {
		m.builds.WithLabelValues(ResultFailure).Inc()
		return
	}
	m.builds.WithLabelValues(ResultSuccess).Inc()
	m.posts.Set(float64(posts))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
