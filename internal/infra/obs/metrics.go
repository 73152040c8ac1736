package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the service collectors. A nil *Metrics discards observations.
type Metrics struct {
	registry        *prometheus.Registry
	checks          *prometheus.CounterVec
	rankingDuration prometheus.Histogram
	lockWait        *prometheus.HistogramVec
	requests        *prometheus.HistogramVec
	outboxPublished prometheus.Counter
	outboxFailed    prometheus.Counter
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		checks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "availability_checks_total",
			Help: "Availability checks grouped by scope and result.",
		}, []string{"scope", "result"}),
		rankingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ranking_duration_seconds",
			Help:    "Time spent ranking a search result set.",
			Buckets: prometheus.DefBuckets,
		}),
		lockWait: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lock_wait_seconds",
			Help:    "Time spent acquiring calendar locks.",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"driver", "result"}),
		requests: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		outboxPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "outbox_publish_total",
			Help: "Total number of successfully published outbox messages.",
		}),
		outboxFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "outbox_fail_total",
			Help: "Total number of outbox publish failures.",
		}),
	}
}

func (m *Metrics) ObserveCheck(scope, result string) {
	if m == nil {
		return
	}
	m.checks.WithLabelValues(scope, result).Inc()
}

func (m *Metrics) ObserveRanking(d time.Duration) {
	if m == nil {
		return
	}
	m.rankingDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveLockWait(driver string, wait time.Duration, err error) {
	if m == nil {
		return
	}
	result := "acquired"
	if err != nil {
		result = "failed"
	}
	m.lockWait.WithLabelValues(driver, result).Observe(wait.Seconds())
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

func (m *Metrics) ObservePublish(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.outboxFailed.Inc()
		return
	}
	m.outboxPublished.Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Status(http.StatusNotFound) }
	}
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Gatherer exposes the registry to tests.
func (m *Metrics) Gatherer() prometheus.Gatherer { return m.registry }
