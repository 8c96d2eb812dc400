package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github/chapool/go-signer/internal/config"
)

// Metrics records the signing pipeline. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry  *prometheus.Registry
	submitted *prometheus.CounterVec
	settled   *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	namespace string
}

// New creates the metrics on a fresh registry. Whether they are served is up
// to the router.
func New(cfg config.Server) *Metrics {
	return NewWithRegistry(cfg.Metrics.Namespace, prometheus.NewRegistry())
}

// NewWithRegistry registers the collectors on reg
func NewWithRegistry(namespace string, reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry:  reg,
		namespace: namespace,
		submitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "signing",
			Name:      "requests_submitted_total",
			Help:      "Number of transaction requests accepted, by signer backend",
		}, []string{"backend"}),
		settled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "signing",
			Name:      "requests_settled_total",
			Help:      "Number of transaction requests reaching a terminal status",
		}, []string{"backend", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "signing",
			Name:      "request_duration_seconds",
			Help:      "Time from submission to terminal status",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 300},
		}, []string{"backend"}),
	}

	reg.MustRegister(
		m.submitted,
		m.settled,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) Submitted(backend string) {
	if m == nil {
		return
	}
	m.submitted.WithLabelValues(labelOrUnknown(backend)).Inc()
}

func (m *Metrics) Settled(backend string, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.settled.WithLabelValues(labelOrUnknown(backend), labelOrUnknown(status)).Inc()
	m.duration.WithLabelValues(labelOrUnknown(backend)).Observe(elapsed.Seconds())
}

// TrackPending exposes the number of awaited signer responses as reported by count
func (m *Metrics) TrackPending(count func() int) {
	if m == nil {
		return
	}
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "signing",
		Name:      "pending_responses",
		Help:      "Number of signer responses currently awaited",
	}, func() float64 {
		return float64(count())
	}))
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func labelOrUnknown(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
