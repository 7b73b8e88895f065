package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	collectTotal    *prometheus.CounterVec
	collectDuration *prometheus.HistogramVec
	collectInFlight prometheus.Gauge
	reportsArchived *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	collectTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "collect_jobs_total",
			Help:      "Total collect jobs by status.",
		},
		[]string{"service", "status"},
	)
	collectDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "collect_job_duration_seconds",
			Help:      "Collect job duration in seconds by status.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		},
		[]string{"service", "status"},
	)
	collectInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "collect_jobs_in_flight",
			Help:      "Number of in-flight collect jobs.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	reportsArchived := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "reports_archived_total",
			Help:      "Total weekly report archive attempts by status.",
		},
		[]string{"service", "status"},
	)

	registry.MustRegister(collectTotal, collectDuration, collectInFlight, reportsArchived)

	return &WorkerMetrics{
		registry:        registry,
		collectTotal:    collectTotal,
		collectDuration: collectDuration,
		collectInFlight: collectInFlight,
		reportsArchived: reportsArchived,
	}
}

func (m *WorkerMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartCollect() {
	m.collectInFlight.Inc()
}

func (m *WorkerMetrics) FinishCollect(service string, duration time.Duration, err error) {
	m.collectInFlight.Dec()

	status := statusLabel(err)
	m.collectTotal.WithLabelValues(service, status).Inc()
	m.collectDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveArchive(service string, err error) {
	m.reportsArchived.WithLabelValues(service, statusLabel(err)).Inc()
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
