package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/weekly-issue/internal/core/domain"
)

type PipelineMetrics struct {
	service string

	runsTotal       *prometheus.CounterVec
	runDuration     prometheus.Histogram
	stageItems      *prometheus.HistogramVec
	summariesTotal  *prometheus.CounterVec
	emptyRunsTotal  *prometheus.CounterVec
	breakerTransits *prometheus.CounterVec
}

func NewPipelineMetrics(service string, registerer prometheus.Registerer) *PipelineMetrics {
	runsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total pipeline runs by status.",
		},
		[]string{"service", "status"},
	)
	runDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "pipeline",
			Name:        "run_duration_seconds",
			Help:        "Pipeline run duration in seconds.",
			Buckets:     []float64{1, 5, 15, 30, 60, 120, 300, 600},
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	stageItems := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_items",
			Help:      "Items surviving each pipeline stage per run.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"service", "stage"},
	)
	summariesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "summaries_total",
			Help:      "Total summaries produced by origin.",
		},
		[]string{"service", "origin"},
	)
	emptyRunsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "empty_runs_total",
			Help:      "Total runs that stopped early because a stage produced nothing.",
		},
		[]string{"service", "stage"},
	)
	breakerTransits := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resilience",
			Name:      "breaker_transitions_total",
			Help:      "Circuit breaker state transitions by operation.",
		},
		[]string{"service", "operation", "from", "to"},
	)

	registerer.MustRegister(runsTotal, runDuration, stageItems, summariesTotal, emptyRunsTotal, breakerTransits)

	return &PipelineMetrics{
		service:         service,
		runsTotal:       runsTotal,
		runDuration:     runDuration,
		stageItems:      stageItems,
		summariesTotal:  summariesTotal,
		emptyRunsTotal:  emptyRunsTotal,
		breakerTransits: breakerTransits,
	}
}

func (m *PipelineMetrics) ObserveRun(run domain.PipelineRun, duration time.Duration) {
	m.runsTotal.WithLabelValues(m.service, string(run.Status)).Inc()
	m.runDuration.Observe(duration.Seconds())
	if !run.Succeeded() {
		return
	}

	stats := run.Stats
	for stage, count := range map[domain.PipelineStage]int{
		domain.StageCollecting:    stats.TotalCollected,
		domain.StageFiltering:     stats.AfterKeywordFilter,
		domain.StageDeduplicating: stats.AfterDeduplication,
		domain.StageClassifying:   stats.AfterClassification,
		domain.StageSummarizing:   stats.FinalSummaries,
	} {
		m.stageItems.WithLabelValues(m.service, string(stage)).Observe(float64(count))
	}
	if run.EmptyAt != "" {
		m.emptyRunsTotal.WithLabelValues(m.service, string(run.EmptyAt)).Inc()
	}
	for _, result := range run.Results {
		m.summariesTotal.WithLabelValues(m.service, string(result.SummaryOrigin)).Inc()
	}
}

func (m *PipelineMetrics) ObserveBreakerState(operation, from, to string) {
	m.breakerTransits.WithLabelValues(m.service, operation, from, to).Inc()
}
