package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/weekly-issue/internal/core/domain"
)

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestMiddlewareRecordsStatusAndNormalizedPath(t *testing.T) {
	m := NewHTTPServerMetrics("api")
	h := m.Middleware("api", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/issues/search", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/random/scan/path", nil))

	body := scrape(t, m.Handler())
	for _, want := range []string{
		`weekly_issue_http_requests_total{method="GET",path="/v1/issues/search",service="api",status="418"} 1`,
		`weekly_issue_http_requests_total{method="GET",path="other",service="api",status="418"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %q in:\n%s", want, body)
		}
	}
}

func TestPipelineMetricsObserveRun(t *testing.T) {
	m := NewHTTPServerMetrics("api")
	p := NewPipelineMetrics("api", m.Registry())

	p.ObserveRun(domain.PipelineRun{
		Status: domain.RunStatusSuccess,
		Stats:  domain.PipelineRunStats{TotalCollected: 10, AfterKeywordFilter: 4, AfterDeduplication: 3, AfterClassification: 2, FinalSummaries: 2},
		Results: []domain.SummaryResult{
			{SummaryOrigin: domain.SummaryOriginModel},
			{SummaryOrigin: domain.SummaryOriginFallbackAPIError},
		},
	}, 2*time.Second)
	p.ObserveRun(domain.PipelineRun{Status: domain.RunStatusSuccess, EmptyAt: domain.StageFiltering}, time.Second)
	p.ObserveRun(domain.PipelineRun{Status: domain.RunStatusError}, time.Second)
	p.ObserveBreakerState("classifier.predict", "closed", "open")

	body := scrape(t, m.Handler())
	for _, want := range []string{
		`weekly_issue_pipeline_runs_total{service="api",status="success"} 2`,
		`weekly_issue_pipeline_runs_total{service="api",status="error"} 1`,
		`weekly_issue_pipeline_summaries_total{origin="fallback_api_error",service="api"} 1`,
		`weekly_issue_pipeline_empty_runs_total{service="api",stage="filtering"} 1`,
		`weekly_issue_pipeline_run_duration_seconds_count{service="api"} 3`,
		`weekly_issue_resilience_breaker_transitions_total{from="closed",operation="classifier.predict",service="api",to="open"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %q in:\n%s", want, body)
		}
	}
}

func TestWorkerMetricsFinishCollect(t *testing.T) {
	m := NewWorkerMetrics("worker")
	m.StartCollect()
	m.FinishCollect("worker", time.Second, nil)
	m.ObserveArchive("worker", io.ErrUnexpectedEOF)

	body := scrape(t, m.Handler())
	for _, want := range []string{
		`weekly_issue_worker_collect_jobs_total{service="worker",status="success"} 1`,
		`weekly_issue_worker_collect_jobs_in_flight{service="worker"} 0`,
		`weekly_issue_worker_reports_archived_total{service="worker",status="error"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %q in:\n%s", want, body)
		}
	}
}
