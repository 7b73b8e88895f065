package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/routers"

	"github.com/kirillkom/weekly-issue/internal/core/domain"
	"github.com/kirillkom/weekly-issue/internal/core/ports"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Router struct {
	collector ports.IssueCollector
	reader    ports.IssueReader
	reporter  ports.WeeklyReporter
	trigger   ports.CollectTrigger
	logger    *slog.Logger
	metrics   http.Handler
	openapi   routers.Router

	collectSlots   int
	collectWait    time.Duration
	collectTimeout time.Duration
}

type RouterOption func(*Router)

func WithMetricsHandler(h http.Handler) RouterOption {
	return func(rt *Router) {
		rt.metrics = h
	}
}

func WithLogger(logger *slog.Logger) RouterOption {
	return func(rt *Router) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

func WithCollectConcurrency(slots int, wait time.Duration) RouterOption {
	return func(rt *Router) {
		rt.collectSlots = slots
		rt.collectWait = wait
	}
}

// WithCollectTimeout caps how long a synchronous collect request may run.
func WithCollectTimeout(d time.Duration) RouterOption {
	return func(rt *Router) {
		rt.collectTimeout = d
	}
}

func NewRouter(
	collector ports.IssueCollector,
	reader ports.IssueReader,
	reporter ports.WeeklyReporter,
	trigger ports.CollectTrigger,
	opts ...RouterOption,
) (*Router, error) {
	openapi, err := loadOpenAPIRouter()
	if err != nil {
		return nil, err
	}
	rt := &Router{
		collector:    collector,
		reader:       reader,
		reporter:     reporter,
		trigger:      trigger,
		logger:       slog.Default(),
		openapi:      openapi,
		collectSlots: 1,
		collectWait:  2 * time.Second,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt, nil
}

func (rt *Router) Handler() http.Handler {
	collectGate := func(h http.HandlerFunc) http.Handler {
		return backpressureMiddleware(h, rt.collectSlots, rt.collectWait)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.Handle("/v1/issues/collect", collectGate(rt.collect))
	mux.Handle("/v1/issues/collect-all", collectGate(rt.collectAll))
	mux.HandleFunc("/v1/issues/trigger", rt.triggerCollect)
	mux.HandleFunc("/v1/issues/search", rt.search)
	mux.HandleFunc("/v1/issues/recent", rt.recent)
	mux.HandleFunc("/v1/issues/high-confidence", rt.highConfidence)
	mux.HandleFunc("/v1/issues/report", rt.report)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics)
	}

	var handler http.Handler = mux
	handler = openAPIValidationMiddleware(rt.openapi, handler)
	handler = accessLogMiddleware(rt.logger, handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type collectResponse struct {
	Status  domain.RunStatus `json:"status"`
	Message string           `json:"message"`
	domain.PipelineRunStats
	EmptyAt         domain.PipelineStage   `json:"empty_at,omitempty"`
	Results         []domain.SummaryResult `json:"results"`
	Week            string                 `json:"week"`
	Stored          int                    `json:"stored"`
	Projected       int                    `json:"projected"`
	StoreError      string                 `json:"store_error,omitempty"`
	ProjectionError string                 `json:"projection_error,omitempty"`
}

func newCollectResponse(report domain.CollectReport) collectResponse {
	results := report.Run.Results
	if results == nil {
		results = []domain.SummaryResult{}
	}
	return collectResponse{
		Status:           report.Run.Status,
		Message:          report.Run.Message,
		PipelineRunStats: report.Run.Stats,
		EmptyAt:          report.Run.EmptyAt,
		Results:          results,
		Week:             report.Week,
		Stored:           report.Stored,
		Projected:        report.Projected,
		StoreError:       report.StoreError,
		ProjectionError:  report.ProjectionError,
	}
}

func (rt *Router) collect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	req, err := decodeCollectRequest(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	rt.runCollect(w, r, req)
}

func (rt *Router) collectAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	rt.runCollect(w, r, domain.CollectRequest{})
}

func (rt *Router) runCollect(w http.ResponseWriter, r *http.Request, req domain.CollectRequest) {
	ctx := r.Context()
	if rt.collectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rt.collectTimeout)
		defer cancel()
	}
	report, err := rt.collector.Collect(ctx, req)
	if err != nil {
		// A failed run still carries its envelope; anything else is a plain error.
		if report.Run.Status == domain.RunStatusError {
			writeJSON(w, mapErrorToHTTPStatus(err), newCollectResponse(report))
			return
		}
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, newCollectResponse(report))
}

func (rt *Router) triggerCollect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if rt.trigger == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "async collection is not configured"})
		return
	}
	req, err := decodeCollectRequest(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := rt.trigger.PublishCollectRequest(r.Context(), req); err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"status": "queued", "request": req})
}

func (rt *Router) search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	q := r.URL.Query()
	filter := domain.IssueFilter{
		Corp:          strings.TrimSpace(q.Get("corp")),
		Keyword:       strings.TrimSpace(q.Get("keyword")),
		Sentiment:     strings.TrimSpace(q.Get("sentiment")),
		PublishedFrom: q.Get("published_from"),
		PublishedTo:   q.Get("published_to"),
	}
	var err error
	if filter.MinConfidence, err = queryFloat(q, "min_confidence"); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if filter.Page, err = queryInt(q, "page"); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if filter.PageSize, err = queryInt(q, "page_size"); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	page, err := rt.reader.Search(r.Context(), filter)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (rt *Router) recent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	days, err := queryInt(r.URL.Query(), "days")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	issues, err := rt.reader.Recent(r.Context(), days)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"issues": issues, "count": len(issues)})
}

func (rt *Router) highConfidence(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	q := r.URL.Query()
	minConfidence, err := queryFloat(q, "min_confidence")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	limit, err := queryInt(q, "limit")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	issues, err := rt.reader.HighConfidence(r.Context(), minConfidence, limit)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"issues": issues, "count": len(issues)})
}

func (rt *Router) report(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	week := strings.TrimSpace(r.URL.Query().Get("week"))
	reader, err := rt.reporter.Build(r.Context(), week)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	filename := "weekly-issues.xlsx"
	if week != "" {
		filename = "weekly-issues-" + week + ".xlsx"
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, reader); err != nil {
		rt.logger.Warn("report_write_failed", "request_id", requestIDFromContext(r.Context()), "error", err)
	}
}

func decodeCollectRequest(body io.Reader) (domain.CollectRequest, error) {
	var req domain.CollectRequest
	if body == nil {
		return req, nil
	}
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return domain.CollectRequest{}, errors.New("invalid json")
	}
	return req, nil
}

func queryInt(q url.Values, key string) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(key + " must be an integer")
	}
	return n, nil
}

func queryFloat(q url.Values, key string) (float64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New(key + " must be a number")
	}
	return f, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
