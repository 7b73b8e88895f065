package inference

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/kirillkom/weekly-issue/internal/core/domain"
	"github.com/kirillkom/weekly-issue/internal/infrastructure/resilience"
)

const (
	DefaultClassifierTimeout   = 60 * time.Second
	DefaultConfidenceThreshold = 0.6
)

type ClassifierOptions struct {
	Timeout   time.Duration
	Threshold float64
	Executor  *resilience.Executor
	Logger    *slog.Logger
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

type predictRequest struct {
	Text []string `json:"text"`
}

type prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

type predictResponse struct {
	Result []prediction `json:"result"`
}

type Classifier struct {
	endpoint  endpoint
	threshold float64
	logger    *slog.Logger
}

func NewClassifier(url string, opts ClassifierOptions) *Classifier {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultClassifierTimeout
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultConfidenceThreshold
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		endpoint:  newEndpoint("classifier", url, opts.Timeout, opts.HTTPClient, opts.Executor),
		threshold: opts.Threshold,
		logger:    logger.With("component", "classifier"),
	}
}

func (c *Classifier) Classify(ctx context.Context, items []domain.FilteredItem) []domain.ClassifiedItem {
	if len(items) == 0 {
		return []domain.ClassifiedItem{}
	}

	titles := make([]string, len(items))
	for i, item := range items {
		titles[i] = item.Title
	}

	var resp predictResponse
	if err := c.endpoint.call(ctx, "classifier.predict", predictRequest{Text: titles}, &resp); err != nil {
		c.logger.Warn("classifier_fallback", "items", len(items), "error", err)
		return fallbackClassification(items)
	}

	// Results are paired with items by position. Items past the end of a
	// short response are dropped.
	if len(resp.Result) != len(items) {
		c.logger.Warn("classifier_result_length_mismatch", "items", len(items), "results", len(resp.Result))
	}
	n := min(len(resp.Result), len(items))

	out := make([]domain.ClassifiedItem, 0, n)
	for i := 0; i < n; i++ {
		pred := resp.Result[i]
		if pred.Confidence < c.threshold {
			continue
		}
		out = append(out, domain.ClassifiedItem{
			FilteredItem:             copyFiltered(items[i]),
			ClassificationLabel:      pred.Label,
			ClassificationConfidence: pred.Confidence,
		})
	}
	c.logger.Info("classifier_done", "items", len(items), "kept", len(out))
	return out
}

func fallbackClassification(items []domain.FilteredItem) []domain.ClassifiedItem {
	out := make([]domain.ClassifiedItem, 0, len(items))
	for _, item := range items {
		out = append(out, domain.ClassifiedItem{
			FilteredItem:             copyFiltered(item),
			ClassificationLabel:      domain.FallbackClassificationLabel,
			ClassificationConfidence: domain.FallbackClassificationConfidence,
		})
	}
	return out
}

func copyFiltered(item domain.FilteredItem) domain.FilteredItem {
	item.MatchedKeywords = append([]string(nil), item.MatchedKeywords...)
	return item
}
