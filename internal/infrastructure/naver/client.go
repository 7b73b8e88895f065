package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/time/rate"

	"github.com/kirillkom/weekly-issue/internal/core/domain"
)

const (
	DefaultEndpoint = "https://openapi.naver.com/v1/search/news.json"
	DefaultTimeout  = 10 * time.Second

	maxDisplay = 100
)

type Options struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
	RatePerSecond float64
	Logger        *slog.Logger
	HTTPClient    *http.Client
}

type searchResponse struct {
	Items []searchItem `json:"items"`
}

type searchItem struct {
	Title        string `json:"title"`
	OriginalLink string `json:"originallink"`
	Link         string `json:"link"`
	Description  string `json:"description"`
	PubDate      string `json:"pubDate"`
}

type Client struct {
	endpoint     string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	limiter      *rate.Limiter
	policy       *bluemonday.Policy
	logger       *slog.Logger
}

func New(opts Options) *Client {
	if strings.TrimSpace(opts.Endpoint) == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var limiter *rate.Limiter
	if opts.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), max(1, int(opts.RatePerSecond)))
	}

	return &Client{
		endpoint:     opts.Endpoint,
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		httpClient:   httpClient,
		limiter:      limiter,
		policy:       bluemonday.StrictPolicy(),
		logger:       logger.With("component", "naver_source"),
	}
}

// FetchCompanyNews never fails: errors are logged and yield no items.
func (c *Client) FetchCompanyNews(ctx context.Context, company string, count int) []domain.RawNewsItem {
	items, err := c.Search(ctx, company, count)
	if err != nil {
		if domain.IsKind(err, domain.ErrUnauthorized) {
			c.logger.Error("naver_unauthorized", "company", company, "error", err)
		} else {
			c.logger.Warn("naver_fetch_failed", "company", company, "error", err)
		}
		return []domain.RawNewsItem{}
	}
	c.logger.Debug("naver_fetched", "company", company, "items", len(items))
	return items
}

func (c *Client) Search(ctx context.Context, company string, count int) ([]domain.RawNewsItem, error) {
	const op = "naver news search"

	if count <= 0 || count > maxDisplay {
		count = maxDisplay
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s rate limit: %w", op, err)
		}
	}

	query := url.Values{}
	query.Set("query", company)
	query.Set("display", strconv.Itoa(count))
	query.Set("start", "1")
	query.Set("sort", "date")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", op, err)
	}
	req.Header.Set("X-Naver-Client-Id", c.clientID)
	req.Header.Set("X-Naver-Client-Secret", c.clientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, domain.WrapError(domain.ErrUnauthorized, op, fmt.Errorf("status %s: check client credentials", resp.Status))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, domain.WrapError(domain.ErrUpstream, op, fmt.Errorf("status %s: %s", resp.Status, strings.TrimSpace(string(body))))
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, domain.WrapError(domain.ErrUpstream, op, fmt.Errorf("decode response: %w", err))
	}

	items := make([]domain.RawNewsItem, 0, len(payload.Items))
	for _, item := range payload.Items {
		items = append(items, domain.RawNewsItem{
			Company:      company,
			Title:        c.plainText(item.Title),
			Description:  c.plainText(item.Description),
			Link:         item.Link,
			PublishedRaw: item.PubDate,
		})
	}
	return items, nil
}

func (c *Client) plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(c.policy.Sanitize(s)))
}
