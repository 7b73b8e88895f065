package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

type Company struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

type Issue struct {
	ID              string        `json:"id"`
	Corp            string        `json:"corp"`
	Summary         string        `json:"summary"`
	SummaryOrigin   SummaryOrigin `json:"summary_type"`
	OriginalTitle   string        `json:"original_title"`
	Confidence      float64       `json:"confidence"`
	MatchedKeywords []string      `json:"matched_keywords"`
	NewsURL         string        `json:"news_url"`
	PublishedDate   string        `json:"published_date"`
	Category        string        `json:"category"`
	Sentiment       string        `json:"sentiment"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

type IssueFilter struct {
	Corp              string
	Keyword           string
	Sentiment         string
	MinConfidence     float64
	PublishedFrom     string
	PublishedTo       string
	CreatedFrom       time.Time
	CreatedTo         time.Time
	Page              int
	PageSize          int
	OrderByConfidence bool
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	MaxPage         = 10000
)

func (f IssueFilter) Normalized() IssueFilter {
	out := f
	if out.Page < 1 {
		out.Page = 1
	}
	if out.PageSize <= 0 {
		out.PageSize = DefaultPageSize
	}
	if out.PageSize > MaxPageSize {
		out.PageSize = MaxPageSize
	}
	return out
}

type IssuePage struct {
	Issues   []Issue `json:"issues"`
	Total    int     `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}

const ProjectionSource = "naver_news_api"

type ProjectionMetadata struct {
	OriginalTitle   string   `json:"original_title"`
	Confidence      float64  `json:"confidence"`
	MatchedKeywords []string `json:"matched_keywords"`
	NewsURL         string   `json:"news_url"`
	PublishedDate   string   `json:"published_date"`
	Category        string   `json:"category"`
	Sentiment       string   `json:"sentiment"`
	Source          string   `json:"source"`
}

type ProjectionItem struct {
	CompanyName string             `json:"company_name"`
	StockCode   string             `json:"stock_code,omitempty"`
	Content     string             `json:"content"`
	Metadata    ProjectionMetadata `json:"metadata"`
}

type ProjectionBatch struct {
	Category string           `json:"category"`
	Week     string           `json:"week"`
	Items    []ProjectionItem `json:"items"`
}

// ISOWeek formats t as an ISO-8601 week identifier, e.g. 2026-W42.
func ISOWeek(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

var isoWeekPattern = regexp.MustCompile(`^[0-9]{4}-W[0-9]{2}$`)

// ParseISOWeek returns the Monday 00:00 UTC that starts the given ISO week.
func ParseISOWeek(week string) (time.Time, error) {
	if !isoWeekPattern.MatchString(week) {
		return time.Time{}, WrapError(ErrInvalidInput, "parse iso week", fmt.Errorf("%q is not YYYY-Www", week))
	}
	year, _ := strconv.Atoi(week[:4])
	num, _ := strconv.Atoi(week[6:])
	if num < 1 || num > 53 {
		return time.Time{}, WrapError(ErrInvalidInput, "parse iso week", fmt.Errorf("week %d out of range", num))
	}

	// January 4th is always in week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDate(0, 0, -offset+(num-1)*7)
	if y, w := monday.ISOWeek(); y != year || w != num {
		return time.Time{}, WrapError(ErrInvalidInput, "parse iso week", fmt.Errorf("%s does not exist", week))
	}
	return monday, nil
}

type CollectRequest struct {
	Companies []string `json:"companies,omitempty"`
	Week      string   `json:"week,omitempty"`
}

type CollectReport struct {
	Run             PipelineRun `json:"run"`
	Week            string      `json:"week"`
	Stored          int         `json:"stored"`
	Projected       int         `json:"projected"`
	StoreError      string      `json:"store_error,omitempty"`
	ProjectionError string      `json:"projection_error,omitempty"`
}
