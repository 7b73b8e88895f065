package report

import (
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/weekly-issue/internal/core/domain"
)

func TestRenderWritesIssuesAndOverview(t *testing.T) {
	issues := []domain.Issue{
		{
			Corp:            "크래프톤",
			OriginalTitle:   "크래프톤 신작 출시",
			Summary:         "크래프톤이 신작을 출시했다.",
			Confidence:      0.9,
			MatchedKeywords: []string{"신작", "출시"},
			NewsURL:         "https://news.example/1",
			PublishedDate:   "20261012",
			SummaryOrigin:   domain.SummaryOriginModel,
			Sentiment:       "neutral",
			CreatedAt:       time.Date(2026, 10, 12, 9, 30, 0, 0, time.UTC),
		},
		{Corp: "넷마블", OriginalTitle: "넷마블 실적", Summary: "요약"},
		{Corp: "크래프톤", OriginalTitle: "크래프톤 공시", Summary: "요약"},
	}

	reader, err := NewXLSXRenderer().Render("2026-W42", issues)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	f, err := excelize.OpenReader(reader)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(issuesSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "Company" || rows[1][0] != "크래프톤" || rows[1][4] != "신작, 출시" || rows[1][7] != "model" {
		t.Fatalf("unexpected rows: %v", rows[:2])
	}
	if rows[1][9] != "2026-10-12 09:30" {
		t.Fatalf("unexpected created at cell %q", rows[1][9])
	}

	overview, err := f.GetRows(overviewSheet)
	if err != nil {
		t.Fatalf("GetRows(overview) error = %v", err)
	}
	if overview[0][1] != "2026-W42" || overview[1][1] != "3" {
		t.Fatalf("unexpected overview header: %v", overview[:2])
	}
	// Row 3 is blank; per-company counts follow the header on row 4.
	last := overview[len(overview)-1]
	if last[0] != "크래프톤" || last[1] != "2" {
		t.Fatalf("unexpected company count row: %v", last)
	}
}

func TestRenderEmptyWeek(t *testing.T) {
	reader, err := NewXLSXRenderer().Render("2026-W01", nil)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	f, err := excelize.OpenReader(reader)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(issuesSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected header only, got %d rows", len(rows))
	}
}
