package report

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/weekly-issue/internal/core/domain"
)

const (
	issuesSheet   = "Issues"
	overviewSheet = "Overview"
)

var issueHeader = []any{
	"Company", "Title", "Summary", "Confidence", "Keywords",
	"URL", "Published", "Summary Type", "Sentiment", "Created At",
}

type XLSXRenderer struct{}

func NewXLSXRenderer() *XLSXRenderer {
	return &XLSXRenderer{}
}

func (r *XLSXRenderer) Render(week string, issues []domain.Issue) (io.Reader, error) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", issuesSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeIssues(f, issues); err != nil {
		return nil, err
	}
	if err := writeOverview(f, week, issues); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return &buf, nil
}

func writeIssues(f *excelize.File, issues []domain.Issue) error {
	header := issueHeader
	if err := f.SetSheetRow(issuesSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, issue := range issues {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		row := []any{
			issue.Corp,
			issue.OriginalTitle,
			issue.Summary,
			issue.Confidence,
			strings.Join(issue.MatchedKeywords, ", "),
			issue.NewsURL,
			issue.PublishedDate,
			string(issue.SummaryOrigin),
			issue.Sentiment,
			issue.CreatedAt.Format("2006-01-02 15:04"),
		}
		if err := f.SetSheetRow(issuesSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	if err := f.SetColWidth(issuesSheet, "B", "C", 60); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	return nil
}

func writeOverview(f *excelize.File, week string, issues []domain.Issue) error {
	if _, err := f.NewSheet(overviewSheet); err != nil {
		return fmt.Errorf("create overview sheet: %w", err)
	}

	counts := make(map[string]int)
	for _, issue := range issues {
		counts[issue.Corp]++
	}
	corps := make([]string, 0, len(counts))
	for corp := range counts {
		corps = append(corps, corp)
	}
	sort.Strings(corps)

	rows := [][]any{
		{"Week", week},
		{"Total issues", len(issues)},
		{},
		{"Company", "Issues"},
	}
	for _, corp := range corps {
		rows = append(rows, []any{corp, counts[corp]})
	}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(overviewSheet, cell, &row); err != nil {
			return fmt.Errorf("write overview row %d: %w", i, err)
		}
	}
	return nil
}
