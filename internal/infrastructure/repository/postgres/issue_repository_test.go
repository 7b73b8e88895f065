package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kirillkom/weekly-issue/internal/core/domain"
)

func newRepoWithMock(t *testing.T) (*IssueRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	repo := NewIssueRepository(db)
	repo.now = func() time.Time { return time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC) }
	return repo, mock, func() { _ = db.Close() }
}

func TestEnsureSchemaTakesAdvisoryLock(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS issues").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestBulkCreateInsertsAllRowsInOneTransaction(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO issues").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	stored, err := repo.BulkCreate(context.Background(), []domain.SummaryResult{
		{ID: "a", Company: "크래프톤", Summary: "요약", SummaryOrigin: domain.SummaryOriginModel, Confidence: 0.9},
		{Company: "넷마블", Summary: "요약", SummaryOrigin: domain.SummaryOriginFallbackEmpty, Confidence: 0.7},
	})
	if err != nil {
		t.Fatalf("BulkCreate() error = %v", err)
	}
	if stored != 2 {
		t.Fatalf("expected 2 stored rows, got %d", stored)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestBulkCreateRollsBackOnFailure(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO issues").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.BulkCreate(context.Background(), []domain.SummaryResult{{Company: "크래프톤", Summary: "요약"}})
	if err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestBulkCreateEmptyIsNoop(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	stored, err := repo.BulkCreate(context.Background(), nil)
	if err != nil || stored != 0 {
		t.Fatalf("expected noop, got stored=%d err=%v", stored, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSearchAppliesFiltersAndPaging(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	created := time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM issues WHERE`).
		WithArgs("크래프톤", 0.8).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(21))
	mock.ExpectQuery(`SELECT id, corp, summary, .* ORDER BY confidence DESC, created_at DESC, id LIMIT 20 OFFSET 20`).
		WithArgs("크래프톤", 0.8).
		WillReturnRows(sqlmock.NewRows(issueColumns).AddRow(
			"id-1", "크래프톤", "요약", "model", "크래프톤 신작", 0.91, []byte(`["신작"]`),
			"https://news.example/1", "20261012", nil, "neutral", created, created,
		))

	issues, total, err := repo.Search(context.Background(), domain.IssueFilter{
		Corp:              "크래프톤",
		MinConfidence:     0.8,
		Page:              2,
		OrderByConfidence: true,
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if total != 21 || len(issues) != 1 {
		t.Fatalf("expected total=21 and 1 issue, got total=%d len=%d", total, len(issues))
	}
	got := issues[0]
	if got.SummaryOrigin != domain.SummaryOriginModel || got.MatchedKeywords[0] != "신작" || got.Category != "" {
		t.Fatalf("unexpected issue: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSearchSkipsPageQueryWhenNothingMatches(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM issues`).
		WithArgs("%실적%", "%실적%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	issues, total, err := repo.Search(context.Background(), domain.IssueFilter{Keyword: "실적"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if total != 0 || issues == nil || len(issues) != 0 {
		t.Fatalf("expected empty non-nil page, got total=%d issues=%v", total, issues)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
