package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/weekly-issue/internal/core/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var issueColumns = []string{
	"id", "corp", "summary", "summary_type", "original_title", "confidence", "matched_keywords",
	"news_url", "published_date", "category", "sentiment", "created_at", "updated_at",
}

type IssueRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewIssueRepository(db *sql.DB) *IssueRepository {
	return &IssueRepository{db: db, now: time.Now}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *IssueRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026101801)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS issues (
	id TEXT PRIMARY KEY,
	corp VARCHAR(100) NOT NULL,
	summary TEXT NOT NULL,
	summary_type VARCHAR(40) NOT NULL,
	original_title TEXT NOT NULL,
	confidence DOUBLE PRECISION NOT NULL,
	matched_keywords JSONB NOT NULL DEFAULT '[]'::jsonb,
	news_url TEXT,
	published_date VARCHAR(20),
	category VARCHAR(50),
	sentiment VARCHAR(20),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_issues_corp_published ON issues(corp, published_date);
CREATE INDEX IF NOT EXISTS idx_issues_confidence ON issues(confidence DESC);
CREATE INDEX IF NOT EXISTS idx_issues_created_at ON issues(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_issues_sentiment ON issues(sentiment);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *IssueRepository) BulkCreate(ctx context.Context, results []domain.SummaryResult) (int, error) {
	if len(results) == 0 {
		return 0, nil
	}

	now := r.now().UTC()
	insert := psql.Insert("issues").Columns(issueColumns...)
	for _, res := range results {
		id := res.ID
		if id == "" {
			id = uuid.NewString()
		}
		keywords := res.MatchedKeywords
		if keywords == nil {
			keywords = []string{}
		}
		keywordsJSON, err := json.Marshal(keywords)
		if err != nil {
			return 0, fmt.Errorf("marshal keywords: %w", err)
		}
		insert = insert.Values(
			id, res.Company, res.Summary, string(res.SummaryOrigin), res.OriginalTitle, res.Confidence, keywordsJSON,
			res.NewsURL, res.PublishedDate, defaultString(res.Category, domain.DefaultCategory),
			defaultString(res.Sentiment, domain.DefaultSentiment), now, now,
		)
	}
	query, args, err := insert.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert issues: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert issues: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("insert issues rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert tx: %w", err)
	}
	return int(affected), nil
}

func (r *IssueRepository) Search(ctx context.Context, filter domain.IssueFilter) ([]domain.Issue, int, error) {
	filter = filter.Normalized()
	where := issueConditions(filter)

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("issues").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count issues: %w", err)
	}
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count issues: %w", err)
	}
	if total == 0 {
		return []domain.Issue{}, 0, nil
	}

	order := []string{"created_at DESC", "id"}
	if filter.OrderByConfidence {
		order = []string{"confidence DESC", "created_at DESC", "id"}
	}
	selectQuery, args, err := psql.Select(issueColumns...).
		From("issues").
		Where(where).
		OrderBy(order...).
		Limit(uint64(filter.PageSize)).
		Offset(uint64((filter.Page - 1) * filter.PageSize)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build search issues: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search issues: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Issue, 0, filter.PageSize)
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate issues: %w", err)
	}
	return out, total, nil
}

func issueConditions(filter domain.IssueFilter) sq.And {
	where := sq.And{}
	if corp := strings.TrimSpace(filter.Corp); corp != "" {
		where = append(where, sq.Eq{"corp": corp})
	}
	if sentiment := strings.TrimSpace(filter.Sentiment); sentiment != "" {
		where = append(where, sq.Eq{"sentiment": sentiment})
	}
	if filter.MinConfidence > 0 {
		where = append(where, sq.GtOrEq{"confidence": filter.MinConfidence})
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		pattern := "%" + keyword + "%"
		where = append(where, sq.Or{
			sq.ILike{"original_title": pattern},
			sq.ILike{"summary": pattern},
		})
	}
	if filter.PublishedFrom != "" {
		where = append(where, sq.GtOrEq{"published_date": filter.PublishedFrom})
	}
	if filter.PublishedTo != "" {
		where = append(where, sq.LtOrEq{"published_date": filter.PublishedTo})
	}
	if !filter.CreatedFrom.IsZero() {
		where = append(where, sq.GtOrEq{"created_at": filter.CreatedFrom.UTC()})
	}
	if !filter.CreatedTo.IsZero() {
		where = append(where, sq.Lt{"created_at": filter.CreatedTo.UTC()})
	}
	return where
}

type issueScanner interface {
	Scan(dest ...any) error
}

func scanIssue(row issueScanner) (domain.Issue, error) {
	var issue domain.Issue
	var origin string
	var keywordsRaw []byte
	var newsURL, published, category, sentiment sql.NullString
	err := row.Scan(
		&issue.ID, &issue.Corp, &issue.Summary, &origin, &issue.OriginalTitle, &issue.Confidence, &keywordsRaw,
		&newsURL, &published, &category, &sentiment, &issue.CreatedAt, &issue.UpdatedAt,
	)
	if err != nil {
		return domain.Issue{}, fmt.Errorf("scan issue: %w", err)
	}
	if len(keywordsRaw) > 0 {
		if err := json.Unmarshal(keywordsRaw, &issue.MatchedKeywords); err != nil {
			return domain.Issue{}, fmt.Errorf("unmarshal keywords: %w", err)
		}
	}
	if issue.MatchedKeywords == nil {
		issue.MatchedKeywords = []string{}
	}
	issue.SummaryOrigin = domain.SummaryOrigin(origin)
	issue.NewsURL = newsURL.String
	issue.PublishedDate = published.String
	issue.Category = category.String
	issue.Sentiment = sentiment.String
	return issue, nil
}

func defaultString(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
