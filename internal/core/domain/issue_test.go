package domain

import (
	"testing"
	"time"
)

func TestISOWeekRoundTrip(t *testing.T) {
	sunday := time.Date(2026, 10, 18, 23, 0, 0, 0, time.UTC)
	week := ISOWeek(sunday)
	if week != "2026-W42" {
		t.Fatalf("ISOWeek() = %q, want 2026-W42", week)
	}

	monday, err := ParseISOWeek(week)
	if err != nil {
		t.Fatalf("ParseISOWeek() error = %v", err)
	}
	if !monday.Equal(time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected week start %s", monday)
	}
}

func TestParseISOWeekYearBoundaries(t *testing.T) {
	start, err := ParseISOWeek("2026-W01")
	if err != nil {
		t.Fatalf("ParseISOWeek() error = %v", err)
	}
	if !start.Equal(time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("week 1 of 2026 should start on 2025-12-29, got %s", start)
	}

	if _, err := ParseISOWeek("2026-W53"); err != nil {
		t.Fatalf("2026 has 53 weeks, got %v", err)
	}
	if _, err := ParseISOWeek("2025-W53"); !IsKind(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for 2025-W53, got %v", err)
	}
}

func TestParseISOWeekRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "2026-42", "W42", "2026-W00", "2026-W54", "2026-W4", "2026-W42\"; x=1", "2026-W42/../../etc", " 2026-W42", "+026-W42"} {
		if _, err := ParseISOWeek(in); !IsKind(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %q, got %v", in, err)
		}
	}
}

func TestIssueFilterNormalized(t *testing.T) {
	f := IssueFilter{Page: 0, PageSize: 500}.Normalized()
	if f.Page != 1 || f.PageSize != MaxPageSize {
		t.Fatalf("unexpected normalized filter: %+v", f)
	}
	if got := (IssueFilter{}).Normalized().PageSize; got != DefaultPageSize {
		t.Fatalf("expected default page size, got %d", got)
	}
}
