package usecase

import (
	"testing"

	"github.com/kirillkom/weekly-issue/internal/core/domain"
)

func filtered(title string) domain.FilteredItem {
	return domain.FilteredItem{
		RawNewsItem:     domain.RawNewsItem{Company: "크래프톤", Title: title},
		MatchedKeywords: []string{"신작"},
	}
}

func TestTokenSetRatio(t *testing.T) {
	cases := []struct {
		name string
		a, b string
		want int
	}{
		{name: "reordered words", a: "Company announces new listing", b: "new listing announces Company", want: 100},
		{name: "subset of words", a: "크래프톤 신작 출시", b: "크래프톤 신작 출시 예정", want: 100},
		{name: "punctuation and case", a: "Krafton, NEW game!", b: "krafton new game", want: 100},
		{name: "disjoint tokens", a: "abc", b: "abd", want: 67},
		{name: "empty side", a: "", b: "anything", want: 0},
		{name: "only punctuation", a: "...", b: "anything", want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TokenSetRatio(tc.a, tc.b); got != tc.want {
				t.Fatalf("TokenSetRatio(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
			}
			if got := TokenSetRatio(tc.b, tc.a); got != tc.want {
				t.Fatalf("TokenSetRatio is not symmetric for %q, %q: %d", tc.a, tc.b, got)
			}
		})
	}
}

func TestDeduplicateKeepsFirstOfCluster(t *testing.T) {
	a := filtered("크래프톤 신작 출시 발표")
	b := filtered("크래프톤 신작 출시 발표 예정")
	c := filtered("넷마블 분기 실적 공시")

	out := Deduplicate([]domain.FilteredItem{a, b, c}, DefaultSimilarityThreshold)
	if len(out) != 2 {
		t.Fatalf("expected 2 items, got %d", len(out))
	}
	if out[0].Title != a.Title || out[1].Title != c.Title {
		t.Fatalf("expected {A, C}, got %q, %q", out[0].Title, out[1].Title)
	}

	out = Deduplicate([]domain.FilteredItem{b, c, a}, DefaultSimilarityThreshold)
	if len(out) != 2 || out[0].Title != b.Title || out[1].Title != c.Title {
		t.Fatalf("expected first-seen B to win, got %+v", out)
	}
}

func TestDeduplicateComparesOnlyAgainstKeptItems(t *testing.T) {
	// b duplicates a and c duplicates b, but c scores 84 against a.
	// b is dropped, so c survives because it is never compared with b.
	a := filtered("alpha beta gamma delta")
	b := filtered("alpha beta gamma delta epsilon")
	c := filtered("beta gamma delta epsilon")

	if got := TokenSetRatio(c.Title, a.Title); got != 84 {
		t.Fatalf("expected c to score 84 against a, got %d", got)
	}

	out := Deduplicate([]domain.FilteredItem{a, b, c}, DefaultSimilarityThreshold)
	if len(out) != 2 || out[1].Title != c.Title {
		t.Fatalf("expected a and c to survive, got %+v", out)
	}
}

func TestDeduplicateDropsBlankTitlesAndHandlesEmptyInput(t *testing.T) {
	if out := Deduplicate(nil, DefaultSimilarityThreshold); len(out) != 0 {
		t.Fatalf("expected empty output, got %d", len(out))
	}

	out := Deduplicate([]domain.FilteredItem{filtered("  "), filtered("크래프톤 신작")}, 0)
	if len(out) != 1 || out[0].Title != "크래프톤 신작" {
		t.Fatalf("expected blank title dropped, got %+v", out)
	}
}
