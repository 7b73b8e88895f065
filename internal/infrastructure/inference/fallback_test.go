package inference

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestFallbackSummary(t *testing.T) {
	longTitle := strings.Repeat("가", 50)
	longDesc := strings.Repeat("나", 200)

	cases := []struct {
		name        string
		company     string
		title       string
		description string
		want        string
	}{
		{
			name:    "title only",
			company: "X",
			title:   "X launches product",
			want:    "X related news: X launches product",
		},
		{
			name:    "nothing",
			company: "넷마블",
			want:    "넷마블 related news has been released.",
		},
		{
			name:        "title and description",
			company:     "X",
			title:       "X launches product",
			description: "Details follow",
			want:        "X related news: X launches product - Details follow...",
		},
		{
			name:        "long title is cut to thirty runes",
			company:     "X",
			title:       longTitle,
			description: longDesc,
			want:        "X related news: " + strings.Repeat("가", 30) + " - " + strings.Repeat("나", 49) + "..",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FallbackSummary(tc.company, tc.title, tc.description)
			if got != tc.want {
				t.Fatalf("FallbackSummary() = %q, want %q", got, tc.want)
			}
			if utf8.RuneCountInString(got) > 100 {
				t.Fatalf("summary longer than 100 runes: %d", utf8.RuneCountInString(got))
			}
		})
	}
}

func TestFallbackSummaryCapsLongCompanyNames(t *testing.T) {
	got := FallbackSummary(strings.Repeat("C", 60), strings.Repeat("t", 70), "")
	if n := utf8.RuneCountInString(got); n != 100 {
		t.Fatalf("expected 100 runes, got %d", n)
	}
}

func TestNormalizePublishedDate(t *testing.T) {
	now := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)
	cases := map[string]string{
		"Mon, 18 Dec 2023 14:30:00 +0900": "20231218",
		"Tue, 2 Jan 2024 00:10:00 +0900":  "20240102",
		"Mon, 01 Jan 2024 23:59:00 -0500": "20240101",
		"Mon, 18 Dec 2023 14:30:00 KST":   "20231218",
		"not a date":                      "20261018",
		"":                                "20261018",
	}
	for raw, want := range cases {
		if got := NormalizePublishedDate(raw, now); got != want {
			t.Fatalf("NormalizePublishedDate(%q) = %q, want %q", raw, got, want)
		}
	}
}
