package usecase

import (
	"reflect"
	"testing"

	"github.com/kirillkom/weekly-issue/internal/core/domain"
)

func TestKeywordFilterKeepsMatchingTitles(t *testing.T) {
	filter := NewKeywordFilter([]string{"listing", "lawsuit"})

	out := filter.Filter([]domain.RawNewsItem{
		{Company: "Company", Title: "Company announces new listing"},
		{Company: "Company", Title: "Company hosts a picnic"},
	})
	if len(out) != 1 {
		t.Fatalf("expected 1 item, got %d", len(out))
	}
	if out[0].Title != "Company announces new listing" {
		t.Fatalf("unexpected item kept: %q", out[0].Title)
	}
	if !reflect.DeepEqual(out[0].MatchedKeywords, []string{"listing"}) {
		t.Fatalf("expected matched keywords [listing], got %v", out[0].MatchedKeywords)
	}
}

func TestKeywordFilterIsCaseInsensitiveSubstringMatch(t *testing.T) {
	filter := NewKeywordFilter(nil)

	matched := filter.Match("크래프톤, 신규 IP 공개… ESG 경영 강화")
	for _, want := range []string{"강화", "공개", "신규", "ESG", "ip"} {
		found := false
		for _, got := range matched {
			if got == want {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("expected %q in matches %v", want, matched)
		}
	}

	// "ai" matches inside unrelated latin words.
	if got := filter.Match("Sustained growth"); len(got) == 0 {
		t.Fatalf("expected substring match inside a word")
	}
}

func TestKeywordFilterPreservesOrderAndInputValues(t *testing.T) {
	filter := NewKeywordFilter(nil)
	input := []domain.RawNewsItem{
		{Company: "넷마블", Title: "넷마블 신작 출시"},
		{Company: "넷마블", Title: "오늘의 날씨"},
		{Company: "엔씨소프트", Title: "엔씨소프트 분기 실적"},
	}

	out := filter.Filter(input)
	if len(out) != 2 {
		t.Fatalf("expected 2 items, got %d", len(out))
	}
	if out[0].Company != "넷마블" || out[1].Company != "엔씨소프트" {
		t.Fatalf("unexpected order: %q, %q", out[0].Company, out[1].Company)
	}
	if input[0].Title != "넷마블 신작 출시" {
		t.Fatalf("input was modified: %q", input[0].Title)
	}
}

func TestKeywordFilterEmptyInput(t *testing.T) {
	out := NewKeywordFilter(nil).Filter(nil)
	if len(out) != 0 {
		t.Fatalf("expected empty output, got %d", len(out))
	}
}
