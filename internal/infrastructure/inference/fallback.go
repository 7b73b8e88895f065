package inference

import (
	"strings"
	"time"
	"unicode/utf8"
)

const maxSummaryRunes = 100

// FallbackSummary builds a summary of at most 100 runes from the headline.
func FallbackSummary(company, title, description string) string {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)

	var summary string
	switch {
	case title != "" && description != "":
		summary = company + " related news: " + runePrefix(title, 30)
		if length := utf8.RuneCountInString(summary); length < 80 {
			if remaining := maxSummaryRunes - length - 5; remaining > 10 {
				summary += " - " + runePrefix(description, remaining) + "..."
			}
		}
	case title != "":
		summary = company + " related news: " + runePrefix(title, 70)
	default:
		summary = company + " related news has been released."
	}
	return runePrefix(summary, maxSummaryRunes)
}

func runePrefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

var publishedLayouts = []string{
	time.RFC1123Z,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	time.RFC1123,
}

// NormalizePublishedDate returns pubDate as YYYYMMDD, or now when unparseable.
func NormalizePublishedDate(raw string, now time.Time) string {
	raw = strings.TrimSpace(raw)
	for _, layout := range publishedLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.Format("20060102")
		}
	}
	return now.Format("20060102")
}
