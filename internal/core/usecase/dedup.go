package usecase

import (
	"strings"

	"github.com/kirillkom/weekly-issue/internal/core/domain"
)

const DefaultSimilarityThreshold = 85

// Deduplicate keeps the first item of each near-duplicate cluster and drops blank titles.
func Deduplicate(items []domain.FilteredItem, threshold int) []domain.FilteredItem {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}

	kept := make([]domain.FilteredItem, 0, len(items))
	for _, candidate := range items {
		if strings.TrimSpace(candidate.Title) == "" {
			continue
		}
		if isNearDuplicate(candidate.Title, kept, threshold) {
			continue
		}
		kept = append(kept, candidate)
	}
	return kept
}

func isNearDuplicate(title string, kept []domain.FilteredItem, threshold int) bool {
	for _, existing := range kept {
		if TokenSetRatio(title, existing.Title) >= threshold {
			return true
		}
	}
	return false
}
