package orchestrator

import (
	"strings"

	"github.com/localcat/transtable/internal/placeholder"
)

// computeRiskScore scores how much a segment's LLM draft warrants a second,
// reviewer pass: character limits, embedded placeholders (especially rich
// tags), multiple glossary hits, and very short source strings each add to
// the score; reviewRiskThreshold decides whether it crosses into review.
func computeRiskScore(sourceText string, charLimit *int, placeholders []placeholder.Placeholder, glossaryHits int) int {
	score := 0

	if charLimit != nil {
		score += 3
	}
	if len(placeholders) > 0 {
		score += 2
	}
	for _, p := range placeholders {
		if p.Kind == "angle_tag" {
			score += 2
			break
		}
	}
	if glossaryHits > 1 {
		score++
	}
	if len(strings.TrimSpace(sourceText)) < 12 {
		score += 2
	}

	return score
}
