package tm

import (
	"regexp"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

var (
	quotePattern = regexp.MustCompile(`["']`)
	tokenPattern = regexp.MustCompile(`[A-Za-z0-9]+`)
)

// SanitizeFTSQuery strips quotes, keeps alphanumeric tokens, lower-cases and
// deduplicates them preserving first-seen order, and joins them as quoted
// OR terms for SQLite FTS5 MATCH syntax. An all-punctuation input yields "".
func SanitizeFTSQuery(queryText string) string {
	stripped := quotePattern.ReplaceAllString(queryText, " ")
	tokens := tokenPattern.FindAllString(stripped, -1)
	if len(tokens) == 0 {
		return ""
	}

	seen := make(map[string]bool, len(tokens))
	var deduped []string
	for _, t := range tokens {
		lowered := strings.ToLower(t)
		if seen[lowered] {
			continue
		}
		seen[lowered] = true
		deduped = append(deduped, lowered)
	}

	quoted := make([]string, len(deduped))
	for i, t := range deduped {
		quoted[i] = `"` + t + `"`
	}
	return strings.Join(quoted, " OR ")
}

// TokenSetRatio scores similarity in [0, 100] between two strings using a
// token-set comparison: the shared-token core is compared against each
// side's leftover tokens, and the best of the three pairwise edit-distance
// ratios wins. Word order and duplicates therefore don't count against a
// candidate; only genuinely different tokens do.
func TokenSetRatio(left, right string) float64 {
	leftTokens := tokenSet(left)
	rightTokens := tokenSet(right)

	var intersection, onlyLeft, onlyRight []string
	for t := range leftTokens {
		if rightTokens[t] {
			intersection = append(intersection, t)
		} else {
			onlyLeft = append(onlyLeft, t)
		}
	}
	for t := range rightTokens {
		if !leftTokens[t] {
			onlyRight = append(onlyRight, t)
		}
	}
	sort.Strings(intersection)
	sort.Strings(onlyLeft)
	sort.Strings(onlyRight)

	core := strings.Join(intersection, " ")
	combinedLeft := joinNonEmpty(core, strings.Join(onlyLeft, " "))
	combinedRight := joinNonEmpty(core, strings.Join(onlyRight, " "))

	best := editRatio(core, combinedLeft)
	if r := editRatio(core, combinedRight); r > best {
		best = r
	}
	if r := editRatio(combinedLeft, combinedRight); r > best {
		best = r
	}
	return best
}

func tokenSet(s string) map[string]bool {
	out := make(map[string]bool)
	for _, t := range tokenPattern.FindAllString(strings.ToLower(s), -1) {
		out[t] = true
	}
	return out
}

func joinNonEmpty(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return a + " " + b
}

func editRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 100
	}
	total := len(a) + len(b)
	if total == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	ratio := float64(total-dist) / float64(total) * 100
	if ratio < 0 {
		ratio = 0
	}
	return ratio
}
