package orchestrator

import (
	"regexp"
	"strings"

	"github.com/localcat/transtable/internal/placeholder"
)

// ChangeDecision is the outcome of classifying a segment's source-text edit.
type ChangeDecision string

const (
	DecisionKeep   ChangeDecision = "KEEP"
	DecisionUpdate ChangeDecision = "UPDATE"
	DecisionFlag   ChangeDecision = "FLAG"
)

// ChangeClassification is the verdict classify_change reaches for an
// old/new source-text pair, with the confidence and human-readable reason
// the change-review job surfaces in its QA flags.
type ChangeClassification struct {
	Decision   ChangeDecision
	Confidence int
	Reason     string
}

var changePunctuation = regexp.MustCompile(`[.!?:;,'"“”‘’()\[\]{}]+`)

func normalizeChangeText(v string) string {
	return strings.Join(strings.Fields(v), " ")
}

func stripChangePunctuation(v string) string {
	return normalizeChangeText(changePunctuation.ReplaceAllString(v, " "))
}

func relativeDelta(oldValue, newValue int) float64 {
	if oldValue <= 0 {
		if newValue > 0 {
			return 1.0
		}
		return 0.0
	}
	delta := newValue - oldValue
	if delta < 0 {
		delta = -delta
	}
	return float64(delta) / float64(oldValue)
}

type placeholderSignature struct {
	kind, value string
}

func changePlaceholderSignature(v string) []placeholderSignature {
	phs := placeholder.Extract(v)
	sig := make([]placeholderSignature, len(phs))
	for i, p := range phs {
		sig[i] = placeholderSignature{kind: p.Kind, value: p.Value}
	}
	return sig
}

func equalSignatures(a, b []placeholderSignature) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ClassifyChange decides whether a changed source segment can keep its
// existing translation, needs a freshly generated one, or needs a human to
// look at it: whitespace/punctuation-only edits are kept, a placeholder or
// tag change is always flagged, and a large length or word-count swing
// triggers an update. Anything else falls through to a flag.
func ClassifyChange(old, new string) ChangeClassification {
	normalizedOld := normalizeChangeText(old)
	normalizedNew := normalizeChangeText(new)

	if normalizedOld == normalizedNew {
		return ChangeClassification{DecisionKeep, 98, "Whitespace-only source change."}
	}

	if !equalSignatures(changePlaceholderSignature(old), changePlaceholderSignature(new)) {
		return ChangeClassification{DecisionFlag, 25, "Placeholder or tag pattern changed."}
	}

	if stripChangePunctuation(normalizedOld) == stripChangePunctuation(normalizedNew) {
		return ChangeClassification{DecisionKeep, 92, "Only punctuation changed."}
	}

	oldLen, newLen := len([]rune(normalizedOld)), len([]rune(normalizedNew))
	oldWords, newWords := len(strings.Fields(normalizedOld)), len(strings.Fields(normalizedNew))

	if relativeDelta(oldLen, newLen) > 0.30 {
		return ChangeClassification{DecisionUpdate, 78, "Source length changed significantly."}
	}
	if relativeDelta(oldWords, newWords) > 0.20 {
		return ChangeClassification{DecisionUpdate, 78, "Source word count changed significantly."}
	}

	return ChangeClassification{DecisionFlag, 45, "Source change needs manual review."}
}
