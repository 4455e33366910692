// Package placeholder implements the placeholder firewall: tokenize fragile
// substrings in a source string so a translator cannot corrupt them,
// reinject them after translation, and validate the round trip.
package placeholder

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Placeholder is one recognized fragile substring and its location in the
// text it was extracted from.
type Placeholder struct {
	Kind  string
	Value string
	Start int
	End   int
	Token string
}

// Protected is the result of protecting a source string: the text with every
// placeholder replaced by its opaque token, the ordered placeholder list,
// and a token -> literal value map for reinjection.
type Protected struct {
	Original      string
	ProtectedText string
	Placeholders  []Placeholder
	TokenMap      map[string]string
}

type patternEntry struct {
	kind    string
	pattern *regexp.Regexp
}

// patterns is ordered by priority: earlier entries win when spans overlap.
// The fixed order is double-curly, angle tags, curly, printf, escaped
// newline, then real newline.
var patterns = []patternEntry{
	{"double_curly", regexp.MustCompile(`\{\{[^{}\r\n]+\}\}`)},
	{"angle_tag", regexp.MustCompile(`(?i)</?(?:b|i|color|size)\b[^>]*>|<sprite\b[^>]*>`)},
	{"curly", regexp.MustCompile(`\{(?:[0-9]+|[A-Za-z_][A-Za-z0-9_]*)\}`)},
	{"percent", regexp.MustCompile(`%(?:[0-9]+\$)?[sd]`)},
	{"escaped_newline", regexp.MustCompile(`\\n`)},
	{"newline", regexp.MustCompile("\n")},
}

type span struct {
	start, end int
}

func overlaps(s span, existing []span) bool {
	for _, e := range existing {
		if s.start < e.end && e.start < s.end {
			return true
		}
	}
	return false
}

// Extract returns every recognized placeholder in text, left to right, with
// non-overlapping spans selected by the priority order above: the first
// pattern to claim a span at a given position wins.
func Extract(text string) []Placeholder {
	if text == "" {
		return nil
	}

	type found struct {
		start, end int
		kind       string
		value      string
	}
	var collected []found
	var occupied []span

	for _, p := range patterns {
		for _, m := range p.pattern.FindAllStringIndex(text, -1) {
			s := span{m[0], m[1]}
			if overlaps(s, occupied) {
				continue
			}
			occupied = append(occupied, s)
			collected = append(collected, found{m[0], m[1], p.kind, text[m[0]:m[1]]})
		}
	}

	sort.Slice(collected, func(i, j int) bool { return collected[i].start < collected[j].start })

	out := make([]Placeholder, 0, len(collected))
	for i, f := range collected {
		out = append(out, Placeholder{
			Kind:  f.kind,
			Value: f.value,
			Start: f.start,
			End:   f.end,
			Token: fmt.Sprintf("⟦PH_%d⟧", i+1),
		})
	}
	return out
}

// Protect replaces every extracted placeholder in text with its opaque
// token, in ASCII (left-to-right) order.
func Protect(text string) Protected {
	placeholders := Extract(text)
	if len(placeholders) == 0 {
		return Protected{Original: text, ProtectedText: text, TokenMap: map[string]string{}}
	}

	var b strings.Builder
	cursor := 0
	tokenMap := make(map[string]string, len(placeholders))
	for _, ph := range placeholders {
		b.WriteString(text[cursor:ph.Start])
		b.WriteString(ph.Token)
		cursor = ph.End
		tokenMap[ph.Token] = ph.Value
	}
	b.WriteString(text[cursor:])

	return Protected{
		Original:      text,
		ProtectedText: b.String(),
		Placeholders:  placeholders,
		TokenMap:      tokenMap,
	}
}

// Reinject substitutes every ⟦PH_k⟧ token in translatedWithTokens with its
// original literal value. The closing bracket in the token format makes
// substitution order irrelevant: ⟦PH_1⟧ is never a prefix of ⟦PH_10⟧.
func Reinject(p Protected, translatedWithTokens string) string {
	out := translatedWithTokens
	for _, ph := range p.Placeholders {
		out = strings.ReplaceAll(out, ph.Token, ph.Value)
	}
	return out
}

// Validate compares the placeholder multiset and order between original and
// final text, returning one human-readable error per discrepancy. An empty
// result means the translator did not alter any placeholder.
func Validate(original, final string) []string {
	originalValues := valuesOf(Extract(original))
	finalValues := valuesOf(Extract(final))

	originalCounts := counts(originalValues)
	finalCounts := counts(finalValues)

	var allValues []string
	seen := map[string]bool{}
	for v := range originalCounts {
		if !seen[v] {
			seen[v] = true
			allValues = append(allValues, v)
		}
	}
	for v := range finalCounts {
		if !seen[v] {
			seen[v] = true
			allValues = append(allValues, v)
		}
	}
	sort.Strings(allValues)

	var errs []string
	for _, v := range allValues {
		expected := originalCounts[v]
		found := finalCounts[v]
		switch {
		case found < expected:
			errs = append(errs, fmt.Sprintf("Missing placeholder '%s' (expected %d, found %d)", v, expected, found))
		case found > expected:
			errs = append(errs, fmt.Sprintf("Extra placeholder '%s' (expected %d, found %d)", v, expected, found))
		}
	}

	if len(errs) == 0 && !equalSlices(originalValues, finalValues) {
		errs = append(errs, "Placeholder order changed.")
	}

	return errs
}

func valuesOf(phs []Placeholder) []string {
	out := make([]string, len(phs))
	for i, p := range phs {
		out[i] = p.Value
	}
	return out
}

func counts(values []string) map[string]int {
	m := make(map[string]int, len(values))
	for _, v := range values {
		m[v]++
	}
	return m
}

func equalSlices(a, b []string) bool {
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
