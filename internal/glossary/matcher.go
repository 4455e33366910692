package glossary

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/localcat/transtable/internal/types"
)

var lockedTokenPattern = regexp.MustCompile(`⟦(?:PH|TERM)_\d+⟧`)

// Match is one selected must-use term occurrence.
type Match struct {
	Term         *types.GlossaryTerm
	Start, End   int
	SourceText   string
	EnforcedText string
	IsCompound   bool
	Priority     int
}

type span struct{ start, end int }

func spanOverlaps(s span, spans []span) bool {
	for _, e := range spans {
		if s.start < e.end && e.start < s.end {
			return true
		}
	}
	return false
}

type token struct {
	start, end int
	text       string
}

// alnumTokens returns maximal runs of alphanumerics in text, skipping any
// run that overlaps a blocked (locked-token) span.
func alnumTokens(text string, blocked []span) []token {
	runes := []rune(text)
	var out []token
	cursor := 0
	for cursor < len(runes) {
		if !isAlnum(runes[cursor]) {
			cursor++
			continue
		}
		start := cursor
		for cursor < len(runes) && isAlnum(runes[cursor]) {
			cursor++
		}
		end := cursor
		byteStart, byteEnd := runeSpanToByteSpan(text, start, end)
		if spanOverlaps(span{byteStart, byteEnd}, blocked) {
			continue
		}
		out = append(out, token{byteStart, byteEnd, string(runes[start:end])})
	}
	return out
}

func isAlnum(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }

func runeSpanToByteSpan(text string, startRune, endRune int) (int, int) {
	runes := []rune(text)
	byteStart := len(string(runes[:startRune]))
	byteEnd := len(string(runes[:endRune]))
	return byteStart, byteEnd
}

func equalsCase(a, b string, caseSensitive bool) bool {
	if caseSensitive {
		return a == b
	}
	return strings.EqualFold(a, b)
}

func startsWithCase(value, prefix string, caseSensitive bool) bool {
	if len(value) < len(prefix) {
		return false
	}
	return equalsCase(value[:len(prefix)], prefix, caseSensitive)
}

// compoundSplitPoints returns byte offsets into tok where a compound
// boundary exists: alpha<->digit transitions, lower->upper, upper->lower
// preceded by another upper (acronym tail), or upper->upper immediately
// before a lower (acronym head, e.g. "DMGBoost" splits before "Boost").
func compoundSplitPoints(tok string) map[int]bool {
	runes := []rune(tok)
	points := make(map[int]bool)
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		switch {
		case unicode.IsLetter(prev) && unicode.IsDigit(cur):
			points[byteOffset(runes, i)] = true
		case unicode.IsDigit(prev) && unicode.IsLetter(cur):
			points[byteOffset(runes, i)] = true
		case unicode.IsLower(prev) && unicode.IsUpper(cur):
			points[byteOffset(runes, i)] = true
		case unicode.IsUpper(prev) && unicode.IsLower(cur) && i >= 2 && unicode.IsUpper(runes[i-2]):
			points[byteOffset(runes, i)] = true
		case unicode.IsUpper(prev) && unicode.IsUpper(cur) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
			points[byteOffset(runes, i)] = true
		}
	}
	return points
}

func byteOffset(runes []rune, n int) int { return len(string(runes[:n])) }

func applyCompoundStrategy(fullToken, rest, targetTerm string, strategy types.CompoundStrategy) string {
	switch strategy {
	case types.CompoundKeepSource:
		return fullToken
	case types.CompoundReplacePrefix:
		return targetTerm + rest
	default: // hyphenate
		return targetTerm + "-" + rest
	}
}

var regexCache = map[string]*regexp.Regexp{}

// compileNegative compiles a negative pattern, returning nil (never an
// error) on malformed input: malformed patterns are silently ignored.
func compileNegative(pattern string, caseSensitive bool) *regexp.Regexp {
	key := pattern
	if !caseSensitive {
		key = "(?i)" + pattern
	}
	if re, ok := regexCache[key]; ok {
		return re
	}
	re, err := regexp.Compile(key)
	if err != nil {
		regexCache[key] = nil
		return nil
	}
	regexCache[key] = re
	return re
}

func isNegativePatternBlocked(term *types.GlossaryTerm, text string, start, end int) bool {
	if len(term.NegativePatterns) == 0 {
		return false
	}
	ctxStart := start - 48
	if ctxStart < 0 {
		ctxStart = 0
	}
	ctxEnd := end + 48
	if ctxEnd > len(text) {
		ctxEnd = len(text)
	}
	context := text[ctxStart:ctxEnd]

	for _, raw := range term.NegativePatterns {
		re := compileNegative(raw, term.CaseSensitive)
		if re == nil {
			continue
		}
		if re.MatchString(text) || re.MatchString(context) {
			return true
		}
	}
	return false
}

func findTokenMatches(text string, term *types.GlossaryTerm, tokens []token, priority int) []Match {
	source := term.SourceTerm
	if source == "" {
		return nil
	}
	var out []Match
	for _, tk := range tokens {
		if equalsCase(tk.text, source, term.CaseSensitive) {
			if isNegativePatternBlocked(term, text, tk.start, tk.end) {
				continue
			}
			out = append(out, Match{Term: term, Start: tk.start, End: tk.end, SourceText: tk.text, EnforcedText: term.TargetTerm, Priority: priority})
			continue
		}

		if !term.AllowCompounds {
			continue
		}
		if !startsWithCase(tk.text, source, term.CaseSensitive) {
			continue
		}
		splitIndex := len(source)
		if splitIndex >= len(tk.text) {
			continue
		}
		if !compoundSplitPoints(tk.text)[splitIndex] {
			continue
		}
		rest := tk.text[splitIndex:]
		if rest == "" {
			continue
		}
		if isNegativePatternBlocked(term, text, tk.start, tk.end) {
			continue
		}
		out = append(out, Match{
			Term:         term,
			Start:        tk.start,
			End:          tk.end,
			SourceText:   tk.text,
			EnforcedText: applyCompoundStrategy(tk.text, rest, term.TargetTerm, term.CompoundStrategy),
			IsCompound:   true,
			Priority:     priority,
		})
	}
	return out
}

func findExactMatches(text string, term *types.GlossaryTerm, blocked []span, priority int) []Match {
	if term.SourceTerm == "" {
		return nil
	}
	re := compileNegative(regexp.QuoteMeta(term.SourceTerm), term.CaseSensitive)
	if re == nil {
		return nil
	}
	var out []Match
	for _, m := range re.FindAllStringIndex(text, -1) {
		start, end := m[0], m[1]
		if spanOverlaps(span{start, end}, blocked) {
			continue
		}
		if isNegativePatternBlocked(term, text, start, end) {
			continue
		}
		out = append(out, Match{Term: term, Start: start, End: end, SourceText: text[start:end], EnforcedText: term.TargetTerm, Priority: priority})
	}
	return out
}

func selectNonOverlapping(matches []Match) []Match {
	sorted := append([]Match(nil), matches...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		lenA, lenB := a.End-a.Start, b.End-b.Start
		if lenA != lenB {
			return lenA > lenB // longer span first
		}
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if len(a.Term.SourceTerm) != len(b.Term.SourceTerm) {
			return len(a.Term.SourceTerm) > len(b.Term.SourceTerm)
		}
		return caseFold(a.Term.SourceTerm) < caseFold(b.Term.SourceTerm)
	})

	var selected []Match
	for _, cand := range sorted {
		overlapsSelected := false
		for _, s := range selected {
			if cand.Start < s.End && s.Start < cand.End {
				overlapsSelected = true
				break
			}
		}
		if overlapsSelected {
			continue
		}
		selected = append(selected, cand)
	}

	sort.Slice(selected, func(i, j int) bool {
		if selected[i].Start != selected[j].Start {
			return selected[i].Start < selected[j].Start
		}
		return selected[i].End < selected[j].End
	})
	return selected
}

// FindMustUseMatches returns the maximal non-overlapping set of must-use
// term occurrences in text, excluding any span overlapping a locked
// (⟦PH_…⟧/⟦TERM_…⟧) token.
func FindMustUseMatches(text string, terms []*types.GlossaryTerm) []Match {
	if text == "" || len(terms) == 0 {
		return nil
	}

	var blocked []span
	for _, m := range lockedTokenPattern.FindAllStringIndex(text, -1) {
		blocked = append(blocked, span{m[0], m[1]})
	}
	tokens := alnumTokens(text, blocked)

	var matches []Match
	for priority, term := range terms {
		switch term.MatchType {
		case types.MatchWholeToken, types.MatchWordBoundary:
			matches = append(matches, findTokenMatches(text, term, tokens, priority)...)
		case types.MatchExact:
			matches = append(matches, findExactMatches(text, term, blocked, priority)...)
		}
	}

	if len(matches) == 0 {
		return nil
	}
	return selectNonOverlapping(matches)
}
