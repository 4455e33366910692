package glossary

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/localcat/transtable/internal/types"
)

// ExpectedEnforcement is one term occurrence that was locked into a
// ⟦TERM_k⟧ token, carrying the text a reviewer expects to find in the
// final translation once the token is reinjected.
type ExpectedEnforcement struct {
	Token        string
	SourceTerm   string
	TargetTerm   string
	EnforcedText string
	Start, End   int
	IsCompound   bool
}

// EnforcementResult is the outcome of locking must-use terms into text.
type EnforcementResult struct {
	OriginalText       string
	TextWithTermTokens string
	TermMap            map[string]string
	Expected           []ExpectedEnforcement
}

// EnforceMustUse finds every must-use term occurrence in text and replaces
// it with a ⟦TERM_k⟧ token (1-based, left to right), the glossary
// lock-token step of the per-segment translation pipeline.
func EnforceMustUse(text string, terms []*types.GlossaryTerm) EnforcementResult {
	matches := FindMustUseMatches(text, terms)
	if len(matches) == 0 {
		return EnforcementResult{OriginalText: text, TextWithTermTokens: text, TermMap: map[string]string{}}
	}

	var b strings.Builder
	cursor := 0
	termMap := make(map[string]string, len(matches))
	expected := make([]ExpectedEnforcement, 0, len(matches))

	for i, m := range matches {
		token := fmt.Sprintf("⟦TERM_%d⟧", i+1)
		b.WriteString(text[cursor:m.Start])
		b.WriteString(token)
		cursor = m.End

		termMap[token] = m.EnforcedText
		expected = append(expected, ExpectedEnforcement{
			Token:        token,
			SourceTerm:   m.Term.SourceTerm,
			TargetTerm:   m.Term.TargetTerm,
			EnforcedText: m.EnforcedText,
			Start:        m.Start,
			End:          m.End,
			IsCompound:   m.IsCompound,
		})
	}
	b.WriteString(text[cursor:])

	return EnforcementResult{
		OriginalText:       text,
		TextWithTermTokens: b.String(),
		TermMap:            termMap,
		Expected:           expected,
	}
}

var termTokenPattern = regexp.MustCompile(`⟦TERM_(\d+)⟧`)

// termTokenSortKey orders tokens numerically ascending (⟦TERM_2⟧ before
// ⟦TERM_10⟧), not lexicographically: sequential string replacement would
// otherwise risk ⟦TERM_1⟧ matching as a prefix of ⟦TERM_10⟧ if order were
// reversed or sorted as plain strings.
func termTokenSortKey(token string) (int, string) {
	m := termTokenPattern.FindStringSubmatch(token)
	if m == nil {
		return 1<<31 - 1, token
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 1<<31 - 1, token
	}
	return n, token
}

// ReinjectTermTokens substitutes every ⟦TERM_k⟧ token in
// translatedWithTokens with its enforced target text.
func ReinjectTermTokens(termMap map[string]string, translatedWithTokens string) string {
	tokens := make([]string, 0, len(termMap))
	for tok := range termMap {
		tokens = append(tokens, tok)
	}
	sort.Slice(tokens, func(i, j int) bool {
		ni, si := termTokenSortKey(tokens[i])
		nj, sj := termTokenSortKey(tokens[j])
		if ni != nj {
			return ni < nj
		}
		return si < sj
	})

	out := translatedWithTokens
	for _, tok := range tokens {
		out = strings.ReplaceAll(out, tok, termMap[tok])
	}
	return out
}
