// Package qa implements the QA Checker: placeholder, newline, and glossary
// consistency checks run against the reconstructed final string after all
// reinjection steps.
package qa

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/localcat/transtable/internal/glossary"
	"github.com/localcat/transtable/internal/placeholder"
	"github.com/localcat/transtable/internal/types"
)

// Issue is one structured QA finding.
type Issue struct {
	Type     types.QAFlagType
	Severity types.QASeverity
	Message  string
	Span     map[string]any
}

// CheckPlaceholders reports a placeholder_mismatch error for every
// discrepancy the placeholder firewall's Validate reports between source
// and final.
func CheckPlaceholders(source, final string) []Issue {
	msgs := placeholder.Validate(source, final)
	out := make([]Issue, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, Issue{
			Type:     types.QAPlaceholderMismatch,
			Severity: types.SeverityError,
			Message:  m,
		})
	}
	return out
}

var escapedNewlinePattern = regexp.MustCompile(`\\n`)

// CheckNewlines reports a newline_mismatch error when the real or
// literal-escaped newline count changes between source and final.
func CheckNewlines(source, final string) []Issue {
	var issues []Issue

	sourceNL := strings.Count(source, "\n")
	finalNL := strings.Count(final, "\n")
	if sourceNL != finalNL {
		issues = append(issues, Issue{
			Type:     types.QANewlineMismatch,
			Severity: types.SeverityError,
			Message:  fmt.Sprintf("Actual newline count changed (expected %d, found %d).", sourceNL, finalNL),
			Span:     map[string]any{"kind": "newline"},
		})
	}

	sourceEsc := len(escapedNewlinePattern.FindAllString(source, -1))
	finalEsc := len(escapedNewlinePattern.FindAllString(final, -1))
	if sourceEsc != finalEsc {
		issues = append(issues, Issue{
			Type:     types.QANewlineMismatch,
			Severity: types.SeverityError,
			Message:  fmt.Sprintf("Escaped newline count changed (expected %d, found %d).", sourceEsc, finalEsc),
			Span:     map[string]any{"kind": "escaped_newline"},
		})
	}

	return issues
}

var termTokenScanPattern = regexp.MustCompile(`⟦TERM_\d+⟧`)

// CheckGlossary reports a glossary_violation error for any of: the
// translator altering a ⟦TERM_k⟧ token before reinjection (the multiset
// presented to the translator must survive unchanged in its raw output),
// a ⟦TERM_…⟧ token surviving into the final reinjected string, or the
// expected target-term text appearing fewer times than required.
func CheckGlossary(enforcement glossary.EnforcementResult, translatorOutputWithTokens, final string) []Issue {
	var issues []Issue

	presented := termTokenScanPattern.FindAllString(enforcement.TextWithTermTokens, -1)
	returned := termTokenScanPattern.FindAllString(translatorOutputWithTokens, -1)
	if !sameMultiset(presented, returned) {
		issues = append(issues, Issue{
			Type:     types.QAGlossaryViolation,
			Severity: types.SeverityError,
			Message:  "Glossary lock token altered by translator before reinjection.",
		})
	}

	if surviving := termTokenScanPattern.FindAllString(final, -1); len(surviving) > 0 {
		issues = append(issues, Issue{
			Type:     types.QAGlossaryViolation,
			Severity: types.SeverityError,
			Message:  fmt.Sprintf("Glossary lock token survived into final output: %s", strings.Join(surviving, ", ")),
		})
	}

	required := make(map[string]int)
	for _, exp := range enforcement.Expected {
		required[exp.EnforcedText]++
	}
	for text, want := range required {
		got := strings.Count(final, text)
		if got < want {
			issues = append(issues, Issue{
				Type:     types.QAGlossaryViolation,
				Severity: types.SeverityError,
				Message:  fmt.Sprintf("Expected glossary term %q to appear %d time(s), found %d.", text, want, got),
				Span:     map[string]any{"expected_text": text},
			})
		}
	}

	return issues
}

func sameMultiset(a, b []string) bool {
	counts := make(map[string]int)
	for _, v := range a {
		counts[v]++
	}
	for _, v := range b {
		counts[v]--
	}
	for _, n := range counts {
		if n != 0 {
			return false
		}
	}
	return true
}

// CheckAll runs placeholder, newline, and glossary checks in sequence and
// concatenates the results.
func CheckAll(source, final string, enforcement glossary.EnforcementResult, translatorOutputWithTokens string) []Issue {
	var issues []Issue
	issues = append(issues, CheckPlaceholders(source, final)...)
	issues = append(issues, CheckNewlines(source, final)...)
	issues = append(issues, CheckGlossary(enforcement, translatorOutputWithTokens, final)...)
	return issues
}
