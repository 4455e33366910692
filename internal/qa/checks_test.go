package qa

import (
	"testing"

	"github.com/localcat/transtable/internal/glossary"
	"github.com/localcat/transtable/internal/types"
)

func TestCheckPlaceholdersMismatch(t *testing.T) {
	issues := CheckPlaceholders("Damage %1$s dealt", "Damage dealt")
	if len(issues) != 1 || issues[0].Type != types.QAPlaceholderMismatch {
		t.Fatalf("unexpected issues: %+v", issues)
	}
}

func TestCheckPlaceholdersClean(t *testing.T) {
	issues := CheckPlaceholders("Damage %1$s dealt", "Degats %1$s infliges")
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}
}

func TestCheckNewlinesMismatch(t *testing.T) {
	issues := CheckNewlines("Line one\nLine two", "Line one Line two")
	if len(issues) != 1 || issues[0].Type != types.QANewlineMismatch {
		t.Fatalf("unexpected issues: %+v", issues)
	}
}

func TestCheckNewlinesEscapedMismatch(t *testing.T) {
	issues := CheckNewlines(`Line one\nLine two`, "Line one Line two")
	if len(issues) != 1 || issues[0].Span["kind"] != "escaped_newline" {
		t.Fatalf("unexpected issues: %+v", issues)
	}
}

func glossaryTerm() *types.GlossaryTerm {
	return &types.GlossaryTerm{
		ID:         "t1",
		ProjectID:  "proj",
		Locale:     "en",
		SourceTerm: "HP",
		TargetTerm: "PV",
		Rule:       types.GlossaryRuleMustUse,
		MatchType:  types.MatchWholeToken,
	}
}

func TestCheckGlossaryClean(t *testing.T) {
	enforcement := glossary.EnforceMustUse("Your HP is low", []*types.GlossaryTerm{glossaryTerm()})
	translatorOutput := "Votre ⟦TERM_1⟧ est bas"
	final := glossary.ReinjectTermTokens(enforcement.TermMap, translatorOutput)

	issues := CheckGlossary(enforcement, translatorOutput, final)
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}
}

func TestCheckGlossaryTokenSurvivesInFinal(t *testing.T) {
	enforcement := glossary.EnforceMustUse("Your HP is low", []*types.GlossaryTerm{glossaryTerm()})
	translatorOutput := "Votre ⟦TERM_1⟧ est bas"
	final := translatorOutput // translator output leaked straight through, no reinject

	issues := CheckGlossary(enforcement, translatorOutput, final)
	if len(issues) == 0 {
		t.Fatalf("expected glossary_violation for surviving token")
	}
	for _, iss := range issues {
		if iss.Type != types.QAGlossaryViolation {
			t.Errorf("expected QAGlossaryViolation, got %v", iss.Type)
		}
	}
}

func TestCheckGlossaryMissingExpectedTerm(t *testing.T) {
	enforcement := glossary.EnforceMustUse("Your HP is low", []*types.GlossaryTerm{glossaryTerm()})
	translatorOutput := "Votre ⟦TERM_1⟧ est bas"
	final := "Votre vie est bas" // reinjection never happened, term text absent, token also absent

	issues := CheckGlossary(enforcement, translatorOutput, final)
	foundMissing := false
	for _, iss := range issues {
		if iss.Span != nil && iss.Span["expected_text"] == "PV" {
			foundMissing = true
		}
	}
	if !foundMissing {
		t.Fatalf("expected missing-expected-text issue, got %+v", issues)
	}
}

func TestCheckGlossaryAlteredTokenBeforeReinjection(t *testing.T) {
	enforcement := glossary.EnforceMustUse("Your HP is low", []*types.GlossaryTerm{glossaryTerm()})
	translatorOutput := "Votre TERM_1 est bas" // translator mangled the lock-token brackets
	final := glossary.ReinjectTermTokens(enforcement.TermMap, translatorOutput)

	issues := CheckGlossary(enforcement, translatorOutput, final)
	if len(issues) == 0 {
		t.Fatalf("expected violation for altered lock token")
	}
}
