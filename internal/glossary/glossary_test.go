package glossary

import (
	"testing"

	"github.com/localcat/transtable/internal/types"
)

func termFixture(source, target string, allowCompounds bool, strategy types.CompoundStrategy) *types.GlossaryTerm {
	return &types.GlossaryTerm{
		ID:               "t1",
		ProjectID:        "proj",
		Locale:           "en",
		SourceTerm:       source,
		TargetTerm:       target,
		Rule:             types.GlossaryRuleMustUse,
		MatchType:        types.MatchWholeToken,
		AllowCompounds:   allowCompounds,
		CompoundStrategy: strategy,
	}
}

func TestCompoundHyphenate(t *testing.T) {
	term := termFixture("DMG", "SCH", true, types.CompoundHyphenate)
	matches := FindMustUseMatches("DMGBoost", []*types.GlossaryTerm{term})
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d: %+v", len(matches), matches)
	}
	if matches[0].EnforcedText != "SCH-Boost" {
		t.Errorf("expected SCH-Boost, got %q", matches[0].EnforcedText)
	}

	result := EnforceMustUse("DMGBoost", []*types.GlossaryTerm{term})
	if result.TextWithTermTokens != "⟦TERM_1⟧" {
		t.Errorf("expected single term token, got %q", result.TextWithTermTokens)
	}
	final := ReinjectTermTokens(result.TermMap, result.TextWithTermTokens)
	if final != "SCH-Boost" {
		t.Errorf("expected SCH-Boost after reinject, got %q", final)
	}
}

func TestCompoundReplacePrefix(t *testing.T) {
	term := termFixture("DMG", "SCH", true, types.CompoundReplacePrefix)
	matches := FindMustUseMatches("DMGBoost", []*types.GlossaryTerm{term})
	if len(matches) != 1 || matches[0].EnforcedText != "SCHBoost" {
		t.Fatalf("unexpected matches: %+v", matches)
	}
}

func TestCompoundKeepSource(t *testing.T) {
	term := termFixture("DMG", "SCH", true, types.CompoundKeepSource)
	matches := FindMustUseMatches("DMGBoost", []*types.GlossaryTerm{term})
	if len(matches) != 1 || matches[0].EnforcedText != "DMGBoost" {
		t.Fatalf("unexpected matches: %+v", matches)
	}
}

func TestWholeTokenExactMatch(t *testing.T) {
	term := termFixture("HP", "PV", false, types.CompoundHyphenate)
	matches := FindMustUseMatches("Your HP is low", []*types.GlossaryTerm{term})
	if len(matches) != 1 || matches[0].SourceText != "HP" || matches[0].EnforcedText != "PV" {
		t.Fatalf("unexpected matches: %+v", matches)
	}
}

func TestWholeTokenDoesNotMatchSubstringWithoutCompound(t *testing.T) {
	term := termFixture("HP", "PV", false, types.CompoundHyphenate)
	matches := FindMustUseMatches("HPBoost", []*types.GlossaryTerm{term})
	if len(matches) != 0 {
		t.Fatalf("expected no match without allow_compounds, got %+v", matches)
	}
}

func TestNegativePatternExcludesMatch(t *testing.T) {
	term := termFixture("HP", "PV", false, types.CompoundHyphenate)
	term.NegativePatterns = []string{`HP\s+Potion`}
	matches := FindMustUseMatches("Use an HP Potion now", []*types.GlossaryTerm{term})
	if len(matches) != 0 {
		t.Fatalf("expected negative pattern to suppress match, got %+v", matches)
	}
}

func TestExactMatchType(t *testing.T) {
	term := termFixture("Sch'arr", "Sch'arr", false, types.CompoundHyphenate)
	term.MatchType = types.MatchExact
	matches := FindMustUseMatches("The hero Sch'arr arrives", []*types.GlossaryTerm{term})
	if len(matches) != 1 {
		t.Fatalf("expected exact match, got %+v", matches)
	}
}

func TestLockedPlaceholderTokenIsNeverMatched(t *testing.T) {
	term := termFixture("PH", "XX", false, types.CompoundHyphenate)
	matches := FindMustUseMatches("deal ⟦PH_1⟧ damage", []*types.GlossaryTerm{term})
	if len(matches) != 0 {
		t.Fatalf("expected locked token span to be excluded, got %+v", matches)
	}
}

func TestOverlappingTermsLongestWins(t *testing.T) {
	short := termFixture("HP", "PV", false, types.CompoundHyphenate)
	long := termFixture("HP Potion", "Potion de PV", false, types.CompoundHyphenate)
	long.MatchType = types.MatchExact
	short.MatchType = types.MatchExact

	matches := FindMustUseMatches("Use HP Potion now", []*types.GlossaryTerm{short, long})
	if len(matches) != 1 || matches[0].SourceText != "HP Potion" {
		t.Fatalf("expected longer span to win, got %+v", matches)
	}
}

func TestReinjectTermTokensAvoidsPrefixCollision(t *testing.T) {
	termMap := map[string]string{}
	for i := 1; i <= 11; i++ {
		termMap[termTokenLiteral(i)] = "X"
	}
	// ⟦TERM_1⟧ must not corrupt ⟦TERM_10⟧/⟦TERM_11⟧ during sequential replace.
	text := termTokenLiteral(1) + termTokenLiteral(10) + termTokenLiteral(11)
	out := ReinjectTermTokens(termMap, text)
	if out != "XXX" {
		t.Errorf("expected XXX, got %q", out)
	}
}

func termTokenLiteral(n int) string {
	return "⟦TERM_" + itoa(n) + "⟧"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
