package orchestrator

import "testing"

func TestClassifyChangeTable(t *testing.T) {
	cases := []struct {
		name     string
		old, new string
		want     ChangeDecision
	}{
		{"punctuation only", "Hello!", "Hello.", DecisionKeep},
		{"word count swing", "Attack", "Attack right now", DecisionUpdate},
		{"placeholder changed", "Use {0}", "Use {1}", DecisionFlag},
		{"unchanged", "Stay", "Stay", DecisionKeep},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClassifyChange(tc.old, tc.new)
			if got.Decision != tc.want {
				t.Errorf("ClassifyChange(%q, %q) = %s (%s), want %s", tc.old, tc.new, got.Decision, got.Reason, tc.want)
			}
		})
	}
}

func TestClassifyChangeWhitespaceOnlyIsKeep(t *testing.T) {
	got := ClassifyChange("Hello   there", "Hello there")
	if got.Decision != DecisionKeep {
		t.Errorf("expected KEEP for whitespace-only change, got %s", got.Decision)
	}
	if got.Confidence != 98 {
		t.Errorf("expected confidence 98, got %d", got.Confidence)
	}
}

func TestClassifyChangeFallbackFlag(t *testing.T) {
	// Same length and word count, no placeholders and no punctuation, but
	// different words: falls through every rule to the FLAG default.
	got := ClassifyChange("The red fox runs", "The big fox hops")
	if got.Decision != DecisionFlag {
		t.Errorf("expected fallback FLAG, got %s (%s)", got.Decision, got.Reason)
	}
	if got.Confidence != 45 {
		t.Errorf("expected confidence 45, got %d", got.Confidence)
	}
}
