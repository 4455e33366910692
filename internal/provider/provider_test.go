package provider

import (
	"context"
	"strings"
	"testing"
)

type secretMap map[string]string

func (s secretMap) GetSecret(name string) (string, bool) {
	v, ok := s[name]
	return v, ok
}

func TestMockProviderEchoesTaskAndPrompt(t *testing.T) {
	p := NewMockProvider("")
	out, err := p.Generate(context.Background(), TaskTranslator, "Hallo ⟦PH_1⟧ Welt", 0.1, 512)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != "[translator] Hallo ⟦PH_1⟧ Welt" {
		t.Errorf("unexpected mock output: %q", out)
	}
}

func TestMockProviderTruncatesLongPrompts(t *testing.T) {
	p := NewMockProvider("")
	long := strings.Repeat("x", 300)
	out, err := p.Generate(context.Background(), TaskReviewer, long, 0, 0)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if want := "[reviewer] " + strings.Repeat("x", 200); out != want {
		t.Errorf("expected 200-rune truncation, got %d bytes", len(out))
	}
}

func TestLocalProviderPrefix(t *testing.T) {
	p := NewLocalProvider("")
	out, err := p.Generate(context.Background(), TaskTranslator, "hi", 0, 0)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != "[local:translator] hi" {
		t.Errorf("unexpected local stub output: %q", out)
	}
}

func TestResolveFallsBackToMockWithoutCredential(t *testing.T) {
	policy := TaskPolicy{Provider: ProviderOpenAI}
	r, err := Resolve(TaskTranslator, policy, secretMap{}, DefaultFactory(""), false)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if r.ProviderName != ProviderMock {
		t.Errorf("expected mock fallback, got %s", r.ProviderName)
	}
	if r.FallbackFrom != ProviderOpenAI {
		t.Errorf("expected fallback_from to record openai, got %s", r.FallbackFrom)
	}
	if r.Model != DefaultModelByProvider[ProviderMock] {
		t.Errorf("expected mock default model, got %q", r.Model)
	}
}

func TestResolveStrictFailsWithoutCredential(t *testing.T) {
	policy := TaskPolicy{Provider: ProviderOpenAI}
	if _, err := Resolve(TaskTranslator, policy, secretMap{}, DefaultFactory(""), true); err == nil {
		t.Fatal("expected strict mode to fail when the credential is missing")
	}
}

func TestResolveMockNeverChecksCredentials(t *testing.T) {
	policy := TaskPolicy{Provider: ProviderMock}
	r, err := Resolve(TaskReviewer, policy, secretMap{}, DefaultFactory(""), true)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if r.ProviderName != ProviderMock || r.FallbackFrom != "" {
		t.Errorf("unexpected resolution: %+v", r)
	}
}

func TestResolveDefaultsModelPerProvider(t *testing.T) {
	r, err := Resolve(TaskTranslator, TaskPolicy{Provider: ProviderLocal}, secretMap{}, DefaultFactory(""), false)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if r.Model != DefaultModelByProvider[ProviderLocal] {
		t.Errorf("expected local default model, got %q", r.Model)
	}
}

func TestModelPolicyForTask(t *testing.T) {
	p := ModelPolicy{
		Translator: TaskPolicy{Provider: ProviderOpenAI, Model: "m1"},
		Reviewer:   TaskPolicy{Provider: ProviderMock},
	}
	got, err := p.ForTask(TaskTranslator)
	if err != nil || got.Model != "m1" {
		t.Fatalf("unexpected translator slot: %+v, %v", got, err)
	}
	if _, err := p.ForTask(Task("unknown")); err == nil {
		t.Fatal("expected unknown task to error")
	}
}

func TestPromptsCarryLockTokenInstructions(t *testing.T) {
	tp := BuildTranslationPrompt("Use {0}", "Use ⟦PH_1⟧", "de-DE", "")
	if !strings.Contains(tp, DefaultStyleHints) {
		t.Error("expected default style hints when none are configured")
	}
	if !strings.Contains(tp, "⟦PH_*⟧") || !strings.Contains(tp, "⟦TERM_*⟧") {
		t.Error("expected lock-token preservation instructions in the translator prompt")
	}
	rp := BuildReviewerPrompt("Use {0}", "Nutze ⟦PH_1⟧", "de-DE", "formal")
	if !strings.Contains(rp, "formal") || !strings.Contains(rp, "DRAFT: Nutze ⟦PH_1⟧") {
		t.Errorf("unexpected reviewer prompt: %q", rp)
	}
}
