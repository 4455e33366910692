package provider

import "strings"

// DefaultStyleHints is used whenever a project's translation_style_hints
// config key is unset.
const DefaultStyleHints = "informal, use Du for German"

// BuildTranslationPrompt renders the translator prompt template. Mock and
// local providers never see this text; the job pipeline passes them the raw
// protected/term-tokenized text as-is.
func BuildTranslationPrompt(sourceText, protectedText, targetLocale, styleHints string) string {
	style := strings.TrimSpace(styleHints)
	if style == "" {
		style = DefaultStyleHints
	}
	return "Translate the source to " + targetLocale + ". Style hints: " + style + ".\n" +
		"Do not modify placeholder tokens like ⟦PH_*⟧ and term tokens like ⟦TERM_*⟧.\n" +
		"Keep actual newlines and escaped \\n unchanged.\n" +
		"Output only the translated string.\n" +
		"SOURCE: " + sourceText + "\n" +
		"PROTECTED: " + protectedText
}

// BuildReviewerPrompt renders the reviewer prompt template used by the
// risk-gated second pass.
func BuildReviewerPrompt(sourceText, draftText, targetLocale, styleHints string) string {
	style := strings.TrimSpace(styleHints)
	if style == "" {
		style = DefaultStyleHints
	}
	return "Review and improve this " + targetLocale + " translation. Style hints: " + style + ".\n" +
		"Keep placeholder tokens (⟦PH_*⟧) and glossary tokens (⟦TERM_*⟧) unchanged.\n" +
		"Keep actual newlines and escaped \\n unchanged.\n" +
		"Output only the revised translation string.\n" +
		"SOURCE: " + sourceText + "\n" +
		"DRAFT: " + draftText
}
