package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/localcat/transtable/internal/glossary"
	"github.com/localcat/transtable/internal/placeholder"
	"github.com/localcat/transtable/internal/provider"
	"github.com/localcat/transtable/internal/qa"
	"github.com/localcat/transtable/internal/storage"
	"github.com/localcat/transtable/internal/tm"
	"github.com/localcat/transtable/internal/types"
)

// tmFuzzyThreshold is the token-set-ratio score (0-100) a fuzzy TM hit must
// clear to be reused as-is instead of going to the translator.
const tmFuzzyThreshold = 92.0

// reviewRiskThreshold is the risk score at or above which a draft gets a
// second, reviewer-model pass before becoming the final candidate.
const reviewRiskThreshold = 5

// generatedCandidate is the outcome of running one segment through the
// protect -> enforce -> TM -> translate -> reinject -> QA pipeline.
type generatedCandidate struct {
	Text      string
	Type      types.CandidateType
	Score     float64
	ModelInfo map[string]string
	QAIssues  []qa.Issue
}

// pipelineInput bundles everything generateSegmentCandidate needs about the
// segment and the resolved providers for the run it belongs to.
type pipelineInput struct {
	ProjectID     string
	SourceLocale  string
	SourceText    string
	TargetLocale  string
	CharLimit     *int
	GlossaryTerms []*types.GlossaryTerm
	Translator    provider.Resolved
	Reviewer      provider.Resolved
	StyleHints    string
}

// generateSegmentCandidate runs a single segment through the full pipeline:
// placeholder protection, glossary lock-tokens, an exact or fuzzy TM lookup,
// and only on a TM miss a translator call (escalated to a reviewer call once
// the risk score crosses reviewRiskThreshold). QA checks run against the
// reconstructed final text before it is returned.
func (o *Orchestrator) generateSegmentCandidate(ctx context.Context, tx storage.Transaction, jobID, segmentID string, in pipelineInput) (generatedCandidate, error) {
	protectedSource := placeholder.Protect(in.SourceText)
	enforced := glossary.EnforceMustUse(protectedSource.ProtectedText, in.GlossaryTerms)

	exact, err := tm.FindExact(ctx, tx, in.ProjectID, in.SourceLocale, in.TargetLocale, in.SourceText)
	if err != nil {
		return generatedCandidate{}, fmt.Errorf("tm exact lookup: %w", err)
	}
	if exact != nil {
		if err := tm.RecordUse(ctx, tx, exact.ID); err != nil {
			return generatedCandidate{}, fmt.Errorf("record tm use: %w", err)
		}
		return generatedCandidate{
			Text:      exact.TargetText,
			Type:      types.CandidateTMExact,
			Score:     1.0,
			ModelInfo: map[string]string{"provider": "tm", "version": "1", "match": "exact"},
			QAIssues:  qa.CheckAll(in.SourceText, exact.TargetText, enforced, enforced.TextWithTermTokens),
		}, nil
	}

	hits, err := tm.FuzzySearch(ctx, tx, in.ProjectID, in.SourceLocale, in.TargetLocale, in.SourceText, 5)
	if err != nil {
		return generatedCandidate{}, fmt.Errorf("tm fuzzy search: %w", err)
	}
	if len(hits) > 0 && hits[0].Score >= tmFuzzyThreshold {
		best := hits[0]
		if err := tm.RecordUse(ctx, tx, best.Entry.ID); err != nil {
			return generatedCandidate{}, fmt.Errorf("record tm use: %w", err)
		}
		return generatedCandidate{
			Text:      best.Entry.TargetText,
			Type:      types.CandidateTMFuzzy,
			Score:     best.Score / 100.0,
			ModelInfo: map[string]string{"provider": "tm", "version": "1", "match": "fuzzy"},
			QAIssues:  qa.CheckAll(in.SourceText, best.Entry.TargetText, enforced, enforced.TextWithTermTokens),
		}, nil
	}

	translatorPrompt := enforced.TextWithTermTokens
	if in.Translator.ProviderName != provider.ProviderMock {
		translatorPrompt = provider.BuildTranslationPrompt(in.SourceText, enforced.TextWithTermTokens, in.TargetLocale, in.StyleHints)
	}
	translatedWithTermTokens, err := in.Translator.Provider.Generate(ctx, provider.TaskTranslator, translatorPrompt, 0.1, 512)
	if err != nil {
		return generatedCandidate{}, fmt.Errorf("translator generate: %w", err)
	}
	o.recordAudit(jobID, segmentID, in.TargetLocale, provider.TaskTranslator, in.Translator, translatorPrompt, translatedWithTermTokens)

	translatedWithTerms := glossary.ReinjectTermTokens(enforced.TermMap, translatedWithTermTokens)
	draftText := placeholder.Reinject(protectedSource, translatedWithTerms)
	draftIssues := qa.CheckAll(in.SourceText, draftText, enforced, translatedWithTermTokens)

	riskScore := computeRiskScore(in.SourceText, in.CharLimit, protectedSource.Placeholders, len(enforced.Expected))

	finalText := draftText
	finalIssues := draftIssues
	finalType := types.CandidateLLMDraft
	finalModelInfo := modelInfo(in.Translator, nil, riskScore)

	if riskScore >= reviewRiskThreshold {
		reviewerPrompt := translatedWithTermTokens
		if in.Reviewer.ProviderName != provider.ProviderMock {
			reviewerPrompt = provider.BuildReviewerPrompt(in.SourceText, translatedWithTermTokens, in.TargetLocale, in.StyleHints)
		}
		reviewedWithTermTokens, err := in.Reviewer.Provider.Generate(ctx, provider.TaskReviewer, reviewerPrompt, 0.0, 512)
		if err != nil {
			return generatedCandidate{}, fmt.Errorf("reviewer generate: %w", err)
		}
		o.recordAudit(jobID, segmentID, in.TargetLocale, provider.TaskReviewer, in.Reviewer, reviewerPrompt, reviewedWithTermTokens)

		reviewedWithTerms := glossary.ReinjectTermTokens(enforced.TermMap, reviewedWithTermTokens)
		reviewedText := placeholder.Reinject(protectedSource, reviewedWithTerms)

		finalText = reviewedText
		finalType = types.CandidateLLMReviewed
		finalModelInfo = modelInfo(in.Translator, &in.Reviewer, riskScore)
		finalIssues = qa.CheckAll(in.SourceText, reviewedText, enforced, reviewedWithTermTokens)
	}

	return generatedCandidate{
		Text:      finalText,
		Type:      finalType,
		Score:     1.0,
		ModelInfo: finalModelInfo,
		QAIssues:  finalIssues,
	}, nil
}

// modelInfo renders the model_info_json payload a candidate carries:
// translator-only when no reviewer pass ran, translator+reviewer otherwise,
// with fallback_from recorded whenever credential resolution substituted
// mock for a configured provider.
func modelInfo(translatorR provider.Resolved, reviewerR *provider.Resolved, riskScore int) map[string]string {
	if reviewerR == nil {
		info := map[string]string{
			"provider":   string(translatorR.ProviderName),
			"model":      translatorR.Model,
			"risk_score": strconv.Itoa(riskScore),
		}
		if translatorR.FallbackFrom != "" {
			info["fallback_from"] = string(translatorR.FallbackFrom)
		}
		return info
	}

	info := map[string]string{
		"provider":            string(reviewerR.ProviderName),
		"model":               reviewerR.Model,
		"translator_provider": string(translatorR.ProviderName),
		"translator_model":    translatorR.Model,
		"risk_score":          strconv.Itoa(riskScore),
	}
	if translatorR.FallbackFrom != "" {
		info["translator_fallback_from"] = string(translatorR.FallbackFrom)
	}
	if reviewerR.FallbackFrom != "" {
		info["fallback_from"] = string(reviewerR.FallbackFrom)
	}
	return info
}

func marshalModelInfo(info map[string]string) string {
	b, err := json.Marshal(info)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func toQAFlags(issues []qa.Issue) []*types.QAFlag {
	if len(issues) == 0 {
		return nil
	}
	out := make([]*types.QAFlag, 0, len(issues))
	for _, iss := range issues {
		spanJSON := "{}"
		if len(iss.Span) > 0 {
			if b, err := json.Marshal(iss.Span); err == nil {
				spanJSON = string(b)
			}
		}
		out = append(out, &types.QAFlag{
			Type:     iss.Type,
			Severity: iss.Severity,
			Message:  iss.Message,
			SpanJSON: spanJSON,
		})
	}
	return out
}

type placeholderRecord struct {
	Type  string `json:"type"`
	Value string `json:"value"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Token string `json:"token"`
}

// marshalPlaceholders renders the placeholders_json a segment persists
// after every pipeline pass recomputes its placeholder extraction.
func marshalPlaceholders(phs []placeholder.Placeholder) (string, error) {
	records := make([]placeholderRecord, len(phs))
	for i, p := range phs {
		records[i] = placeholderRecord{Type: p.Kind, Value: p.Value, Start: p.Start, End: p.End, Token: p.Token}
	}
	b, err := json.Marshal(records)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
