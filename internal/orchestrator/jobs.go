package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/localcat/transtable/internal/placeholder"
	"github.com/localcat/transtable/internal/qa"
	"github.com/localcat/transtable/internal/storage"
	"github.com/localcat/transtable/internal/types"
)

var changeVariantBRules = []string{
	"whitespace-normalized equality => KEEP",
	"placeholder/tag pattern change => FLAG",
	"punctuation-only change => KEEP",
	"length delta >30% => UPDATE",
	"word-count delta >20% => UPDATE",
	"fallback => FLAG",
}

// createJob persists a queued job with its initial decision trace and
// immediately marks it running, returning the job row for the caller to
// fill in further.
func (o *Orchestrator) createJob(ctx context.Context, projectID, assetID string, jobType types.JobType, targetLocale string, trace map[string]any, runningSummary string) (*types.Job, error) {
	targetsJSON, err := json.Marshal([]string{targetLocale})
	if err != nil {
		return nil, fmt.Errorf("marshal targets: %w", err)
	}
	traceJSON, err := marshalTrace(trace)
	if err != nil {
		return nil, err
	}

	job := &types.Job{
		ProjectID:         projectID,
		AssetID:           &assetID,
		Type:              jobType,
		TargetsJSON:       string(targetsJSON),
		DecisionTraceJSON: traceJSON,
	}
	if err := o.Store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	if err := o.Store.UpdateJobStatus(ctx, job.ID, types.JobRunning, runningSummary, job.DecisionTraceJSON); err != nil {
		return nil, fmt.Errorf("mark job running: %w", err)
	}
	o.logInfo("job running", "job_id", job.ID, "job_type", jobType, "asset_id", assetID, "target_locale", targetLocale)
	return job, nil
}

func (o *Orchestrator) failJob(ctx context.Context, job *types.Job, runErr error) {
	_ = o.Store.UpdateJobStatus(ctx, job.ID, types.JobFailed, "Job failed: "+runErr.Error(), job.DecisionTraceJSON)
	o.logInfo("job failed", "job_id", job.ID, "error", runErr)
}

// RunMockTranslation runs the flat translation pass over every segment of
// an asset: TM lookup first, then a translator (and conditionally a
// reviewer) call, writing one candidate and one QA-flag set per segment.
func (o *Orchestrator) RunMockTranslation(ctx context.Context, projectID, assetID, targetLocale string, decisionTrace map[string]any) (*JobResult, error) {
	mappingSignature, err := o.latestMappingSignature(ctx, projectID)
	if err != nil {
		return nil, err
	}
	trace := mergeTrace(decisionTrace, assetID, mappingSignature, nil)

	job, err := o.createJob(ctx, projectID, assetID, types.JobMockTranslate, targetLocale, trace, "Job is running")
	if err != nil {
		return nil, err
	}

	translatorR, reviewerR, err := o.resolveProviders()
	if err != nil {
		o.failJob(ctx, job, err)
		return nil, err
	}
	glossaryTerms, err := o.loadGlossaryTerms(ctx, projectID, targetLocale)
	if err != nil {
		o.failJob(ctx, job, err)
		return nil, err
	}

	processed := 0
	runErr := o.Store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		segments, err := tx.ListSegmentsByAsset(ctx, assetID)
		if err != nil {
			return fmt.Errorf("list segments: %w", err)
		}

		for _, seg := range segments {
			if err := recomputeSegmentPlaceholders(ctx, tx, seg); err != nil {
				return err
			}

			if strings.TrimSpace(seg.SourceText) == "" {
				if err := tx.ReplaceQAFlags(ctx, seg.ID, targetLocale, nil); err != nil {
					return fmt.Errorf("clear qa flags: %w", err)
				}
				continue
			}

			generated, err := o.generateSegmentCandidate(ctx, tx, job.ID, seg.ID, pipelineInput{
				ProjectID:     projectID,
				SourceLocale:  seg.SourceLocale,
				SourceText:    seg.SourceText,
				TargetLocale:  targetLocale,
				CharLimit:     seg.CharLimit,
				GlossaryTerms: glossaryTerms,
				Translator:    translatorR,
				Reviewer:      reviewerR,
				StyleHints:    o.StyleHints,
			})
			if err != nil {
				return fmt.Errorf("segment %s: %w", seg.ID, err)
			}

			if err := tx.ReplaceQAFlags(ctx, seg.ID, targetLocale, toQAFlags(generated.QAIssues)); err != nil {
				return fmt.Errorf("replace qa flags: %w", err)
			}
			if err := tx.UpsertCandidate(ctx, &types.TranslationCandidate{
				SegmentID:     seg.ID,
				TargetLocale:  targetLocale,
				Text:          generated.Text,
				Type:          generated.Type,
				Score:         generated.Score,
				ModelInfoJSON: marshalModelInfo(generated.ModelInfo),
			}); err != nil {
				return fmt.Errorf("upsert candidate: %w", err)
			}
			processed++
		}
		return nil
	})
	if runErr != nil {
		o.failJob(ctx, job, runErr)
		return nil, runErr
	}

	summary := fmt.Sprintf("Processed %d segment(s) for %s", processed, targetLocale)
	if err := o.Store.UpdateJobStatus(ctx, job.ID, types.JobDone, summary, job.DecisionTraceJSON); err != nil {
		return nil, fmt.Errorf("mark job done: %w", err)
	}
	o.logInfo("job done", "job_id", job.ID, "summary", summary)

	return &JobResult{
		JobID: job.ID, ProjectID: projectID, AssetID: assetID, TargetLocale: targetLocale,
		Status: types.JobDone, JobType: types.JobMockTranslate, ProcessedSegments: processed,
	}, nil
}

func recomputeSegmentPlaceholders(ctx context.Context, tx storage.Transaction, seg *types.Segment) error {
	protectedSource := placeholder.Protect(seg.SourceText)
	placeholdersJSON, err := marshalPlaceholders(protectedSource.Placeholders)
	if err != nil {
		return fmt.Errorf("marshal placeholders: %w", err)
	}
	if err := tx.UpdateSegmentPlaceholders(ctx, seg.ID, placeholdersJSON); err != nil {
		return fmt.Errorf("update placeholders: %w", err)
	}
	return nil
}

// RunChangeVariantA generates an updated-translation proposal for every
// segment whose source text changed, without attempting to classify
// whether the change actually warrants one. The triage a human reviewer
// does instead lives in RunChangeVariantB.
func (o *Orchestrator) RunChangeVariantA(ctx context.Context, projectID, assetID, targetLocale string, decisionTrace map[string]any) (*JobResult, error) {
	mappingSignature, err := o.latestMappingSignature(ctx, projectID)
	if err != nil {
		return nil, err
	}
	trace := mergeTrace(decisionTrace, assetID, mappingSignature, nil)

	job, err := o.createJob(ctx, projectID, assetID, types.JobChangeVariantA, targetLocale, trace, "Change fill job is running")
	if err != nil {
		return nil, err
	}

	translatorR, reviewerR, err := o.resolveProviders()
	if err != nil {
		o.failJob(ctx, job, err)
		return nil, err
	}
	glossaryTerms, err := o.loadGlossaryTerms(ctx, projectID, targetLocale)
	if err != nil {
		o.failJob(ctx, job, err)
		return nil, err
	}

	changedSegments, proposalsCreated := 0, 0
	runErr := o.Store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		segments, err := tx.SegmentsNeedingChangeReview(ctx, assetID)
		if err != nil {
			return fmt.Errorf("list segments needing change review: %w", err)
		}

		for _, seg := range segments {
			if err := recomputeSegmentPlaceholders(ctx, tx, seg); err != nil {
				return err
			}
			if strings.TrimSpace(*seg.SourceTextOld) == strings.TrimSpace(seg.SourceText) {
				continue
			}
			changedSegments++

			generated, err := o.generateSegmentCandidate(ctx, tx, job.ID, seg.ID, pipelineInput{
				ProjectID:     projectID,
				SourceLocale:  seg.SourceLocale,
				SourceText:    seg.SourceText,
				TargetLocale:  targetLocale,
				CharLimit:     seg.CharLimit,
				GlossaryTerms: glossaryTerms,
				Translator:    translatorR,
				Reviewer:      reviewerR,
				StyleHints:    o.StyleHints,
			})
			if err != nil {
				return fmt.Errorf("segment %s: %w", seg.ID, err)
			}

			issues := append([]qa.Issue{changeVariantAIssue()}, generated.QAIssues...)
			if err := tx.ReplaceQAFlags(ctx, seg.ID, targetLocale, toQAFlags(issues)); err != nil {
				return fmt.Errorf("replace qa flags: %w", err)
			}

			modelInfo := generated.ModelInfo
			withWorkflow := make(map[string]string, len(modelInfo)+2)
			for k, v := range modelInfo {
				withWorkflow[k] = v
			}
			withWorkflow["source_candidate_type"] = string(generated.Type)
			withWorkflow["workflow"] = "change_variant_a"

			if err := tx.UpsertCandidate(ctx, &types.TranslationCandidate{
				SegmentID:     seg.ID,
				TargetLocale:  targetLocale,
				Text:          generated.Text,
				Type:          types.CandidateChangeProposed,
				Score:         changeProposalScore(generated),
				ModelInfoJSON: marshalModelInfo(withWorkflow),
			}); err != nil {
				return fmt.Errorf("upsert change proposal: %w", err)
			}
			proposalsCreated++
		}
		return nil
	})
	if runErr != nil {
		o.failJob(ctx, job, runErr)
		return nil, runErr
	}

	trace["summary_counts"] = map[string]int{"changed_rows": changedSegments, "proposals_created": proposalsCreated}
	traceJSON, err := marshalTrace(trace)
	if err != nil {
		return nil, err
	}
	summary := fmt.Sprintf("Processed %d changed segment(s) for %s (proposals=%d)", changedSegments, targetLocale, proposalsCreated)
	if err := o.Store.UpdateJobStatus(ctx, job.ID, types.JobDone, summary, traceJSON); err != nil {
		return nil, fmt.Errorf("mark job done: %w", err)
	}
	o.logInfo("job done", "job_id", job.ID, "summary", summary)

	return &JobResult{
		JobID: job.ID, ProjectID: projectID, AssetID: assetID, TargetLocale: targetLocale,
		Status: types.JobDone, JobType: types.JobChangeVariantA,
		ProcessedSegments: proposalsCreated, ChangedSegments: changedSegments,
		UpdateCount: proposalsCreated, ProposalsCreated: proposalsCreated,
	}, nil
}

// RunChangeVariantB triages every changed segment through ClassifyChange:
// KEEP segments are left alone (any stale proposal is cleared), FLAG
// segments are surfaced for manual review without a generated candidate,
// and only UPDATE segments actually run the translation pipeline.
func (o *Orchestrator) RunChangeVariantB(ctx context.Context, projectID, assetID, targetLocale string, decisionTrace map[string]any) (*JobResult, error) {
	mappingSignature, err := o.latestMappingSignature(ctx, projectID)
	if err != nil {
		return nil, err
	}
	trace := mergeTrace(decisionTrace, assetID, mappingSignature, changeVariantBRules)

	job, err := o.createJob(ctx, projectID, assetID, types.JobChangeVariantB, targetLocale, trace, "Change review job is running")
	if err != nil {
		return nil, err
	}

	translatorR, reviewerR, err := o.resolveProviders()
	if err != nil {
		o.failJob(ctx, job, err)
		return nil, err
	}
	glossaryTerms, err := o.loadGlossaryTerms(ctx, projectID, targetLocale)
	if err != nil {
		o.failJob(ctx, job, err)
		return nil, err
	}

	changedSegments, keepCount, updateCount, flagCount := 0, 0, 0, 0
	runErr := o.Store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		segments, err := tx.SegmentsNeedingChangeReview(ctx, assetID)
		if err != nil {
			return fmt.Errorf("list segments needing change review: %w", err)
		}

		for _, seg := range segments {
			if err := recomputeSegmentPlaceholders(ctx, tx, seg); err != nil {
				return err
			}

			oldTrimmed := strings.TrimSpace(*seg.SourceTextOld)
			newTrimmed := strings.TrimSpace(seg.SourceText)
			if oldTrimmed == newTrimmed {
				if err := tx.DeleteCandidatesOfTypes(ctx, seg.ID, targetLocale, []types.CandidateType{types.CandidateChangeProposed, types.CandidateChangeFlagProposed}); err != nil {
					return fmt.Errorf("delete stale change candidates: %w", err)
				}
				if err := tx.DeleteQAFlagsOfTypes(ctx, seg.ID, targetLocale, []types.QAFlagType{types.QAStaleSourceChange, types.QAImpactFlagged}); err != nil {
					return fmt.Errorf("delete stale change flags: %w", err)
				}
				continue
			}
			changedSegments++

			classification := ClassifyChange(*seg.SourceTextOld, seg.SourceText)
			baseIssue := staleSourceChangeIssue(classification)

			switch classification.Decision {
			case DecisionKeep:
				if err := tx.DeleteCandidatesOfTypes(ctx, seg.ID, targetLocale, []types.CandidateType{types.CandidateChangeProposed, types.CandidateChangeFlagProposed}); err != nil {
					return fmt.Errorf("delete stale change candidates: %w", err)
				}
				if err := tx.ReplaceQAFlags(ctx, seg.ID, targetLocale, toQAFlags([]qa.Issue{baseIssue})); err != nil {
					return fmt.Errorf("replace qa flags: %w", err)
				}
				keepCount++
				continue

			case DecisionFlag:
				if err := tx.DeleteCandidatesOfTypes(ctx, seg.ID, targetLocale, []types.CandidateType{types.CandidateChangeProposed, types.CandidateChangeFlagProposed}); err != nil {
					return fmt.Errorf("delete stale change candidates: %w", err)
				}
				if err := tx.ReplaceQAFlags(ctx, seg.ID, targetLocale, toQAFlags([]qa.Issue{baseIssue, impactFlaggedIssue(classification)})); err != nil {
					return fmt.Errorf("replace qa flags: %w", err)
				}
				flagCount++
				continue
			}

			generated, err := o.generateSegmentCandidate(ctx, tx, job.ID, seg.ID, pipelineInput{
				ProjectID:     projectID,
				SourceLocale:  seg.SourceLocale,
				SourceText:    seg.SourceText,
				TargetLocale:  targetLocale,
				CharLimit:     seg.CharLimit,
				GlossaryTerms: glossaryTerms,
				Translator:    translatorR,
				Reviewer:      reviewerR,
				StyleHints:    o.StyleHints,
			})
			if err != nil {
				return fmt.Errorf("segment %s: %w", seg.ID, err)
			}

			issues := append([]qa.Issue{baseIssue}, generated.QAIssues...)
			if err := tx.ReplaceQAFlags(ctx, seg.ID, targetLocale, toQAFlags(issues)); err != nil {
				return fmt.Errorf("replace qa flags: %w", err)
			}

			score := float64(classification.Confidence) / 100.0
			if generated.Type == types.CandidateTMExact {
				score = 1.0
			}
			modelInfo := generated.ModelInfo
			withDecision := make(map[string]string, len(modelInfo)+4)
			for k, v := range modelInfo {
				withDecision[k] = v
			}
			withDecision["change_decision"] = string(classification.Decision)
			withDecision["change_confidence"] = fmt.Sprintf("%d", classification.Confidence)
			withDecision["change_reason"] = classification.Reason
			withDecision["source_candidate_type"] = string(generated.Type)

			if err := tx.UpsertCandidate(ctx, &types.TranslationCandidate{
				SegmentID:     seg.ID,
				TargetLocale:  targetLocale,
				Text:          generated.Text,
				Type:          types.CandidateChangeProposed,
				Score:         score,
				ModelInfoJSON: marshalModelInfo(withDecision),
			}); err != nil {
				return fmt.Errorf("upsert change proposal: %w", err)
			}
			updateCount++
		}
		return nil
	})
	if runErr != nil {
		o.failJob(ctx, job, runErr)
		return nil, runErr
	}

	trace["summary_counts"] = map[string]int{
		"changed_rows": changedSegments, "keep": keepCount, "update": updateCount, "flag": flagCount,
	}
	traceJSON, err := marshalTrace(trace)
	if err != nil {
		return nil, err
	}
	summary := fmt.Sprintf("Reviewed %d changed segment(s) for %s (keep=%d, update=%d, flag=%d)", changedSegments, targetLocale, keepCount, updateCount, flagCount)
	if err := o.Store.UpdateJobStatus(ctx, job.ID, types.JobDone, summary, traceJSON); err != nil {
		return nil, fmt.Errorf("mark job done: %w", err)
	}
	o.logInfo("job done", "job_id", job.ID, "summary", summary)

	return &JobResult{
		JobID: job.ID, ProjectID: projectID, AssetID: assetID, TargetLocale: targetLocale,
		Status: types.JobDone, JobType: types.JobChangeVariantB,
		ProcessedSegments: changedSegments, ChangedSegments: changedSegments,
		KeepCount: keepCount, UpdateCount: updateCount, FlagCount: flagCount,
	}, nil
}

func changeVariantAIssue() qa.Issue {
	return qa.Issue{
		Type:     types.QAStaleSourceChange,
		Severity: types.SeverityWarn,
		Message:  "Source changed from OLD to NEW. Proposed updated target for review.",
		Span: map[string]any{
			"decision":   "UPDATE",
			"confidence": 50,
			"reason":     "Source changed from OLD to NEW.",
		},
	}
}

func staleSourceChangeIssue(c ChangeClassification) qa.Issue {
	return qa.Issue{
		Type:     types.QAStaleSourceChange,
		Severity: types.SeverityWarn,
		Message:  fmt.Sprintf("Source changed from OLD to NEW. Decision: %s. %s", c.Decision, c.Reason),
		Span: map[string]any{
			"decision":   string(c.Decision),
			"confidence": c.Confidence,
			"reason":     c.Reason,
		},
	}
}

func impactFlaggedIssue(c ChangeClassification) qa.Issue {
	return qa.Issue{
		Type:     types.QAImpactFlagged,
		Severity: types.SeverityWarn,
		Message:  c.Reason,
		Span: map[string]any{
			"decision":   string(c.Decision),
			"confidence": c.Confidence,
			"reason":     c.Reason,
		},
	}
}

// changeProposalScore is variant A's score rule: 1.0 if the pipeline
// resolved via an exact TM hit, 0.5 otherwise (fuzzy TM hits included).
func changeProposalScore(g generatedCandidate) float64 {
	if g.Type == types.CandidateTMExact {
		return 1.0
	}
	return 0.5
}
