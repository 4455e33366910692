// Package orchestrator runs the per-segment translation pipeline and the
// three job kinds built on top of it: a flat mock-translate pass over every
// segment of an asset, and two change-review workflows that triage edits to
// already-translated source text.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/localcat/transtable/internal/audit"
	"github.com/localcat/transtable/internal/glossary"
	"github.com/localcat/transtable/internal/provider"
	"github.com/localcat/transtable/internal/storage"
	"github.com/localcat/transtable/internal/types"
)

// Orchestrator bundles the storage backend and the policy/provider wiring a
// job run needs. Callers construct one per project run, typically after
// loading a project's config.ProjectConfig into a provider.ModelPolicy.
type Orchestrator struct {
	Store                   storage.Storage
	ProviderFactory         provider.Factory
	Secrets                 provider.SecretStore
	Policy                  provider.ModelPolicy
	StyleHints              string
	IncludeGlobalGlossary   bool
	StrictProviderSelection bool

	// Logger receives one Info line per job transition. Nil disables logging.
	Logger *slog.Logger
	// AuditPath, if non-empty, receives one interactions.jsonl entry per
	// provider.Generate call made while running a job.
	AuditPath string
}

// JobResult is the outcome of a single job run, mirroring the counters each
// job kind's decision trace records.
type JobResult struct {
	JobID             string
	ProjectID         string
	AssetID           string
	TargetLocale      string
	Status            types.JobStatus
	JobType           types.JobType
	ProcessedSegments int
	ChangedSegments   int
	KeepCount         int
	UpdateCount       int
	FlagCount         int
	ProposalsCreated  int
}

func (o *Orchestrator) logInfo(msg string, args ...any) {
	if o.Logger != nil {
		o.Logger.Info(msg, args...)
	}
}

func (o *Orchestrator) recordAudit(jobID, segmentID, targetLocale string, task provider.Task, resolved provider.Resolved, prompt, response string) {
	if o.AuditPath == "" {
		return
	}
	_, err := audit.Append(o.AuditPath, &audit.Entry{
		Kind:         "llm_call",
		JobID:        jobID,
		SegmentID:    segmentID,
		TargetLocale: targetLocale,
		Task:         string(task),
		Provider:     string(resolved.ProviderName),
		Model:        resolved.Model,
		Prompt:       prompt,
		Response:     response,
	})
	if err != nil {
		o.logInfo("audit append failed", "error", err)
	}
}

func (o *Orchestrator) resolveProviders() (provider.Resolved, provider.Resolved, error) {
	translatorR, err := provider.Resolve(provider.TaskTranslator, o.Policy.Translator, o.Secrets, o.ProviderFactory, o.StrictProviderSelection)
	if err != nil {
		return provider.Resolved{}, provider.Resolved{}, fmt.Errorf("resolve translator provider: %w", err)
	}
	reviewerR, err := provider.Resolve(provider.TaskReviewer, o.Policy.Reviewer, o.Secrets, o.ProviderFactory, o.StrictProviderSelection)
	if err != nil {
		return provider.Resolved{}, provider.Resolved{}, fmt.Errorf("resolve reviewer provider: %w", err)
	}
	return translatorR, reviewerR, nil
}

func (o *Orchestrator) loadGlossaryTerms(ctx context.Context, projectID, targetLocale string) ([]*types.GlossaryTerm, error) {
	return glossary.Load(ctx, o.Store, projectID, targetLocale, o.IncludeGlobalGlossary)
}

// latestMappingSignature returns the signature of a project's most recently
// updated schema profile, used to seed a job's decision trace, or nil when
// the project has never had an asset imported.
func (o *Orchestrator) latestMappingSignature(ctx context.Context, projectID string) (*string, error) {
	profile, err := o.Store.LatestSchemaProfile(ctx, projectID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile.Signature, nil
}

// mergeTrace fills selected_asset_id, mapping_signature, and (when given)
// rules_used into a caller-supplied decision trace without overwriting keys
// the caller already set.
func mergeTrace(base map[string]any, assetID string, mappingSignature *string, rulesUsed []string) map[string]any {
	trace := make(map[string]any, len(base)+3)
	for k, v := range base {
		trace[k] = v
	}
	if _, ok := trace["selected_asset_id"]; !ok {
		trace["selected_asset_id"] = assetID
	}
	if _, ok := trace["mapping_signature"]; !ok {
		if mappingSignature != nil {
			trace["mapping_signature"] = *mappingSignature
		} else {
			trace["mapping_signature"] = nil
		}
	}
	if rulesUsed != nil {
		if _, ok := trace["rules_used"]; !ok {
			trace["rules_used"] = rulesUsed
		}
	}
	return trace
}

func marshalTrace(trace map[string]any) (string, error) {
	b, err := json.Marshal(trace)
	if err != nil {
		return "", fmt.Errorf("marshal decision trace: %w", err)
	}
	return string(b), nil
}
