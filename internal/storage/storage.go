// Package storage defines the interface for the localization workbench's
// storage backend.
package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/localcat/transtable/internal/types"
)

// ErrDBNotInitialized reports use of a database feature before the schema
// has been migrated. The SQLite backend migrates inside sqlite.New and does
// not return it.
var ErrDBNotInitialized = errors.New("database not initialized")

// ErrNotFound is returned by single-row lookups when no row matches.
var ErrNotFound = errors.New("not found")

// Transaction provides atomic multi-operation support within a single
// database transaction.
//
// # Transaction Semantics
//
//   - All operations share the same connection and are invisible to other
//     connections until commit.
//   - If the callback returns an error or panics, the transaction rolls back.
//   - On nil return, the transaction commits.
//
// # SQLite Specifics
//
//   - Uses BEGIN IMMEDIATE to acquire the write lock early, which avoids the
//     deadlock that results from two connections each holding a read lock
//     while waiting to upgrade to a write lock.
type Transaction interface {
	// Projects
	CreateProject(ctx context.Context, p *types.Project) error
	GetProject(ctx context.Context, id string) (*types.Project, error)
	SetEnabledLocales(ctx context.Context, projectID string, locales []string) error

	// Assets
	CreateAsset(ctx context.Context, a *types.Asset) error
	GetAsset(ctx context.Context, id string) (*types.Asset, error)

	// Segments
	CreateSegment(ctx context.Context, s *types.Segment) error
	GetSegment(ctx context.Context, id string) (*types.Segment, error)
	UpdateSegmentPlaceholders(ctx context.Context, segmentID, placeholdersJSON string) error
	ListSegmentsByAsset(ctx context.Context, assetID string) ([]*types.Segment, error)
	SegmentsNeedingChangeReview(ctx context.Context, assetID string) ([]*types.Segment, error)

	// Translation candidates: natural key (segment, target locale, type)
	UpsertCandidate(ctx context.Context, c *types.TranslationCandidate) error
	LatestCandidate(ctx context.Context, segmentID, targetLocale string) (*types.TranslationCandidate, error)
	CandidateOfType(ctx context.Context, segmentID, targetLocale string, t types.CandidateType) (*types.TranslationCandidate, error)
	DeleteCandidatesOfTypes(ctx context.Context, segmentID, targetLocale string, types_ []types.CandidateType) error

	// Approvals: natural key (segment, target locale)
	UpsertApproval(ctx context.Context, a *types.ApprovedTranslation) error
	GetApproval(ctx context.Context, segmentID, targetLocale string) (*types.ApprovedTranslation, error)

	// Translation memory
	UpsertTMEntry(ctx context.Context, e *types.TMEntry) (*types.TMEntry, error)
	FindTMExact(ctx context.Context, projectID, sourceLocale, targetLocale, normalizedHash string) (*types.TMEntry, error)
	SearchTMFuzzyCandidates(ctx context.Context, projectID, sourceLocale, targetLocale, ftsQuery string, limit int) ([]*types.TMEntry, error)
	BumpTMUsage(ctx context.Context, tmID string) error

	// Glossary
	CreateGlossaryTerm(ctx context.Context, t *types.GlossaryTerm) error
	ListGlossaryTerms(ctx context.Context, projectID, locale string) ([]*types.GlossaryTerm, error)

	// QA flags
	ReplaceQAFlags(ctx context.Context, segmentID, targetLocale string, flags []*types.QAFlag) error
	ListQAFlags(ctx context.Context, segmentID, targetLocale string) ([]*types.QAFlag, error)
	DeleteQAFlagsOfTypes(ctx context.Context, segmentID, targetLocale string, types_ []types.QAFlagType) error

	// Schema profiles
	UpsertSchemaProfile(ctx context.Context, p *types.SchemaProfile) error
	GetSchemaProfile(ctx context.Context, projectID, signature string) (*types.SchemaProfile, error)
	LatestSchemaProfile(ctx context.Context, projectID string) (*types.SchemaProfile, error)
	ListSchemaProfilesByProject(ctx context.Context, projectID string) ([]*types.SchemaProfile, error)

	// Jobs
	CreateJob(ctx context.Context, j *types.Job) error
	UpdateJobStatus(ctx context.Context, jobID string, status types.JobStatus, summary, decisionTraceJSON string) error
}

// Storage is the full backend surface, including connection lifecycle and
// transaction scoping. Every method outside RunInTransaction runs in its own
// implicit transaction.
type Storage interface {
	Transaction

	ListAssetsByProject(ctx context.Context, projectID string) ([]*types.Asset, error)
	ListApprovedByAssetLocale(ctx context.Context, assetID, targetLocale string) ([]*types.ApprovedTranslation, error)

	// RunInTransaction executes fn within a single BEGIN IMMEDIATE transaction.
	// fn returning nil commits; a non-nil return or panic rolls back.
	RunInTransaction(ctx context.Context, fn func(tx Transaction) error) error

	Close() error
	Path() string

	// UnderlyingDB exposes the pooled *sql.DB for maintenance operations that
	// fall outside the Storage surface (e.g. ad-hoc diagnostics). Bypasses the
	// storage layer; use with caution.
	UnderlyingDB() *sql.DB

	// UnderlyingConn returns a single connection from the pool, scoped to the
	// caller; the caller must close it when done.
	UnderlyingConn(ctx context.Context) (*sql.Conn, error)
}

// Config holds database configuration. Only SQLite is implemented; the
// Backend field is kept for parity with multi-backend stores in this stack.
// sqlite.New takes a file path directly and does not read Config, so no
// Backend value is checked.
type Config struct {
	Backend string // always "sqlite"
	Path    string
}
