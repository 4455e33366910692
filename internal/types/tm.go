package types

import "time"

// TMOrigin records how a TMEntry was learned.
type TMOrigin string

const (
	TMOriginApproved      TMOrigin = "approved"
	TMOriginImportBaseline TMOrigin = "import_baseline"
)

// TMQuality tags the trust level of a TMEntry's target text.
type TMQuality string

const (
	TMQualityTrusted  TMQuality = "trusted"
	TMQualityUnrated  TMQuality = "unrated"
)

// TMEntry is a translation-memory row keyed by (project, source locale,
// target locale, normalized-source hash). NormalizedHash is the SHA-256 of
// the lower-cased, whitespace-collapsed SourceText (see tm.NormalizeSource).
type TMEntry struct {
	ID             string
	ProjectID      string
	SourceLocale   string
	TargetLocale   string
	SourceText     string
	TargetText     string
	NormalizedHash string
	Origin         TMOrigin
	OriginAssetID  *string
	OriginRowRef   *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	UseCount       int
	LastUsedAt     *time.Time
	Quality        TMQuality
}
