package types

// Segment is one source-text row keyed by (asset, row_index) or (asset, key).
// RowIndex is 1-based with the header occupying row 1; data rows start at 2,
// and the value is stable for the lifetime of the owning Asset.
type Segment struct {
	ID               string
	AssetID          string
	SheetName        *string
	RowIndex         int
	Key              *string
	SourceLocale     string
	SourceText       string
	SourceTextOld    *string
	CharLimit        *int
	CNText           *string
	ContextJSON      string
	PlaceholdersJSON string
}
