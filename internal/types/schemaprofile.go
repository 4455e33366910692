package types

import "time"

// SchemaProfile is a remembered column mapping for a file shape, keyed by
// (project, signature). ConfirmedByUser is promoted with max(existing, new)
// on re-import rather than overwritten, so an operator's confirmation is
// never silently demoted.
type SchemaProfile struct {
	ID              string
	ProjectID       string
	Signature       string
	MappingJSON     string
	Confidence      float64
	ConfirmedByUser bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
