package types

import "time"

// AssetType identifies the shape of the source file an Asset was imported from.
type AssetType string

const (
	AssetXLSX AssetType = "xlsx"
	AssetCSV  AssetType = "csv"
)

// SourceChannel records how an Asset entered the system. Only "manual" is
// currently produced; the field exists so future ingestion paths (watched
// folders, remote pulls) do not require a schema change.
type SourceChannel string

const SourceChannelManual SourceChannel = "manual"

// Asset is an immutable record of an ingested source/target table. Child
// rows (Segments, and transitively Candidates/Approvals/QAFlags) cascade on
// delete; the Asset row itself is never mutated after import.
type Asset struct {
	ID           string
	ProjectID    string
	Type         AssetType
	OriginalName string
	StoragePath  *string
	SizeBytes    *int64
	ContentHash  *string
	ReceivedAt   time.Time
	Channel      SourceChannel
}
