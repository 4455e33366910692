package importer

import (
	"strings"
	"testing"
)

func TestMappingValidation(t *testing.T) {
	columns := []string{"EN", "EN_OLD", "DE", "Key", "Limit", "Notes"}

	tests := []struct {
		name    string
		mapping ColumnMapping
		wantErr string
	}{
		{
			name:    "lp mode minimal",
			mapping: ColumnMapping{Mode: ModeLP, SourceNew: "EN"},
		},
		{
			name:    "lp mode with target and context",
			mapping: ColumnMapping{Mode: ModeLP, SourceNew: "EN", Target: "DE", TargetLocale: "de-DE", Key: "Key", CharLimit: "Limit", Context: []string{"Notes"}},
		},
		{
			name:    "missing source column",
			mapping: ColumnMapping{Mode: ModeLP},
			wantErr: "source column is required",
		},
		{
			name:    "change mode without source_old",
			mapping: ColumnMapping{Mode: ModeChangeSourceUpdate, SourceNew: "EN"},
			wantErr: "requires source_old",
		},
		{
			name:    "change mode complete",
			mapping: ColumnMapping{Mode: ModeChangeSourceUpdate, SourceNew: "EN", SourceOld: "EN_OLD"},
		},
		{
			name:    "target_locale without target",
			mapping: ColumnMapping{Mode: ModeLP, SourceNew: "EN", TargetLocale: "de-DE"},
			wantErr: "target_locale set without target",
		},
		{
			name:    "unknown mapped column",
			mapping: ColumnMapping{Mode: ModeLP, SourceNew: "EN", Target: "FR"},
			wantErr: "mapped column does not exist: FR",
		},
		{
			name:    "unknown context column",
			mapping: ColumnMapping{Mode: ModeLP, SourceNew: "EN", Context: []string{"Notes", "Missing"}},
			wantErr: "mapped context columns do not exist: Missing",
		},
		{
			name:    "unknown mode",
			mapping: ColumnMapping{Mode: "bulk", SourceNew: "EN"},
			wantErr: "unknown import mode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mapping.Validate(columns)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid mapping, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNormalizedDefaultsToLPAndDedupesContext(t *testing.T) {
	m := ColumnMapping{SourceNew: " EN ", Context: []string{"Notes", " Notes ", "", "Tags"}}.normalized()
	if m.Mode != ModeLP {
		t.Errorf("expected lp default mode, got %q", m.Mode)
	}
	if m.SourceNew != "EN" {
		t.Errorf("expected trimmed source column, got %q", m.SourceNew)
	}
	if len(m.Context) != 2 || m.Context[0] != "Notes" || m.Context[1] != "Tags" {
		t.Errorf("expected deduped context columns, got %v", m.Context)
	}
}

func TestBuildSignatureInput(t *testing.T) {
	got := BuildSignatureInput("xlsx", "Sheet1", []string{"EN", "DE", "Key"})
	want := "XLSX|Sheet1|colcount=3|cols=EN,DE,Key"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestComputeSchemaSignatureStable(t *testing.T) {
	a := ComputeSchemaSignature("xlsx", "Sheet1", []string{"EN", "DE"})
	b := ComputeSchemaSignature("xlsx", "Sheet1", []string{"EN", "DE"})
	if a != b {
		t.Errorf("expected bit-identical signatures, got %q vs %q", a, b)
	}
	if c := ComputeSchemaSignature("csv", "Sheet1", []string{"EN", "DE"}); c == a {
		t.Error("expected file type to change the signature")
	}
	if d := ComputeSchemaSignature("xlsx", "Sheet1", []string{"DE", "EN"}); d == a {
		t.Error("expected column order to change the signature")
	}
}

func TestComputeRowIndex(t *testing.T) {
	n := 7
	if got := computeRowIndex(Row{SpreadsheetRowNumber: &n}, 0); got != 7 {
		t.Errorf("expected supplied spreadsheet row number to win, got %d", got)
	}
	if got := computeRowIndex(Row{}, 0); got != 2 {
		t.Errorf("expected first data row to synthesize index 2, got %d", got)
	}
	if got := computeRowIndex(Row{}, 3); got != 5 {
		t.Errorf("expected position+2, got %d", got)
	}
}
