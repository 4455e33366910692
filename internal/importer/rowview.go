package importer

// Row is one row of a RowView: per-column text values (nil means the cell
// was empty/absent) plus the originating spreadsheet row number, when the
// row-view collaborator can supply one.
type Row struct {
	Values               map[string]*string
	SpreadsheetRowNumber *int
}

// RowView is the ordered-column, row-iterating collaborator the Importer
// consumes; it never parses file bytes itself.
type RowView struct {
	Columns []string
	Rows    []Row
}

// computeRowIndex returns the 1-based spreadsheet row number (header=1,
// data starts at 2) when the row-view supplies one, else position+2.
func computeRowIndex(row Row, position int) int {
	if row.SpreadsheetRowNumber != nil {
		return *row.SpreadsheetRowNumber
	}
	return position + 2
}
