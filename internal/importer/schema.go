package importer

// DefaultSheetName is the sheet holding the meeting table.
const DefaultSheetName = "Data"

// Schema pins down where things live in the sheet. All indices are
// zero-based; source row N (1-based, as shown by spreadsheet tools) is
// index N-1.
type Schema struct {
	// HeaderRow holds the day labels in its first HeaderCells cells, laid
	// out right-to-left.
	HeaderRow   int
	HeaderCells int

	// BodyStartRow is the first meeting row.
	BodyStartRow int

	// MinColumns is the minimum length of a non-empty body row.
	MinColumns int

	Category  int
	Title     int
	Organizer int
	Date      int
	Start     int
	End       int
	Location  int
	Pending   int
	StartSlot int
	EndSlot   int
}

// DefaultSchema matches the meeting workbook template: day labels in
// A2:E2, meetings from row 4, one meeting per row.
var DefaultSchema = Schema{
	HeaderRow:    1,
	HeaderCells:  5,
	BodyStartRow: 3,
	MinColumns:   7,

	Category:  1,
	Title:     2,
	Organizer: 3,
	Date:      4,
	Start:     5,
	End:       6,
	Location:  7,
	Pending:   8,
	StartSlot: 11,
	EndSlot:   12,
}

// sourceRow converts a position among non-empty body rows into the row
// number reported in errors.
func (s Schema) sourceRow(position int) int {
	return s.BodyStartRow + 1 + position
}
