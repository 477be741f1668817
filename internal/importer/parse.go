// Package importer turns the meeting workbook into Meeting records.
//
// The import is all-or-nothing: a missing sheet, a short row or an
// unreadable date aborts the whole batch, since a broken row usually means
// the columns have drifted for every row after it. Unreadable times are not
// fatal; they leave the time at midnight of the meeting date.
package importer

import (
	"time"

	"github.com/google/uuid"

	appLog "meetcal/internal/log"
	"meetcal/internal/model"
	"meetcal/internal/workbook"
)

// PendingAffirmative is the pending-flag text that marks a meeting as
// engagement pending.
const PendingAffirmative = "نعم"

// fallbackDuration is applied when a row's end time is not after its start.
const fallbackDuration = 15 * time.Minute

// Workbook is the decoded input: sheets looked up by name.
type Workbook interface {
	Sheet(name string) (*workbook.Sheet, bool)
}

// Options controls how a workbook is parsed. The zero value is usable.
type Options struct {
	// SheetName defaults to DefaultSheetName.
	SheetName string

	// Schema defaults to DefaultSchema.
	Schema Schema

	// Location is the zone meeting dates and times are built in. If nil,
	// time.Local is used.
	Location *time.Location

	// NewID generates record IDs. If nil, random UUIDs are used.
	NewID func() string
}

func (o Options) withDefaults() Options {
	if o.SheetName == "" {
		o.SheetName = DefaultSheetName
	}
	if o.Schema == (Schema{}) {
		o.Schema = DefaultSchema
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.NewID == nil {
		o.NewID = func() string { return "import-" + uuid.NewString() }
	}
	return o
}

// Result is a successfully parsed workbook.
type Result struct {
	// Records are in source row order.
	Records []model.Meeting `json:"records"`

	// DayLabels holds exactly HeaderCells labels in left-to-right order;
	// missing header cells are "".
	DayLabels []string `json:"day_labels"`
}

// Parse converts the meeting sheet of wb into records. It fails with
// *MissingSheetError, *RowShapeError or *InvalidDateError.
func Parse(wb Workbook, opts Options) (Result, error) {
	opts = opts.withDefaults()
	schema := opts.Schema

	sheet, ok := wb.Sheet(opts.SheetName)
	if !ok {
		return Result{}, &MissingSheetError{Sheet: opts.SheetName}
	}

	labels := dayLabels(sheet, schema)

	body := nonEmptyRows(sheet.Rows(schema.BodyStartRow))
	records := make([]model.Meeting, 0, len(body))
	for pos, row := range body {
		rec, err := parseRow(row, schema.sourceRow(pos), opts)
		if err != nil {
			appLog.Error("workbook import failed", err, "sheet", opts.SheetName)
			return Result{}, err
		}
		records = append(records, rec)
	}

	appLog.Info("workbook import completed", "sheet", opts.SheetName, "record_count", len(records))
	return Result{Records: records, DayLabels: labels}, nil
}

// dayLabels reads the header cells and reverses them from the sheet's
// right-to-left layout into left-to-right order.
func dayLabels(sheet *workbook.Sheet, schema Schema) []string {
	labels := make([]string, schema.HeaderCells)
	for col := 0; col < schema.HeaderCells; col++ {
		labels[schema.HeaderCells-1-col] = sheet.Cell(schema.HeaderRow, col).String()
	}
	return labels
}

// nonEmptyRows drops rows in which no cell holds a non-empty value.
func nonEmptyRows(rows [][]workbook.Cell) [][]workbook.Cell {
	out := make([][]workbook.Cell, 0, len(rows))
	for _, row := range rows {
		if !isEmptyRow(row) {
			out = append(out, row)
		}
	}
	return out
}

func isEmptyRow(row []workbook.Cell) bool {
	for _, c := range row {
		if !c.IsBlank() {
			return false
		}
	}
	return true
}

func cellAt(row []workbook.Cell, col int) workbook.Cell {
	if col < 0 || col >= len(row) {
		return workbook.Empty()
	}
	return row[col]
}

func parseRow(row []workbook.Cell, sourceRow int, opts Options) (model.Meeting, error) {
	s := opts.Schema
	if len(row) < s.MinColumns {
		return model.Meeting{}, &RowShapeError{Row: sourceRow, Columns: len(row), Min: s.MinColumns}
	}

	dateCell := cellAt(row, s.Date)
	date, ok := decodeDate(dateCell, opts.Location)
	if !ok {
		return model.Meeting{}, &InvalidDateError{Row: sourceRow, Value: dateCell.String()}
	}

	start := clockOn(date, cellAt(row, s.Start), sourceRow, "start")
	end := clockOn(date, cellAt(row, s.End), sourceRow, "end")
	if !end.After(start) {
		appLog.Debug("row end time not after start; using one slot",
			"row", sourceRow, "start", start.Format("15:04"), "end", end.Format("15:04"))
		end = start.Add(fallbackDuration)
	}

	categoryText := textOr(cellAt(row, s.Category), "")
	category, _ := model.ParseCategory(categoryText)

	rec := model.Meeting{
		ID:          opts.NewID(),
		Title:       titleOf(cellAt(row, s.Title)),
		Date:        date,
		Start:       start,
		End:         end,
		Description: textOr(cellAt(row, s.Category), model.NotAvailable),
		Organizer:   textOr(cellAt(row, s.Organizer), model.NotAvailable),
		Location:    textOr(cellAt(row, s.Location), model.NotAvailable),
		Category:    category,
		Color:       category.Colors(),
		Pending:     isPending(cellAt(row, s.Pending)),
		Slots:       slotRange(row, s, sourceRow),
	}
	return rec, nil
}

func titleOf(c workbook.Cell) string {
	if c.IsBlank() {
		return model.UntitledMeeting
	}
	return c.String()
}

// clockOn places the time cell on date. Unreadable values leave midnight.
func clockOn(date time.Time, c workbook.Cell, sourceRow int, which string) time.Time {
	minutes, ok := decodeClock(c)
	if !ok {
		if !c.IsBlank() {
			appLog.Debug("unreadable time; using midnight", "row", sourceRow, "field", which, "value", c.String())
		}
		return date
	}
	return atMinutes(date, minutes)
}

func isPending(c workbook.Cell) bool {
	switch c.Kind {
	case workbook.KindString:
		return c.Text == PendingAffirmative
	case workbook.KindBool:
		return c.Bool
	default:
		return false
	}
}

func slotRange(row []workbook.Cell, s Schema, sourceRow int) *model.SlotRange {
	start, okStart := decodeSlot(cellAt(row, s.StartSlot))
	end, okEnd := decodeSlot(cellAt(row, s.EndSlot))
	if !okStart || !okEnd {
		return nil
	}
	if end < start {
		appLog.Debug("slot range reversed; ignoring slots", "row", sourceRow, "start_slot", start, "end_slot", end)
		return nil
	}
	return &model.SlotRange{Start: start, End: end}
}
