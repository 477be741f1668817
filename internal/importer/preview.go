package importer

import (
	"meetcal/internal/model"
	"meetcal/internal/workbook"
)

// DefaultPreviewRows is the number of rows shown before an import is
// confirmed.
const DefaultPreviewRows = 2

// Preview is a display-formatted look at the first rows of a workbook.
type Preview struct {
	DayLabels []string   `json:"day_labels"`
	Rows      [][]string `json:"rows"`
}

// BuildPreview formats up to limit non-empty body rows for display: numeric
// dates as DD/MM/YYYY and numeric times as "h:mm ص|م". Other cells are shown
// as text. Nothing is validated beyond the sheet being present.
func BuildPreview(wb Workbook, opts Options, limit int) (Preview, error) {
	opts = opts.withDefaults()
	if limit <= 0 {
		limit = DefaultPreviewRows
	}

	sheet, ok := wb.Sheet(opts.SheetName)
	if !ok {
		return Preview{}, &MissingSheetError{Sheet: opts.SheetName}
	}

	body := nonEmptyRows(sheet.Rows(opts.Schema.BodyStartRow))
	if len(body) > limit {
		body = body[:limit]
	}

	rows := make([][]string, 0, len(body))
	for _, row := range body {
		rows = append(rows, previewRow(row, opts))
	}
	return Preview{DayLabels: dayLabels(sheet, opts.Schema), Rows: rows}, nil
}

func previewRow(row []workbook.Cell, opts Options) []string {
	s := opts.Schema
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = c.String()
		if c.Kind != workbook.KindNumber {
			continue
		}
		switch i {
		case s.Date:
			if d, ok := decodeDate(c, opts.Location); ok {
				out[i] = d.Format("02/01/2006")
			}
		case s.Start, s.End:
			if minutes, ok := decodeClock(c); ok {
				out[i] = model.FormatClock(atMinutes(workbook.Epoch, minutes))
			}
		}
	}
	return out
}
