package workbook

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	appLog "meetcal/internal/log"
)

// Open decodes the .xlsx/.xlsm file at path.
func Open(path string) (*Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads an .xlsx/.xlsm payload fully into memory. Cell values are
// taken raw (no number formatting) and typed from the cell's stored type, so
// date serials and time fractions stay numeric.
func Decode(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("workbook: decode: %w", err)
	}
	defer f.Close()

	wb := New()
	for _, name := range f.GetSheetList() {
		sheet, err := decodeSheet(f, name)
		if err != nil {
			// Chart sheets and similar have no cell grid; they are not an error
			// for the workbook as a whole.
			appLog.Debug("workbook: skipping sheet", "sheet", name, "err", err)
			continue
		}
		wb.add(sheet)
	}

	appLog.Debug("workbook decoded", "sheets", len(wb.order))
	return wb, nil
}

func decodeSheet(f *excelize.File, name string) (*Sheet, error) {
	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	rows := make([][]Cell, len(raw))
	for r, cols := range raw {
		cells := make([]Cell, len(cols))
		for c, v := range cols {
			if v == "" {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			typ, err := f.GetCellType(name, axis)
			if err != nil {
				return nil, err
			}
			cells[c] = typedCell(typ, v)
		}
		rows[r] = cells
	}
	return NewSheet(name, rows), nil
}

// typedCell converts a raw cell string into a typed Cell. Cells without an
// explicit type are numeric in OOXML.
func typedCell(typ excelize.CellType, v string) Cell {
	switch typ {
	case excelize.CellTypeBool:
		return Bool(v == "1" || strings.EqualFold(v, "true"))
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return Number(n)
		}
		return String(v)
	case excelize.CellTypeDate:
		if t, ok := parseISODateTime(v); ok {
			return Number(float64(DaySerial(t)) + dayFraction(t))
		}
		return String(v)
	default:
		return String(v)
	}
}

// parseISODateTime handles ISO 8601 values stored in t="d" cells.
func parseISODateTime(v string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, strings.TrimSpace(v)); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func dayFraction(t time.Time) float64 {
	secs := t.Hour()*3600 + t.Minute()*60 + t.Second()
	return float64(secs) / 86400
}
