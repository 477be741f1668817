// Package workbook holds a decoded spreadsheet workbook: sheets looked up by
// name, typed cells addressed by zero-based row/column, and row-major
// extraction from a starting row.
package workbook

import (
	"math"
	"strconv"
	"time"
)

// Kind is the type of value held by a Cell.
type Kind int

const (
	KindEmpty Kind = iota
	KindNumber
	KindString
	KindBool
)

// Cell is a single typed spreadsheet value. The zero value is an empty cell.
type Cell struct {
	Kind   Kind
	Number float64
	Text   string
	Bool   bool
}

func Empty() Cell           { return Cell{} }
func Number(v float64) Cell { return Cell{Kind: KindNumber, Number: v} }
func String(s string) Cell  { return Cell{Kind: KindString, Text: s} }
func Bool(b bool) Cell      { return Cell{Kind: KindBool, Bool: b} }

// IsBlank reports whether the cell is empty or holds the empty string.
func (c Cell) IsBlank() bool {
	return c.Kind == KindEmpty || (c.Kind == KindString && c.Text == "")
}

// String renders the value as plain text: numbers in their shortest form,
// booleans as "true"/"false", empty cells as "".
func (c Cell) String() string {
	switch c.Kind {
	case KindNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case KindString:
		return c.Text
	case KindBool:
		return strconv.FormatBool(c.Bool)
	default:
		return ""
	}
}

// Sheet is a named grid of cells. Rows may have different lengths; cells
// past the end of a row read as empty.
type Sheet struct {
	name string
	rows [][]Cell
}

func NewSheet(name string, rows [][]Cell) *Sheet {
	return &Sheet{name: name, rows: rows}
}

func (s *Sheet) Name() string { return s.name }

// Cell returns the cell at the zero-based row and column.
func (s *Sheet) Cell(row, col int) Cell {
	if row < 0 || row >= len(s.rows) || col < 0 || col >= len(s.rows[row]) {
		return Cell{}
	}
	return s.rows[row][col]
}

// Rows returns the rows from the zero-based offset onward. The returned
// slices are shared with the sheet and must not be modified.
func (s *Sheet) Rows(offset int) [][]Cell {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(s.rows) {
		return nil
	}
	return s.rows[offset:]
}

// Workbook is a set of sheets in workbook order.
type Workbook struct {
	order  []string
	sheets map[string]*Sheet
}

func New(sheets ...*Sheet) *Workbook {
	wb := &Workbook{sheets: make(map[string]*Sheet, len(sheets))}
	for _, s := range sheets {
		wb.add(s)
	}
	return wb
}

func (wb *Workbook) add(s *Sheet) {
	if _, dup := wb.sheets[s.name]; !dup {
		wb.order = append(wb.order, s.name)
	}
	wb.sheets[s.name] = s
}

// SheetNames lists sheet names in workbook order.
func (wb *Workbook) SheetNames() []string {
	return append([]string(nil), wb.order...)
}

// Sheet looks a sheet up by exact name.
func (wb *Workbook) Sheet(name string) (*Sheet, bool) {
	s, ok := wb.sheets[name]
	return s, ok
}

// Epoch is the spreadsheet date anchor: serial 0 is 1899-12-30.
var Epoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// SerialDate converts a day serial to midnight of that calendar date in loc.
// Any fractional (time-of-day) part is discarded.
func SerialDate(serial float64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	d := Epoch.AddDate(0, 0, int(math.Floor(serial)))
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}

// DaySerial is the inverse of SerialDate: whole days between Epoch and the
// calendar date of t.
func DaySerial(t time.Time) int {
	y, m, d := t.Date()
	civil := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int((civil.Unix() - Epoch.Unix()) / 86400)
}
