package importer

import (
	"errors"
	"fmt"
)

// ErrImport matches every fatal import error via errors.Is.
var ErrImport = errors.New("importer: import failed")

// MissingSheetError reports that the workbook has no sheet with the
// required name.
type MissingSheetError struct {
	Sheet string
}

func (e *MissingSheetError) Error() string {
	return fmt.Sprintf("importer: sheet %q not found in workbook", e.Sheet)
}

func (e *MissingSheetError) Is(target error) bool { return target == ErrImport }

// RowShapeError reports a non-empty row with too few columns.
type RowShapeError struct {
	Row     int
	Columns int
	Min     int
}

func (e *RowShapeError) Error() string {
	return fmt.Sprintf("importer: invalid data in row %d: %d columns, need at least %d", e.Row, e.Columns, e.Min)
}

func (e *RowShapeError) Is(target error) bool { return target == ErrImport }

// InvalidDateError reports a date cell that is neither a day serial nor a
// DD/MM/YYYY string.
type InvalidDateError struct {
	Row   int
	Value string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("importer: invalid date format in row %d: %q", e.Row, e.Value)
}

func (e *InvalidDateError) Is(target error) bool { return target == ErrImport }
