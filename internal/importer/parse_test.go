package importer

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetcal/internal/model"
	"meetcal/internal/workbook"
)

var (
	num  = workbook.Number
	str  = workbook.String
	bln  = workbook.Bool
	none = workbook.Empty()
)

// bodyRow builds a meeting row: index, category, title, organizer, date,
// start, end, location, pending.
func bodyRow(category, title, organizer, date, start, end, location, pending workbook.Cell) []workbook.Cell {
	return []workbook.Cell{num(1), category, title, organizer, date, start, end, location, pending}
}

func simpleRow(date, start, end workbook.Cell) []workbook.Cell {
	return []workbook.Cell{num(1), str("الاجتماعات الثنائية"), str("Budget review"), str("Finance"), date, start, end}
}

func newBook(header []workbook.Cell, body ...[]workbook.Cell) *workbook.Workbook {
	rows := [][]workbook.Cell{
		{str("title banner")},
		header,
		{},
	}
	rows = append(rows, body...)
	return workbook.New(workbook.NewSheet(DefaultSheetName, rows))
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("m-%d", n)
	}
}

func testOptions() Options {
	return Options{Location: time.UTC, NewID: sequentialIDs()}
}

func TestParseMissingSheet(t *testing.T) {
	wb := workbook.New(workbook.NewSheet("Sheet1", nil))

	res, err := Parse(wb, testOptions())
	require.Error(t, err)

	var missing *MissingSheetError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Data", missing.Sheet)
	assert.ErrorIs(t, err, ErrImport)
	assert.Empty(t, res.Records)
	assert.Empty(t, res.DayLabels)
}

func TestParseSerialDateAndFractionTimes(t *testing.T) {
	wb := newBook(nil, simpleRow(num(45000), num(0.375), num(0.5)))

	res, err := Parse(wb, testOptions())
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	rec := res.Records[0]
	assert.Equal(t, time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC), rec.Date)
	assert.Equal(t, time.Date(2023, time.March, 15, 9, 0, 0, 0, time.UTC), rec.Start)
	assert.Equal(t, time.Date(2023, time.March, 15, 12, 0, 0, 0, time.UTC), rec.End)
	assert.Equal(t, "m-1", rec.ID)
	assert.Equal(t, "Budget review", rec.Title)
	assert.Equal(t, "Finance", rec.Organizer)
	assert.Equal(t, model.CategoryBilateral, rec.Category)
	assert.Equal(t, "#032059", rec.Color.Primary)
	assert.Equal(t, "الاجتماعات الثنائية", rec.Description)
	assert.Equal(t, model.NotAvailable, rec.Location)
	assert.False(t, rec.Pending)
	assert.Nil(t, rec.Slots)
}

func TestParseStringDateAndTimes(t *testing.T) {
	loc := time.FixedZone("AST", 3*3600)
	wb := newBook(nil, simpleRow(str("07/04/2024"), str("2:30 pm"), str("3:45 م")))

	res, err := Parse(wb, Options{Location: loc})
	require.NoError(t, err)
	rec := res.Records[0]
	assert.Equal(t, time.Date(2024, time.April, 7, 0, 0, 0, 0, loc), rec.Date)
	assert.Equal(t, time.Date(2024, time.April, 7, 14, 30, 0, 0, loc), rec.Start)
	assert.Equal(t, time.Date(2024, time.April, 7, 15, 45, 0, 0, loc), rec.End)
	assert.Contains(t, rec.ID, "import-")
}

func TestParseInvalidDates(t *testing.T) {
	for _, c := range []workbook.Cell{
		str("2024-04-07"),
		str("7/4"),
		str("31/02/2024"),
		str("aa/bb/cccc"),
		bln(true),
		none,
	} {
		wb := newBook(nil, simpleRow(c, num(0.375), num(0.5)))
		_, err := Parse(wb, testOptions())

		var invalid *InvalidDateError
		require.ErrorAs(t, err, &invalid, "date cell %#v", c)
		assert.Equal(t, 4, invalid.Row)
		assert.ErrorIs(t, err, ErrImport)
	}
}

func TestParseInvalidDateAbortsWholeBatch(t *testing.T) {
	wb := newBook(nil,
		simpleRow(num(45000), num(0.375), num(0.5)),
		simpleRow(str("soon"), num(0.375), num(0.5)),
		simpleRow(num(45001), num(0.375), num(0.5)),
	)
	res, err := Parse(wb, testOptions())
	require.Error(t, err)
	assert.Empty(t, res.Records)
	assert.Contains(t, err.Error(), "row 5")
}

func TestParseRowShape(t *testing.T) {
	short := []workbook.Cell{num(1), str("x"), str("title"), none, num(45000), num(0.4)}
	wb := newBook(nil, simpleRow(num(45000), num(0.375), num(0.5)), short)

	_, err := Parse(wb, testOptions())
	var shape *RowShapeError
	require.ErrorAs(t, err, &shape)
	assert.Equal(t, 5, shape.Row)
	assert.Equal(t, 6, shape.Columns)
	assert.Equal(t, 7, shape.Min)
}

func TestParseEmptyRowsSkippedAndNotCounted(t *testing.T) {
	short := []workbook.Cell{num(1), str("x")}
	wb := newBook(nil,
		simpleRow(num(45000), num(0.375), num(0.5)),
		nil,
		[]workbook.Cell{none, str(""), none, str("")},
		short,
	)

	_, err := Parse(wb, testOptions())
	var shape *RowShapeError
	require.ErrorAs(t, err, &shape)
	assert.Equal(t, 5, shape.Row, "blank rows do not advance the reported row number")

	wb = newBook(nil,
		nil,
		simpleRow(num(45000), num(0.375), num(0.5)),
		[]workbook.Cell{str(""), str(""), str(""), str(""), str(""), str(""), str("")},
		simpleRow(num(45001), num(0.375), num(0.5)),
	)
	res, err := Parse(wb, testOptions())
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "m-1", res.Records[0].ID)
	assert.Equal(t, "m-2", res.Records[1].ID)
	assert.True(t, res.Records[0].Date.Before(res.Records[1].Date), "records keep source order")
}

func TestParseDayLabels(t *testing.T) {
	header := []workbook.Cell{str("الخميس"), str("الأربعاء"), none, str("الاثنين"), str("الأحد")}
	wb := newBook(header)

	res, err := Parse(wb, testOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"الأحد", "الاثنين", "", "الأربعاء", "الخميس"}, res.DayLabels)
	assert.Empty(t, res.Records)

	wb = newBook([]workbook.Cell{num(5)})
	res, err = Parse(wb, testOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"", "", "", "", "5"}, res.DayLabels)

	// Date-formatted header cells keep their serial.
	wb = newBook([]workbook.Cell{num(45355), num(0.5), bln(true)})
	res, err = Parse(wb, testOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"", "", "true", "0.5", "45355"}, res.DayLabels)
}

func TestParsePendingFlag(t *testing.T) {
	tests := []struct {
		cell workbook.Cell
		want bool
	}{
		{str(PendingAffirmative), true},
		{bln(true), true},
		{str("لا"), false},
		{str("true"), false},
		{str("yes"), false},
		{str("0"), false},
		{num(1), false},
		{bln(false), false},
		{none, false},
	}
	for _, tt := range tests {
		row := bodyRow(str("اجتماعات أخرى"), str("t"), str("o"), num(45000), num(0.375), num(0.5), str("Room 1"), tt.cell)
		res, err := Parse(newBook(nil, row), testOptions())
		require.NoError(t, err)
		assert.Equal(t, tt.want, res.Records[0].Pending, "pending cell %#v", tt.cell)
	}
}

func TestParseOptionalTextDefaults(t *testing.T) {
	row := bodyRow(none, none, none, num(45000), num(0.375), num(0.5), bln(false), none)
	res, err := Parse(newBook(nil, row), testOptions())
	require.NoError(t, err)

	rec := res.Records[0]
	assert.Equal(t, model.UntitledMeeting, rec.Title)
	assert.Equal(t, model.NotAvailable, rec.Organizer)
	assert.NotEqual(t, "undefined", rec.Organizer)
	assert.Equal(t, model.NotAvailable, rec.Location)
	assert.Equal(t, model.NotAvailable, rec.Description)
	assert.Equal(t, model.CategoryNone, rec.Category)
	assert.Equal(t, model.DefaultColors, rec.Color)
}

func TestParseUnknownCategoryFallsBack(t *testing.T) {
	row := bodyRow(str("ورشة عمل"), str("t"), num(42), num(45000), num(0.375), num(0.5), str("Hall"), none)
	res, err := Parse(newBook(nil, row), testOptions())
	require.NoError(t, err)

	rec := res.Records[0]
	assert.Equal(t, model.CategoryNone, rec.Category)
	assert.Equal(t, model.DefaultColors, rec.Color)
	assert.Equal(t, "ورشة عمل", rec.Description)
	assert.Equal(t, "42", rec.Organizer)
	assert.Equal(t, "Hall", rec.Location)
}

func TestParseMalformedTimesAreNotFatal(t *testing.T) {
	wb := newBook(nil, simpleRow(num(45000), str("soon"), str("10:30")))
	res, err := Parse(wb, testOptions())
	require.NoError(t, err)

	rec := res.Records[0]
	assert.Equal(t, rec.Date, rec.Start, "unreadable start stays at midnight")
	assert.Equal(t, 10*time.Hour+30*time.Minute, rec.End.Sub(rec.Date))
}

func TestParseEndNotAfterStartIsCorrected(t *testing.T) {
	wb := newBook(nil, simpleRow(num(45000), num(0.5), num(0.375)))
	res, err := Parse(wb, testOptions())
	require.NoError(t, err)

	rec := res.Records[0]
	assert.True(t, rec.End.After(rec.Start))
	assert.Equal(t, 15*time.Minute, rec.Duration())
}

func TestParseEndJustBeforeMidnightStaysOnDate(t *testing.T) {
	wb := newBook(nil, simpleRow(num(45000), num(0.75), num(0.99999)))
	res, err := Parse(wb, testOptions())
	require.NoError(t, err)

	rec := res.Records[0]
	assert.Equal(t, rec.Start.YearDay(), rec.End.YearDay())
	assert.Equal(t, 23, rec.End.Hour())
	assert.Equal(t, 59, rec.End.Minute())
}

func TestParseSlotIndices(t *testing.T) {
	withSlots := func(start, end workbook.Cell) []workbook.Cell {
		row := simpleRow(num(45000), num(0.375), num(0.5))
		return append(row, none, none, none, none, start, end)
	}

	res, err := Parse(newBook(nil,
		withSlots(num(3), num(6)),
		withSlots(str("5"), str(" 8 ")),
		withSlots(num(3), none),
		withSlots(num(6), num(3)),
		withSlots(num(2.5), num(4)),
		withSlots(num(0), num(4)),
	), testOptions())
	require.NoError(t, err)
	require.Len(t, res.Records, 6)

	assert.Equal(t, &model.SlotRange{Start: 3, End: 6}, res.Records[0].Slots)
	assert.Equal(t, &model.SlotRange{Start: 5, End: 8}, res.Records[1].Slots)
	for _, rec := range res.Records[2:] {
		assert.Nil(t, rec.Slots)
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"9:00", 9 * 60, true},
		{"09:05", 9*60 + 5, true},
		{"14:45", 14*60 + 45, true},
		{"10:30 am", 10*60 + 30, true},
		{"10:30 AM", 10*60 + 30, true},
		{"2:45 pm", 14*60 + 45, true},
		{"12:15 pm", 12*60 + 15, true},
		{"12:15 am", 15, true},
		{"12:00 ص", 0, true},
		{"1:30 م", 13*60 + 30, true},
		{"13:30 م", 13*60 + 30, true},
		{"11:00 ص", 11 * 60, true},
		{"9:30:00", 9*60 + 30, true},
		{"noon", 0, false},
		{"10", 0, false},
		{":30", 0, false},
		{"25:00", 0, false},
		{"10:75", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseClock(tt.in)
		assert.Equal(t, tt.ok, ok, "parseClock(%q) ok", tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, "parseClock(%q)", tt.in)
		}
	}
}

func TestDecodeClockNumbers(t *testing.T) {
	tests := []struct {
		v    float64
		want int
		ok   bool
	}{
		{0, 0, true},
		{0.375, 9 * 60, true},
		{0.5, 12 * 60, true},
		{0.6041666, 14*60 + 30, true},
		{45000.75, 18 * 60, true},
		{0.99999, 23*60 + 59, true},
		{45000.99999, 23*60 + 59, true},
		{-0.1, 0, false},
	}
	for _, tt := range tests {
		got, ok := decodeClock(num(tt.v))
		assert.Equal(t, tt.ok, ok, "decodeClock(%v)", tt.v)
		assert.Equal(t, tt.want, got, "decodeClock(%v)", tt.v)
	}

	_, ok := decodeClock(bln(true))
	assert.False(t, ok)
	_, ok = decodeClock(none)
	assert.False(t, ok)
}

func TestDecodeDateSerialRoundTrip(t *testing.T) {
	for n := 1; n < 80000; n += 997 {
		d, ok := decodeDate(num(float64(n)), time.UTC)
		require.True(t, ok)
		assert.Equal(t, n, workbook.DaySerial(d))
	}
}

func TestParseCustomSheetName(t *testing.T) {
	rows := [][]workbook.Cell{{}, {}, {}, simpleRow(num(45000), num(0.375), num(0.5))}
	wb := workbook.New(workbook.NewSheet("Week 12", rows))

	_, err := Parse(wb, testOptions())
	assert.True(t, errors.Is(err, ErrImport))

	opts := testOptions()
	opts.SheetName = "Week 12"
	res, err := Parse(wb, opts)
	require.NoError(t, err)
	assert.Len(t, res.Records, 1)
}

func TestBuildPreview(t *testing.T) {
	header := []workbook.Cell{str("e"), str("d"), str("c"), str("b"), str("a")}
	wb := newBook(header,
		nil,
		simpleRow(num(45000), num(0.375), num(0.5625)),
		simpleRow(str("16/03/2023"), str("10:00 am"), num(0.5)),
		simpleRow(num(45002), num(0.375), num(0.5)),
	)

	p, err := BuildPreview(wb, testOptions(), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, p.DayLabels)
	require.Len(t, p.Rows, DefaultPreviewRows)

	assert.Equal(t, "15/03/2023", p.Rows[0][4])
	assert.Equal(t, "9:00 ص", p.Rows[0][5])
	assert.Equal(t, "1:30 م", p.Rows[0][6])
	assert.Equal(t, "Budget review", p.Rows[0][2])

	assert.Equal(t, "16/03/2023", p.Rows[1][4])
	assert.Equal(t, "10:00 am", p.Rows[1][5])

	_, err = BuildPreview(workbook.New(), testOptions(), 2)
	var missing *MissingSheetError
	assert.ErrorAs(t, err, &missing)
}
