package importer

import (
	"math"
	"strconv"
	"strings"
	"time"

	"meetcal/internal/workbook"
)

const minutesPerDay = 24 * 60

// decodeDate accepts a numeric day serial or a DD/MM/YYYY string and
// returns midnight of that date in loc.
func decodeDate(c workbook.Cell, loc *time.Location) (time.Time, bool) {
	switch c.Kind {
	case workbook.KindNumber:
		if math.IsNaN(c.Number) || math.IsInf(c.Number, 0) {
			return time.Time{}, false
		}
		return workbook.SerialDate(c.Number, loc), true
	case workbook.KindString:
		return parseDayMonthYear(c.Text, loc)
	default:
		return time.Time{}, false
	}
}

func parseDayMonthYear(s string, loc *time.Location) (time.Time, bool) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return time.Time{}, false
		}
		nums[i] = n
	}
	day, month, year := nums[0], nums[1], nums[2]

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	// time.Date normalizes 31/02 into March; treat that as malformed.
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// decodeClock returns minutes since midnight from a fraction-of-day number
// or an "H:MM [am|pm|ص|م]" string. ok is false for anything else; callers
// leave the time at midnight in that case.
func decodeClock(c workbook.Cell) (minutes int, ok bool) {
	switch c.Kind {
	case workbook.KindNumber:
		v := c.Number
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return 0, false
		}
		// Combined date-time serials carry the time in the fraction.
		if v >= 1 {
			v -= math.Floor(v)
		}
		// Fractions just under one day round up to midnight; keep them on
		// the same day.
		return min(int(math.Round(v*minutesPerDay)), minutesPerDay-1), true
	case workbook.KindString:
		return parseClock(c.Text)
	default:
		return 0, false
	}
}

func parseClock(s string) (int, bool) {
	lower := strings.ToLower(strings.TrimSpace(s))
	isPM := strings.Contains(lower, "pm") || strings.Contains(lower, "م")
	isAM := strings.Contains(lower, "am") || strings.Contains(lower, "ص")

	for _, marker := range []string{"am", "pm", "ص", "م"} {
		lower = strings.ReplaceAll(lower, marker, "")
	}

	parts := strings.Split(strings.TrimSpace(lower), ":")
	if len(parts) < 2 {
		return 0, false
	}
	hour, ok := leadingInt(parts[0])
	if !ok {
		return 0, false
	}
	minute, ok := leadingInt(parts[1])
	if !ok {
		return 0, false
	}

	if isPM && hour < 12 {
		hour += 12
	}
	if isAM && hour == 12 {
		hour = 0
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}

// leadingInt parses the leading decimal digits of s, ignoring surrounding
// whitespace and anything after the digits.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// atMinutes returns date plus the given minutes of wall-clock time.
func atMinutes(date time.Time, minutes int) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, minutes, 0, 0, date.Location())
}

// decodeSlot accepts a positive whole number, numeric or textual.
func decodeSlot(c workbook.Cell) (int, bool) {
	var v float64
	switch c.Kind {
	case workbook.KindNumber:
		v = c.Number
	case workbook.KindString:
		n, err := strconv.ParseFloat(strings.TrimSpace(c.Text), 64)
		if err != nil {
			return 0, false
		}
		v = n
	default:
		return 0, false
	}
	if math.IsNaN(v) || v != math.Trunc(v) || v < 1 || v > math.MaxInt32 {
		return 0, false
	}
	return int(v), true
}

// textOr returns the cell as text, or fallback for blank and boolean cells.
func textOr(c workbook.Cell, fallback string) string {
	if c.IsBlank() || c.Kind == workbook.KindBool {
		return fallback
	}
	return c.String()
}
