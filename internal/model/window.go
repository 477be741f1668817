package model

import (
	"errors"
	"fmt"
	"time"
)

// DaysPerWindow is the number of working-day columns shown for a window.
const DaysPerWindow = 5

// WeekWindow is a date range with an ordinal week number, used to partition
// meetings for display.
type WeekWindow struct {
	WeekNumber int       `json:"week_number"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
}

// WindowFromMeetings spans the earliest to the latest meeting date. ok is
// false when meetings is empty.
func WindowFromMeetings(meetings []Meeting) (w WeekWindow, ok bool) {
	if len(meetings) == 0 {
		return WeekWindow{}, false
	}
	first, last := meetings[0].Date, meetings[0].Date
	for _, m := range meetings[1:] {
		if m.Date.Before(first) {
			first = m.Date
		}
		if m.Date.After(last) {
			last = m.Date
		}
	}
	return WeekWindow{
		WeekNumber: 1,
		Start:      DateOnly(first),
		End:        DateOnly(last),
	}, true
}

// WindowForMonth returns week number week (1-based) of the given month.
// Weeks are consecutive 7-day blocks starting on the 1st; the last block is
// clamped to the month's final day.
func WindowForMonth(year int, month time.Month, week int, loc *time.Location) (WeekWindow, error) {
	if loc == nil {
		loc = time.Local
	}
	if month < time.January || month > time.December {
		return WeekWindow{}, fmt.Errorf("model: invalid month %d", month)
	}
	if week < 1 {
		return WeekWindow{}, errors.New("model: week number must be >= 1")
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)
	start := first.AddDate(0, 0, 7*(week-1))
	if start.After(last) {
		return WeekWindow{}, fmt.Errorf("model: %s %d has no week %d", month, year, week)
	}
	end := start.AddDate(0, 0, 6)
	if end.After(last) {
		end = last
	}
	return WeekWindow{WeekNumber: week, Start: start, End: end}, nil
}

// Contains reports whether t falls on a date within [Start, End].
func (w WeekWindow) Contains(t time.Time) bool {
	d := DateOnly(t.In(w.Start.Location()))
	return !d.Before(DateOnly(w.Start)) && !d.After(DateOnly(w.End))
}

// Days returns the DaysPerWindow consecutive dates starting at Start.
func (w WeekWindow) Days() []time.Time {
	start := DateOnly(w.Start)
	out := make([]time.Time, DaysPerWindow)
	for i := range out {
		out[i] = start.AddDate(0, 0, i)
	}
	return out
}
