package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"meetcal/internal/model"
)

// Bounds and step of the manual-add time picker.
const (
	FirstTimeOption = 8 * time.Hour
	LastTimeOption  = 20 * time.Hour
	TimeOptionStep  = 15 * time.Minute
)

// TimeOption is one entry of the time picker.
type TimeOption struct {
	Value  string `json:"value"` // "15:04"
	Label  string `json:"label"` // "3:04 م"
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`
}

// TimeOptions lists FirstTimeOption through LastTimeOption inclusive.
func TimeOptions() []TimeOption {
	var out []TimeOption
	for d := FirstTimeOption; d <= LastTimeOption; d += TimeOptionStep {
		t := onDate(time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC), d)
		out = append(out, TimeOption{
			Value:  t.Format("15:04"),
			Label:  model.FormatClock(t),
			Hour:   t.Hour(),
			Minute: t.Minute(),
		})
	}
	return out
}

// ParseClock parses an "HH:MM" 24-hour value into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("schedule: invalid time %q", s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("schedule: invalid time %q", s)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("schedule: invalid time %q", s)
	}
	return time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute, nil
}

// onDate returns the wall-clock time d after midnight of date.
func onDate(date time.Time, d time.Duration) time.Time {
	y, m, day := date.Date()
	return time.Date(y, m, day, 0, int(d/time.Minute), 0, 0, date.Location())
}

// DateOption is one entry of the date picker.
type DateOption struct {
	Value string    `json:"value"` // "2006-01-02"
	Label string    `json:"label"`
	Date  time.Time `json:"date"`
}

// AvailableDates lists the working days of window. A day is labelled with
// its header label when one exists, otherwise with its Arabic weekday name
// and day of month.
func AvailableDates(window model.WeekWindow, labels []string) []DateOption {
	days := window.Days()
	out := make([]DateOption, len(days))
	for i, d := range days {
		label := fmt.Sprintf("%s %d", model.ArabicWeekday(d), d.Day())
		if i < len(labels) && strings.TrimSpace(labels[i]) != "" {
			label = labels[i]
		}
		out[i] = DateOption{Value: d.Format(time.DateOnly), Label: label, Date: d}
	}
	return out
}
