package model

import (
	"fmt"
	"time"
)

// Placeholder texts used when a source value is missing.
const (
	// NotAvailable replaces empty description/organizer/location values.
	// Renderers compare against it to decide whether to show the field.
	NotAvailable = "غير متوفر"

	// UntitledMeeting is the title given to records without one.
	UntitledMeeting = "اجتماع بدون عنوان"
)

// SlotRange is an inclusive range of 1-based grid slots (15-minute
// resolution) supplied directly by the source data.
type SlotRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Meeting is the canonical unit of scheduling data.
//
// Date carries the calendar day (midnight in the display location); Start
// and End are absolute timestamps on that day with End after Start. When
// Slots is set, grid positioning uses it instead of wall-clock math.
type Meeting struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	Description string `json:"description"`
	Organizer   string `json:"organizer"`
	Location    string `json:"location"`

	Category Category `json:"category"`
	Color    Colors   `json:"color"`

	// Pending marks an "engagement pending" (tentative) meeting. Display only.
	Pending bool `json:"pending"`

	Slots *SlotRange `json:"slots,omitempty"`
}

// HasSlots reports whether the meeting carries pre-computed grid slots.
func (m Meeting) HasSlots() bool {
	return m.Slots != nil
}

// Duration returns End - Start.
func (m Meeting) Duration() time.Duration {
	return m.End.Sub(m.Start)
}

// TimeRange formats the meeting's start and end the way the calendar shows
// them, e.g. "9:00 ص - 12:30 م".
func (m Meeting) TimeRange() string {
	return FormatClock(m.Start) + " - " + FormatClock(m.End)
}

// FormatClock renders t as a 12-hour clock with an Arabic AM/PM marker.
func FormatClock(t time.Time) string {
	h := t.Hour()
	marker := "ص"
	if h >= 12 {
		marker = "م"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", h12, t.Minute(), marker)
}

// DateOnly truncates t to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

var arabicWeekdays = [...]string{
	time.Sunday:    "الأحد",
	time.Monday:    "الاثنين",
	time.Tuesday:   "الثلاثاء",
	time.Wednesday: "الأربعاء",
	time.Thursday:  "الخميس",
	time.Friday:    "الجمعة",
	time.Saturday:  "السبت",
}

// ArabicWeekday returns the Arabic weekday name of t.
func ArabicWeekday(t time.Time) string {
	return arabicWeekdays[t.Weekday()]
}
