// Package schedule holds the meeting set of the running session.
package schedule

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"meetcal/internal/importer"
	appLog "meetcal/internal/log"
	"meetcal/internal/model"
)

var (
	// ErrMissingField is returned by Add when title, date, start or end is
	// not set.
	ErrMissingField = errors.New("schedule: title, date, start and end are required")

	// ErrInvalidTimeRange is returned by Add when end is not after start.
	ErrInvalidTimeRange = errors.New("schedule: end time must be after start time")
)

// ManualPalette is the set of colors manually added meetings are drawn from.
var ManualPalette = []model.Colors{
	model.NewColors("#365314"), // lime
	model.NewColors("#1E3A8A"), // blue
	model.NewColors("#78350F"), // amber
	model.NewColors("#064E3B"), // emerald
	model.NewColors("#4C1D95"), // violet
	model.NewColors("#881337"), // rose
	model.NewColors("#164E63"), // cyan
}

// ColorPicker chooses the color of a manually added meeting.
type ColorPicker func() model.Colors

// RandomColor picks uniformly from ManualPalette.
func RandomColor() model.Colors {
	return ManualPalette[rand.Intn(len(ManualPalette))]
}

// NewMeeting is the input of a manual add, in the value formats of
// AvailableDates ("2006-01-02") and TimeOptions ("15:04").
type NewMeeting struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Description string `json:"description"`
	Organizer   string `json:"organizer"`
	Location    string `json:"location"`
	Pending     bool   `json:"pending"`
}

// Options configures a Store. Zero fields get defaults.
type Options struct {
	// Now is the clock; defaults to time.Now.
	Now func() time.Time

	// NewID generates IDs for manually added meetings; defaults to
	// "meeting-" plus a random UUID.
	NewID func() string

	// PickColor defaults to RandomColor.
	PickColor ColorPicker

	// Location is the zone manual dates are interpreted in; defaults to
	// time.Local.
	Location *time.Location
}

// Store is the in-memory meeting set plus the state of the last import.
// It is safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	meetings  []model.Meeting
	dayLabels []string
	window    model.WeekWindow
	hasWindow bool
	updatedAt time.Time

	now       func() time.Time
	newID     func() string
	pickColor ColorPicker
	loc       *time.Location
}

// NewStore creates an empty store.
func NewStore(opts Options) *Store {
	s := &Store{
		now:       opts.Now,
		newID:     opts.NewID,
		pickColor: opts.PickColor,
		loc:       opts.Location,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = func() string { return "meeting-" + uuid.NewString() }
	}
	if s.pickColor == nil {
		s.pickColor = RandomColor
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	return s
}

// Replace swaps in the result of a successful import: records, day labels
// and the window spanning the imported dates. Manually added meetings are
// discarded.
func (s *Store) Replace(res importer.Result) {
	records := slices.Clone(res.Records)
	labels := slices.Clone(res.DayLabels)
	window, ok := model.WindowFromMeetings(records)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.meetings = records
	s.dayLabels = labels
	s.window, s.hasWindow = window, ok
	s.updatedAt = s.now()

	appLog.Info("meeting set replaced", "record_count", len(records), "has_window", ok)
}

// Import parses wb and, only if the whole workbook parses, replaces the
// meeting set with the result. On error the store is left untouched.
func (s *Store) Import(wb importer.Workbook, opts importer.Options) (importer.Result, error) {
	if opts.Location == nil {
		opts.Location = s.loc
	}
	res, err := importer.Parse(wb, opts)
	if err != nil {
		return importer.Result{}, err
	}
	s.Replace(res)
	return res, nil
}

// Add validates in and appends a manually created meeting.
func (s *Store) Add(in NewMeeting) (model.Meeting, error) {
	if strings.TrimSpace(in.Title) == "" || in.Date == "" || in.Start == "" || in.End == "" {
		return model.Meeting{}, ErrMissingField
	}
	date, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(in.Date), s.loc)
	if err != nil {
		return model.Meeting{}, fmt.Errorf("schedule: invalid date %q: %w", in.Date, err)
	}
	start, err := ParseClock(in.Start)
	if err != nil {
		return model.Meeting{}, err
	}
	end, err := ParseClock(in.End)
	if err != nil {
		return model.Meeting{}, err
	}
	if end <= start {
		return model.Meeting{}, ErrInvalidTimeRange
	}

	m := model.Meeting{
		ID:          s.newID(),
		Title:       strings.TrimSpace(in.Title),
		Date:        date,
		Start:       onDate(date, start),
		End:         onDate(date, end),
		Description: orNotAvailable(in.Description),
		Organizer:   orNotAvailable(in.Organizer),
		Location:    orNotAvailable(in.Location),
		Color:       s.pickColor(),
		Pending:     in.Pending,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.meetings = append(s.meetings, m)
	s.updatedAt = s.now()

	appLog.Debug("meeting added", "id", m.ID, "date", date.Format(time.DateOnly))
	return m, nil
}

func orNotAvailable(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return model.NotAvailable
	}
	return s
}

// List returns a copy of all meetings in insertion order.
func (s *Store) List() []model.Meeting {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.meetings)
}

// DayLabels returns the day labels of the last import.
func (s *Store) DayLabels() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.dayLabels)
}

// Window returns the window of the last import. ok is false before the
// first non-empty import.
func (s *Store) Window() (w model.WeekWindow, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.window, s.hasWindow
}

// UpdatedAt is the time of the last change; zero if nothing was stored yet.
func (s *Store) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}
