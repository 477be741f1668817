// Package ics exports the meeting set as an iCalendar feed.
package ics

import (
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "meetcal/internal/log"
	"meetcal/internal/model"
)

const (
	productID = "-//meetcal//meeting calendar//AR"

	// propertyColor is the RFC 7986 COLOR property.
	propertyColor = ical.ComponentProperty("COLOR")
)

// Options controls the exported calendar. The zero value is usable.
type Options struct {
	// Name is published as X-WR-CALNAME when set.
	Name string

	// Stamp is written as DTSTAMP on every event; defaults to time.Now.
	Stamp time.Time
}

// Export renders meetings as a VCALENDAR document. Pending meetings are
// TENTATIVE, others CONFIRMED. The meeting ID is the event UID.
func Export(meetings []model.Meeting, opts Options) string {
	if opts.Stamp.IsZero() {
		opts.Stamp = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}

	for _, m := range meetings {
		ev := cal.AddEvent(m.ID)
		ev.SetDtStampTime(opts.Stamp)
		ev.SetStartAt(m.Start)
		ev.SetEndAt(m.End)
		ev.SetSummary(m.Title)

		if present(m.Description) {
			ev.SetDescription(m.Description)
		}
		if present(m.Location) {
			ev.SetLocation(m.Location)
		}
		if present(m.Organizer) {
			ev.SetProperty(ical.ComponentPropertyOrganizer, m.Organizer)
		}
		if m.Category != model.CategoryNone {
			ev.SetProperty(ical.ComponentPropertyCategories, m.Category.Label())
		}
		if m.Color.Primary != "" {
			ev.SetProperty(propertyColor, m.Color.Primary)
		}

		if m.Pending {
			ev.SetStatus(ical.ObjectStatusTentative)
		} else {
			ev.SetStatus(ical.ObjectStatusConfirmed)
		}
	}

	out := cal.Serialize()
	appLog.Debug("ics export completed", "event_count", len(meetings), "bytes", len(out))
	return out
}

func present(s string) bool {
	return s != "" && s != model.NotAvailable
}
