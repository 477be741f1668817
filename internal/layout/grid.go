package layout

import (
	"fmt"
	"time"

	"meetcal/internal/model"
)

// Grid describes the day's time grid: a column of equally sized slots
// starting at DayStart.
type Grid struct {
	// DayStart is the wall-clock offset from midnight of slot 1.
	DayStart time.Duration

	SlotMinutes int
	SlotCount   int

	// SlotHeight is the rendered height of one slot, in pixels.
	SlotHeight float64
}

// DefaultGrid runs from 10:00 in 41 fifteen-minute slots of 30px.
var DefaultGrid = Grid{
	DayStart:    10 * time.Hour,
	SlotMinutes: 15,
	SlotCount:   41,
	SlotHeight:  30,
}

func (g Grid) normalized() Grid {
	if g.SlotMinutes <= 0 {
		g.SlotMinutes = DefaultGrid.SlotMinutes
	}
	if g.SlotCount <= 0 {
		g.SlotCount = DefaultGrid.SlotCount
	}
	if g.SlotHeight <= 0 {
		g.SlotHeight = DefaultGrid.SlotHeight
	}
	return g
}

// Labels returns the "HH:MM" start time of every slot.
func (g Grid) Labels() []string {
	g = g.normalized()
	out := make([]string, g.SlotCount)
	for i := range out {
		offset := g.DayStart + time.Duration(i*g.SlotMinutes)*time.Minute
		out[i] = fmt.Sprintf("%02d:%02d", int(offset.Hours()), int(offset.Minutes())%60)
	}
	return out
}

// Vertical returns a meeting's top offset and height in slot units.
//
// Pre-computed slots win: slot s starts at offset s-1 and a range covers
// both of its end slots. Otherwise the offset is measured from DayStart on
// the meeting's own date.
func (g Grid) Vertical(m model.Meeting) (top, height float64) {
	g = g.normalized()
	if m.HasSlots() {
		return float64(m.Slots.Start - 1), float64(m.Slots.End - m.Slots.Start + 1)
	}
	anchor := model.DateOnly(m.Start).Add(g.DayStart)
	slot := time.Duration(g.SlotMinutes) * time.Minute
	top = float64(m.Start.Sub(anchor)) / float64(slot)
	height = float64(m.End.Sub(m.Start)) / float64(slot)
	return top, height
}
