// Package layout assigns overlapping meetings of a day to side-by-side
// columns.
//
// Meetings are grouped into overlap-connected components: if A overlaps B
// and B overlaps C, all three share one group even when A and C do not
// touch, because all three need horizontal room while B is running.
// Grouping scans the sorted list repeatedly, which is quadratic; that is
// fine for a handful of meetings per day. A sort-and-sweep over interval
// end times is the replacement if days ever carry hundreds.
package layout

import (
	"slices"
	"strings"
	"time"

	"meetcal/internal/model"
)

// Kind is the rendering template chosen from a group's size.
type Kind string

const (
	KindSingle         Kind = "single"
	KindDualHorizontal Kind = "dual-horizontal"
	KindTriple         Kind = "triple"
	KindQuad           Kind = "quad"
)

// maxColumns is the largest group that is split into columns. Larger groups
// render every member at full width, on top of each other.
const maxColumns = 4

// KindFor maps a group size to its template.
func KindFor(groupSize int) Kind {
	switch groupSize {
	case 2:
		return KindDualHorizontal
	case 3:
		return KindTriple
	case 4:
		return KindQuad
	default:
		return KindSingle
	}
}

// WidthShare is the fraction of the day column given to each member of a
// group of the given size.
func WidthShare(groupSize int) float64 {
	if groupSize < 1 || groupSize > maxColumns {
		return 1
	}
	return 1 / float64(groupSize)
}

// Placement is where one meeting goes in its day column.
type Placement struct {
	MeetingID string `json:"meeting_id"`
	Kind      Kind   `json:"layout_kind"`

	// Group numbers groups in start order; GroupSize drives the width.
	Group     int `json:"group"`
	GroupSize int `json:"group_size"`

	// Position is unique within a group; 0 is the earliest start.
	Position int `json:"position"`

	WidthShare float64 `json:"width_share"`
	LeftShare  float64 `json:"left_share"`

	// Vertical placement in slot units; multiply by Grid.SlotHeight for px.
	TopOffsetUnits float64 `json:"top_offset_units"`
	HeightUnits    float64 `json:"height_units"`
}

// TopPx and HeightPx convert the vertical placement to pixels.
func (p Placement) TopPx(g Grid) float64    { return p.TopOffsetUnits * g.normalized().SlotHeight }
func (p Placement) HeightPx(g Grid) float64 { return p.HeightUnits * g.normalized().SlotHeight }

// Overlaps reports whether two meetings collide. When both carry slots the
// inclusive slot ranges are compared; otherwise the half-open time ranges
// are, so back-to-back meetings do not overlap.
func Overlaps(a, b model.Meeting) bool {
	if a.HasSlots() && b.HasSlots() {
		return a.Slots.Start <= b.Slots.End && a.Slots.End >= b.Slots.Start
	}
	return a.Start.Before(b.End) && a.End.After(b.Start)
}

// compareMeetings orders by start, then end, then ID. bySlots picks slot
// indices over timestamps and must be the same for every comparison in a
// sort, or the order stops being transitive.
func compareMeetings(a, b model.Meeting, bySlots bool) int {
	if bySlots {
		if a.Slots.Start != b.Slots.Start {
			return a.Slots.Start - b.Slots.Start
		}
		if a.Slots.End != b.Slots.End {
			return a.Slots.End - b.Slots.End
		}
	} else {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		if c := a.End.Compare(b.End); c != 0 {
			return c
		}
	}
	return strings.Compare(a.ID, b.ID)
}

// sortedOrder returns indices of ms in start order. Slots are the sort key
// only when every meeting carries them; one meeting without slots switches
// the whole day to timestamps.
func sortedOrder(ms []model.Meeting) []int {
	bySlots := true
	order := make([]int, len(ms))
	for i := range order {
		order[i] = i
		if !ms[i].HasSlots() {
			bySlots = false
		}
	}
	slices.SortStableFunc(order, func(i, j int) int {
		return compareMeetings(ms[i], ms[j], bySlots)
	})
	return order
}

// groupIndices partitions ms into overlap-connected groups. Groups and
// their members are in sorted order.
func groupIndices(ms []model.Meeting) [][]int {
	order := sortedOrder(ms)
	rank := make([]int, len(ms))
	for r, i := range order {
		rank[i] = r
	}

	assigned := make([]bool, len(ms))
	var groups [][]int
	for _, i := range order {
		if assigned[i] {
			continue
		}
		group := []int{i}
		assigned[i] = true

		for grew := true; grew; {
			grew = false
			for _, j := range order {
				if assigned[j] || !overlapsAny(ms, group, j) {
					continue
				}
				group = append(group, j)
				assigned[j] = true
				grew = true
			}
		}

		slices.SortFunc(group, func(a, b int) int { return rank[a] - rank[b] })
		groups = append(groups, group)
	}
	return groups
}

func overlapsAny(ms []model.Meeting, group []int, j int) bool {
	for _, g := range group {
		if Overlaps(ms[g], ms[j]) {
			return true
		}
	}
	return false
}

// Group returns the overlap-connected groups of ms, each in start order.
func Group(ms []model.Meeting) [][]model.Meeting {
	idx := groupIndices(ms)
	out := make([][]model.Meeting, len(idx))
	for g, group := range idx {
		out[g] = make([]model.Meeting, len(group))
		for k, i := range group {
			out[g][k] = ms[i]
		}
	}
	return out
}

// Assign lays out one day's meetings. The result is index-aligned with ms.
func Assign(ms []model.Meeting, grid Grid) []Placement {
	out := make([]Placement, len(ms))
	for g, group := range groupIndices(ms) {
		size := len(group)
		width := WidthShare(size)
		for pos, i := range group {
			top, height := grid.Vertical(ms[i])
			left := 0.0
			if size <= maxColumns {
				left = float64(pos) * width
			}
			out[i] = Placement{
				MeetingID:      ms[i].ID,
				Kind:           KindFor(size),
				Group:          g,
				GroupSize:      size,
				Position:       pos,
				WidthShare:     width,
				LeftShare:      left,
				TopOffsetUnits: top,
				HeightUnits:    height,
			}
		}
	}
	return out
}

// Day is one column of a week view.
type Day struct {
	Date       time.Time       `json:"date"`
	Label      string          `json:"label"`
	Meetings   []model.Meeting `json:"meetings"`
	Placements []Placement     `json:"placements"`
}

// Week lays out the window's days. labels, typically the day labels of an
// import, name the columns; empty or missing labels fall back to the
// Arabic weekday name.
func Week(window model.WeekWindow, labels []string, meetings []model.Meeting, grid Grid) []Day {
	days := window.Days()
	out := make([]Day, len(days))
	for i, date := range days {
		var dayMeetings []model.Meeting
		for _, m := range meetings {
			if model.SameDay(m.Date, date) {
				dayMeetings = append(dayMeetings, m)
			}
		}

		label := model.ArabicWeekday(date)
		if i < len(labels) && labels[i] != "" {
			label = labels[i]
		}

		out[i] = Day{
			Date:       date,
			Label:      label,
			Meetings:   dayMeetings,
			Placements: Assign(dayMeetings, grid),
		}
	}
	return out
}
