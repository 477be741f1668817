package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Category is a meeting type from the fixed category table.
type Category int

const (
	// CategoryNone covers unknown labels and manually added meetings.
	CategoryNone Category = iota
	CategoryPrayerBreak
	CategoryInternationalConferences
	CategoryMultilateral
	CategoryBilateral
	CategoryLocalEvents
	CategoryTourism
	CategoryCommittees
	CategoryPrivateInternational
	CategoryPrivateLocal
	CategoryOther
	CategoryHolidays
)

// Colors is the {primary, background} display pair of a category.
type Colors struct {
	Primary    string `json:"primary"`
	Background string `json:"background"`
}

// DefaultColors is the neutral pair used for CategoryNone and unknown labels.
var DefaultColors = NewColors("#3F3F46")

type categoryInfo struct {
	label  string
	colors Colors
}

// categoryTable is read-only after package initialization.
var categoryTable = map[Category]categoryInfo{
	CategoryPrayerBreak:              {"الصلاة - الراحة", NewColors("#5D7070")},
	CategoryInternationalConferences: {"المؤتمرات والفعاليات الدولية", NewColors("#C8EEFD")},
	CategoryMultilateral:             {"الاجتماعات متعددة الأطراف", NewColors("#039BD4")},
	CategoryBilateral:                {"الاجتماعات الثنائية", NewColors("#032059")},
	CategoryLocalEvents:              {"الفعاليات والرحلات المحلية", NewColors("#4CB480")},
	CategoryTourism:                  {"اجتماعات السياحة", NewColors("#3B876A")},
	CategoryCommittees:               {"اجتماعات اللجان والمجالس", NewColors("#338F92")},
	CategoryPrivateInternational:     {"القطاع الخاص (دولي)", NewColors("#4D4785")},
	CategoryPrivateLocal:             {"القطاع الخاص (محلي)", NewColors("#7484A9")},
	CategoryOther:                    {"اجتماعات أخرى", NewColors("#334C4C")},
	CategoryHolidays:                 {"العطلات", NewColors("#B0B0B0")},
}

var categoryByLabel = func() map[string]Category {
	out := make(map[string]Category, len(categoryTable))
	for c, info := range categoryTable {
		out[info.label] = c
	}
	return out
}()

// Categories returns every known category in declaration order.
func Categories() []Category {
	out := make([]Category, 0, len(categoryTable))
	for c := CategoryPrayerBreak; c <= CategoryHolidays; c++ {
		out = append(out, c)
	}
	return out
}

// ParseCategory looks up a category by its label. Surrounding whitespace is
// ignored. Unknown labels return CategoryNone and false.
func ParseCategory(label string) (Category, bool) {
	c, ok := categoryByLabel[strings.TrimSpace(label)]
	return c, ok
}

// Label returns the category label, or "" for CategoryNone.
func (c Category) Label() string {
	return categoryTable[c].label
}

// Colors returns the display pair, falling back to DefaultColors.
func (c Category) Colors() Colors {
	info, ok := categoryTable[c]
	if !ok {
		return DefaultColors
	}
	return info.colors
}

func (c Category) String() string {
	if l := c.Label(); l != "" {
		return l
	}
	return "Category(" + strconv.Itoa(int(c)) + ")"
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.Label()), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*c = CategoryNone
		return nil
	}
	parsed, ok := ParseCategory(string(b))
	if !ok {
		return fmt.Errorf("model: unknown category %q", string(b))
	}
	*c = parsed
	return nil
}

// NewColors builds a color pair from a "#RRGGBB" primary; the background is
// an 85% tint of it toward white.
func NewColors(primary string) Colors {
	r, g, b, ok := parseHex(primary)
	if !ok {
		return Colors{Primary: primary, Background: primary}
	}
	tint := func(v uint8) uint8 {
		return v + uint8((255-float64(v))*0.85)
	}
	return Colors{
		Primary:    primary,
		Background: fmt.Sprintf("#%02X%02X%02X", tint(r), tint(g), tint(b)),
	}
}

// IsVeryLight reports whether the primary color is light enough that text
// drawn on it should be black (relative luminance above 0.75).
func (c Colors) IsVeryLight() bool {
	r, g, b, ok := parseHex(c.Primary)
	if !ok {
		return false
	}
	lum := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 255
	return lum > 0.75
}

// TextColor returns "#000000" on very light colors and "#FFFFFF" otherwise.
func (c Colors) TextColor() string {
	if c.IsVeryLight() {
		return "#000000"
	}
	return "#FFFFFF"
}

func parseHex(s string) (r, g, b uint8, ok bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}
