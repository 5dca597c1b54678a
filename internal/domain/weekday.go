package domain

import (
	"strings"
	"time"
)

// Weekday is a canonical two-letter weekday tag.
type Weekday string

const (
	Monday    Weekday = "пн"
	Tuesday   Weekday = "вт"
	Wednesday Weekday = "ср"
	Thursday  Weekday = "чт"
	Friday    Weekday = "пт"
	Saturday  Weekday = "сб"
	Sunday    Weekday = "вс"
)

// Week lists the tags in calendar order starting from Monday.
var Week = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// WeekdayOf returns the tag for the day t falls on in t's location.
func WeekdayOf(t time.Time) Weekday {
	// time.Weekday starts at Sunday.
	return Week[(int(t.Weekday())+6)%7]
}

// ParseWeekday recognises a canonical tag.
func ParseWeekday(tag string) (Weekday, bool) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, d := range Week {
		if string(d) == tag {
			return d, true
		}
	}
	return "", false
}

func (d Weekday) bit() WeekdaySet {
	for i, w := range Week {
		if w == d {
			return 1 << i
		}
	}
	return 0
}

// WeekdaySet is a bit set over Week. Bit 0 is Monday.
type WeekdaySet uint8

// EveryDay is the materialized "every day" set.
const EveryDay WeekdaySet = 1<<7 - 1

// NewWeekdaySet builds a set from tags, ignoring duplicates.
func NewWeekdaySet(days ...Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s = s.Add(d)
	}
	return s
}

func (s WeekdaySet) Add(d Weekday) WeekdaySet { return s | d.bit() }

func (s WeekdaySet) Has(d Weekday) bool { return s&d.bit() != 0 }

func (s WeekdaySet) IsEmpty() bool { return s&EveryDay == 0 }

func (s WeekdaySet) IsEveryDay() bool { return s&EveryDay == EveryDay }

// Days returns the members in calendar order.
func (s WeekdaySet) Days() []Weekday {
	var out []Weekday
	for _, d := range Week {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

// Mask is the storage form of the set.
func (s WeekdaySet) Mask() int { return int(s & EveryDay) }

// WeekdaySetFromMask is the inverse of Mask.
func WeekdaySetFromMask(mask int) WeekdaySet { return WeekdaySet(mask) & EveryDay }

// String joins member tags with commas, e.g. "пн,ср,пт".
func (s WeekdaySet) String() string {
	days := s.Days()
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = string(d)
	}
	return strings.Join(parts, ",")
}

// ParseWeekdaySet reads a comma or space separated list of canonical tags.
// The words "ежедневно" and "каждый день" yield EveryDay.
func ParseWeekdaySet(s string) (WeekdaySet, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "ежедневно", "каждый день", "все", "daily":
		return EveryDay, nil
	case "":
		return 0, NewValidationError("days", "no weekdays given")
	}
	var set WeekdaySet
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == ';' }) {
		d, ok := ParseWeekday(tok)
		if !ok {
			return 0, NewValidationError("days", "unknown weekday %q", tok)
		}
		set = set.Add(d)
	}
	return set, nil
}
