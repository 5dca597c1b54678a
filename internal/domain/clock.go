package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ClockTime is a wall-clock time of day at minute resolution.
type ClockTime struct {
	Hour   int
	Minute int
}

// NewClockTime validates hour and minute against the 24-hour clock.
func NewClockTime(hour, minute int) (ClockTime, error) {
	if hour < 0 || hour > 23 {
		return ClockTime{}, NewValidationError("time", "hour %d out of range 0-23", hour)
	}
	if minute < 0 || minute > 59 {
		return ClockTime{}, NewValidationError("time", "minute %d out of range 0-59", minute)
	}
	return ClockTime{Hour: hour, Minute: minute}, nil
}

// MustClockTime is NewClockTime for constants known to be valid.
func MustClockTime(hour, minute int) ClockTime {
	c, err := NewClockTime(hour, minute)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseClockTime accepts "H:MM" and "HH:MM".
func ParseClockTime(s string) (ClockTime, error) {
	s = strings.TrimSpace(s)
	h, m, ok := strings.Cut(s, ":")
	if !ok || len(h) == 0 || len(h) > 2 || len(m) != 2 {
		return ClockTime{}, NewValidationError("time", "expected HH:MM, got %q", s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil {
		return ClockTime{}, NewValidationError("time", "invalid hour %q", h)
	}
	minute, err := strconv.Atoi(m)
	if err != nil {
		return ClockTime{}, NewValidationError("time", "invalid minute %q", m)
	}
	return NewClockTime(hour, minute)
}

// ClockOf truncates t to its minute-resolution time of day in t's location.
func ClockOf(t time.Time) ClockTime {
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}
}

// String renders the zero-padded 24-hour form, e.g. "08:05".
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// SlotKey identifies the calendar minute t falls in. Recurring reminders
// record the last slot they fired for.
func SlotKey(t time.Time) string {
	return t.Format("2006-01-02T15:04")
}
