package domain

import (
	"fmt"
	"strings"
	"time"
)

// Schedule is the kind-specific part of a reminder. It is either OneShot or
// Recurring; each carries only the fields valid for its kind.
type Schedule interface {
	Kind() Kind
	isSchedule()
}

// OneShot fires once at the next matching fire time, then deactivates.
type OneShot struct {
	// DelayMinutes is set only when the fire time came from a relative
	// offset such as "через 15 минут".
	DelayMinutes *int
}

func (OneShot) Kind() Kind  { return KindOneShot }
func (OneShot) isSchedule() {}

// Recurring fires on every day in Days at the fire time until deleted.
type Recurring struct {
	Days WeekdaySet
}

func (Recurring) Kind() Kind  { return KindRecurring }
func (Recurring) isSchedule() {}

// ReminderRequest is a parsed reminder not yet persisted.
type ReminderRequest struct {
	OwnerID  string
	FireTime ClockTime
	Schedule Schedule
	Payload  string
	Source   string
}

func (r ReminderRequest) Kind() Kind {
	if r.Schedule == nil {
		return KindOneShot
	}
	return r.Schedule.Kind()
}

// Days returns the recurring day set, or the empty set for one-shot reminders.
func (r ReminderRequest) Days() WeekdaySet {
	if rec, ok := r.Schedule.(Recurring); ok {
		return rec.Days
	}
	return 0
}

// DelayMinutes returns the relative offset of a one-shot reminder, if any.
func (r ReminderRequest) DelayMinutes() (int, bool) {
	if one, ok := r.Schedule.(OneShot); ok && one.DelayMinutes != nil {
		return *one.DelayMinutes, true
	}
	return 0, false
}

// Validate checks the invariants a request must satisfy before insertion.
func (r ReminderRequest) Validate() error {
	if strings.TrimSpace(r.OwnerID) == "" {
		return NewValidationError("owner", "owner id is required")
	}
	if _, err := NewClockTime(r.FireTime.Hour, r.FireTime.Minute); err != nil {
		return err
	}
	switch s := r.Schedule.(type) {
	case OneShot:
	case Recurring:
		if s.Days.IsEmpty() {
			return NewValidationError("days", "recurring reminder needs at least one weekday")
		}
	default:
		return NewValidationError("kind", "unknown schedule %T", r.Schedule)
	}
	return nil
}

// ScheduleFromStored rebuilds the tagged schedule from its storage columns.
func ScheduleFromStored(kind string, daysMask int, delay *int) (Schedule, error) {
	switch Kind(kind) {
	case KindOneShot:
		return OneShot{DelayMinutes: delay}, nil
	case KindRecurring:
		return Recurring{Days: WeekdaySetFromMask(daysMask)}, nil
	default:
		return nil, fmt.Errorf("unknown reminder kind %q", kind)
	}
}

// Reminder is a persisted reminder.
type Reminder struct {
	ID int64
	ReminderRequest
	Active        bool
	LastFiredSlot string
	CreatedAt     time.Time
}

// DueAt reports whether the reminder matches the given minute and weekday.
// One-shot reminders carry no day constraint.
func (r *Reminder) DueAt(at ClockTime, day Weekday) bool {
	if !r.Active || r.FireTime != at {
		return false
	}
	days := r.Days()
	return days.IsEmpty() || days.Has(day)
}
