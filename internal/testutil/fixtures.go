package testutil

import (
	"fmt"
	"sync/atomic"

	"github.com/alexanderramin/tempo/internal/domain"
)

var testOwnerCounter atomic.Int64

// NewTestOwner returns an owner id unique within the test binary.
func NewTestOwner() string {
	return fmt.Sprintf("owner-%d", testOwnerCounter.Add(1))
}

// RequestOption customizes a test reminder request.
type RequestOption func(*domain.ReminderRequest)

func WithFireTime(hour, minute int) RequestOption {
	return func(r *domain.ReminderRequest) {
		r.FireTime = domain.MustClockTime(hour, minute)
	}
}

func WithDays(days ...domain.Weekday) RequestOption {
	return func(r *domain.ReminderRequest) {
		r.Schedule = domain.Recurring{Days: domain.NewWeekdaySet(days...)}
	}
}

func WithEveryDay() RequestOption {
	return func(r *domain.ReminderRequest) {
		r.Schedule = domain.Recurring{Days: domain.EveryDay}
	}
}

func WithDelay(minutes int) RequestOption {
	return func(r *domain.ReminderRequest) {
		r.Schedule = domain.OneShot{DelayMinutes: &minutes}
	}
}

func WithPayload(p string) RequestOption {
	return func(r *domain.ReminderRequest) {
		r.Payload = p
	}
}

// NewTestRequest builds a one-shot 09:00 request for owner.
func NewTestRequest(owner string, opts ...RequestOption) domain.ReminderRequest {
	r := domain.ReminderRequest{
		OwnerID:  owner,
		FireTime: domain.MustClockTime(9, 0),
		Schedule: domain.OneShot{},
		Payload:  "test payload",
		Source:   "test source",
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}
