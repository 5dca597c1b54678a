package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/google/uuid"
)

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("dispatcher already running")

const (
	DefaultInterval     = 60 * time.Second
	DefaultStartupDelay = 5 * time.Second
)

// DueStore is the slice of the reminder store the dispatcher needs.
type DueStore interface {
	DueNow(ctx context.Context, at domain.ClockTime, day domain.Weekday) ([]*domain.Reminder, error)
	DeactivateIfActive(ctx context.Context, id int64) (bool, error)
	ClaimSlot(ctx context.Context, id int64, slot string) (bool, error)
}

// MessageChannel delivers text to a reminder owner.
type MessageChannel interface {
	Send(ctx context.Context, ownerID, text string) error
}

// DeliveryLog records the outcome of each attempt.
type DeliveryLog interface {
	Record(ctx context.Context, d *domain.Delivery) error
}

// Dispatcher polls the store on a fixed interval and delivers reminders due
// in the current minute. It keeps no reminder state between ticks.
type Dispatcher struct {
	store        DueStore
	channel      MessageChannel
	deliveries   DeliveryLog
	clock        Clock
	interval     time.Duration
	startupDelay time.Duration
	location     *time.Location
	format       func(*domain.Reminder) string
	logger       *slog.Logger

	started atomic.Bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

func WithClock(c Clock) Option { return func(d *Dispatcher) { d.clock = c } }

func WithInterval(iv time.Duration) Option { return func(d *Dispatcher) { d.interval = iv } }

func WithStartupDelay(sd time.Duration) Option { return func(d *Dispatcher) { d.startupDelay = sd } }

// WithLocation sets the zone fire times are interpreted in.
func WithLocation(loc *time.Location) Option { return func(d *Dispatcher) { d.location = loc } }

func WithLogger(l *slog.Logger) Option { return func(d *Dispatcher) { d.logger = l } }

func WithDeliveryLog(dl DeliveryLog) Option { return func(d *Dispatcher) { d.deliveries = dl } }

// WithMessageFormat overrides how a reminder is rendered for delivery.
func WithMessageFormat(f func(*domain.Reminder) string) Option {
	return func(d *Dispatcher) { d.format = f }
}

// NewDispatcher creates a Dispatcher in the not-started state.
func NewDispatcher(store DueStore, channel MessageChannel, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:        store,
		channel:      channel,
		clock:        SystemClock{},
		interval:     DefaultInterval,
		startupDelay: DefaultStartupDelay,
		location:     time.Local,
		format:       DefaultMessage,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DefaultMessage renders the delivery text for r.
func DefaultMessage(r *domain.Reminder) string {
	return "🔔 Напоминание: " + r.Payload
}

// Run waits for the startup delay, then ticks on every interval boundary
// until ctx is cancelled. Deadlines are aligned to the wall clock, so a slow
// tick never shifts the ones after it. If the clock still passes a whole
// minute between ticks, that minute is polled late, up to maxCatchUp back.
// A Dispatcher runs at most once.
func (d *Dispatcher) Run(ctx context.Context) error {
	if !d.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	d.logger.InfoContext(ctx, "dispatcher started",
		"interval", d.interval.String(), "startup_delay", d.startupDelay.String())

	wait := d.startupDelay
	var last time.Time
	for {
		select {
		case <-ctx.Done():
			d.logger.InfoContext(ctx, "dispatcher stopped")
			return ctx.Err()
		case <-d.clock.After(wait):
		}

		now := d.clock.Now()
		minute := now.Truncate(time.Minute)
		for _, m := range missedMinutes(last, minute) {
			d.logger.WarnContext(ctx, "polling missed minute", "minute", m.In(d.location).Format("15:04"))
			d.tickAt(ctx, m)
		}
		d.tickAt(ctx, now)
		last = minute

		now = d.clock.Now()
		wait = now.Truncate(d.interval).Add(d.interval).Sub(now)
	}
}

// maxCatchUp bounds how far back Run polls minutes it did not reach in
// time, e.g. after the host was suspended.
const maxCatchUp = time.Hour

// missedMinutes lists the minutes strictly between last and current.
func missedMinutes(last, current time.Time) []time.Time {
	if last.IsZero() {
		return nil
	}
	from := last.Add(time.Minute)
	if floor := current.Add(-maxCatchUp); from.Before(floor) {
		from = floor
	}
	var out []time.Time
	for m := from; m.Before(current); m = m.Add(time.Minute) {
		out = append(out, m)
	}
	return out
}

// TickReport summarizes one polling pass.
type TickReport struct {
	ID      string
	At      time.Time
	Due     int
	Sent    int
	Failed  int
	Skipped int
	// Err is set when the due query itself failed and the tick was skipped.
	Err error
}

// Tick runs one polling pass: query reminders due this minute, claim each
// one atomically, then deliver. Claiming before sending means a concurrent
// poller that loses the claim never delivers. A failed delivery is not
// retried.
func (d *Dispatcher) Tick(ctx context.Context) TickReport {
	return d.tickAt(ctx, d.clock.Now())
}

// tickAt polls the minute containing t.
func (d *Dispatcher) tickAt(ctx context.Context, t time.Time) TickReport {
	now := t.In(d.location)
	rep := TickReport{ID: uuid.NewString(), At: now}
	at, day := domain.ClockOf(now), domain.WeekdayOf(now)
	log := d.logger.With("tick", rep.ID)

	due, err := d.store.DueNow(ctx, at, day)
	if err != nil {
		rep.Err = err
		log.ErrorContext(ctx, "due query failed; tick skipped", "at", at.String(), "error", err)
		return rep
	}
	rep.Due = len(due)
	log.DebugContext(ctx, "tick", "at", at.String(), "weekday", string(day), "due", len(due))

	slot := domain.SlotKey(now)
	for _, r := range due {
		switch d.process(ctx, log, r, slot) {
		case domain.DeliverySent:
			rep.Sent++
		case domain.DeliveryFailed:
			rep.Failed++
		default:
			rep.Skipped++
		}
	}
	return rep
}

// process handles one reminder in isolation; nothing it does can stop the
// remaining reminders in the tick.
func (d *Dispatcher) process(ctx context.Context, log *slog.Logger, r *domain.Reminder, slot string) (status domain.DeliveryStatus) {
	log = log.With("reminder_id", r.ID, "owner_id", r.OwnerID, "kind", string(r.Kind()))
	defer func() {
		if p := recover(); p != nil {
			log.ErrorContext(ctx, "reminder processing panicked", "panic", fmt.Sprint(p))
			status = domain.DeliveryFailed
		}
	}()

	claimed, err := d.claim(ctx, r, slot)
	if err != nil {
		log.ErrorContext(ctx, "claiming reminder failed", "error", err)
		return domain.DeliverySkipped
	}
	if !claimed {
		log.DebugContext(ctx, "reminder already handled")
		d.record(ctx, log, r, slot, domain.DeliverySkipped, nil)
		return domain.DeliverySkipped
	}

	if err := d.channel.Send(ctx, r.OwnerID, d.format(r)); err != nil {
		log.WarnContext(ctx, "reminder delivery failed", "error", err)
		d.record(ctx, log, r, slot, domain.DeliveryFailed, err)
		return domain.DeliveryFailed
	}
	log.InfoContext(ctx, "reminder delivered")
	d.record(ctx, log, r, slot, domain.DeliverySent, nil)
	return domain.DeliverySent
}

// claim takes ownership of this firing. One-shot reminders are deactivated;
// recurring ones record the minute slot so they fire at most once in it.
func (d *Dispatcher) claim(ctx context.Context, r *domain.Reminder, slot string) (bool, error) {
	if r.Kind() == domain.KindOneShot {
		return d.store.DeactivateIfActive(ctx, r.ID)
	}
	return d.store.ClaimSlot(ctx, r.ID, slot)
}

func (d *Dispatcher) record(ctx context.Context, log *slog.Logger, r *domain.Reminder, slot string, status domain.DeliveryStatus, sendErr error) {
	if d.deliveries == nil {
		return
	}
	rec := &domain.Delivery{
		ReminderID:  r.ID,
		OwnerID:     r.OwnerID,
		Slot:        slot,
		Status:      status,
		AttemptedAt: d.clock.Now().UTC(),
	}
	if sendErr != nil {
		rec.Error = sendErr.Error()
	}
	if err := d.deliveries.Record(ctx, rec); err != nil {
		log.WarnContext(ctx, "recording delivery failed", "error", err)
	}
}
