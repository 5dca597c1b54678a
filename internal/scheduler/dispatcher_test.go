package scheduler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/repository"
	"github.com/alexanderramin/tempo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Saturday 2026-10-17 09:00 UTC.
var saturdayNine = time.Date(2026, 10, 17, 9, 0, 20, 0, time.UTC)

type fixture struct {
	reminders  *repository.SQLiteReminderRepo
	deliveries *repository.SQLiteDeliveryRepo
	channel    *testutil.RecordingChannel
	clock      *testutil.FakeClock
	dispatcher *Dispatcher
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	f := &fixture{
		reminders:  repository.NewSQLiteReminderRepo(database),
		deliveries: repository.NewSQLiteDeliveryRepo(database),
		channel:    &testutil.RecordingChannel{},
		clock:      testutil.NewFakeClock(saturdayNine),
	}
	opts = append([]Option{
		WithClock(f.clock),
		WithLocation(time.UTC),
		WithDeliveryLog(f.deliveries),
	}, opts...)
	f.dispatcher = NewDispatcher(f.reminders, f.channel, opts...)
	return f
}

func (f *fixture) create(t *testing.T, owner string, opts ...testutil.RequestOption) *domain.Reminder {
	t.Helper()
	r, err := f.reminders.Create(context.Background(), testutil.NewTestRequest(owner, opts...), domain.MaxActiveReminders)
	require.NoError(t, err)
	return r
}

func TestTick_OneShotDeliveredOnceAndDeactivated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := testutil.NewTestOwner()
	r := f.create(t, owner, testutil.WithPayload("сделать зарядку"))

	rep := f.dispatcher.Tick(ctx)
	assert.Equal(t, 1, rep.Due)
	assert.Equal(t, 1, rep.Sent)
	assert.NoError(t, rep.Err)
	assert.NotEmpty(t, rep.ID)

	msgs := f.channel.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, owner, msgs[0].OwnerID)
	assert.Equal(t, "🔔 Напоминание: сделать зарядку", msgs[0].Text)

	fetched, err := f.reminders.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.False(t, fetched.Active)

	// A second poll within the same minute finds nothing.
	f.clock.Advance(30 * time.Second)
	rep = f.dispatcher.Tick(ctx)
	assert.Zero(t, rep.Due)
	assert.Len(t, f.channel.Messages(), 1)

	log, err := f.deliveries.ListByReminder(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, domain.DeliverySent, log[0].Status)
	assert.Equal(t, "2026-10-17T09:00", log[0].Slot)
}

func TestTick_OnlyMatchingMinuteAndDay(t *testing.T) {
	f := newFixture(t)
	owner := testutil.NewTestOwner()
	f.create(t, owner, testutil.WithFireTime(9, 1))
	f.create(t, owner, testutil.WithDays(domain.Monday, domain.Tuesday, domain.Wednesday, domain.Thursday, domain.Friday))
	weekend := f.create(t, owner, testutil.WithDays(domain.Saturday, domain.Sunday), testutil.WithPayload("выходные"))

	rep := f.dispatcher.Tick(context.Background())
	assert.Equal(t, 1, rep.Due)
	msgs := f.channel.Messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "выходные")

	fetched, err := f.reminders.GetByID(context.Background(), weekend.ID)
	require.NoError(t, err)
	assert.True(t, fetched.Active, "recurring reminders are never deactivated")
}

func TestTick_RecurringOncePerMinute(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.create(t, testutil.NewTestOwner(), testutil.WithEveryDay())

	assert.Equal(t, 1, f.dispatcher.Tick(ctx).Sent)

	f.clock.Advance(20 * time.Second)
	rep := f.dispatcher.Tick(ctx)
	assert.Equal(t, 1, rep.Due)
	assert.Zero(t, rep.Sent)
	assert.Equal(t, 1, rep.Skipped)

	f.clock.Advance(24 * time.Hour)
	assert.Equal(t, 1, f.dispatcher.Tick(ctx).Sent, "fires again the next day")
	assert.Len(t, f.channel.Messages(), 2)

	log, err := f.deliveries.ListByReminder(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, log, 3)
	assert.Equal(t, domain.DeliverySkipped, log[1].Status)
}

func TestTick_FailureIsolatedAndOneShotStillDeactivated(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	f := newFixture(t, WithLogger(logger))
	ctx := context.Background()

	blocked, ok1, ok2 := testutil.NewTestOwner(), testutil.NewTestOwner(), testutil.NewTestOwner()
	f.channel.FailFor = map[string]bool{blocked: true}
	f.channel.Err = errors.New("Forbidden: bot was blocked by the user")

	f.create(t, ok1)
	failed := f.create(t, blocked)
	f.create(t, ok2)

	rep := f.dispatcher.Tick(ctx)
	assert.Equal(t, 3, rep.Due)
	assert.Equal(t, 2, rep.Sent)
	assert.Equal(t, 1, rep.Failed)

	fetched, err := f.reminders.GetByID(ctx, failed.ID)
	require.NoError(t, err)
	assert.False(t, fetched.Active, "failed one-shot deliveries are not retried")

	log, err := f.deliveries.ListByReminder(ctx, failed.ID)
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, domain.DeliveryFailed, log[0].Status)
	assert.Contains(t, log[0].Error, "blocked")

	assert.Contains(t, buf.String(), "reminder delivery failed")
}

type panickyChannel struct {
	testutil.RecordingChannel
	panicFor string
}

func (c *panickyChannel) Send(ctx context.Context, ownerID, text string) error {
	if ownerID == c.panicFor {
		panic("nil map write")
	}
	return c.RecordingChannel.Send(ctx, ownerID, text)
}

func TestTick_PanicIsolated(t *testing.T) {
	database := testutil.NewTestDB(t)
	reminders := repository.NewSQLiteReminderRepo(database)
	bad, good := testutil.NewTestOwner(), testutil.NewTestOwner()
	ch := &panickyChannel{panicFor: bad}
	d := NewDispatcher(reminders, ch, WithClock(testutil.NewFakeClock(saturdayNine)), WithLocation(time.UTC))

	for _, owner := range []string{bad, good} {
		_, err := reminders.Create(context.Background(), testutil.NewTestRequest(owner), 20)
		require.NoError(t, err)
	}

	var rep TickReport
	require.NotPanics(t, func() { rep = d.Tick(context.Background()) })
	assert.Equal(t, 1, rep.Sent)
	assert.Equal(t, 1, rep.Failed)
	assert.Len(t, ch.Messages(), 1)
}

func TestTick_StoreUnavailableSkipsTick(t *testing.T) {
	database := testutil.NewTestDB(t)
	failing := &testutil.FailingDB{DBTX: database, FailReads: true, Err: errors.New("database is locked")}
	reminders := repository.NewSQLiteReminderRepo(database)
	_, err := reminders.Create(context.Background(), testutil.NewTestRequest(testutil.NewTestOwner()), 20)
	require.NoError(t, err)

	ch := &testutil.RecordingChannel{}
	d := NewDispatcher(repository.NewSQLiteReminderRepo(failing), ch,
		WithClock(testutil.NewFakeClock(saturdayNine)), WithLocation(time.UTC))

	rep := d.Tick(context.Background())
	assert.Error(t, rep.Err)
	assert.Empty(t, ch.Messages())

	failing.FailReads = false
	rep = d.Tick(context.Background())
	assert.NoError(t, rep.Err)
	assert.Equal(t, 1, rep.Sent, "the next tick recovers")
}

type claimFailStore struct {
	due []*domain.Reminder
}

func (s claimFailStore) DueNow(context.Context, domain.ClockTime, domain.Weekday) ([]*domain.Reminder, error) {
	return s.due, nil
}

func (claimFailStore) DeactivateIfActive(context.Context, int64) (bool, error) {
	return false, errors.New("disk full")
}

func (claimFailStore) ClaimSlot(context.Context, int64, string) (bool, error) {
	return false, errors.New("disk full")
}

func TestTick_ClaimErrorNeverDelivers(t *testing.T) {
	store := claimFailStore{due: []*domain.Reminder{{
		ID:              1,
		ReminderRequest: testutil.NewTestRequest("o"),
		Active:          true,
	}}}
	ch := &testutil.RecordingChannel{}
	d := NewDispatcher(store, ch, WithClock(testutil.NewFakeClock(saturdayNine)))

	rep := d.Tick(context.Background())
	assert.Equal(t, 1, rep.Skipped)
	assert.Empty(t, ch.Messages())
}

func TestTick_ConcurrentDispatchersDeliverOnce(t *testing.T) {
	database := testutil.NewFileTestDB(t)
	reminders := repository.NewSQLiteReminderRepo(database)
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		_, err := reminders.Create(ctx, testutil.NewTestRequest(testutil.NewTestOwner()), 20)
		require.NoError(t, err)
	}
	_, err := reminders.Create(ctx, testutil.NewTestRequest(testutil.NewTestOwner(), testutil.WithEveryDay()), 20)
	require.NoError(t, err)

	ch := &testutil.RecordingChannel{}
	clock := testutil.NewFakeClock(saturdayNine)
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			NewDispatcher(repository.NewSQLiteReminderRepo(database), ch,
				WithClock(clock), WithLocation(time.UTC)).Tick(ctx)
		}()
	}
	wg.Wait()

	assert.Len(t, ch.Messages(), 11)
}

func TestTick_CustomFormatAndLocation(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*60*60)
	f := newFixture(t, WithLocation(moscow), WithMessageFormat(func(r *domain.Reminder) string {
		return r.FireTime.String() + " " + r.Payload
	}))
	f.create(t, testutil.NewTestOwner(), testutil.WithFireTime(12, 0), testutil.WithPayload("обед"))

	rep := f.dispatcher.Tick(context.Background())
	assert.Equal(t, 1, rep.Sent, "09:00 UTC is 12:00 in Moscow")
	assert.Equal(t, "12:00 обед", f.channel.Messages()[0].Text)
}

func TestRun_StartupDelayThenInterval(t *testing.T) {
	f := newFixture(t, WithStartupDelay(5*time.Second), WithInterval(time.Minute))
	f.clock.Set(saturdayNine.Add(-5 * time.Second))
	owner := testutil.NewTestOwner()
	f.create(t, owner, testutil.WithEveryDay())
	f.create(t, owner, testutil.WithFireTime(9, 1), testutil.WithPayload("через минуту"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.dispatcher.Run(ctx) }()

	f.clock.BlockUntil(1)
	assert.Empty(t, f.channel.Messages(), "nothing before the startup delay")

	f.clock.Advance(5 * time.Second)
	f.clock.BlockUntil(1)
	assert.Len(t, f.channel.Messages(), 1)

	f.clock.Advance(time.Minute)
	f.clock.BlockUntil(1)
	msgs := f.channel.Messages()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[1].Text, "через минуту")

	assert.ErrorIs(t, f.dispatcher.Run(ctx), ErrAlreadyRunning)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

// slowChannel records sends and moves the fake clock forward on each one.
type slowChannel struct {
	testutil.RecordingChannel
	clock *testutil.FakeClock
	cost  time.Duration
}

func (c *slowChannel) Send(ctx context.Context, ownerID, text string) error {
	c.clock.Advance(c.cost)
	return c.RecordingChannel.Send(ctx, ownerID, text)
}

func runDispatcher(t *testing.T, d *Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("Run did not stop after cancel")
		}
	})
}

func TestRun_SlowSendsDoNotSkipMinutes(t *testing.T) {
	f := newFixture(t)
	f.clock.Set(time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC))
	ch := &slowChannel{clock: f.clock, cost: 20 * time.Second}
	d := NewDispatcher(f.reminders, ch,
		WithClock(f.clock), WithLocation(time.UTC),
		WithInterval(time.Minute), WithStartupDelay(10*time.Second))

	var owners []string
	for m := 0; m < 5; m++ {
		owner := testutil.NewTestOwner()
		owners = append(owners, owner)
		f.create(t, owner, testutil.WithEveryDay(), testutil.WithFireTime(9, m))
	}

	runDispatcher(t, d)
	for i := 0; i < 5; i++ {
		f.clock.BlockUntil(1)
		f.clock.AdvanceToNext()
	}
	f.clock.BlockUntil(1)

	var got []string
	for _, msg := range ch.Messages() {
		got = append(got, msg.OwnerID)
	}
	assert.Equal(t, owners, got)
	assert.Equal(t, time.Date(2026, 10, 17, 9, 4, 20, 0, time.UTC), f.clock.Now(),
		"each tick starts on the minute boundary")
}

func TestRun_CatchesUpSkippedMinutes(t *testing.T) {
	f := newFixture(t, WithInterval(time.Minute), WithStartupDelay(10*time.Second))
	f.clock.Set(time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	first := f.create(t, testutil.NewTestOwner(), testutil.WithEveryDay(), testutil.WithPayload("девять"))
	skipped := f.create(t, testutil.NewTestOwner(), testutil.WithFireTime(9, 1), testutil.WithPayload("пропущенная минута"))
	current := f.create(t, testutil.NewTestOwner(), testutil.WithEveryDay(), testutil.WithFireTime(9, 2))

	runDispatcher(t, f.dispatcher)
	f.clock.BlockUntil(1)
	f.clock.AdvanceToNext()
	f.clock.BlockUntil(1)
	require.Len(t, f.channel.Messages(), 1)

	// The host stalls past the whole 09:01 minute.
	f.clock.Advance(2*time.Minute + 5*time.Second)
	f.clock.BlockUntil(1)

	msgs := f.channel.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, first.OwnerID, msgs[0].OwnerID)
	assert.Equal(t, skipped.OwnerID, msgs[1].OwnerID)
	assert.Equal(t, current.OwnerID, msgs[2].OwnerID)

	fetched, err := f.reminders.GetByID(ctx, skipped.ID)
	require.NoError(t, err)
	assert.False(t, fetched.Active, "late one-shot is consumed, not left for tomorrow")
}

func TestMissedMinutes(t *testing.T) {
	nine := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		last    time.Time
		current time.Time
		want    int
	}{
		{"first tick", time.Time{}, nine, 0},
		{"same minute", nine, nine, 0},
		{"next minute", nine, nine.Add(time.Minute), 0},
		{"two skipped", nine, nine.Add(3 * time.Minute), 2},
		{"bounded", nine, nine.Add(10 * time.Hour), int(maxCatchUp / time.Minute)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := missedMinutes(tt.last, tt.current)
			assert.Len(t, got, tt.want)
			for _, m := range got {
				assert.True(t, m.After(tt.last) && m.Before(tt.current))
			}
		})
	}
}
