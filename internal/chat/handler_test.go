package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/ratelimit"
	"github.com/alexanderramin/tempo/internal/remindparse"
	"github.com/alexanderramin/tempo/internal/repository"
	"github.com/alexanderramin/tempo/internal/service"
	"github.com/alexanderramin/tempo/internal/testutil"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 17, 10, 50, 0, 0, time.UTC)

func setup(t *testing.T, opts ...Option) (*Handler, *repository.SQLiteReminderRepo) {
	t.Helper()
	database := testutil.NewTestDB(t)
	reminders := repository.NewSQLiteReminderRepo(database)
	svc := service.NewReminderService(reminders, testutil.NewTestUoW(database), remindparse.New(),
		service.WithNow(func() time.Time { return now }),
		service.WithLocation(time.UTC),
		service.WithActiveLimit(3),
	)
	return NewHandler(svc, opts...), reminders
}

func TestReply_NaturalLanguage(t *testing.T) {
	h, reminders := setup(t)
	ctx := context.Background()
	owner := testutil.NewTestOwner()

	reply := h.Reply(ctx, owner, "напоминай каждый день в 8:00 пить витамины")
	assert.Contains(t, reply, "каждый день в 08:00")
	assert.Contains(t, reply, "пить витамины")

	list, err := reminders.ListActive(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.KindRecurring, list[0].Kind())
}

func TestReply_NaturalLanguage_DefaultTimeNotice(t *testing.T) {
	h, _ := setup(t)

	reply := h.Reply(context.Background(), testutil.NewTestOwner(), "напомни купить молоко")
	assert.Contains(t, reply, "разово в 09:00")
	assert.Contains(t, reply, "Время не распознано")
}

func TestReply_NaturalLanguage_Delay(t *testing.T) {
	h, _ := setup(t)

	reply := h.Reply(context.Background(), testutil.NewTestOwner(), "напомни через 15 минут позвонить")
	assert.Contains(t, reply, "через 15 мин в 11:05: позвонить")
}

func TestReply_EmptyPayload(t *testing.T) {
	h, _ := setup(t)
	assert.Equal(t, "⚠️ Не понял, о чём напомнить.", h.Reply(context.Background(), testutil.NewTestOwner(), "напомни мне"))
}

func TestReply_RemindCommand(t *testing.T) {
	h, reminders := setup(t)
	ctx := context.Background()
	owner := testutil.NewTestOwner()

	reply := h.Reply(ctx, owner, "/remind@tempo_bot 7:30 Встреча с командой")
	assert.Contains(t, reply, "разово в 07:30: Встреча с командой")

	list, err := reminders.ListActive(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.KindOneShot, list[0].Kind())
}

func TestReply_RemindCommand_Invalid(t *testing.T) {
	h, _ := setup(t)
	ctx := context.Background()

	assert.Contains(t, h.Reply(ctx, "1", "/remind"), usageRemind)
	assert.Contains(t, h.Reply(ctx, "1", "/remind 25:00 спать"), "не понимаю время")
	assert.Contains(t, h.Reply(ctx, "1", "/remind 10:00"), "о чём напомнить")
}

func TestReply_EveryCommand(t *testing.T) {
	h, reminders := setup(t)
	ctx := context.Background()
	owner := testutil.NewTestOwner()

	assert.Contains(t, h.Reply(ctx, owner, "/every 08:00 пн,ср,пт зарядка"), "по пн,ср,пт в 08:00: зарядка")
	assert.Contains(t, h.Reply(ctx, owner, "/every 21:00 каждый день читать"), "каждый день в 21:00: читать")
	assert.Contains(t, h.Reply(ctx, owner, "/every 21:00 завтра читать"), "не понимаю дни")

	list, err := reminders.ListActive(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domain.EveryDay, list[1].Days())
}

func TestReply_ListAndDelete(t *testing.T) {
	h, reminders := setup(t)
	ctx := context.Background()
	owner := testutil.NewTestOwner()

	assert.Equal(t, msgNoReminders, h.Reply(ctx, owner, "/reminders"))

	h.Reply(ctx, owner, "/remind 07:00 встать")
	h.Reply(ctx, owner, "/every 22:00 сб,вс спать")
	list, err := reminders.ListActive(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 2)

	reply := h.Reply(ctx, owner, "/reminders")
	assert.Contains(t, reply, fmt.Sprintf("#%d  07:00  разово: встать", list[0].ID))
	assert.Contains(t, reply, fmt.Sprintf("#%d  22:00  по сб,вс: спать", list[1].ID))

	assert.Equal(t, fmt.Sprintf(msgDeleted, list[1].ID), h.Reply(ctx, owner, fmt.Sprintf("/delete #%d", list[1].ID)))
	assert.Equal(t, fmt.Sprintf(msgNotFound, list[1].ID), h.Reply(ctx, owner, fmt.Sprintf("/delete %d", list[1].ID)))
	assert.Equal(t, fmt.Sprintf(msgNotFound, list[0].ID), h.Reply(ctx, "someone-else", fmt.Sprintf("/delete %d", list[0].ID)))
	assert.Contains(t, h.Reply(ctx, owner, "/delete abc"), usageDelete)
}

func TestReply_LimitExceeded(t *testing.T) {
	h, _ := setup(t)
	ctx := context.Background()
	owner := testutil.NewTestOwner()

	for i := 0; i < 3; i++ {
		require.Contains(t, h.Reply(ctx, owner, fmt.Sprintf("/remind 09:0%d вода", i)), "✅")
	}
	assert.Equal(t, msgLimit, h.Reply(ctx, owner, "напомни в 20:00 сделать зарядку"))
}

func TestReply_UnknownAndHelp(t *testing.T) {
	h, _ := setup(t)
	ctx := context.Background()

	assert.Equal(t, msgHelp, h.Reply(ctx, "1", "/start"))
	assert.Equal(t, msgHelp, h.Reply(ctx, "1", "/HELP"))
	assert.Equal(t, msgUnknown, h.Reply(ctx, "1", "привет"))
	assert.Equal(t, msgUnknown, h.Reply(ctx, "1", "/weather"))
	assert.Empty(t, h.Reply(ctx, "1", "   "))
}

type stubService struct {
	service.ReminderService
	err error
}

func (s stubService) ListActive(context.Context, string) ([]*domain.Reminder, error) {
	return nil, s.err
}

func TestReply_StoreUnavailable(t *testing.T) {
	h := NewHandler(stubService{err: fmt.Errorf("%w: disk I/O error", domain.ErrStoreUnavailable)})
	assert.Equal(t, msgStoreUnavailable, h.Reply(context.Background(), "1", "/reminders"))
}

func TestReply_RateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	limiter, err := ratelimit.NewRedisFixedWindowLimiter(mr.Addr(), "", 0, 2, time.Minute,
		ratelimit.WithNow(func() time.Time { return now }))
	require.NoError(t, err)
	t.Cleanup(func() { limiter.Close() })

	h, _ := setup(t, WithLimiter(limiter))
	ctx := context.Background()

	assert.Equal(t, msgHelp, h.Reply(ctx, "1", "/help"))
	assert.Equal(t, msgHelp, h.Reply(ctx, "1", "/help"))
	assert.Equal(t, msgSlowDown, h.Reply(ctx, "1", "/help"))
	assert.Equal(t, msgHelp, h.Reply(ctx, "2", "/help"))
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("connection refused")
}

func TestReply_LimiterFailsOpen(t *testing.T) {
	h, _ := setup(t, WithLimiter(brokenLimiter{}))
	assert.Equal(t, msgHelp, h.Reply(context.Background(), "1", "/help"))
}

func TestDeliver(t *testing.T) {
	h, _ := setup(t)
	ch := &testutil.RecordingChannel{}

	h.Deliver(context.Background(), ch, "42", "/help")
	h.Deliver(context.Background(), ch, "42", "")

	msgs := ch.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, testutil.SentMessage{OwnerID: "42", Text: msgHelp}, msgs[0])
}
