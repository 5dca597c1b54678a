// Package chat turns inbound chat text into reminder operations and renders
// the replies. It is transport-agnostic: the Telegram poller and the local
// console both feed it.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/remindparse"
	"github.com/alexanderramin/tempo/internal/repository"
	"github.com/alexanderramin/tempo/internal/service"
)

// Limiter throttles inbound messages per owner.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Sender delivers a reply to an owner.
type Sender interface {
	Send(ctx context.Context, ownerID, text string) error
}

type Handler struct {
	reminders service.ReminderService
	limiter   Limiter
	logger    *slog.Logger
}

type Option func(*Handler)

// WithLimiter enables per-owner rate limiting. Limiter errors fail open.
func WithLimiter(l Limiter) Option { return func(h *Handler) { h.limiter = l } }

func WithLogger(l *slog.Logger) Option { return func(h *Handler) { h.logger = l } }

func NewHandler(reminders service.ReminderService, opts ...Option) *Handler {
	h := &Handler{
		reminders: reminders,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Reply handles one inbound message and returns the text to send back.
func (h *Handler) Reply(ctx context.Context, ownerID, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if h.limiter != nil {
		ok, err := h.limiter.Allow(ctx, ownerID)
		switch {
		case err != nil:
			h.logger.WarnContext(ctx, "rate limiter unavailable", "owner_id", ownerID, "error", err)
		case !ok:
			return msgSlowDown
		}
	}

	cmd, args := splitCommand(text)
	switch cmd {
	case "/start", "/help":
		return msgHelp
	case "/remind":
		return h.remind(ctx, ownerID, args)
	case "/every":
		return h.every(ctx, ownerID, args)
	case "/reminders", "/list":
		return h.list(ctx, ownerID)
	case "/delete":
		return h.remove(ctx, ownerID, args)
	case "":
		if remindparse.StartsWithFraming(text) {
			return h.natural(ctx, ownerID, text)
		}
		return msgUnknown
	default:
		return msgUnknown
	}
}

// Deliver replies through s. It adapts Reply to push-style transports.
func (h *Handler) Deliver(ctx context.Context, s Sender, ownerID, text string) {
	reply := h.Reply(ctx, ownerID, text)
	if reply == "" {
		return
	}
	if err := s.Send(ctx, ownerID, reply); err != nil {
		h.logger.WarnContext(ctx, "reply failed", "owner_id", ownerID, "error", err)
	}
}

// splitCommand separates "/cmd@bot args" into "/cmd" and "args". Text that
// is not a command yields an empty cmd.
func splitCommand(text string) (cmd, args string) {
	if !strings.HasPrefix(text, "/") {
		return "", text
	}
	head, rest, _ := strings.Cut(text, " ")
	head, _, _ = strings.Cut(head, "@")
	return strings.ToLower(head), strings.TrimSpace(rest)
}

func (h *Handler) natural(ctx context.Context, ownerID, text string) string {
	res, err := h.reminders.CreateFromText(ctx, ownerID, text)
	if err != nil {
		return h.errorReply(ctx, err, "")
	}
	reply := formatCreated(res.Reminder)
	if res.Parse.TimeTag == remindparse.TagDefault {
		reply += "\n" + fmt.Sprintf(msgTimeDefaulted, res.Reminder.FireTime)
	}
	return reply
}

func (h *Handler) remind(ctx context.Context, ownerID, args string) string {
	at, rest, err := leadingTime(args)
	if err != nil {
		return h.errorReply(ctx, err, usageRemind)
	}
	rem, err := h.reminders.CreateOneShot(ctx, ownerID, at, rest)
	if err != nil {
		return h.errorReply(ctx, err, usageRemind)
	}
	return formatCreated(rem)
}

func (h *Handler) every(ctx context.Context, ownerID, args string) string {
	at, rest, err := leadingTime(args)
	if err != nil {
		return h.errorReply(ctx, err, usageEvery)
	}
	days, payload, err := leadingDays(rest)
	if err != nil {
		return h.errorReply(ctx, err, usageEvery)
	}
	rem, err := h.reminders.CreateRecurring(ctx, ownerID, at, days, payload)
	if err != nil {
		return h.errorReply(ctx, err, usageEvery)
	}
	return formatCreated(rem)
}

func (h *Handler) list(ctx context.Context, ownerID string) string {
	list, err := h.reminders.ListActive(ctx, ownerID)
	if err != nil {
		return h.errorReply(ctx, err, "")
	}
	if len(list) == 0 {
		return msgNoReminders
	}
	var b strings.Builder
	b.WriteString(msgListHeader)
	for _, r := range list {
		fmt.Fprintf(&b, "\n#%d  %s  %s: %s", r.ID, r.FireTime, describeSchedule(r), r.Payload)
	}
	return b.String()
}

func (h *Handler) remove(ctx context.Context, ownerID, args string) string {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(args), "#"), 10, 64)
	if err != nil || id <= 0 {
		return h.errorReply(ctx, domain.NewValidationError("id", "нужен номер напоминания, например /delete 3"), usageDelete)
	}
	if err := h.reminders.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Sprintf(msgNotFound, id)
		}
		return h.errorReply(ctx, err, "")
	}
	return fmt.Sprintf(msgDeleted, id)
}

// errorReply maps the error taxonomy to user-facing text. Only operational
// failures are logged here; the service observer already records the rest.
func (h *Handler) errorReply(ctx context.Context, err error, usage string) string {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		msg := ve.Message
		if ve.Field == "text" {
			msg = msgEmptyPayload
		}
		reply := "⚠️ " + msg
		if usage != "" {
			reply += "\n" + usage
		}
		return reply
	case errors.Is(err, domain.ErrLimitExceeded):
		return msgLimit
	case errors.Is(err, repository.ErrNotFound):
		return msgNotFoundGeneric
	default:
		h.logger.ErrorContext(ctx, "chat command failed", "error", err)
		return msgStoreUnavailable
	}
}

// leadingTime splits "HH:MM rest" into its parts.
func leadingTime(args string) (domain.ClockTime, string, error) {
	head, rest, _ := strings.Cut(strings.TrimSpace(args), " ")
	if head == "" {
		return domain.ClockTime{}, "", domain.NewValidationError("time", "укажите время в формате ЧЧ:ММ")
	}
	at, err := domain.ParseClockTime(head)
	if err != nil {
		return domain.ClockTime{}, "", domain.NewValidationError("time", "не понимаю время %q, нужно ЧЧ:ММ", head)
	}
	return at, strings.TrimSpace(rest), nil
}

// leadingDays consumes the day list of /every. "каждый день" is the only
// two-word form.
func leadingDays(args string) (domain.WeekdaySet, string, error) {
	args = strings.TrimSpace(args)
	if lower := strings.ToLower(args); strings.HasPrefix(lower, "каждый день") {
		return domain.EveryDay, strings.TrimSpace(args[len("каждый день"):]), nil
	}
	head, rest, _ := strings.Cut(args, " ")
	if head == "" {
		return 0, "", domain.NewValidationError("days", "укажите дни, например пн,ср,пт или ежедневно")
	}
	days, err := domain.ParseWeekdaySet(head)
	if err != nil {
		return 0, "", domain.NewValidationError("days", "не понимаю дни %q, нужно например пн,ср,пт", head)
	}
	return days, strings.TrimSpace(rest), nil
}
