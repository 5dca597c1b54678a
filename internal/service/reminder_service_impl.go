package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/remindparse"
	"github.com/alexanderramin/tempo/internal/repository"
)

type reminderService struct {
	reminders repository.ReminderRepo
	uow       db.UnitOfWork
	parser    *remindparse.Parser
	limit     int
	location  *time.Location
	now       func() time.Time
	observer  UseCaseObserver
}

// ReminderOption configures the reminder service.
type ReminderOption func(*reminderService)

// WithActiveLimit overrides domain.MaxActiveReminders.
func WithActiveLimit(n int) ReminderOption {
	return func(s *reminderService) { s.limit = n }
}

// WithLocation sets the zone relative times are computed in.
func WithLocation(loc *time.Location) ReminderOption {
	return func(s *reminderService) { s.location = loc }
}

// WithNow injects the clock used for relative times.
func WithNow(now func() time.Time) ReminderOption {
	return func(s *reminderService) { s.now = now }
}

func WithObserver(obs UseCaseObserver) ReminderOption {
	return func(s *reminderService) { s.observer = useCaseObserverOrNoop([]UseCaseObserver{obs}) }
}

func NewReminderService(reminders repository.ReminderRepo, uow db.UnitOfWork, parser *remindparse.Parser, opts ...ReminderOption) ReminderService {
	s := &reminderService{
		reminders: reminders,
		uow:       uow,
		parser:    parser,
		limit:     domain.MaxActiveReminders,
		location:  time.Local,
		now:       time.Now,
		observer:  NoopUseCaseObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *reminderService) CreateFromText(ctx context.Context, ownerID, text string) (res *CreateResult, err error) {
	start := time.Now()
	fields := map[string]any{"owner_id": ownerID}
	defer func() { observe(ctx, s.observer, "reminder.create_from_text", start, err, fields) }()

	parsed := s.Preview(text)
	fields["time_tag"] = string(parsed.TimeTag)
	fields["kind"] = string(parsed.Request.Kind())

	req := parsed.Request
	req.OwnerID = ownerID
	rem, err := s.insert(ctx, req)
	if err != nil {
		return nil, err
	}
	fields["reminder_id"] = rem.ID
	return &CreateResult{Reminder: rem, Parse: parsed}, nil
}

func (s *reminderService) CreateOneShot(ctx context.Context, ownerID string, at domain.ClockTime, payload string) (rem *domain.Reminder, err error) {
	start := time.Now()
	defer func() { observe(ctx, s.observer, "reminder.create_one_shot", start, err, map[string]any{"owner_id": ownerID}) }()

	return s.insert(ctx, domain.ReminderRequest{
		OwnerID:  ownerID,
		FireTime: at,
		Schedule: domain.OneShot{},
		Payload:  strings.TrimSpace(payload),
		Source:   payload,
	})
}

func (s *reminderService) CreateRecurring(ctx context.Context, ownerID string, at domain.ClockTime, days domain.WeekdaySet, payload string) (rem *domain.Reminder, err error) {
	start := time.Now()
	defer func() { observe(ctx, s.observer, "reminder.create_recurring", start, err, map[string]any{"owner_id": ownerID}) }()

	if days.IsEmpty() {
		days = domain.EveryDay
	}
	return s.insert(ctx, domain.ReminderRequest{
		OwnerID:  ownerID,
		FireTime: at,
		Schedule: domain.Recurring{Days: days},
		Payload:  strings.TrimSpace(payload),
		Source:   payload,
	})
}

// insert counts and writes inside one transaction. The repository repeats
// the cap check in its INSERT so the limit also holds for callers that
// bypass the service.
func (s *reminderService) insert(ctx context.Context, req domain.ReminderRequest) (*domain.Reminder, error) {
	if req.Payload == "" {
		return nil, domain.NewValidationError("text", "nothing to remind about")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var rem *domain.Reminder
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txReminders := repository.NewSQLiteReminderRepo(tx)

		n, err := txReminders.CountActive(ctx, req.OwnerID)
		if err != nil {
			return err
		}
		if n >= s.limit {
			return fmt.Errorf("owner %s has %d active reminders: %w", req.OwnerID, n, domain.ErrLimitExceeded)
		}
		rem, err = txReminders.Create(ctx, req, s.limit)
		return err
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return rem, nil
}

func (s *reminderService) ListActive(ctx context.Context, ownerID string) (list []*domain.Reminder, err error) {
	start := time.Now()
	defer func() { observe(ctx, s.observer, "reminder.list", start, err, map[string]any{"owner_id": ownerID}) }()

	list, err = s.reminders.ListActive(ctx, ownerID)
	return list, storeErr(err)
}

func (s *reminderService) Delete(ctx context.Context, ownerID string, id int64) (err error) {
	start := time.Now()
	defer func() {
		observe(ctx, s.observer, "reminder.delete", start, err, map[string]any{"owner_id": ownerID, "reminder_id": id})
	}()

	ok, err := s.reminders.DeleteOwned(ctx, id, ownerID)
	if err != nil {
		return storeErr(err)
	}
	if !ok {
		return fmt.Errorf("reminder %d: %w", id, repository.ErrNotFound)
	}
	return nil
}

func (s *reminderService) Preview(text string) remindparse.Result {
	return s.parser.Parse(text, s.now().In(s.location))
}
