package repository

import (
	"context"
	"errors"

	"github.com/alexanderramin/tempo/internal/domain"
)

// ErrNotFound is returned when a lookup by id matches no row.
var ErrNotFound = errors.New("not found")

// ReminderRepo is the single source of truth for reminders. Implementations
// must make DeactivateIfActive and ClaimSlot atomic: of two concurrent callers
// for the same reminder, exactly one observes true.
type ReminderRepo interface {
	// Create inserts req unless the owner already has limit active
	// reminders, in which case it returns domain.ErrLimitExceeded.
	Create(ctx context.Context, req domain.ReminderRequest, limit int) (*domain.Reminder, error)
	GetByID(ctx context.Context, id int64) (*domain.Reminder, error)
	ListActive(ctx context.Context, ownerID string) ([]*domain.Reminder, error)
	CountActive(ctx context.Context, ownerID string) (int, error)
	// DueNow returns active reminders whose fire time equals at and whose
	// day constraint admits day.
	DueNow(ctx context.Context, at domain.ClockTime, day domain.Weekday) ([]*domain.Reminder, error)
	// DeactivateIfActive reports whether this call flipped the reminder
	// from active to inactive.
	DeactivateIfActive(ctx context.Context, id int64) (bool, error)
	// ClaimSlot records slot as the reminder's last fired minute and reports
	// whether this call was the first to claim it.
	ClaimSlot(ctx context.Context, id int64, slot string) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	DeleteOwned(ctx context.Context, id int64, ownerID string) (bool, error)
}

type DeliveryRepo interface {
	Record(ctx context.Context, d *domain.Delivery) error
	ListByReminder(ctx context.Context, reminderID int64) ([]*domain.Delivery, error)
}
