package service

import (
	"context"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/remindparse"
)

// CreateResult pairs a stored reminder with the parse that produced it.
type CreateResult struct {
	Reminder *domain.Reminder
	Parse    remindparse.Result
}

type ReminderService interface {
	// CreateFromText runs the natural-language parser and stores the result.
	CreateFromText(ctx context.Context, ownerID, text string) (*CreateResult, error)
	CreateOneShot(ctx context.Context, ownerID string, at domain.ClockTime, payload string) (*domain.Reminder, error)
	CreateRecurring(ctx context.Context, ownerID string, at domain.ClockTime, days domain.WeekdaySet, payload string) (*domain.Reminder, error)
	ListActive(ctx context.Context, ownerID string) ([]*domain.Reminder, error)
	// Delete hard-deletes the owner's reminder regardless of kind or state.
	Delete(ctx context.Context, ownerID string, id int64) error
	// Preview parses text without storing anything.
	Preview(text string) remindparse.Result
}
