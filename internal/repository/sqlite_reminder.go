package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
)

const reminderColumns = `id, owner_id, kind, fire_time, days_mask, delay_minutes,
	payload, source_text, is_active, last_fired_slot, created_at`

// SQLiteReminderRepo implements ReminderRepo using a SQLite database.
type SQLiteReminderRepo struct {
	db  db.DBTX
	now func() time.Time
}

// NewSQLiteReminderRepo creates a new SQLiteReminderRepo. d may be a *sql.DB
// or a transaction.
func NewSQLiteReminderRepo(d db.DBTX) *SQLiteReminderRepo {
	return &SQLiteReminderRepo{db: d, now: time.Now}
}

func (r *SQLiteReminderRepo) Create(ctx context.Context, req domain.ReminderRequest, limit int) (*domain.Reminder, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	oneShot, _ := req.Schedule.(domain.OneShot)
	createdAt := r.now().UTC().Truncate(time.Second)

	// The cap check and the insert are one statement, so two concurrent
	// creates cannot both slip under the limit.
	query := `INSERT INTO reminders (owner_id, kind, fire_time, days_mask, delay_minutes,
			payload, source_text, is_active, created_at)
		SELECT ?, ?, ?, ?, ?, ?, ?, 1, ?
		WHERE (SELECT COUNT(*) FROM reminders WHERE owner_id = ? AND is_active = 1) < ?`
	res, err := r.db.ExecContext(ctx, query,
		req.OwnerID,
		string(req.Kind()),
		req.FireTime.String(),
		req.Days().Mask(),
		nullableIntToValue(oneShot.DelayMinutes),
		req.Payload,
		req.Source,
		formatTime(createdAt),
		req.OwnerID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting reminder: %w", err)
	}
	ok, err := affected(res)
	if err != nil {
		return nil, fmt.Errorf("inserting reminder: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("owner %s: %w", req.OwnerID, domain.ErrLimitExceeded)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading reminder id: %w", err)
	}

	return &domain.Reminder{
		ID:              id,
		ReminderRequest: req,
		Active:          true,
		CreatedAt:       createdAt,
	}, nil
}

func (r *SQLiteReminderRepo) GetByID(ctx context.Context, id int64) (*domain.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE id = ?`
	rem, err := scanReminder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("reminder %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning reminder: %w", err)
	}
	return rem, nil
}

func (r *SQLiteReminderRepo) ListActive(ctx context.Context, ownerID string) ([]*domain.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders
		WHERE owner_id = ? AND is_active = 1
		ORDER BY fire_time, id`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing active reminders: %w", err)
	}
	defer rows.Close()
	return scanReminders(rows)
}

func (r *SQLiteReminderRepo) CountActive(ctx context.Context, ownerID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reminders WHERE owner_id = ? AND is_active = 1`, ownerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting active reminders: %w", err)
	}
	return n, nil
}

// DueNow matches on a single predicate: a zero mask (one-shot, no day
// constraint) or a mask containing the weekday bit.
func (r *SQLiteReminderRepo) DueNow(ctx context.Context, at domain.ClockTime, day domain.Weekday) ([]*domain.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders
		WHERE is_active = 1 AND fire_time = ?
		  AND (days_mask = 0 OR (days_mask & ?) != 0)
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, at.String(), domain.NewWeekdaySet(day).Mask())
	if err != nil {
		return nil, fmt.Errorf("querying due reminders: %w", err)
	}
	defer rows.Close()
	return scanReminders(rows)
}

func (r *SQLiteReminderRepo) DeactivateIfActive(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reminders SET is_active = 0 WHERE id = ? AND is_active = 1`, id)
	if err != nil {
		return false, fmt.Errorf("deactivating reminder: %w", err)
	}
	return affected(res)
}

func (r *SQLiteReminderRepo) ClaimSlot(ctx context.Context, id int64, slot string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reminders SET last_fired_slot = ?
		WHERE id = ? AND is_active = 1
		  AND (last_fired_slot IS NULL OR last_fired_slot <> ?)`, slot, id, slot)
	if err != nil {
		return false, fmt.Errorf("claiming reminder slot: %w", err)
	}
	return affected(res)
}

func (r *SQLiteReminderRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting reminder: %w", err)
	}
	return affected(res)
}

func (r *SQLiteReminderRepo) DeleteOwned(ctx context.Context, id int64, ownerID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("deleting reminder: %w", err)
	}
	return affected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReminder(row rowScanner) (*domain.Reminder, error) {
	var (
		rem                       domain.Reminder
		kind, fireTime, createdAt string
		daysMask, active          int
		delay                     sql.NullInt64
		lastSlot                  sql.NullString
	)
	err := row.Scan(
		&rem.ID, &rem.OwnerID, &kind, &fireTime, &daysMask, &delay,
		&rem.Payload, &rem.Source, &active, &lastSlot, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	if rem.FireTime, err = domain.ParseClockTime(fireTime); err != nil {
		return nil, fmt.Errorf("parsing fire_time: %w", err)
	}
	if rem.Schedule, err = domain.ScheduleFromStored(kind, daysMask, nullIntToPtr(delay)); err != nil {
		return nil, err
	}
	if rem.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	rem.Active = intToBool(active)
	rem.LastFiredSlot = lastSlot.String
	return &rem, nil
}

func scanReminders(rows *sql.Rows) ([]*domain.Reminder, error) {
	var out []*domain.Reminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning reminder row: %w", err)
		}
		out = append(out, rem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reminders: %w", err)
	}
	return out, nil
}
