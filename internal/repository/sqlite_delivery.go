package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/google/uuid"
)

// deliveryTimeLayout has fixed-width fractions so attempted_at sorts as text.
const deliveryTimeLayout = "2006-01-02T15:04:05.000000Z"

// SQLiteDeliveryRepo is the append-only log of dispatcher attempts.
type SQLiteDeliveryRepo struct {
	db db.DBTX
}

func NewSQLiteDeliveryRepo(d db.DBTX) *SQLiteDeliveryRepo {
	return &SQLiteDeliveryRepo{db: d}
}

func (r *SQLiteDeliveryRepo) Record(ctx context.Context, d *domain.Delivery) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.AttemptedAt.IsZero() {
		d.AttemptedAt = time.Now().UTC()
	}
	query := `INSERT INTO deliveries (id, reminder_id, owner_id, slot, status, error, attempted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		d.ID,
		d.ReminderID,
		d.OwnerID,
		d.Slot,
		string(d.Status),
		d.Error,
		d.AttemptedAt.UTC().Format(deliveryTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting delivery: %w", err)
	}
	return nil
}

func (r *SQLiteDeliveryRepo) ListByReminder(ctx context.Context, reminderID int64) ([]*domain.Delivery, error) {
	query := `SELECT id, reminder_id, owner_id, slot, status, error, attempted_at
		FROM deliveries WHERE reminder_id = ? ORDER BY attempted_at`
	rows, err := r.db.QueryContext(ctx, query, reminderID)
	if err != nil {
		return nil, fmt.Errorf("listing deliveries: %w", err)
	}
	defer rows.Close()
	return scanDeliveries(rows)
}

func scanDeliveries(rows *sql.Rows) ([]*domain.Delivery, error) {
	var out []*domain.Delivery
	for rows.Next() {
		var d domain.Delivery
		var status, attemptedAt string
		if err := rows.Scan(&d.ID, &d.ReminderID, &d.OwnerID, &d.Slot, &status, &d.Error, &attemptedAt); err != nil {
			return nil, fmt.Errorf("scanning delivery row: %w", err)
		}
		d.Status = domain.DeliveryStatus(status)
		t, err := time.Parse(deliveryTimeLayout, attemptedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing attempted_at: %w", err)
		}
		d.AttemptedAt = t
		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating deliveries: %w", err)
	}
	return out, nil
}
