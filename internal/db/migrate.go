package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Statements are idempotent and re-run
// on every open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN has no IF NOT EXISTS form.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migratePadFireTimes(db); err != nil {
		return fmt.Errorf("normalizing fire times: %w", err)
	}
	return nil
}

// migratePadFireTimes rewrites single-digit-hour fire times ("8:00") written
// by early builds to the canonical "08:00" the due query compares against.
func migratePadFireTimes(db *sql.DB) error {
	ctx := context.Background()
	_, err := db.ExecContext(ctx, `UPDATE reminders
		SET fire_time = '0' || fire_time
		WHERE length(fire_time) = 4 AND substr(fire_time, 2, 1) = ':'`)
	if err != nil {
		return fmt.Errorf("padding fire_time: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS reminders (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_id      TEXT NOT NULL,
		kind          TEXT NOT NULL CHECK(kind IN ('one_shot','recurring')),
		fire_time     TEXT NOT NULL,
		days_mask     INTEGER NOT NULL DEFAULT 0 CHECK(days_mask BETWEEN 0 AND 127),
		delay_minutes INTEGER,
		payload       TEXT NOT NULL DEFAULT '',
		source_text   TEXT NOT NULL DEFAULT '',
		is_active     INTEGER NOT NULL DEFAULT 1,
		created_at    TEXT NOT NULL,
		CHECK(kind = 'recurring' OR days_mask = 0),
		CHECK(kind = 'one_shot' OR days_mask > 0)
	)`,
	`ALTER TABLE reminders ADD COLUMN last_fired_slot TEXT`,
	`CREATE INDEX IF NOT EXISTS idx_reminders_due ON reminders(is_active, fire_time)`,
	`CREATE INDEX IF NOT EXISTS idx_reminders_owner ON reminders(owner_id, is_active)`,
	`CREATE TABLE IF NOT EXISTS deliveries (
		id           TEXT PRIMARY KEY,
		reminder_id  INTEGER NOT NULL,
		owner_id     TEXT NOT NULL,
		slot         TEXT NOT NULL,
		status       TEXT NOT NULL CHECK(status IN ('sent','failed','skipped')),
		error        TEXT NOT NULL DEFAULT '',
		attempted_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_deliveries_reminder ON deliveries(reminder_id, attempted_at)`,
}
