package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"carlog/internal/core"
)

const reminderColumns = `car_id, by_mileage_km, by_date, days_left, km_left, overdue,
	interval_km, interval_months, is_custom, status, checked_at`

func scanReminder(s rowScanner) (core.ServiceReminder, error) {
	var (
		rem      core.ServiceReminder
		byDate   string
		daysLeft sql.NullInt64
		kmLeft   sql.NullInt64
		checked  string
	)
	if err := s.Scan(&rem.CarID, &rem.ByMileageKm, &byDate, &daysLeft, &kmLeft, &rem.Overdue,
		&rem.Interval.IntervalKm, &rem.Interval.IntervalMonths, &rem.Interval.IsCustom,
		&rem.Status, &checked); err != nil {
		return rem, err
	}
	d, err := core.ParseDate(byDate)
	if err != nil {
		return rem, fmt.Errorf("reminder %s: %w", rem.CarID, err)
	}
	rem.ByDate = d
	rem.DaysLeft = intPtr(daysLeft)
	rem.KmLeft = intPtr(kmLeft)
	rem.CheckedAt = parseTime(checked)
	return rem, nil
}

// UpsertReminder stores the latest projection for a car, replacing any
// previous one.
func (r *SQLiteRepository) UpsertReminder(ctx context.Context, rem core.ServiceReminder) error {
	if rem.CheckedAt.IsZero() {
		rem.CheckedAt = r.now()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO service_reminders (`+reminderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(car_id) DO UPDATE SET
			by_mileage_km = excluded.by_mileage_km,
			by_date = excluded.by_date,
			days_left = excluded.days_left,
			km_left = excluded.km_left,
			overdue = excluded.overdue,
			interval_km = excluded.interval_km,
			interval_months = excluded.interval_months,
			is_custom = excluded.is_custom,
			status = excluded.status,
			checked_at = excluded.checked_at`,
		rem.CarID, rem.ByMileageKm, rem.ByDate.String(), nullInt(rem.DaysLeft), nullInt(rem.KmLeft),
		rem.Overdue, rem.Interval.IntervalKm, rem.Interval.IntervalMonths, rem.Interval.IsCustom,
		rem.Status, rem.CheckedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("upsert reminder for car %s: %w", rem.CarID, err)
	}
	return nil
}

func (r *SQLiteRepository) GetReminder(ctx context.Context, carID string) (core.ServiceReminder, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reminderColumns+` FROM service_reminders WHERE car_id = ?`, carID)
	rem, err := scanReminder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ServiceReminder{}, fmt.Errorf("reminder for car %s: %w", carID, ErrNotFound)
	}
	if err != nil {
		return core.ServiceReminder{}, fmt.Errorf("reminder for car %s: %w", carID, err)
	}
	return rem, nil
}

// DeleteReminder drops the stored projection, used when a car no longer has
// any planned record. Missing rows are not an error.
func (r *SQLiteRepository) DeleteReminder(ctx context.Context, carID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM service_reminders WHERE car_id = ?`, carID); err != nil {
		return fmt.Errorf("delete reminder for car %s: %w", carID, err)
	}
	return nil
}

// ListOverdueReminders returns overdue reminders, most overdue date first.
func (r *SQLiteRepository) ListOverdueReminders(ctx context.Context) ([]core.ServiceReminder, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+reminderColumns+` FROM service_reminders
		WHERE overdue = 1 ORDER BY by_date = '', by_date, car_id`)
	if err != nil {
		return nil, fmt.Errorf("list overdue reminders: %w", err)
	}
	defer rows.Close()

	var out []core.ServiceReminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		out = append(out, rem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reminders: %w", err)
	}
	return out, nil
}
