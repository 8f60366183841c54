package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"carlog/internal/core"
)

// SeedServiceIntervals fills the service_intervals table from entries. It is
// a no-op once the table holds any row, so edits made in the database stick.
func (r *SQLiteRepository) SeedServiceIntervals(ctx context.Context, entries []core.CatalogEntry) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM service_intervals`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count service intervals: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	err := r.inTx(ctx, func(tx *sql.Tx) error {
		for i, e := range entries {
			models, err := json.Marshal(e.Models)
			if err != nil {
				return fmt.Errorf("encode models for %s: %w", e.Make, err)
			}
			_, err = tx.ExecContext(ctx, `INSERT INTO service_intervals (make, models, interval_km, interval_months, position)
				VALUES (?, ?, ?, ?, ?)`, e.Make, string(models), e.IntervalKm, e.IntervalMonths, i)
			if err != nil {
				return fmt.Errorf("insert service interval %s: %w", e.Make, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Service intervals seeded", "count", len(entries))
	return len(entries), nil
}

func scanInterval(s rowScanner) (core.CatalogEntry, error) {
	var (
		e      core.CatalogEntry
		models string
	)
	if err := s.Scan(&e.Make, &models, &e.IntervalKm, &e.IntervalMonths); err != nil {
		return e, err
	}
	if err := json.Unmarshal([]byte(models), &e.Models); err != nil {
		return e, fmt.Errorf("decode models for %s: %w", e.Make, err)
	}
	return e, nil
}

// ListServiceIntervals returns the stored catalog in seed order.
func (r *SQLiteRepository) ListServiceIntervals(ctx context.Context) ([]core.CatalogEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT make, models, interval_km, interval_months
		FROM service_intervals ORDER BY position, make`)
	if err != nil {
		return nil, fmt.Errorf("list service intervals: %w", err)
	}
	defer rows.Close()

	var out []core.CatalogEntry
	for rows.Next() {
		e, err := scanInterval(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service interval: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate service intervals: %w", err)
	}
	return out, nil
}

// GetServiceIntervalByMake looks up a make ignoring case.
func (r *SQLiteRepository) GetServiceIntervalByMake(ctx context.Context, carMake string) (core.CatalogEntry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT make, models, interval_km, interval_months
		FROM service_intervals WHERE make = ? COLLATE NOCASE`, carMake)
	e, err := scanInterval(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.CatalogEntry{}, fmt.Errorf("service interval %q: %w", carMake, ErrNotFound)
	}
	if err != nil {
		return core.CatalogEntry{}, fmt.Errorf("service interval %q: %w", carMake, err)
	}
	return e, nil
}
