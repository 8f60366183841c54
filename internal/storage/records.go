package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"carlog/internal/core"
)

const recordColumns = `id, car_id, date, mileage_km, event_type, title,
	total_cost_cents, currency, created_at`

func scanRecord(s rowScanner) (core.MaintenanceRecord, error) {
	var (
		rec     core.MaintenanceRecord
		date    string
		et      string
		cents   int64
		created string
	)
	if err := s.Scan(&rec.ID, &rec.CarID, &date, &rec.MileageKm, &et, &rec.Title,
		&cents, &rec.Currency, &created); err != nil {
		return rec, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return rec, fmt.Errorf("record %s: %w", rec.ID, err)
	}
	rec.Date = d
	rec.EventType = core.EventType(et)
	rec.TotalCost = core.Money{Cents: cents}
	rec.CreatedAt = parseTime(created)
	return rec, nil
}

// CreateRecord stores a record and its items in one transaction. Missing
// IDs are generated.
func (r *SQLiteRepository) CreateRecord(ctx context.Context, rec core.MaintenanceRecord) (core.MaintenanceRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.CreatedAt = r.now()
	rec.Items = itemsOrEmpty(withItemIDs(rec.Items))

	err := r.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM cars WHERE id = ?`, rec.CarID).Scan(&exists); err != nil {
			return fmt.Errorf("check car %s: %w", rec.CarID, err)
		}
		if exists == 0 {
			return fmt.Errorf("car %s: %w", rec.CarID, ErrNotFound)
		}

		_, err := tx.ExecContext(ctx, `INSERT INTO maintenance_records (`+recordColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.CarID, rec.Date.String(), rec.MileageKm, string(rec.EventType), rec.Title,
			rec.TotalCost.Cents, rec.Currency, rec.CreatedAt.Format(timeLayout))
		if err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
		return insertItems(ctx, tx, rec.ID, rec.Items)
	})
	if err != nil {
		return core.MaintenanceRecord{}, err
	}

	slog.InfoContext(ctx, "Record saved to SQLite",
		"record_id", rec.ID,
		"car_id", rec.CarID,
		"event_type", rec.EventType,
		"total_cents", rec.TotalCost.Cents,
		"items", len(rec.Items))
	return rec, nil
}

func (r *SQLiteRepository) GetRecord(ctx context.Context, id string) (core.MaintenanceRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM maintenance_records WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.MaintenanceRecord{}, fmt.Errorf("get record %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.MaintenanceRecord{}, fmt.Errorf("get record %s: %w", id, err)
	}

	items, err := r.itemsFor(ctx, `record_id = ?`, id)
	if err != nil {
		return core.MaintenanceRecord{}, err
	}
	rec.Items = itemsOrEmpty(items[id])
	return rec, nil
}

// ListRecordsByCar returns a car's records newest first, items attached.
// Undated records come last.
func (r *SQLiteRepository) ListRecordsByCar(ctx context.Context, carID string) ([]core.MaintenanceRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM maintenance_records
		WHERE car_id = ? ORDER BY date = '', date DESC, created_at DESC`, carID)
	if err != nil {
		return nil, fmt.Errorf("list records for car %s: %w", carID, err)
	}
	defer rows.Close()

	var records []core.MaintenanceRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	items, err := r.itemsFor(ctx, `record_id IN (SELECT id FROM maintenance_records WHERE car_id = ?)`, carID)
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].Items = itemsOrEmpty(items[records[i].ID])
	}
	return records, nil
}

// UpdateRecord replaces the record's fields. Items are replaced only when
// rec.Items is non-nil.
func (r *SQLiteRepository) UpdateRecord(ctx context.Context, rec core.MaintenanceRecord) (core.MaintenanceRecord, error) {
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE maintenance_records SET date = ?, mileage_km = ?,
			event_type = ?, title = ?, total_cost_cents = ?, currency = ?
			WHERE id = ?`,
			rec.Date.String(), rec.MileageKm, string(rec.EventType), rec.Title,
			rec.TotalCost.Cents, rec.Currency, rec.ID)
		if err != nil {
			return fmt.Errorf("update record %s: %w", rec.ID, err)
		}
		if err := expectAffected(res, "update record", rec.ID); err != nil {
			return err
		}
		if rec.Items == nil {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM record_items WHERE record_id = ?`, rec.ID); err != nil {
			return fmt.Errorf("clear items for record %s: %w", rec.ID, err)
		}
		return insertItems(ctx, tx, rec.ID, withItemIDs(rec.Items))
	})
	if err != nil {
		return core.MaintenanceRecord{}, err
	}
	return r.GetRecord(ctx, rec.ID)
}

func (r *SQLiteRepository) DeleteRecord(ctx context.Context, id string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM record_items WHERE record_id = ?`, id); err != nil {
			return fmt.Errorf("delete items for record %s: %w", id, err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM maintenance_records WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete record %s: %w", id, err)
		}
		return expectAffected(res, "delete record", id)
	})
}

func itemsOrEmpty(items []core.RecordItem) []core.RecordItem {
	if items == nil {
		return []core.RecordItem{}
	}
	return items
}

func withItemIDs(items []core.RecordItem) []core.RecordItem {
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
	}
	return items
}

func insertItems(ctx context.Context, tx *sql.Tx, recordID string, items []core.RecordItem) error {
	for i, it := range items {
		_, err := tx.ExecContext(ctx, `INSERT INTO record_items (id, record_id, position, name, cost_cents)
			VALUES (?, ?, ?, ?, ?)`, it.ID, recordID, i, it.Name, it.Cost.Cents)
		if err != nil {
			return fmt.Errorf("insert item %d for record %s: %w", i, recordID, err)
		}
	}
	return nil
}

// itemsFor loads items matching where, grouped by record ID in position order.
func (r *SQLiteRepository) itemsFor(ctx context.Context, where string, arg any) (map[string][]core.RecordItem, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT record_id, id, name, cost_cents FROM record_items
		WHERE `+where+` ORDER BY record_id, position`, arg)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]core.RecordItem)
	for rows.Next() {
		var (
			recordID string
			it       core.RecordItem
			cents    int64
		)
		if err := rows.Scan(&recordID, &it.ID, &it.Name, &cents); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		it.Cost = core.Money{Cents: cents}
		out[recordID] = append(out[recordID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return out, nil
}
