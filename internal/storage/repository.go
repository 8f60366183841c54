package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"carlog/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = core.ErrNotFound

const timeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// inTx runs fn in a transaction, rolling back on error.
func (r *SQLiteRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

const carColumns = `id, make, model, year, vin, photo_uri, currency,
	custom_interval_km, custom_interval_months, created_at`

func scanCar(s rowScanner) (core.CarProfile, error) {
	var (
		c         core.CarProfile
		photo     sql.NullString
		customKm  sql.NullInt64
		customMon sql.NullInt64
		created   string
	)
	if err := s.Scan(&c.ID, &c.Make, &c.Model, &c.Year, &c.VIN, &photo, &c.Currency,
		&customKm, &customMon, &created); err != nil {
		return c, err
	}
	if photo.Valid {
		c.PhotoURI = &photo.String
	}
	c.CustomIntervalKm = intPtr(customKm)
	c.CustomIntervalMonths = intPtr(customMon)
	c.CreatedAt = parseTime(created)
	return c, nil
}

// CreateCar stores a new car and returns it with its generated ID.
func (r *SQLiteRepository) CreateCar(ctx context.Context, c core.CarProfile) (core.CarProfile, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = r.now()

	_, err := r.db.ExecContext(ctx, `INSERT INTO cars (`+carColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Make, c.Model, c.Year, c.VIN, nullString(c.PhotoURI), c.Currency,
		nullInt(c.CustomIntervalKm), nullInt(c.CustomIntervalMonths), c.CreatedAt.Format(timeLayout))
	if err != nil {
		return core.CarProfile{}, fmt.Errorf("insert car: %w", err)
	}

	slog.InfoContext(ctx, "Car saved to SQLite", "car_id", c.ID, "make", c.Make, "model", c.Model)
	return c, nil
}

func (r *SQLiteRepository) GetCar(ctx context.Context, id string) (core.CarProfile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+carColumns+` FROM cars WHERE id = ?`, id)
	c, err := scanCar(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.CarProfile{}, fmt.Errorf("get car %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.CarProfile{}, fmt.Errorf("get car %s: %w", id, err)
	}
	return c, nil
}

// ListCars returns all cars, oldest first.
func (r *SQLiteRepository) ListCars(ctx context.Context) ([]core.CarProfile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+carColumns+` FROM cars ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list cars: %w", err)
	}
	defer rows.Close()

	var cars []core.CarProfile
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, fmt.Errorf("scan car: %w", err)
		}
		cars = append(cars, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cars: %w", err)
	}
	return cars, nil
}

// UpdateCar replaces every mutable field of an existing car.
func (r *SQLiteRepository) UpdateCar(ctx context.Context, c core.CarProfile) (core.CarProfile, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE cars SET make = ?, model = ?, year = ?, vin = ?,
		photo_uri = ?, currency = ?, custom_interval_km = ?, custom_interval_months = ?
		WHERE id = ?`,
		c.Make, c.Model, c.Year, c.VIN, nullString(c.PhotoURI), c.Currency,
		nullInt(c.CustomIntervalKm), nullInt(c.CustomIntervalMonths), c.ID)
	if err != nil {
		return core.CarProfile{}, fmt.Errorf("update car %s: %w", c.ID, err)
	}
	if err := expectAffected(res, "update car", c.ID); err != nil {
		return core.CarProfile{}, err
	}
	return r.GetCar(ctx, c.ID)
}

// DeleteCar removes a car together with its records, items and reminder.
func (r *SQLiteRepository) DeleteCar(ctx context.Context, id string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		stmts := []string{
			`DELETE FROM record_items WHERE record_id IN (SELECT id FROM maintenance_records WHERE car_id = ?)`,
			`DELETE FROM maintenance_records WHERE car_id = ?`,
			`DELETE FROM service_reminders WHERE car_id = ?`,
		}
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return fmt.Errorf("delete car %s dependents: %w", id, err)
			}
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM cars WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete car %s: %w", id, err)
		}
		return expectAffected(res, "delete car", id)
	})
}

func expectAffected(res sql.Result, op, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", op, id, ErrNotFound)
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
