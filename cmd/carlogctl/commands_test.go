package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carlog/internal/core"
	"carlog/internal/services"
)

var cliNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func run(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	a := &app{now: func() time.Time { return cliNow }}
	t.Cleanup(a.close)

	root := newRootCmd(a)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--db", dbPath}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func seedCar(t *testing.T, dbPath string) string {
	t.Helper()
	a := &app{dbPath: dbPath, now: func() time.Time { return cliNow }}
	defer a.close()
	journal, err := a.open()
	require.NoError(t, err)

	ctx := context.Background()
	car, err := journal.CreateCar(ctx, core.CarProfile{Make: "Lada", Model: "Vesta", Year: "2020", Currency: "RUB"})
	require.NoError(t, err)
	_, err = journal.CreateRecord(ctx, core.MaintenanceRecord{
		CarID:     car.ID,
		Date:      core.NewDate(2024, 1, 15),
		MileageKm: 100000,
		EventType: core.Planned,
		Title:     "Oil change",
		TotalCost: core.Money{Cents: 850000},
	})
	require.NoError(t, err)
	return car.ID
}

func TestIntervalsCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "carlog.db")

	out, err := run(t, db, "intervals", "bmw")
	require.NoError(t, err)
	assert.Contains(t, out, "MAKE")
	assert.Contains(t, out, "BMW")
	assert.Contains(t, out, "24")

	out, err = run(t, db, "--json", "intervals")
	require.NoError(t, err)
	var entries []core.CatalogEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	assert.Len(t, entries, len(services.Catalog()))

	_, err = run(t, db, "intervals", "trabant")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCarsAndNextServiceCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "carlog.db")
	carID := seedCar(t, db)

	out, err := run(t, db, "cars")
	require.NoError(t, err)
	assert.Contains(t, out, carID)
	assert.Contains(t, out, "Vesta")

	out, err = run(t, db, "--json", "next-service", carID)
	require.NoError(t, err)
	var got struct {
		ByMileageKm int    `json:"byMileageKm"`
		ByDate      string `json:"byDate"`
		DaysLeft    int    `json:"daysLeft"`
		Status      string `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 115000, got.ByMileageKm)
	assert.Equal(t, "2025-01-15", got.ByDate)
	assert.Equal(t, 228, got.DaysLeft)
	assert.Equal(t, string(services.StatusOK), got.Status)

	_, err = run(t, db, "next-service", "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestStatsCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "carlog.db")
	carID := seedCar(t, db)

	out, err := run(t, db, "--json", "stats", carID, "--months", "6")
	require.NoError(t, err)
	var summary core.SpendingSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, int64(850000), summary.TotalSpent.Cents)
	assert.Len(t, summary.Monthly, 6)
	assert.Equal(t, 1, summary.RecordCount)

	_, err = run(t, db, "stats", carID, "--months", "0")
	assert.Error(t, err)
}

func TestRemindCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "carlog.db")
	seedCar(t, db)

	out, err := run(t, db, "--json", "remind")
	require.NoError(t, err)
	var overdue []core.ServiceReminder
	require.NoError(t, json.Unmarshal([]byte(out), &overdue))
	assert.Empty(t, overdue)
}

func TestExportCommandRequiresSpreadsheet(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")
	db := filepath.Join(t.TempDir(), "carlog.db")

	_, err := run(t, db, "export")
	assert.ErrorContains(t, err, "GOOGLE_SPREADSHEET_ID")
}

func TestMigrateCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "carlog.db")

	out, err := run(t, db, "migrate", "version")
	require.NoError(t, err)
	assert.Equal(t, "schema version 0\n", out)

	out, err = run(t, db, "migrate", "up")
	require.NoError(t, err)
	assert.Equal(t, "schema version 1\n", out)

	out, err = run(t, db, "migrate", "down")
	require.NoError(t, err)
	assert.Equal(t, "schema version 0\n", out)

	_, err = run(t, db, "migrate", "down", "zero")
	assert.Error(t, err)
}
