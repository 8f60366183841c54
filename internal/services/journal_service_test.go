package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carlog/internal/amqp"
	"carlog/internal/core"
	"carlog/internal/storage"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []*amqp.RecordEvent
	err    error
}

func (f *fakePublisher) PublishRecordEvent(_ context.Context, e *amqp.RecordEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return f.err
}

func (f *fakePublisher) actions() []amqp.RecordAction {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]amqp.RecordAction, len(f.events))
	for i, e := range f.events {
		out[i] = e.Action
	}
	return out
}

func newTestStore(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "carlog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestJournalServiceCars(t *testing.T) {
	ctx := context.Background()
	svc := NewJournalService(newTestStore(t), nil)

	_, err := svc.CreateCar(ctx, core.CarProfile{Make: "   "})
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))

	car, err := svc.CreateCar(ctx, core.CarProfile{Make: "  Toyota ", Model: "Camry"})
	require.NoError(t, err)
	assert.Equal(t, "Toyota", car.Make)

	interval, err := svc.ResolvedInterval(ctx, car.ID)
	require.NoError(t, err)
	assert.Equal(t, core.ServiceInterval{IntervalKm: 10000, IntervalMonths: 12}, interval)

	car.CustomIntervalKm = intPtr(-1)
	_, err = svc.UpdateCar(ctx, car)
	assert.ErrorIs(t, err, core.ErrInvalidInterval)

	car.CustomIntervalKm, car.CustomIntervalMonths = intPtr(7000), intPtr(6)
	_, err = svc.UpdateCar(ctx, car)
	require.NoError(t, err)
	interval, err = svc.ResolvedInterval(ctx, car.ID)
	require.NoError(t, err)
	assert.True(t, interval.IsCustom)
	assert.Equal(t, 7000, interval.IntervalKm)

	cars, err := svc.ListCars(ctx)
	require.NoError(t, err)
	assert.Len(t, cars, 1)

	require.NoError(t, svc.DeleteCar(ctx, car.ID))
	_, err = svc.GetCar(ctx, car.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestJournalServiceRecords(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc := NewJournalService(newTestStore(t), pub)

	car, err := svc.CreateCar(ctx, core.CarProfile{Make: "Lada", Model: "Vesta"})
	require.NoError(t, err)

	_, err = svc.CreateRecord(ctx, core.MaintenanceRecord{CarID: car.ID, EventType: core.Planned})
	assert.ErrorIs(t, err, core.ErrMissingDate)

	saved, err := svc.CreateRecord(ctx, core.MaintenanceRecord{
		CarID:     car.ID,
		Date:      core.NewDate(2024, 1, 15),
		EventType: core.Planned,
		Title:     " Oil change ",
		MileageKm: 100000,
		Items: []core.RecordItem{
			{Name: "Oil", Cost: core.Money{Cents: 250000}},
			{Name: "Filter", Cost: core.Money{Cents: 50000}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Oil change", saved.Title)
	assert.Equal(t, int64(300000), saved.TotalCost.Cents)

	_, err = svc.CreateRecord(ctx, core.MaintenanceRecord{CarID: "missing", Date: core.NewDate(2024, 1, 1), EventType: core.Refueling})
	assert.ErrorIs(t, err, core.ErrNotFound)

	saved.CarID = "someone-else"
	saved.Title = "Oil and filter"
	updated, err := svc.UpdateRecord(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, car.ID, updated.CarID)
	assert.Equal(t, "Oil and filter", updated.Title)

	records, err := svc.ListRecords(ctx, car.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)

	_, err = svc.ListRecords(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)

	carID, err := svc.DeleteRecord(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, car.ID, carID)

	_, err = svc.DeleteRecord(ctx, saved.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	assert.Equal(t, []amqp.RecordAction{amqp.RecordCreated, amqp.RecordUpdated, amqp.RecordDeleted}, pub.actions())
}

func TestJournalServicePublishFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewJournalService(newTestStore(t), pub)

	car, err := svc.CreateCar(ctx, core.CarProfile{Make: "Kia"})
	require.NoError(t, err)
	_, err = svc.CreateRecord(ctx, core.MaintenanceRecord{CarID: car.ID, Date: core.NewDate(2024, 3, 1), EventType: core.Refueling})
	require.NoError(t, err)
	assert.Len(t, pub.actions(), 1)
}

func TestJournalServiceAnalytics(t *testing.T) {
	ctx := context.Background()
	svc := NewJournalService(newTestStore(t), nil)

	car, err := svc.CreateCar(ctx, core.CarProfile{Make: "Lada"})
	require.NoError(t, err)

	_, ok, err := svc.NextService(ctx, car.ID, day(2024, 6, 1))
	require.NoError(t, err)
	assert.False(t, ok)

	for _, r := range []core.MaintenanceRecord{
		{Date: core.NewDate(2024, 1, 15), EventType: core.Planned, MileageKm: 100000, TotalCost: core.Money{Cents: 350000}},
		{Date: core.NewDate(2024, 5, 1), EventType: core.Refueling, MileageKm: 110000, TotalCost: core.Money{Cents: 400000}},
		{EventType: core.Future, Title: "Tyres", TotalCost: core.Money{Cents: 2000000}},
	} {
		r.CarID = car.ID
		_, err := svc.CreateRecord(ctx, r)
		require.NoError(t, err)
	}

	info, ok, err := svc.NextService(ctx, car.ID, day(2024, 6, 1))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 115000, info.ByMileageKm)
	assert.Equal(t, 5000, *info.KmLeft)
	assert.Equal(t, 228, *info.DaysLeft)

	summary, err := svc.Stats(ctx, car.ID, 0, day(2024, 6, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.RecordCount)
	assert.Equal(t, int64(750000), summary.TotalSpent.Cents)
	assert.Len(t, summary.Monthly, DefaultStatsMonths)

	_, _, err = svc.NextService(ctx, "missing", day(2024, 6, 1))
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = svc.Stats(ctx, "missing", 6, day(2024, 6, 1))
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestJournalServiceIntervals(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewJournalService(store, nil)

	entries, err := svc.ServiceIntervals(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(Catalog()), len(entries))

	e, err := svc.ServiceIntervalForMake(ctx, "bmw")
	require.NoError(t, err)
	assert.Equal(t, "BMW", e.Make)

	_, err = svc.ServiceIntervalForMake(ctx, "Zaporozhets")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = store.SeedServiceIntervals(ctx, []core.CatalogEntry{
		{Make: "Zaporozhets", Models: []string{"968"}, IntervalKm: 5000, IntervalMonths: 6},
	})
	require.NoError(t, err)

	entries, err = svc.ServiceIntervals(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e, err = svc.ServiceIntervalForMake(ctx, "zaporozhets")
	require.NoError(t, err)
	assert.Equal(t, 5000, e.IntervalKm)
}
