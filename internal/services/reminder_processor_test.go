package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carlog/internal/amqp"
	"carlog/internal/core"
)

func TestDefaultReminderProcessorConfig(t *testing.T) {
	config := DefaultReminderProcessorConfig()
	assert.Equal(t, time.Hour, config.Interval)
	assert.Equal(t, 4, config.Concurrency)
	assert.Len(t, config.Checkers, 2)

	p := NewReminderProcessor(nil, ReminderProcessorConfig{})
	assert.Equal(t, time.Hour, p.config.Interval)
	assert.Equal(t, 4, p.config.Concurrency)
	assert.False(t, p.IsRunning())
}

func TestReminderProcessorProcessCar(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	p := NewReminderProcessor(store, DefaultReminderProcessorConfig())

	car, err := store.CreateCar(ctx, core.CarProfile{Make: "Lada"})
	require.NoError(t, err)

	_, ok, err := p.ProcessCar(ctx, car.ID, day(2024, 6, 1))
	require.NoError(t, err)
	assert.False(t, ok)

	planned, err := store.CreateRecord(ctx, core.MaintenanceRecord{
		CarID: car.ID, Date: core.NewDate(2024, 1, 15), EventType: core.Planned, MileageKm: 100000,
	})
	require.NoError(t, err)

	rem, ok, err := p.ProcessCar(ctx, car.ID, day(2024, 6, 1))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, string(StatusOK), rem.Status)
	assert.Equal(t, 15000, rem.Interval.IntervalKm)

	rem, ok, err = p.ProcessCar(ctx, car.ID, day(2025, 1, 1))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, string(StatusDueSoon), rem.Status)

	rem, _, err = p.ProcessCar(ctx, car.ID, day(2025, 2, 1))
	require.NoError(t, err)
	assert.True(t, rem.Overdue)
	assert.Equal(t, string(StatusOverdue), rem.Status)

	stored, err := store.GetReminder(ctx, car.ID)
	require.NoError(t, err)
	assert.True(t, stored.Overdue)

	// Removing the only planned record drops the reminder.
	require.NoError(t, store.DeleteRecord(ctx, planned.ID))
	_, ok, err = p.ProcessCar(ctx, car.ID, day(2025, 2, 1))
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = store.GetReminder(ctx, car.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, _, err = p.ProcessCar(ctx, "missing", day(2025, 2, 1))
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestReminderProcessorProcessAll(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	p := NewReminderProcessor(store, ReminderProcessorConfig{Concurrency: 2})

	for i, date := range []core.Date{
		core.NewDate(2023, 1, 1),
		core.NewDate(2023, 2, 1),
		core.NewDate(2024, 5, 1),
	} {
		car, err := store.CreateCar(ctx, core.CarProfile{Make: "Kia"})
		require.NoError(t, err)
		_, err = store.CreateRecord(ctx, core.MaintenanceRecord{
			CarID: car.ID, Date: date, EventType: core.Planned, MileageKm: 1000 * i,
		})
		require.NoError(t, err)
	}
	_, err := store.CreateCar(ctx, core.CarProfile{Make: "Kia"})
	require.NoError(t, err)

	overdue, err := p.ProcessAll(ctx, day(2024, 6, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, overdue)

	list, err := store.ListOverdueReminders(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestReminderProcessorHandleRecordEvent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	p := NewReminderProcessor(store, DefaultReminderProcessorConfig())
	p.now = func() time.Time { return day(2024, 6, 1) }

	car, err := store.CreateCar(ctx, core.CarProfile{Make: "Lada"})
	require.NoError(t, err)
	rec, err := store.CreateRecord(ctx, core.MaintenanceRecord{
		CarID: car.ID, Date: core.NewDate(2024, 1, 15), EventType: core.Planned, MileageKm: 100000,
	})
	require.NoError(t, err)

	require.NoError(t, p.HandleRecordEvent(ctx, amqp.NewRecordEvent(amqp.RecordCreated, rec.ID, car.ID)))
	stored, err := store.GetReminder(ctx, car.ID)
	require.NoError(t, err)
	assert.Equal(t, 115000, stored.ByMileageKm)

	assert.NoError(t, p.HandleRecordEvent(ctx, amqp.NewRecordEvent(amqp.RecordDeleted, "r", "missing-car")))
}

func TestReminderProcessorLifecycle(t *testing.T) {
	store := newTestStore(t)
	p := NewReminderProcessor(store, ReminderProcessorConfig{Interval: 50 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, p.Start(ctx))
	assert.True(t, p.IsRunning())
	assert.Error(t, p.Start(ctx))

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	require.NoError(t, p.Stop(stopCtx))
	assert.False(t, p.IsRunning())

	assert.NoError(t, p.Stop(stopCtx))
}
