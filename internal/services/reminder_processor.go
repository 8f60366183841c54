package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"carlog/internal/amqp"
	"carlog/internal/core"
)

// ReminderSource is everything the reminder processor reads and writes.
type ReminderSource interface {
	CarStore
	RecordStore
	ReminderStore
}

type ReminderProcessorConfig struct {
	// Interval between full sweeps (default: 1h).
	Interval time.Duration

	// Concurrency caps how many cars are processed at once (default: 4).
	Concurrency int

	// Checkers classify each projection (default: DefaultStatusCheckers).
	Checkers []StatusChecker
}

func DefaultReminderProcessorConfig() ReminderProcessorConfig {
	return ReminderProcessorConfig{
		Interval:    time.Hour,
		Concurrency: 4,
		Checkers:    DefaultStatusCheckers(),
	}
}

// ReminderProcessor keeps the stored next-service reminders current.
type ReminderProcessor struct {
	store  ReminderSource
	config ReminderProcessorConfig
	now    func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewReminderProcessor(store ReminderSource, config ReminderProcessorConfig) *ReminderProcessor {
	def := DefaultReminderProcessorConfig()
	if config.Interval <= 0 {
		config.Interval = def.Interval
	}
	if config.Concurrency <= 0 {
		config.Concurrency = def.Concurrency
	}
	if len(config.Checkers) == 0 {
		config.Checkers = def.Checkers
	}
	return &ReminderProcessor{
		store:  store,
		config: config,
		now:    time.Now,
	}
}

// ProcessCar recomputes and stores the reminder for one car. The bool is
// false when the car has no planned record, in which case any stale
// reminder is removed.
func (p *ReminderProcessor) ProcessCar(ctx context.Context, carID string, now time.Time) (core.ServiceReminder, bool, error) {
	car, err := p.store.GetCar(ctx, carID)
	if err != nil {
		return core.ServiceReminder{}, false, err
	}
	records, err := p.store.ListRecordsByCar(ctx, carID)
	if err != nil {
		return core.ServiceReminder{}, false, fmt.Errorf("load records: %w", err)
	}

	info, ok := CalcNextService(records, car, now)
	if !ok {
		if err := p.store.DeleteReminder(ctx, carID); err != nil {
			return core.ServiceReminder{}, false, err
		}
		return core.ServiceReminder{}, false, nil
	}

	rem := core.ServiceReminder{
		CarID:           carID,
		NextServiceInfo: info,
		Interval:        ResolveInterval(car),
		Status:          string(ClassifyService(info, p.config.Checkers...)),
		CheckedAt:       now.UTC(),
	}
	if err := p.store.UpsertReminder(ctx, rem); err != nil {
		return core.ServiceReminder{}, false, err
	}

	if rem.Overdue {
		slog.WarnContext(ctx, "Service overdue",
			"car_id", carID,
			"make", car.Make,
			"by_date", info.ByDate.String(),
			"by_mileage_km", info.ByMileageKm)
	}
	return rem, true, nil
}

// ProcessAll sweeps every car with bounded parallelism and returns how many
// are overdue. Per-car failures are logged and skipped.
func (p *ReminderProcessor) ProcessAll(ctx context.Context, now time.Time) (int, error) {
	cars, err := p.store.ListCars(ctx)
	if err != nil {
		return 0, fmt.Errorf("list cars: %w", err)
	}

	var overdue, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.Concurrency)

	for _, car := range cars {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rem, ok, err := p.ProcessCar(gctx, car.ID, now)
			if err != nil {
				failed.Add(1)
				slog.ErrorContext(gctx, "Failed to process reminder", "car_id", car.ID, "error", err)
				return nil
			}
			if ok && rem.Overdue {
				overdue.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(overdue.Load()), err
	}

	slog.InfoContext(ctx, "Reminder sweep complete",
		"cars", len(cars),
		"overdue", overdue.Load(),
		"failed", failed.Load())
	return int(overdue.Load()), nil
}

// HandleRecordEvent refreshes the reminder of the car named in the event.
// Events for cars that no longer exist are dropped.
func (p *ReminderProcessor) HandleRecordEvent(ctx context.Context, event *amqp.RecordEvent) error {
	_, _, err := p.ProcessCar(ctx, event.CarID, p.now())
	if errors.Is(err, core.ErrNotFound) {
		slog.InfoContext(ctx, "Dropping record event for missing car", "car_id", event.CarID)
		return nil
	}
	return err
}

// Start begins the periodic sweep. Returns an error if already running.
func (p *ReminderProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("reminder processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Reminder processor started",
		"interval", p.config.Interval,
		"concurrency", p.config.Concurrency)
	return nil
}

// Stop signals the loop and waits for the current sweep to finish.
func (p *ReminderProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.running = false
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Reminder processor stopped gracefully")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Reminder processor stop timed out")
		return ctx.Err()
	}
}

func (p *ReminderProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *ReminderProcessor) runLoop(ctx context.Context) {
	p.mu.Lock()
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()
	defer close(doneCh)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	p.sweep(ctx)

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.sweep(ctx)
		}
	}
}

func (p *ReminderProcessor) sweep(ctx context.Context) {
	if _, err := p.ProcessAll(ctx, p.now()); err != nil && ctx.Err() == nil {
		slog.ErrorContext(ctx, "Reminder sweep failed", "error", err)
	}
}
