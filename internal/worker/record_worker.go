package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"carlog/internal/amqp"
	"carlog/internal/log"
)

// Consumer delivers record events until ctx is done. amqp.Client
// implements it.
type Consumer interface {
	ConsumeRecordEvents(ctx context.Context, handler amqp.RecordHandler) error
}

// Handler is one named subscriber to record events.
type Handler struct {
	Name   string
	Handle amqp.RecordHandler
}

// RecordWorker fans each record event out to every handler.
type RecordWorker struct {
	handlers []Handler
	logger   *log.Logger

	processed atomic.Int64
	failed    atomic.Int64
}

func NewRecordWorker(logger *log.Logger, handlers ...Handler) *RecordWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &RecordWorker{
		handlers: handlers,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleRecordEvent runs every handler concurrently. Handlers are
// independent, so one failing does not cancel the others; the joined error
// makes the broker redeliver the event to all of them.
func (w *RecordWorker) HandleRecordEvent(ctx context.Context, event *amqp.RecordEvent) error {
	if event == nil || event.RecordID == "" {
		w.logger.WarnContext(ctx, "Dropping malformed record event")
		return nil
	}

	errs := make([]error, len(w.handlers))
	var g errgroup.Group
	for i, h := range w.handlers {
		g.Go(func() error {
			if err := h.Handle(ctx, event); err != nil {
				errs[i] = fmt.Errorf("%s: %w", h.Name, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := errors.Join(errs...); err != nil {
		w.failed.Add(1)
		w.logger.ErrorContext(ctx, "Record event handling failed",
			log.FieldRecordID, event.RecordID,
			log.FieldCarID, event.CarID,
			"action", event.Action,
			log.FieldError, err)
		return err
	}
	w.processed.Add(1)
	w.logger.DebugContext(ctx, "Record event handled",
		log.FieldRecordID, event.RecordID,
		"action", event.Action,
		"handlers", len(w.handlers))
	return nil
}

// Run consumes events until ctx is cancelled. Cancellation is not an error.
func (w *RecordWorker) Run(ctx context.Context, consumer Consumer) error {
	w.logger.InfoContext(ctx, "Record worker consuming events", "handlers", len(w.handlers))
	err := consumer.ConsumeRecordEvents(ctx, w.HandleRecordEvent)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Stats returns the number of events handled successfully and unsuccessfully.
func (w *RecordWorker) Stats() (processed, failed int64) {
	return w.processed.Load(), w.failed.Load()
}
