package tracker

import (
	"context"
	"log/slog"
	"time"

	"github.com/dexwatch/swap-tracker/pkg/retry"
)

// BatchRunner executes one poll cycle.
type BatchRunner interface {
	RunBatch(ctx context.Context) error
}

// Worker runs one BatchRunner on a fixed poll interval until stopped. Each
// worker owns its runner (and therefore its engine instances), so workers
// for different project/chain pairs share no mutable state beyond the
// read-only price table.
type Worker struct {
	ctx      context.Context
	cancel   context.CancelFunc
	runner   BatchRunner
	interval time.Duration
	logger   *slog.Logger
	done     chan struct{}
}

func NewWorker(ctx context.Context, runner BatchRunner, interval time.Duration, logger *slog.Logger) *Worker {
	ctx, cancel := context.WithCancel(ctx)
	return &Worker{
		ctx:      ctx,
		cancel:   cancel,
		runner:   runner,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

func (w *Worker) Start() {
	w.logger.Info("Starting tracker worker", "interval", w.interval)
	go w.run()
}

func (w *Worker) Stop() {
	w.cancel()
	<-w.done
	w.logger.Info("Worker stopped")
}

func (w *Worker) run() {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	const retryInterval = 2 * time.Second

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			err := retry.Exponential(w.ctx, func() error {
				return w.runner.RunBatch(w.ctx)
			}, retry.ExponentialConfig{
				InitialInterval: retryInterval,
				MaxElapsedTime:  w.interval,
				OnRetry: func(err error, next time.Duration) {
					w.logger.Debug("Retrying batch", "err", err, "next_retry_in", next)
				},
			})
			if err != nil {
				if w.ctx.Err() != nil {
					return
				}
				// Cursor was not advanced, the same range retries next tick.
				w.logger.Error("Batch abandoned", "err", err)
			}
		}
	}
}
