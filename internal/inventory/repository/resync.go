package repository

import (
	"context"
	"log/slog"
	"time"
)

// ResyncWorker periodically pushes fallback records back to the durable store.
type ResyncWorker struct {
	fallback *Fallback
	logger   *slog.Logger
	interval time.Duration
	timeout  time.Duration
}

func NewResyncWorker(fallback *Fallback, logger *slog.Logger, interval, timeout time.Duration) *ResyncWorker {
	return &ResyncWorker{
		fallback: fallback,
		logger:   logger,
		interval: interval,
		timeout:  timeout,
	}
}

// Start blocks until ctx is cancelled.
func (w *ResyncWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("state resync worker started", "interval", w.interval.String())

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("state resync worker stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *ResyncWorker) runOnce(ctx context.Context) {
	if w.fallback.Pending() == 0 {
		return
	}

	runCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	synced, err := w.fallback.Resync(runCtx)
	if err != nil {
		w.logger.Warn("state resync incomplete",
			"synced", synced,
			"pending", w.fallback.Pending(),
			"error", err,
		)
		return
	}
	w.logger.Info("state resync completed", "synced", synced)
}
