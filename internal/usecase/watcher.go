package usecase

import (
	"context"
	"log/slog"
	"time"

	"genairadar/internal/ports"
)

// Watcher wires the cron driver with the pipeline for watch mode.
type Watcher struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	logger   *slog.Logger
}

// NewWatcher returns a helper to start/stop recurring runs.
func NewWatcher(driver ports.Scheduler, pipeline *Pipeline, logger *slog.Logger) *Watcher {
	return &Watcher{driver: driver, pipeline: pipeline, logger: logger}
}

// Start registers the pipeline with the provided scheduler.
func (w *Watcher) Start(ctx context.Context) error {
	if w.driver == nil || w.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		if _, err := w.pipeline.Run(ctx); err != nil {
			w.logger.Error("scheduled run failed", "trigger", trigger, "error", err)
		}
	}

	return w.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (w *Watcher) Stop(ctx context.Context) error {
	if w.driver == nil {
		return nil
	}

	return w.driver.Stop(ctx)
}
