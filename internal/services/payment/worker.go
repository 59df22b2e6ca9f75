package payment

import (
	"context"
	"log/slog"
	"time"
)

// Resumer periodically calls ResumePending until its context is cancelled.
type Resumer struct {
	Service   Service
	Interval  time.Duration
	OlderThan time.Duration
	Batch     int
}

func (r *Resumer) Run(ctx context.Context) {
	if r.Interval <= 0 {
		r.Interval = 30 * time.Second
	}
	slog.Info("payment resumer started", "interval", r.Interval, "older_than", r.OlderThan)

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("payment resumer stopped")
			return
		case <-ticker.C:
			if _, err := r.Service.ResumePending(ctx, r.OlderThan, r.Batch); err != nil {
				slog.Error("resume pass failed", "error", err)
			}
		}
	}
}
