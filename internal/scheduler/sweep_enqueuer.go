package scheduler

import (
	"context"
	"time"

	"legalintake_backend/platform/logger"
)

const defaultSweepInterval = time.Hour

// SweepEnqueuer periodically enqueues the call-log dedup sweep task.
type SweepEnqueuer struct {
	client   *Client
	interval time.Duration
	lookback time.Duration
	log      *logger.Logger
}

func NewSweepEnqueuer(client *Client, interval, lookback time.Duration, log *logger.Logger) *SweepEnqueuer {
	if interval <= 0 {
		interval = defaultSweepInterval
	}

	return &SweepEnqueuer{
		client:   client,
		interval: interval,
		lookback: lookback,
		log:      log,
	}
}

func (e *SweepEnqueuer) Run(ctx context.Context) {
	if e == nil || e.client == nil {
		return
	}

	e.enqueue(ctx)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.enqueue(ctx)
		}
	}
}

func (e *SweepEnqueuer) enqueue(ctx context.Context) {
	if err := e.client.EnqueueDedupSweep(ctx, e.lookback); err != nil {
		e.log.Warn("dedup sweep enqueue failed", "error", err)
	}
}
