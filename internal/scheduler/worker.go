package scheduler

import (
	"context"
	"fmt"
	"time"

	"legalintake_backend/platform/config"
	"legalintake_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// DedupSweeper collapses duplicate call logs recorded since a point in time.
type DedupSweeper interface {
	SweepDuplicates(ctx context.Context, since time.Time) (int, error)
}

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	sweeper  DedupSweeper
	lookback time.Duration
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, sweeper DedupSweeper, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:   server,
		mux:      mux,
		sweeper:  sweeper,
		lookback: cfg.GetDedupSweepLookback(),
		log:      log,
	}

	mux.HandleFunc(TaskCallLogDedupSweep, w.handleDedupSweep)

	return w, nil
}

func (w *Worker) handleDedupSweep(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseDedupSweepPayload(task)
	if err != nil {
		return err
	}

	lookback := w.lookback
	if payload.Lookback != "" {
		parsed, err := time.ParseDuration(payload.Lookback)
		if err != nil {
			return err
		}
		lookback = parsed
	}
	if lookback <= 0 {
		lookback = 24 * time.Hour
	}

	since := time.Now().Add(-lookback)
	removed, err := w.sweeper.SweepDuplicates(ctx, since)
	if err != nil {
		return err
	}

	if removed > 0 {
		w.log.Info("dedup sweep removed duplicate call logs", "removed", removed, "since", since)
	}
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
