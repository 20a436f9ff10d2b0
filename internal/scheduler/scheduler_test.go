package scheduler

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"legalintake_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
)

type testConfig struct {
	redisURL string
}

func (c testConfig) GetRedisURL() string                  { return c.redisURL }
func (c testConfig) GetRedisTLSInsecure() bool            { return false }
func (c testConfig) GetAsynqQueueName() string            { return "default" }
func (c testConfig) GetAsynqConcurrency() int             { return 1 }
func (c testConfig) GetDedupSweepInterval() time.Duration { return time.Hour }
func (c testConfig) GetDedupSweepLookback() time.Duration { return 24 * time.Hour }

func TestEnqueueDedupSweep(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig{redisURL: "redis://" + mr.Addr()}

	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	defer client.Close()

	if err := client.EnqueueDedupSweep(context.Background(), 6*time.Hour); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer inspector.Close()

	tasks, err := inspector.ListPendingTasks("default")
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 pending task, got %d", len(tasks))
	}
	if tasks[0].Type != TaskCallLogDedupSweep {
		t.Fatalf("unexpected task type %q", tasks[0].Type)
	}

	var payload DedupSweepPayload
	if err := json.Unmarshal(tasks[0].Payload, &payload); err != nil {
		t.Fatalf("payload decode failed: %v", err)
	}
	if payload.Lookback != "6h0m0s" {
		t.Fatalf("unexpected lookback %q", payload.Lookback)
	}
}

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testConfig{}); err == nil {
		t.Fatal("expected error for empty redis url")
	}
}

type fakeSweeper struct {
	since  time.Time
	called int
}

func (f *fakeSweeper) SweepDuplicates(_ context.Context, since time.Time) (int, error) {
	f.called++
	f.since = since
	return 2, nil
}

func TestHandleDedupSweepUsesPayloadLookback(t *testing.T) {
	sweeper := &fakeSweeper{}
	w := &Worker{sweeper: sweeper, lookback: 24 * time.Hour, log: logger.New("development")}

	task, err := NewDedupSweepTask(DedupSweepPayload{Lookback: "2h"})
	if err != nil {
		t.Fatalf("task build failed: %v", err)
	}

	before := time.Now().Add(-2 * time.Hour)
	if err := w.handleDedupSweep(context.Background(), task); err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	if sweeper.called != 1 {
		t.Fatalf("expected one sweep, got %d", sweeper.called)
	}
	if sweeper.since.Before(before.Add(-time.Minute)) || sweeper.since.After(time.Now()) {
		t.Fatalf("sweep since out of range: %v", sweeper.since)
	}
}

func TestHandleDedupSweepFallsBackToConfiguredLookback(t *testing.T) {
	sweeper := &fakeSweeper{}
	w := &Worker{sweeper: sweeper, lookback: 48 * time.Hour, log: logger.New("development")}

	task, err := NewDedupSweepTask(DedupSweepPayload{})
	if err != nil {
		t.Fatalf("task build failed: %v", err)
	}
	if err := w.handleDedupSweep(context.Background(), task); err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	want := time.Now().Add(-48 * time.Hour)
	if sweeper.since.Before(want.Add(-time.Minute)) || sweeper.since.After(want.Add(time.Minute)) {
		t.Fatalf("expected since near %v, got %v", want, sweeper.since)
	}
}
