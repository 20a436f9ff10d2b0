// Command calllog-dedup-backfill collapses duplicate call log rows that
// accumulated before the reconciler enforced one row per call id.
package main

import (
	"context"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"legalintake_backend/internal/calllogs/repository"
	"legalintake_backend/internal/calllogs/service"
	"legalintake_backend/internal/events"
	"legalintake_backend/platform/config"
	"legalintake_backend/platform/db"
	"legalintake_backend/platform/logger"

	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting call log dedup backfill")

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	repo := repository.New(pool)
	svc := service.New(repo, cfg, events.NewInMemoryBus(log), log)

	lookback := getDurationEnv("DEDUP_BACKFILL_LOOKBACK", 90*24*time.Hour)
	workers := getPositiveIntEnv("DEDUP_BACKFILL_WORKERS", 8)
	since := time.Now().Add(-lookback)

	callIDs, err := repo.ListRecentCallIDs(ctx, since)
	if err != nil {
		log.Error("failed to list call ids", "error", err)
		panic("failed to list call ids: " + err.Error())
	}
	log.Info("scanning call ids for duplicates", "count", len(callIDs), "since", since, "workers", workers)

	var removed atomic.Int64
	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, callID := range callIDs {
		g.Go(func() error {
			n, err := svc.CollapseDuplicates(gctx, callID)
			if err != nil {
				// Per-call failures are logged and skipped so one bad row
				// cannot abort the whole backfill.
				failed.Add(1)
				log.Error("duplicate collapse failed", "call_id", callID, "error", err)
				return nil
			}
			removed.Add(int64(n))
			return nil
		})
	}
	_ = g.Wait()

	log.Info("call log dedup backfill completed",
		"call_ids", len(callIDs),
		"removed", removed.Load(),
		"failed", failed.Load(),
	)
}

func getPositiveIntEnv(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}
