package core

// scheduler.go prunes old build history in the background.
//
// The job runs once at start, then every CheckInterval until its context is
// cancelled. A failing run is logged and retried on the next tick; it never
// stops the application.

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Pruner deletes history records created before a cutoff.
type Pruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// RetentionConfig controls history pruning.
type RetentionConfig struct {
	Days          int           // records older than this are deleted; 0 keeps everything
	CheckInterval time.Duration // how often to run (default: 24h)
}

const pruneBuilds = `DELETE FROM order_builds WHERE created_at < $1`

// Prune deletes builds created before the cutoff and reports how many.
func (h *History) Prune(ctx context.Context, before time.Time) (int64, error) {
	tag, err := h.db.Exec(ctx, pruneBuilds, before)
	if err != nil {
		return 0, fmt.Errorf("prune builds: %w", err)
	}
	return tag.RowsAffected(), nil
}

// StartRetentionScheduler blocks, pruning p on every tick until ctx ends.
// It returns immediately when retention is disabled.
func StartRetentionScheduler(ctx context.Context, p Pruner, cfg RetentionConfig) {
	if cfg.Days <= 0 {
		slog.Info("history retention disabled")
		return
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = 24 * time.Hour
	}

	slog.Info("history retention scheduler started", "retention_days", cfg.Days, "interval", cfg.CheckInterval)
	runPrune(ctx, p, cfg.Days, time.Now)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("history retention scheduler stopped")
			return
		case <-ticker.C:
			runPrune(ctx, p, cfg.Days, time.Now)
		}
	}
}

func runPrune(ctx context.Context, p Pruner, days int, now func() time.Time) {
	start := time.Now()
	cutoff := now().AddDate(0, 0, -days)

	n, err := p.Prune(ctx, cutoff)
	if err != nil {
		slog.Error("history prune failed", "error", err)
		return
	}
	slog.Info("pruned build history",
		"deleted", n,
		"before", cutoff.Format(time.RFC3339),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
