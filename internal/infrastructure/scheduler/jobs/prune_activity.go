// Package jobs contains implementations of scheduled jobs for StudyHub.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
)

// ══════════════════════════════════════════════════════════════════════════════
// PRUNE ACTIVITY JOB
// ══════════════════════════════════════════════════════════════════════════════

// StalePruner trims streak activity entries older than the retention
// window for every stored streak.
type StalePruner interface {
	PruneStale(ctx context.Context) (int, error)
}

// PruneActivityJob removes aged-out streak activity entries. The streak
// counters themselves are untouched: only the per-day activity log is
// bounded.
type PruneActivityJob struct {
	pruner StalePruner
	logger *slog.Logger
}

// NewPruneActivityJob creates the job.
func NewPruneActivityJob(pruner StalePruner, logger *slog.Logger) *PruneActivityJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &PruneActivityJob{pruner: pruner, logger: logger}
}

// Name returns the unique name of the job.
func (j *PruneActivityJob) Name() string {
	return "prune_activity"
}

// Description returns a human-readable description of the job.
func (j *PruneActivityJob) Description() string {
	return "Removes streak activity entries outside the retention window"
}

// Run executes the job.
func (j *PruneActivityJob) Run(ctx context.Context) error {
	pruned, err := j.pruner.PruneStale(ctx)
	if err != nil {
		return fmt.Errorf("prune activity: %w", err)
	}

	j.logger.Info("activity log pruned", "streaks_touched", pruned)
	return nil
}
