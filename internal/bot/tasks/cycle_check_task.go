package tasks

import (
	"context"
	"time"
)

// newCycleCheckTask returns the notification scheduler's tick: evaluate every
// tracked cycle against the current instant and fire any threshold alerts
// that have not fired this iteration. Per-location failures are already
// isolated inside the core, so the task itself never returns an error for a
// single bad location.
func newCycleCheckTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "cycle_check")

	return func(ctx context.Context) error {
		now := time.Now().UTC()
		reports := deps.Core.CheckCycles(ctx, now)

		for _, report := range reports {
			if report.Failed > 0 || len(report.Removed) > 0 {
				log.WarnContext(ctx, "Alert dispatched with failures",
					"sent", report.Sent, "failed", report.Failed, "removed", len(report.Removed))
			}
		}
		return nil
	}
}
