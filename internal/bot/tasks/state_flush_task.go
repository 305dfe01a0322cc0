package tasks

import (
	"context"
	"time"
)

// newStateFlushTask returns the periodic persistence safety net. Mutations
// already write through to the store as they happen; this task retries any
// writes that failed, records a checkpoint, and prunes expired ledger
// entries. A failed flush is logged by the scheduler and retried on the next
// interval; in-memory state stays authoritative throughout.
func newStateFlushTask(deps TaskDeps) ScheduledTaskFunc {
	return func(ctx context.Context) error {
		return deps.Core.Flush(ctx, time.Now().UTC())
	}
}
