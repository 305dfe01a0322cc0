package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/warfbot/warfbot/internal/cycle"
)

// CheckpointStore is the slice of the database store the core uses for the
// periodic safety-net flush.
type CheckpointStore interface {
	SaveCheckpoint(ctx context.Context, at time.Time) error
	PruneFiredEvents(ctx context.Context, before time.Time) (int64, error)
}

// Core owns the ledger, the registry, and the dispatcher, and runs the
// per-tick evaluation of every tracked cycle. It is an explicitly constructed
// instance passed into the scheduler and the command handlers; there is no
// package-level state, so tests can run independent cores side by side.
type Core struct {
	table      *cycle.Table
	thresholds []int
	ledger     *Ledger
	registry   *Registry
	dispatcher *Dispatcher
	checkpoint CheckpointStore
	retention  time.Duration
	logger     *slog.Logger
}

// CoreConfig bundles the pieces a Core needs.
type CoreConfig struct {
	Table      *cycle.Table
	Thresholds []int // alert thresholds in minutes-remaining, e.g. {10, 5}
	Ledger     *Ledger
	Registry   *Registry
	Dispatcher *Dispatcher
	Checkpoint CheckpointStore // optional
	// Retention bounds ledger growth: fired events older than this are pruned
	// on flush. Zero disables pruning.
	Retention time.Duration
	Logger    *slog.Logger
}

// NewCore creates the notification core. Thresholds are evaluated in
// descending order so, within one tick, the earlier warning fires before the
// later one if both happen to match.
func NewCore(cfg CoreConfig) *Core {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	thresholds := make([]int, len(cfg.Thresholds))
	copy(thresholds, cfg.Thresholds)
	sort.Sort(sort.Reverse(sort.IntSlice(thresholds)))

	return &Core{
		table:      cfg.Table,
		thresholds: thresholds,
		ledger:     cfg.Ledger,
		registry:   cfg.Registry,
		dispatcher: cfg.Dispatcher,
		checkpoint: cfg.Checkpoint,
		retention:  cfg.Retention,
		logger:     logger.With("component", "notify_core"),
	}
}

// Registry exposes the subscriber registry for the command layer.
func (c *Core) Registry() *Registry { return c.registry }

// Ledger exposes the fired-alert ledger.
func (c *Core) Ledger() *Ledger { return c.ledger }

// Table exposes the cycle table.
func (c *Core) Table() *cycle.Table { return c.table }

// CurrentPhase computes the current cycle state for a location on demand.
func (c *Core) CurrentPhase(loc cycle.LocationID) (cycle.State, error) {
	def, err := c.table.Get(loc)
	if err != nil {
		return cycle.State{}, err
	}
	return cycle.PhaseAt(def, time.Now().UTC()), nil
}

// Announce broadcasts an operator-composed message to every subscriber,
// outside the threshold machinery. The ledger is not involved; repeated
// announcements are the operator's call.
func (c *Core) Announce(ctx context.Context, text string) DeliveryReport {
	return c.dispatcher.Dispatch(ctx, text)
}

// pendingAlert is a threshold match whose event id has been marked in the
// ledger but whose message has not been dispatched yet.
type pendingAlert struct {
	id      EventID
	message string
}

// CheckCycles runs one scheduler tick: evaluate every location and threshold
// at the given instant, decide mark-or-skip for each candidate, then dispatch
// the marked ones. All ledger marks happen before any dispatch is attempted;
// that ordering is what keeps delivery at-most-once even if a previous tick's
// dispatch work is still in flight or the process dies mid-broadcast.
func (c *Core) CheckCycles(ctx context.Context, now time.Time) []DeliveryReport {
	var pending []pendingAlert

	for _, loc := range c.table.Locations() {
		alerts, err := c.evaluateLocation(ctx, loc, now)
		if err != nil {
			// One broken location must not silence the others.
			c.logger.ErrorContext(ctx, "Cycle evaluation failed", "location", loc, "error", err)
			continue
		}
		pending = append(pending, alerts...)
	}

	reports := make([]DeliveryReport, 0, len(pending))
	for _, alert := range pending {
		c.logger.InfoContext(ctx, "Firing alert", "event_id", alert.id)
		reports = append(reports, c.dispatcher.Dispatch(ctx, alert.message))
	}
	return reports
}

// evaluateLocation computes the cycle state for one location and returns the
// alerts whose thresholds match and which have not fired this iteration.
// Matching alerts are marked in the ledger here, synchronously.
func (c *Core) evaluateLocation(ctx context.Context, loc cycle.LocationID, now time.Time) ([]pendingAlert, error) {
	def, err := c.table.Get(loc)
	if err != nil {
		return nil, err
	}

	state := cycle.PhaseAt(def, now)
	iteration := cycle.IterationAt(def, now)
	remainingMin := int(state.Remaining / time.Minute)

	var alerts []pendingAlert
	for _, threshold := range c.thresholds {
		if remainingMin != threshold {
			continue
		}
		id := NewEventID(loc, threshold, iteration)
		if c.ledger.HasFired(id) {
			continue
		}
		c.ledger.MarkFired(ctx, id)
		alerts = append(alerts, pendingAlert{
			id:      id,
			message: alertMessage(loc, state, threshold),
		})
	}
	return alerts, nil
}

// alertMessage composes the subscriber-facing text for a threshold alert.
func alertMessage(loc cycle.LocationID, state cycle.State, thresholdMin int) string {
	return fmt.Sprintf("%s: %d minutes until %s", locationTitle(loc), thresholdMin, state.Next)
}

// locationTitle maps a location id to its display name.
func locationTitle(loc cycle.LocationID) string {
	switch loc {
	case cycle.Cetus:
		return "Plains of Eidolon"
	case cycle.Vallis:
		return "Orb Vallis"
	case cycle.Cambion:
		return "Cambion Drift"
	case cycle.Earth:
		return "Earth"
	default:
		return string(loc)
	}
}

// Flush is the periodic safety net: it rewrites both sets to the store,
// records a checkpoint, and prunes ledger entries past retention. Errors are
// returned for logging but leave in-memory state untouched; the next flush
// retries.
func (c *Core) Flush(ctx context.Context, now time.Time) error {
	if err := c.registry.Flush(ctx); err != nil {
		return fmt.Errorf("failed to flush subscriber registry: %w", err)
	}
	if err := c.ledger.Flush(ctx); err != nil {
		return fmt.Errorf("failed to flush fired-alert ledger: %w", err)
	}
	if c.checkpoint == nil {
		return nil
	}
	if c.retention > 0 {
		if _, err := c.checkpoint.PruneFiredEvents(ctx, now.Add(-c.retention)); err != nil {
			return fmt.Errorf("failed to prune fired events: %w", err)
		}
	}
	if err := c.checkpoint.SaveCheckpoint(ctx, now); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}
