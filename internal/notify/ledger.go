package notify

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
)

// LedgerStore is the slice of the database store the ledger needs to survive
// restarts.
type LedgerStore interface {
	AddFiredEvent(ctx context.Context, eventID string) error
	ListFiredEvents(ctx context.Context) ([]string, error)
}

// Ledger is the set of alert event ids that have already fired. Once marked,
// an id stays marked for the life of the process and, via the store, across
// restarts. Membership is authoritative in memory; store writes are
// best-effort and retried by the periodic flush.
type Ledger struct {
	mu     sync.Mutex
	fired  map[EventID]struct{}
	store  LedgerStore
	logger *slog.Logger
}

// NewLedger creates an empty ledger. The store may be nil for tests.
func NewLedger(store LedgerStore, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Ledger{
		fired:  make(map[EventID]struct{}),
		store:  store,
		logger: logger.With("component", "ledger"),
	}
}

// Load restores ledger membership from the store. Called once at startup; an
// empty store is simply an empty ledger.
func (l *Ledger) Load(ctx context.Context) error {
	if l.store == nil {
		return nil
	}
	ids, err := l.store.ListFiredEvents(ctx)
	if err != nil {
		return err
	}
	restored := make([]EventID, len(ids))
	for i, id := range ids {
		restored[i] = EventID(id)
	}
	l.Restore(restored)
	l.logger.InfoContext(ctx, "Restored fired-alert ledger", "events", len(ids))
	return nil
}

// HasFired reports whether the event id has already been marked.
func (l *Ledger) HasFired(id EventID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.fired[id]
	return ok
}

// MarkFired records the event id as fired. Marking an already-marked id is
// harmless. The in-memory mark is synchronous; the store write happens before
// returning but a store failure does not unmark the event, it is logged and
// left to the next flush.
func (l *Ledger) MarkFired(ctx context.Context, id EventID) {
	l.mu.Lock()
	_, already := l.fired[id]
	l.fired[id] = struct{}{}
	l.mu.Unlock()

	if already || l.store == nil {
		return
	}
	if err := l.store.AddFiredEvent(ctx, string(id)); err != nil {
		l.logger.ErrorContext(ctx, "Failed to persist fired event, kept in memory", "event_id", id, "error", err)
	}
}

// Snapshot returns the current membership in a stable order.
func (l *Ledger) Snapshot() []EventID {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]EventID, 0, len(l.fired))
	for id := range l.fired {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Restore replaces ledger membership with the given ids.
func (l *Ledger) Restore(ids []EventID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fired = make(map[EventID]struct{}, len(ids))
	for _, id := range ids {
		l.fired[id] = struct{}{}
	}
}

// Len returns the number of marked events.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.fired)
}

// Flush rewrites every in-memory mark to the store. Used by the periodic
// safety-net flush to retry writes that failed at mark time. Insertions are
// idempotent at the store level, so re-flushing already persisted ids is
// harmless.
func (l *Ledger) Flush(ctx context.Context) error {
	if l.store == nil {
		return nil
	}
	var firstErr error
	for _, id := range l.Snapshot() {
		if err := l.store.AddFiredEvent(ctx, string(id)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
