package notify

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
)

// RegistryStore is the slice of the database store the registry needs to
// survive restarts.
type RegistryStore interface {
	AddSubscriber(ctx context.Context, chatID int64) error
	RemoveSubscriber(ctx context.Context, chatID int64) error
	ListSubscribers(ctx context.Context) ([]int64, error)
}

// Registry is the set of destinations that receive fired alerts. Subscribe
// and unsubscribe are idempotent from the caller's perspective: repeating
// either reports the already-in-that-state outcome instead of erroring.
type Registry struct {
	mu     sync.Mutex
	subs   map[Destination]struct{}
	store  RegistryStore
	logger *slog.Logger
}

// NewRegistry creates an empty registry. The store may be nil for tests.
func NewRegistry(store RegistryStore, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Registry{
		subs:   make(map[Destination]struct{}),
		store:  store,
		logger: logger.With("component", "registry"),
	}
}

// Load restores registry membership from the store. Called once at startup.
func (r *Registry) Load(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	ids, err := r.store.ListSubscribers(ctx)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.subs = make(map[Destination]struct{}, len(ids))
	for _, id := range ids {
		r.subs[Destination(id)] = struct{}{}
	}
	r.mu.Unlock()
	r.logger.InfoContext(ctx, "Restored subscriber registry", "subscribers", len(ids))
	return nil
}

// Subscribe inserts a destination. It returns true if the destination was
// added, false if it was already subscribed.
func (r *Registry) Subscribe(ctx context.Context, dest Destination) bool {
	r.mu.Lock()
	_, already := r.subs[dest]
	r.subs[dest] = struct{}{}
	r.mu.Unlock()

	if already {
		return false
	}
	r.persistAdd(ctx, dest)
	r.logger.InfoContext(ctx, "New subscriber", "destination", dest, "total", r.Count())
	return true
}

// Unsubscribe removes a destination. It returns true if the destination was
// removed, false if it was not subscribed.
func (r *Registry) Unsubscribe(ctx context.Context, dest Destination) bool {
	r.mu.Lock()
	_, present := r.subs[dest]
	delete(r.subs, dest)
	r.mu.Unlock()

	if !present {
		return false
	}
	r.persistRemove(ctx, dest)
	r.logger.InfoContext(ctx, "Subscriber left", "destination", dest, "total", r.Count())
	return true
}

// Remove deletes a destination without caring whether it was present. Used by
// the dispatcher when a destination reports a permanent delivery failure.
func (r *Registry) Remove(ctx context.Context, dest Destination) {
	r.mu.Lock()
	delete(r.subs, dest)
	r.mu.Unlock()
	r.persistRemove(ctx, dest)
}

// Contains reports whether the destination is subscribed.
func (r *Registry) Contains(dest Destination) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.subs[dest]
	return ok
}

// All returns a snapshot of the current membership in a stable order. The
// dispatcher iterates this copy, not the live set, so pruning mid-batch never
// mutates the collection being walked.
func (r *Registry) All() []Destination {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Destination, 0, len(r.subs))
	for d := range r.subs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Count returns the number of subscribers.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// Flush rewrites the in-memory membership to the store, retrying writes that
// failed at mutation time.
func (r *Registry) Flush(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	var firstErr error
	for _, d := range r.All() {
		if err := r.store.AddSubscriber(ctx, int64(d)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Registry) persistAdd(ctx context.Context, dest Destination) {
	if r.store == nil {
		return
	}
	if err := r.store.AddSubscriber(ctx, int64(dest)); err != nil {
		r.logger.ErrorContext(ctx, "Failed to persist subscriber, kept in memory", "destination", dest, "error", err)
	}
}

func (r *Registry) persistRemove(ctx context.Context, dest Destination) {
	if r.store == nil {
		return
	}
	if err := r.store.RemoveSubscriber(ctx, int64(dest)); err != nil {
		r.logger.ErrorContext(ctx, "Failed to persist subscriber removal", "destination", dest, "error", err)
	}
}
