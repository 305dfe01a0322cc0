package notify_test

import (
	"context"
	"errors"
	"sync"
	"time"
)

// fakeStore implements the ledger, registry, and checkpoint store interfaces
// in memory, with optional failure injection.
type fakeStore struct {
	mu          sync.Mutex
	events      map[string]struct{}
	subscribers map[int64]struct{}
	checkpoints []time.Time
	pruned      []time.Time
	failWrites  bool
}

var errStoreDown = errors.New("store unavailable")

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:      make(map[string]struct{}),
		subscribers: make(map[int64]struct{}),
	}
}

func (s *fakeStore) AddFiredEvent(_ context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return errStoreDown
	}
	s.events[eventID] = struct{}{}
	return nil
}

func (s *fakeStore) ListFiredEvents(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for id := range s.events {
		out = append(out, id)
	}
	return out, nil
}

func (s *fakeStore) AddSubscriber(_ context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return errStoreDown
	}
	s.subscribers[chatID] = struct{}{}
	return nil
}

func (s *fakeStore) RemoveSubscriber(_ context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return errStoreDown
	}
	delete(s.subscribers, chatID)
	return nil
}

func (s *fakeStore) ListSubscribers(context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, 0, len(s.subscribers))
	for id := range s.subscribers {
		out = append(out, id)
	}
	return out, nil
}

func (s *fakeStore) SaveCheckpoint(_ context.Context, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return errStoreDown
	}
	s.checkpoints = append(s.checkpoints, at)
	return nil
}

func (s *fakeStore) PruneFiredEvents(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return 0, errStoreDown
	}
	s.pruned = append(s.pruned, before)
	return 0, nil
}

func (s *fakeStore) setFailWrites(fail bool) {
	s.mu.Lock()
	s.failWrites = fail
	s.mu.Unlock()
}

func (s *fakeStore) eventCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func (s *fakeStore) hasSubscriber(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.subscribers[chatID]
	return ok
}
