package worldstate_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/warfbot/warfbot/internal/worldstate"
)

const sampleBody = `{
	"sortie": {
		"boss": "Kela De Thaym",
		"faction": "Grineer",
		"variants": [
			{"missionType": "Assault", "modifier": "Augmented Armor", "node": "Merrow (Sedna)"}
		]
	},
	"voidTrader": {
		"character": "Baro Ki'Teer",
		"location": "Strata Relay (Earth)",
		"active": false
	},
	"cambionCycle": {"state": "fass", "expiry": "2100-01-01T00:00:00Z"},
	"invasions": [
		{"node": "Casta (Ceres)", "attackingFaction": "Corpus", "defendingFaction": "Grineer", "completed": false, "completion": 42.5,
		 "attackerReward": {"asString": "3x Fieldron"}, "defenderReward": {"asString": "3x Detonite Injector"}},
		{"node": "Ose (Europa)", "attackingFaction": "Infested", "defendingFaction": "Corpus", "completed": true, "completion": 100,
		 "attackerReward": {"asString": ""}, "defenderReward": {"asString": "Orokin Catalyst Blueprint"}}
	]
}`

func newTestServer(t *testing.T, hits *atomic.Int64, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/pc" {
			t.Errorf("request path = %q, want /pc", r.URL.Path)
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleBody))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchDecodesSnapshot(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	srv := newTestServer(t, &hits, http.StatusOK)
	client := worldstate.NewClient(worldstate.Config{BaseURL: srv.URL, Platform: "pc"}, nil)

	snap, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if snap.Sortie == nil || snap.Sortie.Boss != "Kela De Thaym" {
		t.Errorf("sortie = %+v, want boss Kela De Thaym", snap.Sortie)
	}
	if snap.VoidTrader == nil || snap.VoidTrader.Character != "Baro Ki'Teer" {
		t.Errorf("void trader = %+v, want Baro Ki'Teer", snap.VoidTrader)
	}
	if len(snap.Invasions) != 2 {
		t.Fatalf("got %d invasions, want 2", len(snap.Invasions))
	}
	if snap.FetchedAt.IsZero() {
		t.Error("FetchedAt not set")
	}
	if snap.CambionCycle == nil || snap.CambionCycle.State != "fass" {
		t.Errorf("cambion cycle = %+v, want fass", snap.CambionCycle)
	}
}

func TestWorldCycleAsState(t *testing.T) {
	t.Parallel()

	future := time.Now().Add(30 * time.Minute)

	testCases := []struct {
		name      string
		cycle     worldstate.WorldCycle
		wantOK    bool
		wantPhase string
		wantNext  string
	}{
		{name: "active fass", cycle: worldstate.WorldCycle{State: "fass", Expiry: future}, wantOK: true, wantPhase: "fass", wantNext: "vome"},
		{name: "active vome uppercase", cycle: worldstate.WorldCycle{State: "Vome", Expiry: future}, wantOK: true, wantPhase: "vome", wantNext: "fass"},
		{name: "expired", cycle: worldstate.WorldCycle{State: "fass", Expiry: time.Now().Add(-time.Minute)}, wantOK: false},
		{name: "empty state", cycle: worldstate.WorldCycle{Expiry: future}, wantOK: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			state, ok := tc.cycle.AsState()
			if ok != tc.wantOK {
				t.Fatalf("AsState() ok = %v, want %v", ok, tc.wantOK)
			}
			if !ok {
				return
			}
			if state.Phase != tc.wantPhase || state.Next != tc.wantNext {
				t.Errorf("AsState() = %s->%s, want %s->%s", state.Phase, state.Next, tc.wantPhase, tc.wantNext)
			}
			if state.Remaining <= 0 {
				t.Errorf("Remaining = %v, want positive", state.Remaining)
			}
		})
	}
}

func TestFetchUsesCacheWithinTTL(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	srv := newTestServer(t, &hits, http.StatusOK)
	client := worldstate.NewClient(worldstate.Config{BaseURL: srv.URL, Platform: "pc", CacheTTL: time.Hour}, nil)

	ctx := context.Background()
	for range 3 {
		if _, err := client.Fetch(ctx); err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("upstream hit %d times within TTL, want 1", got)
	}
}

func TestFetchServesLastKnownGoodOnFailure(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	fail := &atomic.Bool{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(sampleBody))
	}))
	t.Cleanup(srv.Close)

	// Nanosecond TTL forces a refresh attempt on every call.
	client := worldstate.NewClient(worldstate.Config{BaseURL: srv.URL, Platform: "pc", CacheTTL: time.Nanosecond}, nil)
	ctx := context.Background()

	first, err := client.Fetch(ctx)
	if err != nil {
		t.Fatalf("initial Fetch() error = %v", err)
	}

	fail.Store(true)
	time.Sleep(time.Millisecond)
	stale, err := client.Fetch(ctx)
	if err != nil {
		t.Fatalf("Fetch() during outage error = %v, want stale snapshot", err)
	}
	if !stale.FetchedAt.Equal(first.FetchedAt) {
		t.Error("outage fetch did not return the cached snapshot")
	}
}

func TestFetchFailsWithNoCache(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	srv := newTestServer(t, &hits, http.StatusInternalServerError)
	client := worldstate.NewClient(worldstate.Config{BaseURL: srv.URL, Platform: "pc"}, nil)

	_, err := client.Fetch(context.Background())
	if !errors.Is(err, worldstate.ErrUnavailable) {
		t.Errorf("Fetch() error = %v, want ErrUnavailable", err)
	}
}

func TestActiveInvasions(t *testing.T) {
	t.Parallel()

	snap := &worldstate.Snapshot{Invasions: []worldstate.Invasion{
		{Node: "a", Completed: false},
		{Node: "b", Completed: true},
		{Node: "c", Completed: false},
		{Node: "d", Completed: false},
	}}

	active := snap.ActiveInvasions(0)
	if len(active) != 3 {
		t.Fatalf("ActiveInvasions(0) = %d entries, want 3", len(active))
	}

	capped := snap.ActiveInvasions(2)
	if len(capped) != 2 || capped[0].Node != "a" || capped[1].Node != "c" {
		t.Errorf("ActiveInvasions(2) = %+v, want nodes a and c", capped)
	}
}
