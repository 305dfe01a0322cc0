package notify_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/warfbot/warfbot/internal/cycle"
	"github.com/warfbot/warfbot/internal/notify"
)

var testReference = time.Date(2019, time.June, 19, 13, 20, 0, 0, time.UTC)

func testTable(t *testing.T) *cycle.Table {
	t.Helper()
	table, err := cycle.NewTable(cycle.Definition{
		ID:        cycle.Cetus,
		Reference: testReference,
		PhaseA:    cycle.Phase{Name: "day", Duration: 100 * time.Minute},
		PhaseB:    cycle.Phase{Name: "night", Duration: 50 * time.Minute},
	})
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}
	return table
}

// testCore wires a core around an in-memory registry with one subscriber and
// a sender that collects delivered messages.
func testCore(t *testing.T, thresholds []int) (*notify.Core, func() []string) {
	t.Helper()

	ctx := context.Background()
	reg := notify.NewRegistry(nil, nil)
	reg.Subscribe(ctx, 1)

	var mu sync.Mutex
	var delivered []string
	sender := func(_ context.Context, _ notify.Destination, text string) error {
		mu.Lock()
		delivered = append(delivered, text)
		mu.Unlock()
		return nil
	}

	core := notify.NewCore(notify.CoreConfig{
		Table:      testTable(t),
		Thresholds: thresholds,
		Ledger:     notify.NewLedger(nil, nil),
		Registry:   reg,
		Dispatcher: notify.NewDispatcher(sender, reg, 0, nil),
	})

	messages := func() []string {
		mu.Lock()
		defer mu.Unlock()
		out := make([]string, len(delivered))
		copy(out, delivered)
		return out
	}
	return core, messages
}

func TestCheckCyclesThresholdMatch(t *testing.T) {
	t.Parallel()

	core, messages := testCore(t, []int{10, 5})

	// 90 minutes into a 100-minute day: exactly 10 minutes remaining.
	now := testReference.Add(90 * time.Minute)
	reports := core.CheckCycles(context.Background(), now)

	if len(reports) != 1 {
		t.Fatalf("got %d dispatches, want 1", len(reports))
	}
	got := messages()
	if len(got) != 1 || got[0] != "Plains of Eidolon: 10 minutes until night" {
		t.Errorf("delivered = %v, want the 10-minute night warning", got)
	}
}

func TestCheckCyclesAtMostOncePerIteration(t *testing.T) {
	t.Parallel()

	core, messages := testCore(t, []int{10})
	ctx := context.Background()

	// The scheduler can tick more than once inside the matching minute, and
	// clock jitter can land several ticks on the same threshold. Remaining
	// time at these instants is 10m50s, 10m30s, and 10m0s, all of which
	// truncate to the 10-minute threshold.
	for _, offset := range []time.Duration{
		89*time.Minute + 10*time.Second,
		89*time.Minute + 30*time.Second,
		90 * time.Minute,
	} {
		core.CheckCycles(ctx, testReference.Add(offset))
	}
	if got := messages(); len(got) != 1 {
		t.Fatalf("delivered %d messages within one iteration, want exactly 1: %v", len(got), got)
	}

	// The same threshold in the next iteration is a fresh event.
	core.CheckCycles(ctx, testReference.Add(150*time.Minute+90*time.Minute))
	if got := messages(); len(got) != 2 {
		t.Fatalf("delivered %d messages across two iterations, want 2: %v", len(got), got)
	}
}

func TestCheckCyclesNoMatchOutsideThresholds(t *testing.T) {
	t.Parallel()

	core, messages := testCore(t, []int{10, 5})
	ctx := context.Background()

	for _, offset := range []time.Duration{
		0,                                // 100 minutes remaining
		50 * time.Minute,                 // 50 remaining
		89 * time.Minute,                 // 11 remaining
		90*time.Minute + 61*time.Second,  // 9 and change
		100 * time.Minute,                // night just started, 50 remaining
	} {
		core.CheckCycles(ctx, testReference.Add(offset))
	}
	if got := messages(); len(got) != 0 {
		t.Errorf("delivered = %v, want none", got)
	}
}

func TestCheckCyclesBothThresholdsAcrossIteration(t *testing.T) {
	t.Parallel()

	core, messages := testCore(t, []int{10, 5})
	ctx := context.Background()

	core.CheckCycles(ctx, testReference.Add(90*time.Minute)) // 10 remaining
	core.CheckCycles(ctx, testReference.Add(95*time.Minute)) // 5 remaining

	got := messages()
	if len(got) != 2 {
		t.Fatalf("delivered %d messages, want 2: %v", len(got), got)
	}
	if got[0] != "Plains of Eidolon: 10 minutes until night" || got[1] != "Plains of Eidolon: 5 minutes until night" {
		t.Errorf("delivered = %v, want 10-minute then 5-minute warnings", got)
	}
}

func TestCoreFlushCheckpointsAndPrunes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newFakeStore()
	reg := notify.NewRegistry(store, nil)
	reg.Subscribe(ctx, 9)
	ledger := notify.NewLedger(store, nil)

	retention := 7 * 24 * time.Hour
	core := notify.NewCore(notify.CoreConfig{
		Table:      testTable(t),
		Thresholds: []int{10},
		Ledger:     ledger,
		Registry:   reg,
		Dispatcher: notify.NewDispatcher(func(context.Context, notify.Destination, string) error { return nil }, reg, 0, nil),
		Checkpoint: store,
		Retention:  retention,
	})

	now := time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC)
	if err := core.Flush(ctx, now); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.checkpoints) != 1 || !store.checkpoints[0].Equal(now) {
		t.Errorf("checkpoints = %v, want [%v]", store.checkpoints, now)
	}
	if len(store.pruned) != 1 || !store.pruned[0].Equal(now.Add(-retention)) {
		t.Errorf("prune cutoffs = %v, want [%v]", store.pruned, now.Add(-retention))
	}
}

func TestCurrentPhaseUnknownLocation(t *testing.T) {
	t.Parallel()

	core, _ := testCore(t, []int{10})
	if _, err := core.CurrentPhase("pluto"); err == nil {
		t.Error("CurrentPhase(pluto) succeeded, want error")
	}
}
