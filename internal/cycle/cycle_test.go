package cycle_test

import (
	"testing"
	"time"

	"github.com/warfbot/warfbot/internal/cycle"
)

// testDefinition is a cycle with round numbers: 100 minutes of day followed
// by 50 minutes of night, anchored at a fixed instant.
func testDefinition() cycle.Definition {
	return cycle.Definition{
		ID:        cycle.Cetus,
		Reference: time.Date(2019, time.June, 19, 13, 20, 0, 0, time.UTC),
		PhaseA:    cycle.Phase{Name: "day", Duration: 100 * time.Minute},
		PhaseB:    cycle.Phase{Name: "night", Duration: 50 * time.Minute},
	}
}

func TestPhaseAt(t *testing.T) {
	t.Parallel()

	def := testDefinition()
	ref := def.Reference

	testCases := []struct {
		name          string
		now           time.Time
		wantPhase     string
		wantNext      string
		wantRemaining time.Duration
	}{
		{
			name:          "at reference instant",
			now:           ref,
			wantPhase:     "day",
			wantNext:      "night",
			wantRemaining: 100 * time.Minute,
		},
		{
			name:          "mid phase A",
			now:           ref.Add(30 * time.Minute),
			wantPhase:     "day",
			wantNext:      "night",
			wantRemaining: 70 * time.Minute,
		},
		{
			name:          "ten seconds before phase A ends",
			now:           ref.Add(100*time.Minute - 10*time.Second),
			wantPhase:     "day",
			wantNext:      "night",
			wantRemaining: 10 * time.Second,
		},
		{
			name:          "exact phase A boundary belongs to phase B",
			now:           ref.Add(100 * time.Minute),
			wantPhase:     "night",
			wantNext:      "day",
			wantRemaining: 50 * time.Minute,
		},
		{
			name:          "mid phase B",
			now:           ref.Add(120 * time.Minute),
			wantPhase:     "night",
			wantNext:      "day",
			wantRemaining: 30 * time.Minute,
		},
		{
			name:          "exact cycle boundary wraps to phase A",
			now:           ref.Add(150 * time.Minute),
			wantPhase:     "day",
			wantNext:      "night",
			wantRemaining: 100 * time.Minute,
		},
		{
			name:          "several cycles in",
			now:           ref.Add(3*150*time.Minute + 40*time.Minute),
			wantPhase:     "day",
			wantNext:      "night",
			wantRemaining: 60 * time.Minute,
		},
		{
			name:          "before the reference instant",
			now:           ref.Add(-10 * time.Minute),
			wantPhase:     "night",
			wantNext:      "day",
			wantRemaining: 10 * time.Minute,
		},
		{
			name:          "full cycle before the reference",
			now:           ref.Add(-150 * time.Minute),
			wantPhase:     "day",
			wantNext:      "night",
			wantRemaining: 100 * time.Minute,
		},
		{
			// 3653 days elapsed, 5260320 minutes, 120 into the 150-minute
			// cycle: 20 minutes into night.
			name:          "ten years after the reference",
			now:           ref.AddDate(10, 0, 0),
			wantPhase:     "night",
			wantNext:      "day",
			wantRemaining: 30 * time.Minute,
		},
		{
			// 3652 days before the reference, 5258880 minutes; the true
			// modulo lands at position 120, again inside night.
			name:          "ten years before the reference",
			now:           ref.AddDate(-10, 0, 0),
			wantPhase:     "night",
			wantNext:      "day",
			wantRemaining: 30 * time.Minute,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			state := cycle.PhaseAt(def, tc.now)
			if state.Phase != tc.wantPhase {
				t.Errorf("PhaseAt(%v).Phase = %q, want %q", tc.now, state.Phase, tc.wantPhase)
			}
			if state.Next != tc.wantNext {
				t.Errorf("PhaseAt(%v).Next = %q, want %q", tc.now, state.Next, tc.wantNext)
			}
			if state.Remaining != tc.wantRemaining {
				t.Errorf("PhaseAt(%v).Remaining = %v, want %v", tc.now, state.Remaining, tc.wantRemaining)
			}
			if got := state.Expiry.Sub(tc.now); got != state.Remaining {
				t.Errorf("Expiry - now = %v, want Remaining %v", got, state.Remaining)
			}
		})
	}
}

func TestPhaseAtRemainingAlwaysPositive(t *testing.T) {
	t.Parallel()

	def := testDefinition()
	for offset := -400 * time.Minute; offset <= 400*time.Minute; offset += time.Minute {
		state := cycle.PhaseAt(def, def.Reference.Add(offset))
		if state.Remaining <= 0 || state.Remaining > def.CycleLength() {
			t.Fatalf("offset %v: Remaining = %v, want in (0, %v]", offset, state.Remaining, def.CycleLength())
		}
	}
}

func TestIterationAt(t *testing.T) {
	t.Parallel()

	def := testDefinition()
	ref := def.Reference
	cycleLen := def.CycleLength()

	testCases := []struct {
		name string
		now  time.Time
		want int64
	}{
		{name: "at reference", now: ref, want: 0},
		{name: "within first cycle", now: ref.Add(cycleLen - time.Second), want: 0},
		{name: "start of second cycle", now: ref.Add(cycleLen), want: 1},
		{name: "hundredth cycle", now: ref.Add(100 * cycleLen), want: 100},
		{name: "just before reference", now: ref.Add(-time.Second), want: -1},
		{name: "one full cycle before reference", now: ref.Add(-cycleLen), want: -1},
		{name: "just past one cycle before reference", now: ref.Add(-cycleLen - time.Second), want: -2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := cycle.IterationAt(def, tc.now); got != tc.want {
				t.Errorf("IterationAt(%v) = %d, want %d", tc.now, got, tc.want)
			}
		})
	}
}

func TestIterationStableWithinCycle(t *testing.T) {
	t.Parallel()

	def := testDefinition()
	start := def.Reference.Add(5 * def.CycleLength())
	base := cycle.IterationAt(def, start)

	for offset := time.Duration(0); offset < def.CycleLength(); offset += time.Minute {
		if got := cycle.IterationAt(def, start.Add(offset)); got != base {
			t.Fatalf("IterationAt at offset %v = %d, want %d", offset, got, base)
		}
	}
}

func TestDefinitionValidate(t *testing.T) {
	t.Parallel()

	valid := testDefinition()

	testCases := []struct {
		name    string
		mutate  func(*cycle.Definition)
		wantErr bool
	}{
		{name: "valid definition", mutate: func(*cycle.Definition) {}, wantErr: false},
		{name: "empty id", mutate: func(d *cycle.Definition) { d.ID = "" }, wantErr: true},
		{name: "zero phase A duration", mutate: func(d *cycle.Definition) { d.PhaseA.Duration = 0 }, wantErr: true},
		{name: "negative phase B duration", mutate: func(d *cycle.Definition) { d.PhaseB.Duration = -time.Minute }, wantErr: true},
		{name: "empty phase name", mutate: func(d *cycle.Definition) { d.PhaseB.Name = "" }, wantErr: true},
		{name: "zero reference", mutate: func(d *cycle.Definition) { d.Reference = time.Time{} }, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			def := valid
			tc.mutate(&def)
			err := def.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestParseLocation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input  string
		want   cycle.LocationID
		wantOK bool
	}{
		{input: "cetus", want: cycle.Cetus, wantOK: true},
		{input: "Cetus", want: cycle.Cetus, wantOK: true},
		{input: "  poe  ", want: cycle.Cetus, wantOK: true},
		{input: "vallis", want: cycle.Vallis, wantOK: true},
		{input: "fortuna", want: cycle.Vallis, wantOK: true},
		{input: "deimos", want: cycle.Cambion, wantOK: true},
		{input: "earth", want: cycle.Earth, wantOK: true},
		{input: "pluto", wantOK: false},
		{input: "", wantOK: false},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()

			got, ok := cycle.ParseLocation(tc.input)
			if ok != tc.wantOK {
				t.Fatalf("ParseLocation(%q) ok = %v, want %v", tc.input, ok, tc.wantOK)
			}
			if ok && got != tc.want {
				t.Errorf("ParseLocation(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
