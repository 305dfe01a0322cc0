// Package cycle implements the world cycle model: periodic two-phase cycles
// (day/night, warm/cold, fass/vome) anchored to a reference instant, with pure
// functions to compute the current phase and time remaining at any instant.
package cycle

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// LocationID identifies a tracked in-game location.
type LocationID string

const (
	Cetus   LocationID = "cetus"
	Vallis  LocationID = "vallis"
	Cambion LocationID = "cambion"
	Earth   LocationID = "earth"
)

var ErrUnknownLocation = errors.New("unknown location")

// ParseLocation maps user-facing location names and common aliases to a
// LocationID. Matching is case-insensitive.
func ParseLocation(s string) (LocationID, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cetus", "poe", "plains", "eidolon":
		return Cetus, true
	case "vallis", "orb", "fortuna", "venus":
		return Vallis, true
	case "cambion", "deimos", "drift":
		return Cambion, true
	case "earth":
		return Earth, true
	default:
		return "", false
	}
}

// Phase is one of the two named states of a cycle.
type Phase struct {
	Name     string
	Duration time.Duration
}

// Definition describes one location's repeating cycle. Reference is an
// absolute instant at which PhaseA is known to have just started. Definitions
// are replaced wholesale on recalibration, never partially mutated.
type Definition struct {
	ID        LocationID
	Reference time.Time
	PhaseA    Phase
	PhaseB    Phase
}

// CycleLength returns the full period of the cycle.
func (d Definition) CycleLength() time.Duration {
	return d.PhaseA.Duration + d.PhaseB.Duration
}

// Validate checks the definition for configuration errors. Non-positive phase
// durations are rejected here so the scheduler never runs on a broken table.
func (d Definition) Validate() error {
	if d.ID == "" {
		return errors.New("cycle definition has empty location id")
	}
	if d.PhaseA.Duration <= 0 {
		return fmt.Errorf("cycle %q: phase %q duration must be positive, got %s", d.ID, d.PhaseA.Name, d.PhaseA.Duration)
	}
	if d.PhaseB.Duration <= 0 {
		return fmt.Errorf("cycle %q: phase %q duration must be positive, got %s", d.ID, d.PhaseB.Name, d.PhaseB.Duration)
	}
	if d.PhaseA.Name == "" || d.PhaseB.Name == "" {
		return fmt.Errorf("cycle %q: phase names must not be empty", d.ID)
	}
	if d.Reference.IsZero() {
		return fmt.Errorf("cycle %q: reference instant must be set", d.ID)
	}
	return nil
}

// State is the derived position of a cycle at a given instant. It is always
// recomputed, never stored.
type State struct {
	Phase     string
	Next      string
	Remaining time.Duration
	InPhaseA  bool
	Expiry    time.Time
}

// PhaseAt computes the cycle state at the given instant. Instants before the
// reference are handled with a true modulo, so the position always lands in
// [0, cycleLength). Phase boundaries are half-open: at position 0 or at the
// exact end of phase A the incoming phase is reported, not the ending one.
func PhaseAt(d Definition, now time.Time) State {
	cycleLen := d.CycleLength()
	position := mod(now.Sub(d.Reference), cycleLen)

	if position < d.PhaseA.Duration {
		remaining := d.PhaseA.Duration - position
		return State{
			Phase:     d.PhaseA.Name,
			Next:      d.PhaseB.Name,
			Remaining: remaining,
			InPhaseA:  true,
			Expiry:    now.Add(remaining),
		}
	}
	remaining := cycleLen - position
	return State{
		Phase:     d.PhaseB.Name,
		Next:      d.PhaseA.Name,
		Remaining: remaining,
		InPhaseA:  false,
		Expiry:    now.Add(remaining),
	}
}

// IterationAt returns the zero-based index of the cycle iteration containing
// the given instant. Instants before the reference yield negative indexes.
// Two instants within the same iteration always map to the same index, which
// is what scopes alert deduplication to one firing per cycle.
func IterationAt(d Definition, now time.Time) int64 {
	return floorDiv(int64(now.Sub(d.Reference)), int64(d.CycleLength()))
}

// mod returns x modulo m with the result always in [0, m), unlike Go's
// truncating % operator.
func mod(x, m time.Duration) time.Duration {
	r := x % m
	if r < 0 {
		r += m
	}
	return r
}

func floorDiv(x, m int64) int64 {
	q := x / m
	if x%m != 0 && (x < 0) != (m < 0) {
		q--
	}
	return q
}
