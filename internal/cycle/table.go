package cycle

import (
	"fmt"
	"time"
)

// Table holds the cycle definitions for all tracked locations in a stable
// order. The order is the evaluation order of the notification check, so it
// must be deterministic across runs.
type Table struct {
	order []LocationID
	defs  map[LocationID]Definition
}

// NewTable builds a table from the given definitions, preserving their order.
// Every definition is validated; a single bad definition fails the whole
// table, since running with a partial table would silently drop alerts.
func NewTable(defs ...Definition) (*Table, error) {
	t := &Table{defs: make(map[LocationID]Definition, len(defs))}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := t.defs[d.ID]; dup {
			return nil, fmt.Errorf("duplicate cycle definition for %q", d.ID)
		}
		t.order = append(t.order, d.ID)
		t.defs[d.ID] = d
	}
	return t, nil
}

// Get returns the definition for a location.
func (t *Table) Get(id LocationID) (Definition, error) {
	d, ok := t.defs[id]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownLocation, id)
	}
	return d, nil
}

// Locations returns the location ids in evaluation order.
func (t *Table) Locations() []LocationID {
	out := make([]LocationID, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of definitions in the table.
func (t *Table) Len() int {
	return len(t.order)
}

// Default reference instants and durations, recalibrated against observed
// game state. These drift when game mechanics change; the config layer can
// override any of them without a rebuild.
var (
	cetusReference  = time.Date(2019, time.June, 19, 13, 20, 0, 0, time.UTC)
	vallisReference = time.Date(2018, time.November, 27, 16, 0, 0, 0, time.UTC)
	earthReference  = time.Unix(0, 0).UTC()
)

// DefaultDefinitions returns the built-in cycle table: the three open worlds
// plus the Earth surface cycle. Cambion Drift mirrors the Cetus clock (fass
// during Cetus day, vome during night), so it shares the same reference.
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			ID:        Cetus,
			Reference: cetusReference,
			PhaseA:    Phase{Name: "day", Duration: 100 * time.Minute},
			PhaseB:    Phase{Name: "night", Duration: 50 * time.Minute},
		},
		{
			ID:        Vallis,
			Reference: vallisReference,
			PhaseA:    Phase{Name: "warm", Duration: 6*time.Minute + 40*time.Second},
			PhaseB:    Phase{Name: "cold", Duration: 20 * time.Minute},
		},
		{
			ID:        Cambion,
			Reference: cetusReference,
			PhaseA:    Phase{Name: "fass", Duration: 100 * time.Minute},
			PhaseB:    Phase{Name: "vome", Duration: 50 * time.Minute},
		},
		{
			ID:        Earth,
			Reference: earthReference,
			PhaseA:    Phase{Name: "day", Duration: 2 * time.Hour},
			PhaseB:    Phase{Name: "night", Duration: 2 * time.Hour},
		},
	}
}

// DefaultTable builds the table of built-in definitions.
func DefaultTable() *Table {
	t, err := NewTable(DefaultDefinitions()...)
	if err != nil {
		// The built-in definitions are constants; this cannot fail.
		panic(fmt.Sprintf("invalid built-in cycle definitions: %v", err))
	}
	return t
}
