// Package notify implements the notification core: the fired-alert ledger,
// the subscriber registry, the dispatcher, and the per-tick cycle evaluation
// that decides which threshold alerts to fire.
package notify

import (
	"fmt"

	"github.com/warfbot/warfbot/internal/cycle"
)

// Destination is an opaque recipient the dispatcher can deliver to. For the
// Telegram transport it is a chat id.
type Destination int64

// EventID uniquely identifies one threshold alert within one cycle iteration.
// The iteration index is what lets the same threshold fire again next cycle
// while never firing twice within one.
type EventID string

// NewEventID builds the deterministic event id for a (location, threshold,
// iteration) triple. Two evaluations within the same iteration produce the
// same id; evaluations in different iterations produce different ids.
func NewEventID(loc cycle.LocationID, thresholdMin int, iteration int64) EventID {
	return EventID(fmt.Sprintf("%s:%d:%d", loc, thresholdMin, iteration))
}
