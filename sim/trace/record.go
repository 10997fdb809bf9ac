// Package trace provides event-log recording for workshop simulations.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// EventKind names what happened at a point in simulated time.
type EventKind string

const (
	// KindArrival is a vehicle joining the back of the waiting line.
	KindArrival EventKind = "arrival"
	// KindServiceStart is a vehicle leaving the line and entering the bay.
	KindServiceStart EventKind = "service_start"
	// KindDeparture is a vehicle leaving the bay.
	KindDeparture EventKind = "departure"
)

// EventRecord captures a single processed event.
type EventRecord struct {
	Kind     EventKind `json:"kind"`
	Clock    int64     `json:"clock"`
	EntityID string    `json:"entity_id"`
	Category string    `json:"category"`
	QueueLen int       `json:"queue_len"`          // waiting line length after the event
	Duration int64     `json:"duration,omitempty"` // service minutes; set for KindServiceStart only
}
