package trace

import "fmt"

// TraceLevel controls the verbosity of event tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelEvents captures every arrival, service start and departure.
	TraceLevelEvents TraceLevel = "events"
)

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects event records during a simulation.
type SimulationTrace struct {
	Config TraceConfig
	Events []EventRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config: config,
		Events: make([]EventRecord, 0),
	}
}

// Enabled reports whether records are kept. Safe on a nil trace.
func (st *SimulationTrace) Enabled() bool {
	return st != nil && st.Config.Level == TraceLevelEvents
}

// Record appends an event record. No-op when tracing is disabled.
func (st *SimulationTrace) Record(record EventRecord) {
	if !st.Enabled() {
		return
	}
	st.Events = append(st.Events, record)
}

// Filter returns the records of the given kind, in recording order.
func (st *SimulationTrace) Filter(kind EventKind) []EventRecord {
	if st == nil {
		return nil
	}
	var out []EventRecord
	for _, ev := range st.Events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

// Line renders a record as a single event-log line.
func (r EventRecord) Line() string {
	switch r.Kind {
	case KindArrival:
		return fmt.Sprintf("[QUEUE] %s arrives in: %d min.", r.Category, r.Clock)
	case KindServiceStart:
		return fmt.Sprintf("[W_SHOP] %s enters with a expected service time %d min.", r.Category, r.Duration)
	case KindDeparture:
		return fmt.Sprintf("[W_SHOP] Departure: %s at %d min.", r.Category, r.Clock)
	}
	return fmt.Sprintf("[%s] %s at %d min.", r.Kind, r.Category, r.Clock)
}
