package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalEvents        int
	Arrivals           int
	ServiceStarts      int
	Departures         int
	MaxQueueLen        int
	LastClock          int64
	ArrivalsByCategory map[string]int // category → vehicles that arrived
	ServedByCategory   map[string]int // category → vehicles that departed
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		ArrivalsByCategory: make(map[string]int),
		ServedByCategory:   make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalEvents = len(st.Events)
	for _, ev := range st.Events {
		switch ev.Kind {
		case KindArrival:
			summary.Arrivals++
			summary.ArrivalsByCategory[ev.Category]++
		case KindServiceStart:
			summary.ServiceStarts++
		case KindDeparture:
			summary.Departures++
			summary.ServedByCategory[ev.Category]++
		}
		if ev.QueueLen > summary.MaxQueueLen {
			summary.MaxQueueLen = ev.QueueLen
		}
		if ev.Clock > summary.LastClock {
			summary.LastClock = ev.Clock
		}
	}

	return summary
}
