package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/workshop-sim/sim/trace"
)

// Event defines the interface for all simulation events.
// Each event must have a Timestamp (in minutes) and an Execute method
// that advances simulation state when invoked.
type Event interface {
	Timestamp() int64
	Execute(*Simulator)
}

// ArrivalEvent represents a vehicle reaching the workshop.
type ArrivalEvent struct {
	time int64 // Simulation time of arrival (in minutes)
}

// Timestamp returns the scheduled time of the ArrivalEvent.
func (e *ArrivalEvent) Timestamp() int64 {
	return e.time
}

// Execute creates the arriving vehicle, puts it at the back of the line and
// schedules the next arrival.
func (e *ArrivalEvent) Execute(sim *Simulator) {
	sim.created++
	v := NewEntity(fmt.Sprintf("vehicle_%d", sim.created), sim.Categories, e.time, sim.src)
	sim.WaitQ.Enqueue(v)
	sim.NextArrival = after(e.time, Interval(sim.src.InterArrival(sim.ArrivalRate)))

	logrus.Debugf("<< Arrival: %s (%s) at %d min", v.ID, v.Category, e.time)
	sim.Metrics.recordArrival(v, sim.WaitQ.Len())
	sim.Trace.Record(trace.EventRecord{
		Kind:     trace.KindArrival,
		Clock:    e.time,
		EntityID: v.ID,
		Category: v.Category,
		QueueLen: sim.WaitQ.Len(),
	})
}

// DepartureEvent represents the bay finishing its current vehicle.
type DepartureEvent struct {
	time int64 // Scheduled completion time (in minutes)
}

// Timestamp returns the scheduled time of the DepartureEvent.
func (e *DepartureEvent) Timestamp() int64 {
	return e.time
}

// Execute releases the bay. Admission of the next vehicle happens afterwards
// in the same iteration.
func (e *DepartureEvent) Execute(sim *Simulator) {
	v := sim.Bay.EndService()
	sim.NextDeparture = Never

	logrus.Debugf(">> Departure: %s (%s) at %d min", v.ID, v.Category, e.time)
	sim.Metrics.recordDeparture(v)
	sim.Trace.Record(trace.EventRecord{
		Kind:     trace.KindDeparture,
		Clock:    e.time,
		EntityID: v.ID,
		Category: v.Category,
		QueueLen: sim.WaitQ.Len(),
	})
}
