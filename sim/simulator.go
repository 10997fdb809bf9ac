// sim/simulator.go
package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/workshop-sim/sim/trace"
)

// Never is the departure time of an idle bay.
const Never int64 = math.MaxInt64

// Simulator is the core object that holds simulation time, system state, and the event loop.
//
// Unlike a heap-driven engine, at most two events are ever pending: the next
// arrival and, while the bay is busy, the current vehicle's departure.
type Simulator struct {
	Clock       int64
	Horizon     int64
	ArrivalRate float64
	Categories  []Category

	// WaitQ is the FIFO line of vehicles that have arrived but not entered the bay
	WaitQ *WaitQueue
	Bay   *Server

	NextArrival   int64 // always scheduled while the simulator exists
	NextDeparture int64 // Never while the bay is idle

	Metrics *Metrics
	Trace   *trace.SimulationTrace

	src     Source
	created int // vehicles created so far, used for IDs
	done    bool
}

// NewSimulator validates cfg and returns a simulator with its first arrival
// scheduled. A nil src selects an RNGSource seeded from cfg.Seed.
// tr may be nil.
func NewSimulator(cfg SimConfig, src Source, tr *trace.SimulationTrace) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		src = NewRNGSource(NewSimulationKey(cfg.Seed))
	}
	cats := make([]Category, len(cfg.Categories))
	copy(cats, cfg.Categories)

	s := &Simulator{
		Clock:         0,
		Horizon:       cfg.Horizon,
		ArrivalRate:   cfg.ArrivalRate,
		Categories:    cats,
		WaitQ:         &WaitQueue{},
		Bay:           NewServer(cats),
		NextDeparture: Never,
		Metrics:       NewMetrics(),
		Trace:         tr,
		src:           src,
	}
	s.NextArrival = after(s.Clock, Interval(src.InterArrival(s.ArrivalRate)))
	return s, nil
}

// Done reports whether the clock has reached the horizon.
func (sim *Simulator) Done() bool {
	return sim.Clock >= sim.Horizon
}

// Run steps the simulation until the clock reaches the horizon, then
// finalises Metrics. The horizon is tested before each step, so the last
// processed event may lie beyond it. ctx is checked once per step.
func (sim *Simulator) Run(ctx context.Context) error {
	if sim.done {
		return fmt.Errorf("simulation already ran to %d min", sim.Clock)
	}
	for !sim.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		sim.Step()
	}
	sim.finish()
	logrus.Infof("[t %07d] Simulation ended", sim.Clock)
	return nil
}

// Step processes exactly one event: it advances the clock to the next event
// that can occur, executes it, then lets an idle bay take the front of the line.
// When nothing is scheduled before Never the clock moves to the horizon and no
// event runs.
func (sim *Simulator) Step() {
	next := sim.NextArrival
	if sim.Bay.IsBusy() {
		next = min(next, sim.NextDeparture)
	}
	if next == Never {
		logrus.Debugf("[t %07d] No event scheduled; stopping at horizon %d", sim.Clock, sim.Horizon)
		sim.Clock = max(sim.Clock, sim.Horizon)
		return
	}
	sim.Clock = next

	ev := sim.nextEvent()
	logrus.Debugf("[t %07d] Executing %T", sim.Clock, ev)
	ev.Execute(sim)

	sim.admit()
}

// nextEvent picks the event due at the current clock. Arrivals have priority
// over departures on exact time ties; the departure then runs on the next step
// without the clock moving.
func (sim *Simulator) nextEvent() Event {
	switch sim.Clock {
	case sim.NextArrival:
		return &ArrivalEvent{time: sim.Clock}
	case sim.NextDeparture:
		return &DepartureEvent{time: sim.Clock}
	}
	panic(fmt.Sprintf("nextEvent: clock %d matches neither arrival %d nor departure %d",
		sim.Clock, sim.NextArrival, sim.NextDeparture))
}

// admit moves the front of the line into the bay if the bay is free.
func (sim *Simulator) admit() {
	if sim.Bay.IsBusy() || sim.WaitQ.Len() == 0 {
		return
	}
	v := sim.WaitQ.Dequeue()
	d := sim.Bay.BeginService(v, sim.Clock, sim.src)
	sim.NextDeparture = after(sim.Clock, d)

	sim.Metrics.recordServiceStart(v)
	sim.Trace.Record(trace.EventRecord{
		Kind:     trace.KindServiceStart,
		Clock:    sim.Clock,
		EntityID: v.ID,
		Category: v.Category,
		QueueLen: sim.WaitQ.Len(),
		Duration: d,
	})
}

func (sim *Simulator) finish() {
	sim.done = true
	sim.Metrics.SimEndedTime = sim.Clock
	if v := sim.Bay.Occupant(); v != nil {
		sim.Metrics.BusyTime += min(sim.Clock, sim.NextDeparture) - v.ServiceStart
	}
	if _, ok := sim.Metrics.AverageWait(); !ok {
		logrus.Warnf("No vehicle was served before the horizon (%d min); average waiting time is undefined", sim.Horizon)
	}
}

// after returns t+d minutes, saturating at Never.
func after(t, d int64) int64 {
	if d >= Never-t {
		return Never
	}
	return t + d
}

// InSystem returns the number of vehicles created but not yet departed.
func (sim *Simulator) InSystem() int {
	n := sim.WaitQ.Len()
	if sim.Bay.IsBusy() {
		n++
	}
	return n
}

// Created returns the number of vehicles created so far.
func (sim *Simulator) Created() int {
	return sim.created
}
