// Package sim provides the discrete-event simulation engine for a workshop
// with a single service bay.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - entity.go: Entity lifecycle (waiting → in service → departed)
//   - event.go: Event types that drive the simulation (Arrival, Departure)
//   - simulator.go: The event loop, clock advancement and admission to the bay
//
// # Event loop
//
// Each Step jumps the clock to the next event that can occur: the next arrival
// when the bay is idle, otherwise whichever of the next arrival and the
// current departure comes first. On an exact tie the arrival runs first and
// the departure follows on the next Step at the same clock. After every event
// an idle bay takes the vehicle at the front of the waiting line.
//
// # Randomness
//
// All draws go through a Source. RNGSource splits a SimulationKey into
// independent streams for arrivals, categories and service times, so two runs
// with the same seed and config replay the same events.
//
// Sub-packages:
//   - sim/trace/: Event-log recording and summaries
//   - sim/replicate/: Independent replications across consecutive seeds
package sim
