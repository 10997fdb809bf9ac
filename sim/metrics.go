// Tracks simulation-wide and per-vehicle statistics such as:
// vehicles served, waiting times, queue length and bay utilisation.

package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/montanaflynn/stats"
	"github.com/sirupsen/logrus"
)

// Metrics aggregates statistics about the simulation
// for final reporting.
type Metrics struct {
	Arrivals  int   // Vehicles created
	Started   int   // Vehicles that entered the bay
	Served    int   // Vehicles that left the bay
	TotalWait int64 // Sum of (service start - arrival) over every vehicle that entered the bay

	Waits              []int64        // Per-vehicle waits in service-start order
	ArrivalsByCategory map[string]int // category -> arrivals
	ServedByCategory   map[string]int // category -> departures
	MaxQueueLen        int            // Longest waiting line seen
	BusyTime           int64          // Minutes the bay was occupied, up to SimEndedTime

	FinalDeparture int64 // Last scheduled departure; Never when nothing entered the bay or the service never ends
	SimEndedTime   int64 // Clock when the loop stopped
}

// NewMetrics returns an empty Metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		Waits:              make([]int64, 0),
		ArrivalsByCategory: make(map[string]int),
		ServedByCategory:   make(map[string]int),
		FinalDeparture:     Never,
	}
}

func (m *Metrics) recordArrival(e *Entity, queueLen int) {
	m.Arrivals++
	m.ArrivalsByCategory[e.Category]++
	if queueLen > m.MaxQueueLen {
		m.MaxQueueLen = queueLen
	}
}

func (m *Metrics) recordServiceStart(e *Entity) {
	m.Started++
	m.TotalWait += e.Wait()
	m.Waits = append(m.Waits, e.Wait())
	m.FinalDeparture = after(e.ServiceStart, e.ServiceDuration)
}

func (m *Metrics) recordDeparture(e *Entity) {
	m.Served++
	m.ServedByCategory[e.Category]++
	m.BusyTime += e.ServiceDuration
}

// AverageWait returns TotalWait / Served. The second result is false when no
// vehicle has been served, in which case the average is undefined.
//
// TotalWait includes the vehicle still in the bay at the end of the run, so
// this average divides by departures rather than by service starts.
func (m *Metrics) AverageWait() (float64, bool) {
	if m.Served == 0 {
		return 0, false
	}
	return float64(m.TotalWait) / float64(m.Served), true
}

// RoundedAverageWait returns AverageWait rounded half-to-even to whole minutes.
func (m *Metrics) RoundedAverageWait() (int64, bool) {
	avg, ok := m.AverageWait()
	if !ok {
		return 0, false
	}
	return int64(math.RoundToEven(avg)), true
}

// Utilization returns the fraction of simulated time the bay was busy.
func (m *Metrics) Utilization() float64 {
	if m.SimEndedTime <= 0 {
		return 0
	}
	return float64(m.BusyTime) / float64(m.SimEndedTime)
}

// WaitSummary describes the distribution of per-vehicle waits.
type WaitSummary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	P99    float64 `json:"p99"`
	Max    float64 `json:"max"`
}

// WaitSummary computes the wait distribution over every vehicle that entered
// the bay. Returns false when none did.
func (m *Metrics) WaitSummary() (WaitSummary, bool) {
	if len(m.Waits) == 0 {
		return WaitSummary{}, false
	}
	data := stats.LoadRawData(m.Waits)
	var ws WaitSummary
	ws.Mean, _ = stats.Mean(data)
	ws.Median, _ = stats.Median(data)
	ws.P90 = percentile(data, 90)
	ws.P99 = percentile(data, 99)
	ws.Max, _ = stats.Max(data)
	return ws, true
}

// percentile falls back to the maximum when the sample is too small for the
// requested rank.
func percentile(data stats.Float64Data, p float64) float64 {
	v, err := stats.Percentile(data, p)
	if err != nil {
		v, _ = stats.Max(data)
	}
	return v
}

// MetricsOutput is the JSON form of Metrics written by SaveResults.
type MetricsOutput struct {
	Arrivals           int            `json:"arrivals"`
	ServiceStarts      int            `json:"service_starts"`
	Served             int            `json:"served"`
	TotalWait          int64          `json:"total_wait_min"`
	AverageWait        *float64       `json:"average_wait_min"` // null when nothing was served
	FinalDeparture     *int64         `json:"final_departure_min"`
	SimEndedTime       int64          `json:"sim_ended_min"`
	MaxQueueLen        int            `json:"max_queue_len"`
	Utilization        float64        `json:"utilization"`
	WaitSummary        *WaitSummary   `json:"wait_summary,omitempty"`
	ArrivalsByCategory map[string]int `json:"arrivals_by_category"`
	ServedByCategory   map[string]int `json:"served_by_category"`
}

// Output converts Metrics into its JSON form.
func (m *Metrics) Output() MetricsOutput {
	out := MetricsOutput{
		Arrivals:           m.Arrivals,
		ServiceStarts:      m.Started,
		Served:             m.Served,
		TotalWait:          m.TotalWait,
		SimEndedTime:       m.SimEndedTime,
		MaxQueueLen:        m.MaxQueueLen,
		Utilization:        m.Utilization(),
		ArrivalsByCategory: m.ArrivalsByCategory,
		ServedByCategory:   m.ServedByCategory,
	}
	if avg, ok := m.AverageWait(); ok {
		out.AverageWait = &avg
	}
	if m.FinalDeparture != Never {
		fd := m.FinalDeparture
		out.FinalDeparture = &fd
	}
	if ws, ok := m.WaitSummary(); ok {
		out.WaitSummary = &ws
	}
	return out
}

// Print writes the end-of-run statistics block.
func (m *Metrics) Print(w io.Writer) {
	fmt.Fprintln(w, "Statistics:")
	switch {
	case m.Started == 0:
		fmt.Fprintln(w, "Total service time: none (no vehicle entered the bay)")
	case m.FinalDeparture == Never:
		fmt.Fprintln(w, "Total service time: unbounded (last service never ends)")
	default:
		fmt.Fprintf(w, "Total service time %d min.\n", m.FinalDeparture)
	}
	fmt.Fprintf(w, "Total number of served vehicles: %d\n", m.Served)
	if avg, ok := m.RoundedAverageWait(); ok {
		fmt.Fprintf(w, "Average waiting time %d min.\n", avg)
	} else {
		fmt.Fprintln(w, "Average waiting time: undefined (no vehicles served)")
	}
	fmt.Fprintf(w, "Max queue length: %d\n", m.MaxQueueLen)
	fmt.Fprintf(w, "Bay utilization: %.2f\n", m.Utilization())
}

// SaveResults writes the JSON form of Metrics to path.
func (m *Metrics) SaveResults(path string) error {
	data, err := json.MarshalIndent(m.Output(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metrics: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	logrus.Infof("Metrics written to %s", path)
	return nil
}
