// Package testutil provides shared test infrastructure for the workshop
// simulator. It holds the golden dataset types and a scripted random source
// used by sim/ tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenCategory is one vehicle class in declared order.
type GoldenCategory struct {
	Name string  `json:"name"`
	Rate float64 `json:"rate"`
}

// GoldenTestCase is a recorded reference run: its configuration, the exact
// random draws it consumed, and what it produced.
type GoldenTestCase struct {
	Name        string           `json:"name"`
	Horizon     int64            `json:"horizon"`
	ArrivalRate float64          `json:"arrival_rate"`
	Categories  []GoldenCategory `json:"categories"`
	Draws       GoldenDraws      `json:"draws"`
	Log         []string         `json:"log"`
	Metrics     GoldenMetrics    `json:"metrics"`
}

// GoldenDraws holds the random values in the order each stream consumed them.
type GoldenDraws struct {
	InterArrival []float64 `json:"inter_arrival"`
	Service      []float64 `json:"service"`
	Category     []int     `json:"category"`
}

// GoldenMetrics represents the expected end-of-run statistics.
type GoldenMetrics struct {
	Served             int    `json:"served"`
	TotalWait          int64  `json:"total_wait"`
	RoundedAverageWait *int64 `json:"rounded_average_wait"` // null when nothing was served
	FinalDeparture     int64  `json:"final_departure"`
	SimEndedTime       int64  `json:"sim_ended_time"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
}

// ScriptedSource replays fixed draws. It panics when a stream runs dry so a
// test never silently consumes values it did not script.
type ScriptedSource struct {
	InterArrivals []float64
	Services      []float64
	Picks         []int

	arrivalIdx, serviceIdx, pickIdx int
}

// NewScriptedSource returns a source replaying the draws of a golden case.
func NewScriptedSource(d GoldenDraws) *ScriptedSource {
	return &ScriptedSource{InterArrivals: d.InterArrival, Services: d.Service, Picks: d.Category}
}

func (s *ScriptedSource) InterArrival(rate float64) float64 {
	if s.arrivalIdx >= len(s.InterArrivals) {
		panic(fmt.Sprintf("ScriptedSource: inter-arrival draw %d not scripted", s.arrivalIdx))
	}
	v := s.InterArrivals[s.arrivalIdx]
	s.arrivalIdx++
	return v
}

func (s *ScriptedSource) Service(rate float64) float64 {
	if s.serviceIdx >= len(s.Services) {
		panic(fmt.Sprintf("ScriptedSource: service draw %d not scripted", s.serviceIdx))
	}
	v := s.Services[s.serviceIdx]
	s.serviceIdx++
	return v
}

func (s *ScriptedSource) Pick(n int) int {
	if s.pickIdx >= len(s.Picks) {
		panic(fmt.Sprintf("ScriptedSource: category draw %d not scripted", s.pickIdx))
	}
	v := s.Picks[s.pickIdx]
	s.pickIdx++
	if v < 0 || v >= n {
		panic(fmt.Sprintf("ScriptedSource: scripted pick %d out of range [0,%d)", v, n))
	}
	return v
}

// Consumed reports how many draws each stream has handed out.
func (s *ScriptedSource) Consumed() (interArrivals, services, picks int) {
	return s.arrivalIdx, s.serviceIdx, s.pickIdx
}
