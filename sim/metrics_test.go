package sim

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// referenceMetrics reproduces the statistics of the reference workshop run.
func referenceMetrics() *Metrics {
	m := NewMetrics()
	m.Arrivals = 10
	m.Started = 5
	m.Served = 4
	m.TotalWait = 74
	m.Waits = []int64{0, 0, 26, 18, 30}
	m.FinalDeparture = 72
	m.SimEndedTime = 72
	m.BusyTime = 1 + 35 + 1 + 16 + 11
	m.MaxQueueLen = 4
	return m
}

func TestMetrics_AverageWait(t *testing.T) {
	m := referenceMetrics()

	avg, ok := m.AverageWait()
	require.True(t, ok)
	assert.Equal(t, 18.5, avg)

	// 18.5 rounds half-to-even
	rounded, ok := m.RoundedAverageWait()
	require.True(t, ok)
	assert.Equal(t, int64(18), rounded)
}

func TestMetrics_AverageWait_NoneServed_Undefined(t *testing.T) {
	m := NewMetrics()
	m.TotalWait = 12
	m.Started = 1

	_, ok := m.AverageWait()
	assert.False(t, ok)
	_, ok = m.RoundedAverageWait()
	assert.False(t, ok)
}

func TestMetrics_WaitSummary(t *testing.T) {
	ws, ok := referenceMetrics().WaitSummary()
	require.True(t, ok)
	assert.InDelta(t, 14.8, ws.Mean, 1e-9)
	assert.Equal(t, 18.0, ws.Median)
	assert.Equal(t, 28.0, ws.P90)
	assert.Equal(t, 28.0, ws.P99)
	assert.Equal(t, 30.0, ws.Max)
}

func TestMetrics_WaitSummary_SingleAndEmpty(t *testing.T) {
	m := NewMetrics()
	_, ok := m.WaitSummary()
	assert.False(t, ok)

	m.Waits = []int64{7}
	ws, ok := m.WaitSummary()
	require.True(t, ok)
	assert.Equal(t, WaitSummary{Mean: 7, Median: 7, P90: 7, P99: 7, Max: 7}, ws)
}

func TestMetrics_Print_Reference(t *testing.T) {
	var buf bytes.Buffer
	referenceMetrics().Print(&buf)
	out := buf.String()

	assert.Contains(t, out, "Total service time 72 min.")
	assert.Contains(t, out, "Total number of served vehicles: 4")
	assert.Contains(t, out, "Average waiting time 18 min.")
}

func TestMetrics_Print_NoneServed(t *testing.T) {
	var buf bytes.Buffer
	NewMetrics().Print(&buf)
	out := buf.String()

	assert.Contains(t, out, "Total number of served vehicles: 0")
	assert.Contains(t, out, "undefined (no vehicles served)")
	assert.Contains(t, out, "none (no vehicle entered the bay)")
}

func TestMetrics_SaveResults_JSON(t *testing.T) {
	// GIVEN the reference metrics
	m := referenceMetrics()
	m.ServedByCategory["car"] = 1
	path := filepath.Join(t.TempDir(), "results.json")

	// WHEN SaveResults is called
	require.NoError(t, m.SaveResults(path))

	// THEN the file holds the statistics
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out MetricsOutput
	require.NoError(t, json.Unmarshal(data, &out))

	assert.Equal(t, 4, out.Served)
	assert.Equal(t, int64(74), out.TotalWait)
	require.NotNil(t, out.AverageWait)
	assert.Equal(t, 18.5, *out.AverageWait)
	require.NotNil(t, out.FinalDeparture)
	assert.Equal(t, int64(72), *out.FinalDeparture)
	assert.InDelta(t, 64.0/72.0, out.Utilization, 1e-9)
	assert.Equal(t, 1, out.ServedByCategory["car"])
	require.NotNil(t, out.WaitSummary)
}

func TestMetrics_SaveResults_NoneServed_NullAverage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, NewMetrics().SaveResults(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Nil(t, raw["average_wait_min"])
	assert.Nil(t, raw["final_departure_min"])
	_, hasSummary := raw["wait_summary"]
	assert.False(t, hasSummary)
}

func TestMetrics_SaveResults_BadPath(t *testing.T) {
	err := NewMetrics().SaveResults(filepath.Join(t.TempDir(), "missing", "dir", "out.json"))
	assert.Error(t, err)
}
