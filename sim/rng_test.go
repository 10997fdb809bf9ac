package sim

import (
	"math"
	"math/rand/v2"
	"testing"
)

// === SimulationKey Tests ===

func TestSimulationKey_Creation(t *testing.T) {
	tests := []struct {
		name string
		seed int64
	}{
		{"positive seed", 42},
		{"zero seed", 0},
		{"negative seed", -1},
		{"max int64", math.MaxInt64},
		{"min int64", math.MinInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := NewSimulationKey(tt.seed)
			if int64(key) != tt.seed {
				t.Errorf("NewSimulationKey(%d) = %d, want %d", tt.seed, key, tt.seed)
			}
		})
	}
}

// === PartitionedRNG Tests ===

func TestPartitionedRNG_DeterministicDerivation(t *testing.T) {
	// BDD: Same key+name produces same sequence
	rng1 := NewPartitionedRNG(NewSimulationKey(42))
	rng2 := NewPartitionedRNG(NewSimulationKey(42))

	for i := 0; i < 3; i++ {
		v1 := rng1.ForSubsystem(SubsystemArrival).Uint64()
		v2 := rng2.ForSubsystem(SubsystemArrival).Uint64()
		if v1 != v2 {
			t.Errorf("Value %d: got %v and %v, want identical", i, v1, v2)
		}
	}
}

func TestPartitionedRNG_SubsystemIsolation(t *testing.T) {
	// BDD: Drawing from subsystem A doesn't affect subsystem B
	rngA := NewPartitionedRNG(NewSimulationKey(42))
	rngB := NewPartitionedRNG(NewSimulationKey(42))

	// Draw 10 values from A's arrival stream (this should NOT affect service)
	for i := 0; i < 10; i++ {
		rngA.ForSubsystem(SubsystemArrival).Uint64()
	}

	// Draw 5 values from B's service stream
	for i := 0; i < 5; i++ {
		rngB.ForSubsystem(SubsystemService).Uint64()
	}

	aServiceFirst := rngA.ForSubsystem(SubsystemService).Uint64()
	bServiceSixth := rngB.ForSubsystem(SubsystemService).Uint64()

	fresh := NewPartitionedRNG(NewSimulationKey(42))
	expectedFirst := fresh.ForSubsystem(SubsystemService).Uint64()

	if aServiceFirst != expectedFirst {
		t.Errorf("A's service first value = %v, want %v (isolation broken)", aServiceFirst, expectedFirst)
	}
	if bServiceSixth == expectedFirst {
		t.Error("B's 6th service value equals 1st value - unexpected")
	}
}

func TestPartitionedRNG_SubsystemsDiffer(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(42))
	a := rng.ForSubsystem(SubsystemArrival).Uint64()
	s := rng.ForSubsystem(SubsystemService).Uint64()
	c := rng.ForSubsystem(SubsystemCategory).Uint64()
	if a == s || s == c || a == c {
		t.Errorf("subsystems produced overlapping first values: %d %d %d", a, s, c)
	}
}

func TestPartitionedRNG_CachesInstance(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(42))

	src1 := rng.ForSubsystem(SubsystemArrival)
	src2 := rng.ForSubsystem(SubsystemArrival)

	if src1 != src2 {
		t.Error("ForSubsystem returned different instances for same name")
	}
}

func TestPartitionedRNG_Key(t *testing.T) {
	seed := int64(12345)
	rng := NewPartitionedRNG(NewSimulationKey(seed))

	if rng.Key() != SimulationKey(seed) {
		t.Errorf("Key() = %v, want %v", rng.Key(), seed)
	}
}

func TestPartitionedRNG_MatchesPCG(t *testing.T) {
	// The arrival stream is PCG(seed, fnv1a64("arrival"))
	rng := NewPartitionedRNG(NewSimulationKey(7))
	direct := rand.NewPCG(7, fnv1a64(SubsystemArrival))
	for i := 0; i < 5; i++ {
		if got, want := rng.ForSubsystem(SubsystemArrival).Uint64(), direct.Uint64(); got != want {
			t.Errorf("Value %d: got %d, want %d", i, got, want)
		}
	}
}

// === RNGSource Tests ===

func TestRNGSource_SameKeySameDraws(t *testing.T) {
	a := NewRNGSource(NewSimulationKey(10))
	b := NewRNGSource(NewSimulationKey(10))
	for i := 0; i < 20; i++ {
		if x, y := a.InterArrival(0.2), b.InterArrival(0.2); x != y {
			t.Fatalf("InterArrival draw %d: %v != %v", i, x, y)
		}
		if x, y := a.Service(0.05), b.Service(0.05); x != y {
			t.Fatalf("Service draw %d: %v != %v", i, x, y)
		}
		if x, y := a.Pick(3), b.Pick(3); x != y {
			t.Fatalf("Pick draw %d: %v != %v", i, x, y)
		}
	}
}

func TestRNGSource_ExponentialMeanTracksRate(t *testing.T) {
	// GIVEN rate 1/5, the sample mean over many draws is close to 5
	src := NewRNGSource(NewSimulationKey(42))
	const n = 20000
	sum := 0.0
	for i := 0; i < n; i++ {
		v := src.InterArrival(0.2)
		if v < 0 {
			t.Fatalf("negative exponential draw %v", v)
		}
		sum += v
	}
	mean := sum / n
	if math.Abs(mean-5) > 0.25 {
		t.Errorf("sample mean = %v, want ~5", mean)
	}
}

func TestRNGSource_PickInRange(t *testing.T) {
	src := NewRNGSource(NewSimulationKey(3))
	seen := make(map[int]bool)
	for i := 0; i < 300; i++ {
		v := src.Pick(3)
		if v < 0 || v >= 3 {
			t.Fatalf("Pick(3) = %d out of range", v)
		}
		seen[v] = true
	}
	if len(seen) != 3 {
		t.Errorf("Pick(3) never produced some indices: %v", seen)
	}
}

func TestRNGSource_PickNonPositivePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for Pick(0)")
		}
	}()
	NewRNGSource(NewSimulationKey(1)).Pick(0)
}

// === Interval Tests ===

func TestInterval_OffsetAndRound(t *testing.T) {
	tests := []struct {
		sample float64
		want   int64
	}{
		{0, 1},                  // 0.5 rounds to even 0, clamped to 1
		{0.0001, 1},             // just above the tie
		{0.2988709343505898, 1}, // recorded reference service draw
		{1.0, 2},                // 1.5 rounds to even 2
		{2.0, 2},                // 2.5 rounds to even 2
		{4.236186249169292, 5},
		{34.69876113045603, 35},
	}
	for _, tt := range tests {
		if got := Interval(tt.sample); got != tt.want {
			t.Errorf("Interval(%v) = %d, want %d", tt.sample, got, tt.want)
		}
	}
}

func TestInterval_AlwaysAtLeastOneMinute(t *testing.T) {
	src := NewRNGSource(NewSimulationKey(99))
	for i := 0; i < 5000; i++ {
		if d := Interval(src.Service(2.0)); d < 1 {
			t.Fatalf("draw %d: interval %d < 1", i, d)
		}
	}
}

func TestInterval_UnrepresentableSampleSaturatesAtNever(t *testing.T) {
	for _, sample := range []float64{9.3e18, 1e20, float64(math.MaxInt64), math.MaxFloat64, math.Inf(1), math.NaN()} {
		if got := Interval(sample); got != Never {
			t.Errorf("Interval(%v) = %d, want Never", sample, got)
		}
	}

	// the largest double below 2^63 still converts exactly
	below := math.Nextafter(float64(math.MaxInt64), 0)
	if got := Interval(below); got != int64(below) {
		t.Errorf("Interval(%v) = %d, want %d", below, got, int64(below))
	}
}

func TestAfter_SaturatesAtNever(t *testing.T) {
	tests := []struct {
		t, d, want int64
	}{
		{5, 3, 8},
		{0, Never, Never},
		{5e18, 5e18, Never},
		{Never - 1, 1, Never},
		{Never - 2, 1, Never - 1},
	}
	for _, tt := range tests {
		if got := after(tt.t, tt.d); got != tt.want {
			t.Errorf("after(%d, %d) = %d, want %d", tt.t, tt.d, got, tt.want)
		}
	}
}
