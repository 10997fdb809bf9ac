package sim

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two simulations with the same SimulationKey and identical configuration
// MUST produce bit-for-bit identical results.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemArrival drives inter-arrival gaps.
	SubsystemArrival = "arrival"

	// SubsystemCategory drives the category of each arriving vehicle.
	SubsystemCategory = "category"

	// SubsystemService drives service durations in the bay.
	SubsystemService = "service"
)

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated random streams per subsystem.
// Each stream is a PCG source seeded with (masterSeed, fnv1a64(subsystemName)),
// so drawing from one subsystem never shifts the sequence of another.
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.PCG
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.PCG),
	}
}

// ForSubsystem returns the source for the named subsystem.
// The same subsystem name always returns the same source (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) rand.Source {
	if src, ok := p.subsystems[name]; ok {
		return src
	}
	src := rand.NewPCG(uint64(p.key), fnv1a64(name))
	p.subsystems[name] = src
	return src
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

// === Source ===

// Source is the randomness the workshop consumes.
type Source interface {
	// InterArrival returns an exponential variate with the given rate for the gap
	// to the next arrival.
	InterArrival(rate float64) float64
	// Service returns an exponential variate with the given rate for a service time.
	Service(rate float64) float64
	// Pick returns an index uniformly drawn from [0, n).
	Pick(n int) int
}

// RNGSource is the default Source, backed by a PartitionedRNG.
type RNGSource struct {
	rng *PartitionedRNG
}

// NewRNGSource returns a Source seeded from key.
func NewRNGSource(key SimulationKey) *RNGSource {
	return &RNGSource{rng: NewPartitionedRNG(key)}
}

func (s *RNGSource) InterArrival(rate float64) float64 {
	return s.exp(SubsystemArrival, rate)
}

func (s *RNGSource) Service(rate float64) float64 {
	return s.exp(SubsystemService, rate)
}

func (s *RNGSource) Pick(n int) int {
	if n <= 0 {
		panic(fmt.Sprintf("Pick: n must be positive, got %d", n))
	}
	return rand.New(s.rng.ForSubsystem(SubsystemCategory)).IntN(n)
}

func (s *RNGSource) exp(subsystem string, rate float64) float64 {
	return distuv.Exponential{Rate: rate, Src: s.rng.ForSubsystem(subsystem)}.Rand()
}

// Interval converts a raw exponential sample into a whole number of minutes.
// The half-minute offset keeps every interval at least one minute long so no
// event is ever scheduled at the current clock; ties round to even.
// Samples too large for an int64 (or NaN) saturate to Never.
func Interval(sample float64) int64 {
	x := sample + 0.5
	if math.IsNaN(x) || x >= float64(math.MaxInt64) {
		return Never
	}
	d := int64(math.RoundToEven(x))
	// a sample of exactly zero lands on 0.5, which rounds down
	if d < 1 {
		return 1
	}
	return d
}
