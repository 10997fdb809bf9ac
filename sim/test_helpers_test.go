package sim

// fixedSource returns the same draws forever.
type fixedSource struct {
	arrival float64
	service float64
	pick    int
}

func (s *fixedSource) InterArrival(float64) float64 { return s.arrival }
func (s *fixedSource) Service(float64) float64      { return s.service }
func (s *fixedSource) Pick(int) int                 { return s.pick }

// referenceCategories is the workshop from the reference scenario, in the
// order its category draws index into.
func referenceCategories() []Category {
	return []Category{
		{Name: "motorcycle", Rate: 1.0 / 8},
		{Name: "pickup_truck", Rate: 1.0 / 20},
		{Name: "car", Rate: 1.0 / 15},
	}
}

// referenceConfig returns the reference scenario with the given seed.
func referenceConfig(seed int64) SimConfig {
	return SimConfig{
		Horizon:     70,
		ArrivalRate: 1.0 / 5,
		Categories:  referenceCategories(),
		Seed:        seed,
	}
}
