// Package replicate runs independent workshop simulations across consecutive
// seeds and summarizes them.
package replicate

import (
	"context"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/inference-sim/workshop-sim/sim"
)

// Result is the outcome of one replication.
type Result struct {
	Seed    int64
	Metrics *sim.Metrics
}

// Run executes n replications of cfg with seeds cfg.Seed, cfg.Seed+1, ...,
// at most parallelism at a time. Results are returned in seed order. The first
// failure cancels the remaining replications. The last seed must fit in an int64.
func Run(ctx context.Context, cfg sim.SimConfig, n, parallelism int) ([]Result, error) {
	if n < 1 {
		return nil, fmt.Errorf("replications must be at least 1, got %d", n)
	}
	if parallelism < 1 {
		return nil, fmt.Errorf("parallelism must be at least 1, got %d", parallelism)
	}
	if cfg.Seed > math.MaxInt64-int64(n-1) {
		return nil, fmt.Errorf("seeds %d..%d+%d overflow int64", cfg.Seed, cfg.Seed, n-1)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	results := make([]Result, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			c := cfg
			c.Seed = cfg.Seed + int64(i)
			s, err := sim.NewSimulator(c, nil, nil)
			if err != nil {
				return err
			}
			if err := s.Run(gctx); err != nil {
				return fmt.Errorf("replication %d (seed %d): %w", i, c.Seed, err)
			}
			results[i] = Result{Seed: c.Seed, Metrics: s.Metrics}
			logrus.Debugf("replication %d (seed %d) served %d", i, c.Seed, s.Metrics.Served)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Summary aggregates a set of replications.
type Summary struct {
	Replications      int     `json:"replications"`
	MeanServed        float64 `json:"mean_served"`
	StdDevServed      float64 `json:"stddev_served"`
	MeanAverageWait   float64 `json:"mean_average_wait_min"` // over replications with a defined average
	StdDevAverageWait float64 `json:"stddev_average_wait_min"`
	Degenerate        int     `json:"degenerate"` // replications that served nothing
}

// Summarize computes mean and sample standard deviation of served counts and
// of average waits. Replications whose average wait is undefined are counted
// in Degenerate and left out of the wait statistics.
func Summarize(results []Result) Summary {
	sum := Summary{Replications: len(results)}
	if len(results) == 0 {
		return sum
	}
	served := make([]float64, 0, len(results))
	waits := make([]float64, 0, len(results))
	for _, r := range results {
		served = append(served, float64(r.Metrics.Served))
		if avg, ok := r.Metrics.AverageWait(); ok {
			waits = append(waits, avg)
		} else {
			sum.Degenerate++
		}
	}
	sum.MeanServed, sum.StdDevServed = meanAndStdDev(served)
	sum.MeanAverageWait, sum.StdDevAverageWait = meanAndStdDev(waits)
	return sum
}

func meanAndStdDev(data stats.Float64Data) (float64, float64) {
	if len(data) == 0 {
		return 0, 0
	}
	mean, _ := stats.Mean(data)
	if len(data) < 2 {
		return mean, 0
	}
	sd, _ := stats.StandardDeviationSample(data)
	return mean, sd
}
