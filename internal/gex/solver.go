package gex

import (
	"context"
	"runtime"
	"sync"
)

// DefaultParallelThreshold is the window size at which Solver starts
// spreading candidate strikes across workers.
const DefaultParallelThreshold = 256

// Solver evaluates max pain candidates on a bounded worker pool.
// Its answer is identical to MaxPain.
type Solver struct {
	workers   int
	threshold int
}

type painJob struct {
	index  int
	strike float64
}

type painResult struct {
	index int
	pain  float64
}

// NewSolver creates a Solver. Non-positive workers defaults to GOMAXPROCS,
// non-positive threshold to DefaultParallelThreshold.
func NewSolver(workers, threshold int) *Solver {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	if threshold < 1 {
		threshold = DefaultParallelThreshold
	}
	return &Solver{
		workers:   workers,
		threshold: threshold,
	}
}

// MaxPain returns the max pain strike of m, in parallel when m is large.
func (s *Solver) MaxPain(ctx context.Context, m AggregateMap) (float64, error) {
	if len(m) == 0 {
		return 0, ErrEmptyWindow
	}
	if len(m) < s.threshold || s.workers == 1 {
		return MaxPain(m)
	}

	strikes := m.Strikes()
	pains := make([]float64, len(strikes))

	jobs := make(chan painJob, len(strikes))
	results := make(chan painResult, len(strikes))

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.worker(ctx, m, strikes, jobs, results)
		}()
	}

	go func() {
		defer close(jobs)
		for i, strike := range strikes {
			select {
			case <-ctx.Done():
				return
			case jobs <- painJob{index: i, strike: strike}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	received := 0
	for r := range results {
		pains[r.index] = r.pain
		received++
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if received != len(strikes) {
		return 0, context.Canceled
	}

	return argmin(strikes, pains), nil
}

// MarketStats is ComputeMarketStats with the max pain search run on the pool.
func (s *Solver) MarketStats(ctx context.Context, m AggregateMap) (MarketStats, error) {
	maxPain, err := s.MaxPain(ctx, m)
	if err != nil {
		return MarketStats{}, err
	}
	stats := sumStats(m)
	stats.MaxPainStrike = maxPain
	return stats, nil
}

func (s *Solver) worker(ctx context.Context, m AggregateMap, strikes []float64, jobs <-chan painJob, results chan<- painResult) {
	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- painResult{index: job.index, pain: pain(m, strikes, job.strike)}
	}
}
