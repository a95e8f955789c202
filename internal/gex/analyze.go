package gex

import "context"

// Analysis is the complete output of one pass over a chain.
type Analysis struct {
	Spot           float64        `json:"spot"`
	HalfWidth      float64        `json:"half_width"`
	Aggregates     AggregateMap   `json:"-"`
	Stats          MarketStats    `json:"stats"`
	Classification Classification `json:"classification"`
}

// Analyzer runs the full pipeline with fixed window and ranking settings.
type Analyzer struct {
	halfWidth float64
	classify  ClassifyOptions
	solver    *Solver
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithHalfWidth sets the default strike window half-width.
func WithHalfWidth(w float64) Option {
	return func(a *Analyzer) { a.halfWidth = w }
}

// WithClassifyOptions sets the ranking widths.
func WithClassifyOptions(opts ClassifyOptions) Option {
	return func(a *Analyzer) { a.classify = opts }
}

// WithSolver replaces the default max pain solver.
func WithSolver(s *Solver) Option {
	return func(a *Analyzer) { a.solver = s }
}

func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		halfWidth: DefaultHalfWidth,
		classify:  DefaultClassifyOptions(),
		solver:    NewSolver(0, 0),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze runs filter, aggregate, window, stats and classification. A zero
// p.HalfWidth uses the analyzer's default.
func (a *Analyzer) Analyze(ctx context.Context, rows []Row, p Params) (*Analysis, error) {
	if p.HalfWidth == 0 {
		p.HalfWidth = a.halfWidth
	}

	windowed, err := Run(rows, p)
	if err != nil {
		return nil, err
	}
	if len(windowed) == 0 {
		return nil, ErrEmptyWindow
	}

	stats, err := a.solver.MarketStats(ctx, windowed)
	if err != nil {
		return nil, err
	}

	class, err := ClassifyWith(windowed, p.Spot, a.classify)
	if err != nil {
		return nil, err
	}

	return &Analysis{
		Spot:           p.Spot,
		HalfWidth:      p.HalfWidth,
		Aggregates:     windowed,
		Stats:          stats,
		Classification: class,
	}, nil
}
