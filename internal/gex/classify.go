package gex

import (
	"math"
	"sort"
)

const (
	DefaultTopN         = 2
	DefaultHeatFraction = 0.1
)

// ClassifyOptions tunes the ranking widths.
type ClassifyOptions struct {
	TopN         int     // strikes kept in the top/bottom net and top abs rankings
	HeatFraction float64 // share of the window placed in each OI heat tier
}

// DefaultClassifyOptions returns the reference ranking widths.
func DefaultClassifyOptions() ClassifyOptions {
	return ClassifyOptions{TopN: DefaultTopN, HeatFraction: DefaultHeatFraction}
}

// Classify ranks the windowed strikes with the default options.
func Classify(m AggregateMap, spot float64) (Classification, error) {
	return ClassifyWith(m, spot, DefaultClassifyOptions())
}

// ClassifyWith ranks the windowed strikes. Every tie resolves to the lower strike.
func ClassifyWith(m AggregateMap, spot float64, opts ClassifyOptions) (Classification, error) {
	if len(m) == 0 {
		return Classification{}, ErrEmptyWindow
	}
	if opts.TopN < 1 {
		opts.TopN = DefaultTopN
	}
	if opts.HeatFraction <= 0 || opts.HeatFraction > 1 {
		opts.HeatFraction = DefaultHeatFraction
	}

	strikes := m.Strikes()
	netGex := func(s float64) float64 { return m[s].NetGex }
	absGex := func(s float64) float64 { return m[s].AbsGex }
	callOI := func(s float64) float64 { return float64(m[s].CallOpenInterest) }
	putOI := func(s float64) float64 { return float64(m[s].PutOpenInterest) }
	totalOI := func(s float64) float64 { return float64(m[s].TotalOpenInterest) }

	tierSize := int(math.Floor(float64(len(strikes)) * opts.HeatFraction))
	if tierSize < 1 {
		tierSize = 1
	}

	return Classification{
		TopNet:        head(rankDesc(strikes, netGex), opts.TopN),
		BottomNet:     head(rankAsc(strikes, netGex), opts.TopN),
		TopAbs:        head(rankDesc(strikes, absGex), opts.TopN),
		PeakCallOI:    rankDesc(strikes, callOI)[0],
		PeakPutOI:     rankDesc(strikes, putOI)[0],
		PeakTotalOI:   rankDesc(strikes, totalOI)[0],
		TotalOIHeat:   heatTier(rankDesc(strikes, totalOI), tierSize),
		CallOIHeat:    heatTier(rankDesc(strikes, callOI), tierSize),
		PutOIHeat:     heatTier(rankDesc(strikes, putOI), tierSize),
		NearestToSpot: nearest(strikes, spot),
	}, nil
}

// rankDesc orders ascending strikes by value, highest first. The stable sort
// keeps lower strikes ahead on ties.
func rankDesc(strikes []float64, value func(float64) float64) []float64 {
	out := append([]float64(nil), strikes...)
	sort.SliceStable(out, func(i, j int) bool {
		return value(out[i]) > value(out[j])
	})
	return out
}

func rankAsc(strikes []float64, value func(float64) float64) []float64 {
	out := append([]float64(nil), strikes...)
	sort.SliceStable(out, func(i, j int) bool {
		return value(out[i]) < value(out[j])
	})
	return out
}

func head(ranked []float64, n int) []float64 {
	if len(ranked) < n {
		n = len(ranked)
	}
	return ranked[:n]
}

func heatTier(ranked []float64, size int) []HeatEntry {
	members := head(ranked, size)
	tier := make([]HeatEntry, len(members))
	for rank, strike := range members {
		tier[rank] = HeatEntry{
			Strike:    strike,
			Rank:      rank,
			Intensity: int(255 * (1 - float64(rank)/float64(len(members)))),
		}
	}
	return tier
}

// nearest expects ascending strikes; strict comparison keeps the lower one on ties.
func nearest(strikes []float64, spot float64) float64 {
	best := strikes[0]
	bestDist := math.Abs(best - spot)
	for _, s := range strikes[1:] {
		if d := math.Abs(s - spot); d < bestDist {
			best, bestDist = s, d
		}
	}
	return best
}
