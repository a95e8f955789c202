package gex

import "math"

// ComputeMarketStats derives put/call ratio, gamma splits and max pain from
// a windowed map.
func ComputeMarketStats(m AggregateMap) (MarketStats, error) {
	maxPain, err := MaxPain(m)
	if err != nil {
		return MarketStats{}, err
	}
	stats := sumStats(m)
	stats.MaxPainStrike = maxPain
	return stats, nil
}

// PutCallRatio is total put OI over total call OI, +Inf without call OI.
func PutCallRatio(putOI, callOI int64) float64 {
	if callOI == 0 {
		return math.Inf(1)
	}
	return float64(putOI) / float64(callOI)
}

func sumStats(m AggregateMap) MarketStats {
	var stats MarketStats
	for _, strike := range m.Strikes() {
		agg := m[strike]
		stats.TotalCallOI += agg.CallOpenInterest
		stats.TotalPutOI += agg.PutOpenInterest
		switch {
		case agg.NetGex > 0:
			stats.NetPositiveGamma += agg.NetGex
		case agg.NetGex < 0:
			stats.NetNegativeGamma += agg.NetGex
		}
	}
	stats.PutCallRatio = PutCallRatio(stats.TotalPutOI, stats.TotalCallOI)
	return stats
}
