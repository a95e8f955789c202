package gex

// Pain is the total payout owed to option holders if the underlying
// settles at settle, summed over every strike in m.
func Pain(m AggregateMap, settle float64) float64 {
	return pain(m, m.Strikes(), settle)
}

// pain sums in ascending strike order so repeated runs are bit-identical.
func pain(m AggregateMap, strikes []float64, settle float64) float64 {
	var total float64
	for _, strike := range strikes {
		agg := m[strike]
		if settle > strike {
			total += (settle - strike) * float64(agg.CallOpenInterest)
		}
		if strike > settle {
			total += (strike - settle) * float64(agg.PutOpenInterest)
		}
	}
	return total
}

// MaxPain returns the strike in m that minimizes Pain. Ties resolve to the
// lowest strike.
func MaxPain(m AggregateMap) (float64, error) {
	if len(m) == 0 {
		return 0, ErrEmptyWindow
	}

	strikes := m.Strikes()
	pains := make([]float64, len(strikes))
	for i, s := range strikes {
		pains[i] = pain(m, strikes, s)
	}
	return argmin(strikes, pains), nil
}

// argmin walks strikes in ascending order so the first minimum wins.
func argmin(strikes, pains []float64) float64 {
	best := 0
	for i := 1; i < len(pains); i++ {
		if pains[i] < pains[best] {
			best = i
		}
	}
	return strikes[best]
}
