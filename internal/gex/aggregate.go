package gex

import (
	"fmt"
	"math"
)

// Params are the caller-supplied inputs of one pipeline pass.
type Params struct {
	Spot float64
	// Expirations to include. A nil set includes every expiration,
	// an empty non-nil set includes none.
	Expirations map[string]bool
	// HalfWidth of the strike window around spot. Zero means DefaultHalfWidth.
	HalfWidth float64
}

// Run filters rows by expiration, aggregates them per strike and narrows
// the result to the strike window around spot.
func Run(rows []Row, p Params) (AggregateMap, error) {
	if err := validateSpot(p.Spot); err != nil {
		return nil, err
	}
	halfWidth := p.HalfWidth
	if halfWidth == 0 {
		halfWidth = DefaultHalfWidth
	}

	filtered := rows
	if p.Expirations != nil {
		filtered = FilterExpirations(rows, p.Expirations)
	}

	all, err := Aggregate(filtered, p.Spot)
	if err != nil {
		return nil, err
	}

	return Window(all, p.Spot, halfWidth)
}

// FilterExpirations returns the rows whose expiration is in included.
func FilterExpirations(rows []Row, included map[string]bool) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if included[r.Expiration] {
			out = append(out, r)
		}
	}
	return out
}

// Aggregate folds rows into one StrikeAggregate per distinct strike.
// The whole batch is rejected with *RowErrors if any row is malformed.
func Aggregate(rows []Row, spot float64) (AggregateMap, error) {
	if err := validateSpot(spot); err != nil {
		return nil, err
	}

	errs := &RowErrors{}
	for i, r := range rows {
		validateRow(errs, i, r)
	}
	if errs.HasErrors() {
		return nil, errs
	}

	spotSq := spot * spot
	m := make(AggregateMap)
	for _, r := range rows {
		callGex := r.CallGamma * float64(r.CallOpenInterest) * spotSq
		putGex := -1 * r.PutGamma * float64(r.PutOpenInterest) * spotSq

		agg, ok := m[r.Strike]
		if !ok {
			agg = &StrikeAggregate{Strike: r.Strike}
			m[r.Strike] = agg
		}

		agg.NetGex += callGex + putGex
		agg.AbsGex += math.Abs(callGex) + math.Abs(putGex)
		agg.TotalOpenInterest += r.CallOpenInterest + r.PutOpenInterest
		agg.CallOpenInterest += r.CallOpenInterest
		agg.PutOpenInterest += r.PutOpenInterest
	}

	return m, nil
}

// Window keeps the strikes in [spot-halfWidth, spot+halfWidth]. The returned
// map shares aggregates with m; neither is modified.
func Window(m AggregateMap, spot, halfWidth float64) (AggregateMap, error) {
	if err := validateSpot(spot); err != nil {
		return nil, err
	}
	if halfWidth < 0 || math.IsNaN(halfWidth) || math.IsInf(halfWidth, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWindow, halfWidth)
	}

	lo, hi := spot-halfWidth, spot+halfWidth
	out := make(AggregateMap)
	for strike, agg := range m {
		if lo <= strike && strike <= hi {
			out[strike] = agg
		}
	}
	return out, nil
}

func validateSpot(spot float64) error {
	if math.IsNaN(spot) || math.IsInf(spot, 0) || spot <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidSpot, spot)
	}
	return nil
}

func validateRow(errs *RowErrors, i int, r Row) {
	if !isFinite(r.Strike) {
		errs.add(i, r.Strike, "strike", "is not a finite number")
	}
	if !isFinite(r.CallGamma) {
		errs.add(i, r.Strike, "call_gamma", "is not a finite number")
	}
	if !isFinite(r.PutGamma) {
		errs.add(i, r.Strike, "put_gamma", "is not a finite number")
	}
	if r.CallOpenInterest < 0 {
		errs.add(i, r.Strike, "call_open_interest", "is negative")
	}
	if r.PutOpenInterest < 0 {
		errs.add(i, r.Strike, "put_open_interest", "is negative")
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
