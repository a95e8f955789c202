// Package gex computes gamma exposure analytics from an options-chain snapshot:
// per-strike aggregation, max pain, market stats and strike classification.
//
// Everything in this package is a pure function of its inputs. Nothing is cached
// between calls and no function mutates a map produced by another.
package gex

import "sort"

// DefaultHalfWidth is the price distance on either side of spot kept by Window.
const DefaultHalfWidth = 300.0

// Row is one normalized option-chain line: both legs of a single strike
// for a single expiration.
type Row struct {
	Expiration       string  `json:"expiration"`
	Strike           float64 `json:"strike"`
	CallGamma        float64 `json:"call_gamma"`
	CallOpenInterest int64   `json:"call_open_interest"`
	PutGamma         float64 `json:"put_gamma"`
	PutOpenInterest  int64   `json:"put_open_interest"`
}

// StrikeAggregate accumulates every row sharing a strike.
type StrikeAggregate struct {
	Strike            float64 `json:"strike"`
	NetGex            float64 `json:"net_gex"`
	AbsGex            float64 `json:"abs_gex"`
	TotalOpenInterest int64   `json:"total_open_interest"`
	CallOpenInterest  int64   `json:"call_open_interest"`
	PutOpenInterest   int64   `json:"put_open_interest"`
}

// AggregateMap maps strike to its aggregate.
type AggregateMap map[float64]*StrikeAggregate

// Strikes returns the map keys in ascending order.
func (m AggregateMap) Strikes() []float64 {
	strikes := make([]float64, 0, len(m))
	for k := range m {
		strikes = append(strikes, k)
	}
	sort.Float64s(strikes)
	return strikes
}

// MarketStats holds the chain-level figures derived from a windowed map.
type MarketStats struct {
	PutCallRatio     float64 `json:"put_call_ratio"` // +Inf when there is no call open interest
	NetPositiveGamma float64 `json:"net_positive_gamma"`
	NetNegativeGamma float64 `json:"net_negative_gamma"`
	MaxPainStrike    float64 `json:"max_pain_strike"`
	TotalCallOI      int64   `json:"total_call_oi"`
	TotalPutOI       int64   `json:"total_put_oi"`
}

// HeatEntry is one member of an open-interest heat tier.
type HeatEntry struct {
	Strike    float64 `json:"strike"`
	Rank      int     `json:"rank"`
	Intensity int     `json:"intensity"`
}

// Classification lists the strikes that deserve emphasis. Categories are
// computed independently and may overlap.
type Classification struct {
	TopNet        []float64   `json:"top_net"`
	BottomNet     []float64   `json:"bottom_net"`
	TopAbs        []float64   `json:"top_abs"`
	PeakCallOI    float64     `json:"peak_call_oi"`
	PeakPutOI     float64     `json:"peak_put_oi"`
	PeakTotalOI   float64     `json:"peak_total_oi"`
	TotalOIHeat   []HeatEntry `json:"total_oi_heat"`
	CallOIHeat    []HeatEntry `json:"call_oi_heat"`
	PutOIHeat     []HeatEntry `json:"put_oi_heat"`
	NearestToSpot float64     `json:"nearest_to_spot"`
}
