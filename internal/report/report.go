// Package report turns a gex.Analysis into the strike table and summary the
// CLI prints and the API returns.
package report

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dgnsrekt/gexbot-analyzer/internal/gex"
)

// Net exposure emphasis for a row.
const (
	NetTop1    = "top1"
	NetTop2    = "top2"
	NetBottom1 = "bottom1"
	NetBottom2 = "bottom2"
)

// Row is one strike line of the table.
type Row struct {
	Strike            float64 `json:"strike"`
	NetGex            float64 `json:"net_gex"`
	AbsGex            float64 `json:"abs_gex"`
	TotalOpenInterest int64   `json:"total_open_interest"`
	CallOpenInterest  int64   `json:"call_open_interest"`
	PutOpenInterest   int64   `json:"put_open_interest"`
	Percent           float64 `json:"percent"`
	// Bar is NetGex scaled into [-1, 1] against the largest |NetGex| in the table.
	Bar float64 `json:"bar"`

	Nearest     bool   `json:"nearest,omitempty"`
	NetRank     string `json:"net_rank,omitempty"`
	AbsRank     int    `json:"abs_rank,omitempty"`
	PeakCallOI  bool   `json:"peak_call_oi,omitempty"`
	PeakPutOI   bool   `json:"peak_put_oi,omitempty"`
	PeakTotalOI bool   `json:"peak_total_oi,omitempty"`

	// Heat intensities (0-255) for rows inside an open interest heat tier.
	TotalOIHeat *int `json:"total_oi_heat,omitempty"`
	CallOIHeat  *int `json:"call_oi_heat,omitempty"`
	PutOIHeat   *int `json:"put_oi_heat,omitempty"`
}

// Stats is the JSON-safe form of gex.MarketStats.
type Stats struct {
	// PutCallRatio is nil when there is no call open interest.
	PutCallRatio         *float64 `json:"put_call_ratio"`
	PutCallRatioInfinite bool     `json:"put_call_ratio_infinite"`
	NetPositiveGamma     float64  `json:"net_positive_gamma"`
	NetNegativeGamma     float64  `json:"net_negative_gamma"`
	TotalCallOI          int64    `json:"total_call_oi"`
	TotalPutOI           int64    `json:"total_put_oi"`
}

type Report struct {
	ID             string             `json:"id,omitempty"`
	Symbol         string             `json:"symbol,omitempty"`
	Spot           float64            `json:"spot"`
	HalfWidth      float64            `json:"half_width,omitempty"`
	MaxPain        float64            `json:"max_pain"`
	SpotVsMaxPain  float64            `json:"spot_vs_max_pain"`
	Comparison     string             `json:"comparison"`
	Stats          Stats              `json:"stats"`
	Classification gex.Classification `json:"classification"`
	Rows           []Row              `json:"rows"`
}

// FromAnalysis builds a report for a completed analysis.
func FromAnalysis(a *gex.Analysis) *Report {
	r := Build(a.Aggregates, a.Stats, a.Classification, a.Spot)
	r.HalfWidth = a.HalfWidth
	return r
}

// Build lays out the windowed aggregates as table rows, highest strike first,
// and attaches the emphasis derived from c.
func Build(m gex.AggregateMap, stats gex.MarketStats, c gex.Classification, spot float64) *Report {
	strikes := m.Strikes()
	sort.Sort(sort.Reverse(sort.Float64Slice(strikes)))

	maxAbsNet := 1.0
	for _, s := range strikes {
		maxAbsNet = math.Max(maxAbsNet, math.Abs(m[s].NetGex))
	}

	netRanks := netRankIndex(c)
	absRanks := make(map[float64]int, len(c.TopAbs))
	for i, s := range c.TopAbs {
		if i < 2 {
			absRanks[s] = i + 1
		}
	}
	totalHeat := heatIndex(c.TotalOIHeat)
	callHeat := heatIndex(c.CallOIHeat)
	putHeat := heatIndex(c.PutOIHeat)

	rows := make([]Row, 0, len(strikes))
	for _, s := range strikes {
		a := m[s]
		row := Row{
			Strike:            s,
			NetGex:            a.NetGex,
			AbsGex:            a.AbsGex,
			TotalOpenInterest: a.TotalOpenInterest,
			CallOpenInterest:  a.CallOpenInterest,
			PutOpenInterest:   a.PutOpenInterest,
			Bar:               a.NetGex / maxAbsNet,
			Nearest:           s == c.NearestToSpot,
			NetRank:           netRanks[s],
			AbsRank:           absRanks[s],
			PeakCallOI:        s == c.PeakCallOI,
			PeakPutOI:         s == c.PeakPutOI,
			PeakTotalOI:       s == c.PeakTotalOI,
			TotalOIHeat:       totalHeat[s],
			CallOIHeat:        callHeat[s],
			PutOIHeat:         putHeat[s],
		}
		if a.AbsGex != 0 {
			row.Percent = a.NetGex / a.AbsGex * 100
		}
		rows = append(rows, row)
	}

	diff := decimal.NewFromFloat(spot).Sub(decimal.NewFromFloat(stats.MaxPainStrike))
	return &Report{
		Spot:           spot,
		MaxPain:        stats.MaxPainStrike,
		SpotVsMaxPain:  diff.InexactFloat64(),
		Comparison:     comparison(diff),
		Stats:          jsonStats(stats),
		Classification: c,
		Rows:           rows,
	}
}

// Comparison describes spot relative to max pain given diff = spot - maxPain.
// A zero difference reads as "below". Cents round half away from zero on the
// decimal value, so 12.345 prints as 12.35.
func Comparison(diff float64) string {
	return comparison(decimal.NewFromFloat(diff))
}

func comparison(diff decimal.Decimal) string {
	side := "below"
	if diff.IsPositive() {
		side = "above"
	}
	return fmt.Sprintf("Spot is $%s %s max pain", diff.Abs().StringFixed(2), side)
}

func dollars(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Only the first two positions of each ranking get a net emphasis. A strike in
// both the top and bottom lists is marked top.
func netRankIndex(c gex.Classification) map[float64]string {
	ranks := make(map[float64]string)
	bottom := []string{NetBottom1, NetBottom2}
	for i, s := range c.BottomNet {
		if i < len(bottom) {
			ranks[s] = bottom[i]
		}
	}
	top := []string{NetTop1, NetTop2}
	for i, s := range c.TopNet {
		if i < len(top) {
			ranks[s] = top[i]
		}
	}
	return ranks
}

func heatIndex(entries []gex.HeatEntry) map[float64]*int {
	idx := make(map[float64]*int, len(entries))
	for _, e := range entries {
		v := e.Intensity
		idx[e.Strike] = &v
	}
	return idx
}

func jsonStats(s gex.MarketStats) Stats {
	out := Stats{
		NetPositiveGamma: s.NetPositiveGamma,
		NetNegativeGamma: s.NetNegativeGamma,
		TotalCallOI:      s.TotalCallOI,
		TotalPutOI:       s.TotalPutOI,
	}
	if math.IsInf(s.PutCallRatio, 1) {
		out.PutCallRatioInfinite = true
	} else {
		ratio := s.PutCallRatio
		out.PutCallRatio = &ratio
	}
	return out
}
