package report

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgnsrekt/gexbot-analyzer/internal/gex"
)

func sampleReport(t *testing.T) *Report {
	t.Helper()

	rows := []gex.Row{
		{Expiration: "W1", Strike: 590, PutGamma: 0.01, PutOpenInterest: 100},
		{Expiration: "W1", Strike: 600, CallGamma: 0.02, CallOpenInterest: 50, PutGamma: 0.01, PutOpenInterest: 10},
		{Expiration: "W1", Strike: 610, CallGamma: 0.01, CallOpenInterest: 10},
	}

	a, err := gex.NewAnalyzer().Analyze(context.Background(), rows, gex.Params{Spot: 603})
	require.NoError(t, err)
	return FromAnalysis(a)
}

func TestBuild_Layout(t *testing.T) {
	r := sampleReport(t)

	require.Len(t, r.Rows, 3)
	assert.Equal(t, 610.0, r.Rows[0].Strike, "rows are ordered highest strike first")
	assert.Equal(t, 600.0, r.Rows[1].Strike)
	assert.Equal(t, 590.0, r.Rows[2].Strike)

	assert.Equal(t, 600.0, r.MaxPain)
	assert.InDelta(t, 3.0, r.SpotVsMaxPain, 1e-9)
	assert.Equal(t, "Spot is $3.00 above max pain", r.Comparison)
	assert.Equal(t, gex.DefaultHalfWidth, r.HalfWidth)
}

func TestBuild_Emphasis(t *testing.T) {
	r := sampleReport(t)
	top, mid, low := r.Rows[0], r.Rows[1], r.Rows[2]

	assert.Equal(t, NetTop1, mid.NetRank)
	assert.Equal(t, NetTop2, top.NetRank, "a strike in both rankings is marked top")
	assert.Equal(t, NetBottom1, low.NetRank)

	assert.Equal(t, 1, mid.AbsRank)
	assert.Equal(t, 2, low.AbsRank)
	assert.Equal(t, 0, top.AbsRank)

	assert.True(t, mid.Nearest)
	assert.False(t, top.Nearest || low.Nearest)

	assert.True(t, mid.PeakCallOI)
	assert.True(t, low.PeakPutOI)
	assert.True(t, low.PeakTotalOI)

	require.NotNil(t, low.TotalOIHeat)
	assert.Equal(t, 255, *low.TotalOIHeat)
	require.NotNil(t, mid.CallOIHeat)
	assert.Nil(t, top.CallOIHeat)
}

func TestBuild_BarAndPercent(t *testing.T) {
	r := sampleReport(t)

	assert.InDelta(t, -1.0, r.Rows[2].Bar, 1e-9)
	assert.InDelta(t, 0.9, r.Rows[1].Bar, 1e-9)
	assert.InDelta(t, 0.1, r.Rows[0].Bar, 1e-9)

	assert.InDelta(t, -100.0, r.Rows[2].Percent, 1e-9)
	assert.InDelta(t, 100.0, r.Rows[0].Percent, 1e-9)
	assert.InDelta(t, 0.9/1.1*100, r.Rows[1].Percent, 1e-9)

	for _, row := range r.Rows {
		assert.LessOrEqual(t, math.Abs(row.Bar), 1.0)
	}
}

func TestBuild_ZeroExposure(t *testing.T) {
	m := gex.AggregateMap{100: {Strike: 100, CallOpenInterest: 5, TotalOpenInterest: 5}}
	stats, err := gex.ComputeMarketStats(m)
	require.NoError(t, err)
	c, err := gex.Classify(m, 100)
	require.NoError(t, err)

	r := Build(m, stats, c, 100)
	assert.Equal(t, 0.0, r.Rows[0].Percent)
	assert.Equal(t, 0.0, r.Rows[0].Bar)
	assert.Equal(t, "Spot is $0.00 below max pain", r.Comparison)
}

func TestWriteJSON_InfiniteRatio(t *testing.T) {
	m := gex.AggregateMap{100: {Strike: 100, NetGex: -5, AbsGex: 5, PutOpenInterest: 7, TotalOpenInterest: 7}}
	stats, err := gex.ComputeMarketStats(m)
	require.NoError(t, err)
	require.True(t, math.IsInf(stats.PutCallRatio, 1))
	c, err := gex.Classify(m, 101)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, Build(m, stats, c, 101)))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	s := decoded["stats"].(map[string]any)
	assert.Nil(t, s["put_call_ratio"])
	assert.Equal(t, true, s["put_call_ratio_infinite"])
}

func TestWriteJSON_FiniteRatio(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleReport(t)))

	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.NotNil(t, decoded.Stats.PutCallRatio)
	assert.InDelta(t, 110.0/60.0, *decoded.Stats.PutCallRatio, 1e-9)
	assert.False(t, decoded.Stats.PutCallRatioInfinite)
	assert.Len(t, decoded.Rows, 3)
}

func TestWriteText(t *testing.T) {
	r := sampleReport(t)
	r.Symbol = "SPY"

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, r))
	out := buf.String()

	assert.Contains(t, out, "Symbol: SPY")
	assert.Contains(t, out, "Max Pain: $600.00")
	assert.Contains(t, out, "Comparison: Spot is $3.00 above max pain")
	assert.Contains(t, out, "Put/Call Ratio: 1.83")
	assert.Contains(t, out, "Net Positive Gamma: 363,609")
	assert.Contains(t, out, "Net Negative Gamma: -363,609")
	assert.Contains(t, out, "> 600.00")
	assert.Contains(t, out, "100 "+PeakMarker)
	assert.Contains(t, out, "[top1]")
	assert.Contains(t, out, "[abs2]")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Contains(t, lines[len(lines)-1], "590.00", "lowest strike is the last table row")
}

func TestComparison(t *testing.T) {
	assert.Equal(t, "Spot is $12.35 below max pain", Comparison(-12.345))
	assert.Equal(t, "Spot is $0.50 above max pain", Comparison(0.5))
	assert.Equal(t, "Spot is $0.01 above max pain", Comparison(0.005))
}

func TestBuild_SpotVsMaxPainIsExactDecimal(t *testing.T) {
	m := gex.AggregateMap{600: {Strike: 600, NetGex: 1, AbsGex: 1, CallOpenInterest: 1, TotalOpenInterest: 1}}
	stats, err := gex.ComputeMarketStats(m)
	require.NoError(t, err)
	spot := 603.1
	c, err := gex.Classify(m, spot)
	require.NoError(t, err)

	require.NotEqual(t, 3.1, spot-stats.MaxPainStrike, "float subtraction leaves a residue")

	r := Build(m, stats, c, spot)
	assert.Equal(t, 3.1, r.SpotVsMaxPain)
	assert.Equal(t, "Spot is $3.10 above max pain", r.Comparison)
}
