package gex

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomRows(seed int64, n int) []Row {
	rng := rand.New(rand.NewSource(seed))
	exps := []string{"W1", "W2", "M1"}
	rows := make([]Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, Row{
			Expiration:       exps[rng.Intn(len(exps))],
			Strike:           float64(400 + 5*rng.Intn(80)),
			CallGamma:        rng.Float64() * 0.05,
			CallOpenInterest: int64(rng.Intn(5000)),
			PutGamma:         rng.Float64() * 0.05,
			PutOpenInterest:  int64(rng.Intn(5000)),
		})
	}
	return rows
}

func TestAggregate_EndToEndScenario(t *testing.T) {
	rows := []Row{
		{Expiration: "W1", Strike: 500, CallGamma: 0.02, CallOpenInterest: 100, PutGamma: 0.01, PutOpenInterest: 50},
		{Expiration: "W1", Strike: 500, CallGamma: 0.00, CallOpenInterest: 0, PutGamma: 0.03, PutOpenInterest: 200},
	}

	m, err := Run(rows, Params{Spot: 500, Expirations: map[string]bool{"W1": true}})
	require.NoError(t, err)
	require.Len(t, m, 1)

	agg := m[500]
	require.NotNil(t, agg)
	assert.InDelta(t, -1125000.0, agg.NetGex, 1e-6)
	assert.InDelta(t, 2125000.0, agg.AbsGex, 1e-6)
	assert.Equal(t, int64(100), agg.CallOpenInterest)
	assert.Equal(t, int64(250), agg.PutOpenInterest)
	assert.Equal(t, int64(350), agg.TotalOpenInterest)

	class, err := Classify(m, 500)
	require.NoError(t, err)
	assert.Equal(t, []float64{500}, class.BottomNet)
	assert.Equal(t, 500.0, class.NearestToSpot)
}

func TestAggregate_Invariants(t *testing.T) {
	m, err := Aggregate(randomRows(42, 2000), 450)
	require.NoError(t, err)
	require.NotEmpty(t, m)

	for strike, agg := range m {
		assert.Equal(t, agg.CallOpenInterest+agg.PutOpenInterest, agg.TotalOpenInterest, "conservation at %v", strike)
		assert.GreaterOrEqual(t, agg.AbsGex, math.Abs(agg.NetGex), "abs >= |net| at %v", strike)
		assert.Equal(t, strike, agg.Strike)
	}
}

func TestAggregate_SingleLegAbsEqualsNet(t *testing.T) {
	m, err := Aggregate([]Row{{Strike: 100, CallGamma: 0.01, CallOpenInterest: 10}}, 100)
	require.NoError(t, err)
	assert.Equal(t, m[100].AbsGex, math.Abs(m[100].NetGex))
}

func TestAggregate_InvalidSpot(t *testing.T) {
	rows := []Row{{Strike: 100, CallGamma: 0.01, CallOpenInterest: 1}}

	for _, spot := range []float64{0, -1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := Aggregate(rows, spot)
		assert.ErrorIs(t, err, ErrInvalidSpot, "spot %v", spot)

		_, err = Run(rows, Params{Spot: spot})
		assert.ErrorIs(t, err, ErrInvalidSpot, "spot %v", spot)
	}
}

func TestAggregate_MalformedRowsRejectBatch(t *testing.T) {
	rows := []Row{
		{Strike: 100, CallGamma: 0.01, CallOpenInterest: 10},
		{Strike: 105, CallGamma: math.NaN(), CallOpenInterest: 10},
		{Strike: 110, PutGamma: 0.02, PutOpenInterest: -3},
		{Strike: math.Inf(1)},
	}

	m, err := Aggregate(rows, 100)
	require.Error(t, err)
	assert.Nil(t, m)

	var rowErrs *RowErrors
	require.True(t, errors.As(err, &rowErrs))
	require.Len(t, rowErrs.Rows, 3)
	assert.Equal(t, 1, rowErrs.Rows[0].Index)
	assert.Equal(t, "call_gamma", rowErrs.Rows[0].Field)
	assert.Equal(t, 2, rowErrs.Rows[1].Index)
	assert.Equal(t, "put_open_interest", rowErrs.Rows[1].Field)
	assert.Equal(t, "strike", rowErrs.Rows[2].Field)
	assert.Contains(t, err.Error(), "3 malformed row field(s)")
}

func TestFilterExpirations(t *testing.T) {
	rows := []Row{
		{Expiration: "W1", Strike: 100},
		{Expiration: "W2", Strike: 100},
		{Expiration: "W1", Strike: 105},
	}

	got := FilterExpirations(rows, map[string]bool{"W1": true})
	assert.Len(t, got, 2)
	for _, r := range got {
		assert.Equal(t, "W1", r.Expiration)
	}

	assert.Empty(t, FilterExpirations(rows, map[string]bool{}))
}

func TestRun_NilExpirationsIncludesAll(t *testing.T) {
	rows := []Row{
		{Expiration: "W1", Strike: 100, CallOpenInterest: 1},
		{Expiration: "W2", Strike: 100, CallOpenInterest: 2},
	}

	m, err := Run(rows, Params{Spot: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(3), m[100].CallOpenInterest)

	m, err = Run(rows, Params{Spot: 100, Expirations: map[string]bool{}})
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestWindow_BoundsInclusive(t *testing.T) {
	m := AggregateMap{
		199: {Strike: 199},
		200: {Strike: 200},
		500: {Strike: 500},
		800: {Strike: 800},
		801: {Strike: 801},
	}

	w, err := Window(m, 500, 300)
	require.NoError(t, err)
	assert.Equal(t, []float64{200, 500, 800}, w.Strikes())
	assert.Len(t, m, 5, "source map must not be modified")
}

func TestWindow_Monotonic(t *testing.T) {
	m, err := Aggregate(randomRows(7, 500), 600)
	require.NoError(t, err)

	narrow, err := Window(m, 600, 50)
	require.NoError(t, err)
	wide, err := Window(m, 600, 150)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(wide), len(narrow))
	for strike, agg := range narrow {
		wideAgg, ok := wide[strike]
		require.True(t, ok, "strike %v dropped by wider window", strike)
		assert.Equal(t, *agg, *wideAgg)
	}
}

func TestWindow_InvalidHalfWidth(t *testing.T) {
	m := AggregateMap{100: {Strike: 100}}
	for _, w := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := Window(m, 100, w)
		assert.ErrorIs(t, err, ErrInvalidWindow)
	}
}

func TestRun_Idempotent(t *testing.T) {
	rows := randomRows(99, 1500)
	p := Params{Spot: 600, Expirations: map[string]bool{"W1": true, "M1": true}}

	first, err := Run(rows, p)
	require.NoError(t, err)
	second, err := Run(rows, p)
	require.NoError(t, err)

	require.Equal(t, first.Strikes(), second.Strikes())
	for strike, agg := range first {
		assert.Equal(t, *agg, *second[strike])
	}

	s1, err := ComputeMarketStats(first)
	require.NoError(t, err)
	s2, err := ComputeMarketStats(second)
	require.NoError(t, err)
	assert.Equal(t, s1, s2)

	c1, err := Classify(first, 600)
	require.NoError(t, err)
	c2, err := Classify(second, 600)
	require.NoError(t, err)
	assert.Equal(t, c1, c2)
}
