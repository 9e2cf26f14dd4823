package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"featurelab/internal/errors"
	"featurelab/pkg/contracts/domain"
)

var contract = domain.PutParams{Strike: 60, Rate: 0.01, Yield: 0.02, Maturity: 1, Sigma: 0.05}

func TestPutPrice(t *testing.T) {
	tests := []struct {
		spot float64
		want float64
	}{
		{0, 59.402990024950086},
		{50, 10.393094016434333},
		{60, 1.4979297452123674},
		{70, 0.0018325565489382134},
		{100, 2.4089002220863103e-24},
	}

	for _, tt := range tests {
		got := PutPrice(tt.spot, contract)
		assert.InEpsilon(t, tt.want, got, 1e-9, "spot %v", tt.spot)
	}

	textbook := domain.PutParams{Strike: 100, Rate: 0.05, Maturity: 1, Sigma: 0.2}
	assert.InDelta(t, 5.5735, PutPrice(100, textbook), 1e-4)
}

func TestPutPricesValidation(t *testing.T) {
	tests := []struct {
		name   string
		spots  []float64
		params domain.PutParams
	}{
		{"zero strike", []float64{1}, domain.PutParams{Maturity: 1, Sigma: 0.1}},
		{"zero maturity", []float64{1}, domain.PutParams{Strike: 1, Sigma: 0.1}},
		{"zero sigma", []float64{1}, domain.PutParams{Strike: 1, Maturity: 1}},
		{"negative spot", []float64{1, -2}, contract},
		{"nan spot", []float64{math.NaN()}, contract},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PutPrices(tt.spots, tt.params)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
		})
	}
}

func TestQuotes(t *testing.T) {
	quotes, err := Quotes([]float64{0, 60}, contract)
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, 60.0, quotes[1].Spot)
	assert.InEpsilon(t, 1.4979297452123674, quotes[1].Price, 1e-9)
}

func TestPutPricesMonotone(t *testing.T) {
	spots, err := SpotGrid(0, 100, 0.5)
	require.NoError(t, err)

	prices, err := PutPrices(spots, contract)
	require.NoError(t, err)
	for i := 1; i < len(prices); i++ {
		assert.LessOrEqual(t, prices[i], prices[i-1], "put value falls as spot rises")
		assert.GreaterOrEqual(t, prices[i], 0.0)
	}
}

func TestSpotGrid(t *testing.T) {
	tests := []struct {
		name            string
		from, to, step  float64
		wantLen         int
		wantFirst, last float64
	}{
		{"inclusive end", 0, 100, 0.001, 100001, 0, 100},
		{"end off grid", 0, 1, 0.3, 4, 0, 0.9},
		{"single point", 5, 5, 1, 1, 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid, err := SpotGrid(tt.from, tt.to, tt.step)
			require.NoError(t, err)
			require.Len(t, grid, tt.wantLen)
			assert.Equal(t, tt.wantFirst, grid[0])
			assert.InDelta(t, tt.last, grid[len(grid)-1], 1e-9)
		})
	}
}

func TestSpotGridErrors(t *testing.T) {
	for _, c := range [][3]float64{
		{0, 1, 0},
		{0, 1, -1},
		{1, 0, 0.1},
		{0, math.Inf(1), 1},
		{0, 1e9, 1e-3},
	} {
		_, err := SpotGrid(c[0], c[1], c[2])
		assert.Error(t, err, "grid %v", c)
	}
}

func TestBenchmark(t *testing.T) {
	spots, err := SpotGrid(0, 100, 1)
	require.NoError(t, err)

	res, err := Benchmark(spots, contract, 3)
	require.NoError(t, err)
	assert.Equal(t, 101, res.Points)
	assert.Equal(t, 3, res.Replications)
	assert.GreaterOrEqual(t, res.Elapsed, res.PerRep)

	res, err = Benchmark(spots, contract, 0)
	require.NoError(t, err)
	assert.Equal(t, 100, res.Replications)

	_, err = Benchmark(spots, domain.PutParams{}, 1)
	assert.Error(t, err)
}
