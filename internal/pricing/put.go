package pricing

import (
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"featurelab/internal/config"
	"featurelab/internal/errors"
	"featurelab/pkg/contracts/domain"
)

var validate = validator.New()

// Validate checks strike, maturity and volatility are positive
func Validate(p domain.PutParams) error {
	if err := validate.Struct(p); err != nil {
		return errors.NewAppError(errors.ErrTypeValidation, "invalid put parameters", err)
	}
	return nil
}

// PutPrice prices a European put under Black-Scholes with a continuous
// dividend yield. A zero spot prices to the discounted strike.
func PutPrice(s float64, p domain.PutParams) float64 {
	sqrtT := math.Sqrt(p.Maturity)
	d1 := (math.Log(s/p.Strike) + (p.Rate-p.Yield+p.Sigma*p.Sigma/2)*p.Maturity) / (p.Sigma * sqrtT)
	d2 := d1 - p.Sigma*sqrtT

	discounted := p.Strike * math.Exp(-p.Rate*p.Maturity)
	if s == 0 {
		return discounted
	}
	return distuv.UnitNormal.CDF(-d2)*discounted - s*math.Exp(-p.Yield*p.Maturity)*distuv.UnitNormal.CDF(-d1)
}

// PutPrices prices every spot. Spots must be non-negative.
func PutPrices(spots []float64, p domain.PutParams) ([]float64, error) {
	out := make([]float64, len(spots))
	if err := PutPricesInto(out, spots, p); err != nil {
		return nil, err
	}
	return out, nil
}

// PutPricesInto writes the price of spots[i] to dst[i]
func PutPricesInto(dst, spots []float64, p domain.PutParams) error {
	if len(dst) != len(spots) {
		return errors.NewAppValidationError(
			fmt.Sprintf("destination holds %d prices, want %d", len(dst), len(spots)))
	}
	if err := Validate(p); err != nil {
		return err
	}
	for i, s := range spots {
		if !(s >= 0) {
			return errors.NewAppValidationError(fmt.Sprintf("spot %v at index %d must be non-negative", s, i)).
				WithContext("index", i)
		}
	}

	for i, s := range spots {
		dst[i] = PutPrice(s, p)
	}
	return nil
}

// Quotes pairs every spot with its price
func Quotes(spots []float64, p domain.PutParams) ([]domain.PutQuote, error) {
	prices, err := PutPrices(spots, p)
	if err != nil {
		return nil, err
	}
	quotes := make([]domain.PutQuote, len(spots))
	for i := range spots {
		quotes[i] = domain.PutQuote{Spot: spots[i], Price: prices[i]}
	}
	return quotes, nil
}

// SpotGrid returns from, from+step, ... up to and including to when it
// lies on the grid.
func SpotGrid(from, to, step float64) ([]float64, error) {
	if !(step > 0) || math.IsInf(step, 0) {
		return nil, errors.NewAppValidationError(fmt.Sprintf("grid step %v must be positive", step))
	}
	if math.IsNaN(from) || math.IsNaN(to) || math.IsInf(from, 0) || math.IsInf(to, 0) || to < from {
		return nil, errors.NewAppValidationError(fmt.Sprintf("grid bounds [%v, %v] are invalid", from, to))
	}

	span := (to - from) / step
	if span+1 > config.MaxGridPoints {
		return nil, errors.NewAppValidationError(
			fmt.Sprintf("grid of %.0f points exceeds the limit of %d", span+1, config.MaxGridPoints))
	}

	n := int(math.Floor(span+1e-9)) + 1
	if n == 1 {
		return []float64{from}, nil
	}
	return floats.Span(make([]float64, n), from, from+float64(n-1)*step), nil
}

// BenchmarkResult reports the time taken to price a grid repeatedly
type BenchmarkResult struct {
	Points       int           `json:"points"`
	Replications int           `json:"replications"`
	Elapsed      time.Duration `json:"elapsed"`
	PerRep       time.Duration `json:"per_replication"`
}

// Benchmark prices spots reps times into a reused buffer. reps <= 0 uses
// the default replication count.
func Benchmark(spots []float64, p domain.PutParams, reps int) (BenchmarkResult, error) {
	if reps <= 0 {
		reps = config.DefaultBenchmarkReps
	}

	dst := make([]float64, len(spots))
	start := time.Now()
	for i := 0; i < reps; i++ {
		if err := PutPricesInto(dst, spots, p); err != nil {
			return BenchmarkResult{}, err
		}
	}
	elapsed := time.Since(start)

	return BenchmarkResult{
		Points:       len(spots),
		Replications: reps,
		Elapsed:      elapsed,
		PerRep:       elapsed / time.Duration(reps),
	}, nil
}
