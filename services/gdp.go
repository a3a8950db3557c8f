package services

import (
	"math"
	"math/rand"
)

// EstimateGDP derives the estimated GDP for a country from its
// population and USD exchange rate. The multiplier is drawn fresh from
// [1000, 2000) on every call, so the estimate is deliberately noisy and
// not reproducible across runs. The result is rounded to 2 decimals.
//
// A nil or non-positive rate yields nil. The "no currency at all"
// zero-GDP rule is applied by the reconciler, which never calls this
// for currency-less countries.
func EstimateGDP(population int64, rate *float64) *float64 {
	if rate == nil || *rate <= 0 {
		return nil
	}

	multiplier := 1000 + rand.Float64()*1000
	gdp := float64(population) * multiplier / *rate
	rounded := math.Round(gdp*100) / 100

	return &rounded
}
