package aggregation

import "github.com/shopspring/decimal"

// avgScale is the precision of the published avg_distance values.
const avgScale = 2

// MeanDistance computes sum/count rounded to 2 decimal places,
// half-away-from-zero (decimal.Round semantics, matching SQL ROUND).
// The sum arrives as a decimal string scanned from the store so the division
// is exact, with no float64 drift before the final rounding step.
// Returns 0 for count <= 0.
func MeanDistance(sum decimal.Decimal, count int64) float64 {
	if count <= 0 {
		return 0
	}
	mean := sum.Div(decimal.NewFromInt(count)).Round(avgScale)
	f, _ := mean.Float64()
	return f
}
