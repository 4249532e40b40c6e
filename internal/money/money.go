package money

import "github.com/shopspring/decimal"

// Round2 rounds to kopecks, half away from zero.
func Round2(x float64) float64 {
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}

// Sum adds the values in decimal arithmetic and rounds the result.
func Sum(xs ...float64) float64 {
	total := decimal.Zero
	for _, x := range xs {
		total = total.Add(decimal.NewFromFloat(x))
	}
	return total.Round(2).InexactFloat64()
}

// Sub returns a-b rounded to kopecks.
func Sub(a, b float64) float64 {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Round(2).InexactFloat64()
}

// Percent returns pct percent of x rounded to kopecks.
func Percent(x, pct float64) float64 {
	return decimal.NewFromFloat(x).
		Mul(decimal.NewFromFloat(pct)).
		Div(decimal.NewFromInt(100)).
		Round(2).
		InexactFloat64()
}

// Mul returns x*n rounded to kopecks.
func Mul(x float64, n int) float64 {
	return decimal.NewFromFloat(x).Mul(decimal.NewFromInt(int64(n))).Round(2).InexactFloat64()
}

// IsZero reports whether x rounds to zero kopecks.
func IsZero(x float64) bool {
	return decimal.NewFromFloat(x).Round(2).IsZero()
}
