package session

import "github.com/shopspring/decimal"

// Percent returns 100*score/total rounded half away from zero to two
// decimals. A zero total yields 0.
func Percent(score, total int) float64 {
	return PercentDecimal(score, total).InexactFloat64()
}

// PercentDecimal is Percent without the float conversion.
func PercentDecimal(score, total int) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(score)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(2)
}
