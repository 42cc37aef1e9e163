package domain

import "github.com/shopspring/decimal"

// Monetary amounts travel as float64 but every comparison that decides
// whether a bid is admitted goes through decimal arithmetic rounded to
// cents, so float representation error can never flip an admission.
const moneyPrecision int32 = 2

// MeetsFloor reports whether amount is at least the floor, compared in cents.
func MeetsFloor(amount, floor float64) bool {
	a := decimal.NewFromFloat(amount).Round(moneyPrecision)
	f := decimal.NewFromFloat(floor).Round(moneyPrecision)
	return a.GreaterThanOrEqual(f)
}

// moneyGreater reports whether a is strictly greater than b, compared in cents.
func moneyGreater(a, b float64) bool {
	return decimal.NewFromFloat(a).Round(moneyPrecision).
		GreaterThan(decimal.NewFromFloat(b).Round(moneyPrecision))
}

// moneyEqual reports whether two amounts are equal, compared in cents.
func moneyEqual(a, b float64) bool {
	return decimal.NewFromFloat(a).Round(moneyPrecision).
		Equal(decimal.NewFromFloat(b).Round(moneyPrecision))
}
