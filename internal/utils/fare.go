package utils

import "github.com/shopspring/decimal"

// ComputeTotalFare returns the class price times the passenger count.
func ComputeTotalFare(pricePerPassenger float64, passengers int) float64 {
	if passengers <= 0 {
		return 0
	}
	total := decimal.NewFromFloat(pricePerPassenger).Mul(decimal.NewFromInt(int64(passengers)))
	return total.Round(2).InexactFloat64()
}

// ApplyRate returns amount*rate rounded to two decimal places.
func ApplyRate(amount, rate float64) float64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromFloat(rate)).Round(2).InexactFloat64()
}
