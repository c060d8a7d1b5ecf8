package entities

import "github.com/shopspring/decimal"

// Round rounds half away from zero to the given number of decimal places
func Round(value float64, places int32) float64 {
	return decimal.NewFromFloat(value).Round(places).InexactFloat64()
}

// SumRounded adds the values exactly and rounds the total
func SumRounded(values []float64, places int32) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.Round(places).InexactFloat64()
}
