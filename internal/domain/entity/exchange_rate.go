package entity

import (
	"time"
)

// ExchangeRate is the USD to Currency conversion factor reported for one day
type ExchangeRate struct {
	Currency string    `json:"currency"`
	Date     time.Time `json:"date"`
	Rate     float64   `json:"rate"`
}

// RateSeries turns the rates reported for currency into a Series.
// Rates for other currencies are ignored.
func RateSeries(currency string, rates []ExchangeRate) (Series, error) {
	points := make([]DatedValue, 0, len(rates))
	for _, r := range rates {
		if r.Currency != currency {
			continue
		}
		points = append(points, DatedValue{Date: r.Date, Value: r.Rate})
	}
	return NewSeries(points...)
}
