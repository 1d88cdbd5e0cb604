package service

import (
	"math"

	"github.com/lasupernova/stock-ticker-dash/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Reconcile converts a price series with a rate series.
// A nil rates means no conversion and price is returned as is. Otherwise the
// result holds price*rate for every date present in both inputs; dates found
// in only one input are dropped, never filled.
func Reconcile(price entity.Series, rates *entity.Series) (entity.Series, error) {
	if rates == nil {
		return price, nil
	}

	if err := checkFinite(price); err != nil {
		return entity.Series{}, err
	}
	if err := checkFinite(*rates); err != nil {
		return entity.Series{}, err
	}

	pp := price.Points()
	rp := rates.Points()
	out := make([]entity.DatedValue, 0, min(len(pp), len(rp)))

	// both inputs are sorted ascending, so a merge walk yields the intersection in order
	i, j := 0, 0
	for i < len(pp) && j < len(rp) {
		switch {
		case pp[i].Date.Before(rp[j].Date):
			i++
		case rp[j].Date.Before(pp[i].Date):
			j++
		default:
			product := decimal.NewFromFloat(pp[i].Value).Mul(decimal.NewFromFloat(rp[j].Value))
			v := product.InexactFloat64()
			if math.IsInf(v, 0) {
				return entity.Series{}, &entity.MalformedSeriesError{Date: pp[i].Date, Value: v, Reason: "product overflows"}
			}
			out = append(out, entity.DatedValue{Date: pp[i].Date, Value: v})
			i++
			j++
		}
	}

	return entity.NewSeries(out...)
}

func checkFinite(s entity.Series) error {
	for _, p := range s.Points() {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			return &entity.MalformedSeriesError{Date: p.Date, Value: p.Value, Reason: "not finite"}
		}
	}
	return nil
}
