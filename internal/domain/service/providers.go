package service

import (
	"context"
	"time"

	"github.com/lasupernova/stock-ticker-dash/internal/domain/entity"
)

// RateFetcher retrieves USD to currency rates for every day the remote reports in [start, end]
type RateFetcher interface {
	FetchRates(ctx context.Context, start, end time.Time, currency entity.Currency) (entity.Series, error)
}

// PriceSeriesProvider retrieves daily closing prices in USD
type PriceSeriesProvider interface {
	FetchPrices(ctx context.Context, symbol string, start, end time.Time) (entity.Series, error)
}

// GainersProvider retrieves today's top gaining stocks
type GainersProvider interface {
	DayGainers(ctx context.Context, count int) ([]entity.Gainer, error)
}
