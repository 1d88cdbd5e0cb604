// internal/mocks/mocks.go
package mocks

import (
	"context"
	"time"

	"github.com/lasupernova/stock-ticker-dash/internal/domain/entity"
	"github.com/stretchr/testify/mock"
)

// MockRateFetcher mocks the RateFetcher interface
type MockRateFetcher struct {
	mock.Mock
}

func (m *MockRateFetcher) FetchRates(ctx context.Context, start, end time.Time, currency entity.Currency) (entity.Series, error) {
	args := m.Called(ctx, start, end, currency)
	return args.Get(0).(entity.Series), args.Error(1)
}

// MockPriceSeriesProvider mocks the PriceSeriesProvider interface
type MockPriceSeriesProvider struct {
	mock.Mock
}

func (m *MockPriceSeriesProvider) FetchPrices(ctx context.Context, symbol string, start, end time.Time) (entity.Series, error) {
	args := m.Called(ctx, symbol, start, end)
	return args.Get(0).(entity.Series), args.Error(1)
}

// MockGainersProvider mocks the GainersProvider interface
type MockGainersProvider struct {
	mock.Mock
}

func (m *MockGainersProvider) DayGainers(ctx context.Context, count int) ([]entity.Gainer, error) {
	args := m.Called(ctx, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Gainer), args.Error(1)
}

// MockTickerRepository mocks the TickerRepository interface
type MockTickerRepository struct {
	mock.Mock
}

func (m *MockTickerRepository) Store(ctx context.Context, ticker *entity.Ticker) error {
	args := m.Called(ctx, ticker)
	return args.Error(0)
}

func (m *MockTickerRepository) StoreAll(ctx context.Context, tickers []entity.Ticker) error {
	args := m.Called(ctx, tickers)
	return args.Error(0)
}

func (m *MockTickerRepository) FindBySymbol(ctx context.Context, symbol string) (*entity.Ticker, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Ticker), args.Error(1)
}

func (m *MockTickerRepository) List(ctx context.Context) ([]entity.Ticker, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Ticker), args.Error(1)
}

func (m *MockTickerRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockListingSource mocks the exchange listing source
type MockListingSource struct {
	mock.Mock
}

func (m *MockListingSource) FetchSymbols(ctx context.Context, name, url string) ([]string, error) {
	args := m.Called(ctx, name, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockReferenceSource mocks the reference symbol source
type MockReferenceSource struct {
	mock.Mock
}

func (m *MockReferenceSource) FetchTickers(ctx context.Context) ([]entity.Ticker, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Ticker), args.Error(1)
}

// MockTickerTable mocks the persisted ticker table
type MockTickerTable struct {
	mock.Mock
}

func (m *MockTickerTable) Write(tickers []entity.Ticker) error {
	args := m.Called(tickers)
	return args.Error(0)
}

