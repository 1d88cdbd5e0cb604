// internal/infrastructure/handler/integration_test.go
package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/lasupernova/stock-ticker-dash/internal/application/service"
	"github.com/lasupernova/stock-ticker-dash/internal/domain/entity"
	"github.com/lasupernova/stock-ticker-dash/internal/infrastructure/db"
	"github.com/lasupernova/stock-ticker-dash/internal/infrastructure/handler"
	"github.com/lasupernova/stock-ticker-dash/internal/infrastructure/logger"
	"github.com/lasupernova/stock-ticker-dash/internal/infrastructure/middleware"
	"github.com/lasupernova/stock-ticker-dash/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	*httptest.Server
	prices  *mocks.MockPriceSeriesProvider
	rates   *mocks.MockRateFetcher
	gainers *mocks.MockGainersProvider
}

// setupTestServer wires the real services and a temporary ticker store behind mocked remotes
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	badgerDB, err := db.OpenBadger(t.TempDir())
	require.NoError(t, err, "failed to open database")
	t.Cleanup(func() { badgerDB.Close() })

	repo := db.NewBadgerTickerRepository(badgerDB)
	require.NoError(t, repo.StoreAll(context.Background(), []entity.Ticker{
		{Symbol: "TSLA", Name: "Tesla Inc.", Date: entity.NewDate(2023, 1, 1), Type: "cs"},
		{Symbol: "BTC-USD", Name: "Bitcoin USD", Type: entity.CryptoType},
		{Symbol: "ZZZ"},
	}))

	ts := &testServer{
		prices:  new(mocks.MockPriceSeriesProvider),
		rates:   new(mocks.MockRateFetcher),
		gainers: new(mocks.MockGainersProvider),
	}

	log := logger.Nop()
	charts := service.NewChartService(ts.prices, ts.rates, repo, service.ChartServiceConfig{
		Earliest: entity.NewDate(2015, 1, 1),
		Now:      func() time.Time { return time.Date(2023, 6, 30, 12, 0, 0, 0, time.UTC) },
	}, log)
	tickers := service.NewTickerService(repo, log)

	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.LoggingMiddleware(log))
	handler.NewChartHandler(charts, log).RegisterRoutes(router)
	handler.NewTickerHandler(tickers, ts.gainers, log).RegisterRoutes(router)
	handler.NewDashboardHandler(charts, tickers, handler.DashboardConfig{
		Title:          "Stock Ticker Dashboard",
		DefaultSymbols: []string{"TSLA"},
	}, log).RegisterRoutes(router)

	ts.Server = httptest.NewServer(router)
	t.Cleanup(ts.Close)

	return ts
}

func getJSON(t *testing.T, url string, out interface{}) *http.Response {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestTickerEndpoints(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	server := setupTestServer(t)

	t.Run("Options", func(t *testing.T) {
		var body handler.TickerOptionsResponse
		resp := getJSON(t, server.URL+"/api/tickers", &body)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 3, body.Count)
		assert.Equal(t, []entity.TickerOption{
			{Label: "Bitcoin USD [CRYPTO]", Value: "BTC-USD"},
			{Label: "Tesla Inc.", Value: "TSLA"},
			{Label: "ZZZ", Value: "ZZZ"},
		}, body.Options)
	})

	t.Run("Options with query and limit", func(t *testing.T) {
		var body handler.TickerOptionsResponse
		getJSON(t, server.URL+"/api/tickers?q=tes&limit=1", &body)

		assert.Equal(t, []entity.TickerOption{{Label: "Tesla Inc.", Value: "TSLA"}}, body.Options)
	})

	t.Run("Invalid limit", func(t *testing.T) {
		var body handler.ErrorResponse
		resp := getJSON(t, server.URL+"/api/tickers?limit=-1", &body)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid limit", body.Error)
	})

	t.Run("Lookup", func(t *testing.T) {
		var body handler.TickerResponse
		resp := getJSON(t, server.URL+"/api/tickers/tsla", &body)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, handler.TickerResponse{
			Symbol: "TSLA",
			Name:   "Tesla Inc.",
			Label:  "Tesla Inc.",
			Date:   "2023-01-01",
			Type:   "cs",
		}, body)
	})

	t.Run("Lookup unknown symbol", func(t *testing.T) {
		var body handler.ErrorResponse
		resp := getJSON(t, server.URL+"/api/tickers/NOPE", &body)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, http.StatusNotFound, body.Status)
		assert.Equal(t, resp.Header.Get(middleware.RequestIDHeader), body.RequestID)
	})
}

func TestChartEndpoint(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	d1 := entity.NewDate(2023, 1, 2)
	d2 := entity.NewDate(2023, 1, 3)

	t.Run("Converted chart", func(t *testing.T) {
		server := setupTestServer(t)
		server.rates.On("FetchRates", mock.Anything, d1, d2, entity.Currency("EUR")).Return(entity.MustSeries(
			entity.DatedValue{Date: d1, Value: 0.5},
			entity.DatedValue{Date: d2, Value: 0.25},
		), nil).Once()
		server.prices.On("FetchPrices", mock.Anything, "TSLA", d1, d2).Return(entity.MustSeries(
			entity.DatedValue{Date: d1, Value: 100},
			entity.DatedValue{Date: d2, Value: 120},
		), nil).Once()

		var chart service.Chart
		resp := getJSON(t, server.URL+"/api/chart?symbols=TSLA&currency=EUR&start=2023-01-02&end=2023-01-03", &chart)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, chart.Traces, 1)
		assert.Equal(t, "Tesla Inc.", chart.Traces[0].Name)
		assert.Equal(t, []string{"2023-01-02", "2023-01-03"}, chart.Traces[0].X)
		assert.Equal(t, []float64{50, 30}, chart.Traces[0].Y)
		assert.Equal(t, "Price [€]", chart.YAxisTitle)
		server.rates.AssertExpectations(t)
		server.prices.AssertExpectations(t)
	})

	t.Run("Remote failure is a visible error", func(t *testing.T) {
		server := setupTestServer(t)
		server.prices.On("FetchPrices", mock.Anything, "TSLA", d1, d2).
			Return(entity.Series{}, entity.NewRemoteUnavailableError("yahoo", errors.New("status 502"))).Once()

		var body handler.ErrorResponse
		resp := getJSON(t, server.URL+"/api/chart?symbols=TSLA&start=2023-01-02&end=2023-01-03", &body)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "Market data unavailable", body.Error)
		assert.Contains(t, body.Description, "yahoo")
		assert.NotEmpty(t, body.RequestID)
	})

	t.Run("Malformed data", func(t *testing.T) {
		server := setupTestServer(t)
		server.prices.On("FetchPrices", mock.Anything, "TSLA", d1, d2).
			Return(entity.Series{}, &entity.MalformedSeriesError{Date: d1, Value: "N/A"}).Once()

		resp := getJSON(t, server.URL+"/api/chart?symbols=TSLA&start=2023-01-02&end=2023-01-03", nil)

		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	})

	t.Run("Overflowing conversion is malformed", func(t *testing.T) {
		server := setupTestServer(t)
		server.rates.On("FetchRates", mock.Anything, d1, d2, entity.Currency("EUR")).Return(entity.MustSeries(
			entity.DatedValue{Date: d1, Value: 1e10},
		), nil).Once()
		server.prices.On("FetchPrices", mock.Anything, "TSLA", d1, d2).Return(entity.MustSeries(
			entity.DatedValue{Date: d1, Value: 1e300},
		), nil).Once()

		var body handler.ErrorResponse
		resp := getJSON(t, server.URL+"/api/chart?symbols=TSLA&currency=EUR&start=2023-01-02&end=2023-01-03", &body)

		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		assert.Contains(t, body.Description, "overflows")
	})

	t.Run("Bad input", func(t *testing.T) {
		server := setupTestServer(t)

		tests := []struct {
			name  string
			query string
			error string
		}{
			{"Unparseable date", "symbols=TSLA&start=2023-13-01", "Invalid date range"},
			{"Future end", "symbols=TSLA&end=2023-07-01", "Invalid date range"},
			{"Unsupported currency", "symbols=TSLA&currency=XYZ", "Unsupported currency"},
			{"No symbols", "symbols=", "Invalid request"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				var body handler.ErrorResponse
				resp := getJSON(t, server.URL+"/api/chart?"+tt.query, &body)

				assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
				assert.Equal(t, tt.error, body.Error)
			})
		}

		server.prices.AssertNotCalled(t, "FetchPrices", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Default range is the last year", func(t *testing.T) {
		server := setupTestServer(t)
		start := entity.NewDate(2022, 6, 30)
		end := entity.NewDate(2023, 6, 30)
		server.prices.On("FetchPrices", mock.Anything, "TSLA", start, end).Return(entity.Series{}, nil).Once()

		var chart service.Chart
		resp := getJSON(t, server.URL+"/api/chart?symbols=tsla", &chart)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "2022-06-30", chart.Start)
		assert.Equal(t, "2023-06-30", chart.End)
		server.prices.AssertExpectations(t)
	})
}

func TestCurrencyAndGainerEndpoints(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	server := setupTestServer(t)

	t.Run("Currencies", func(t *testing.T) {
		var body []handler.CurrencyResponse
		resp := getJSON(t, server.URL+"/api/currencies", &body)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		require.NotEmpty(t, body)
		assert.Equal(t, handler.CurrencyResponse{Code: "USD", Grapheme: "$", Base: true}, body[0])
	})

	t.Run("Gainers", func(t *testing.T) {
		gainers := []entity.Gainer{{Symbol: "XYZ", Name: "XYZ Corp", Price: 12.5, Change: 2.5, ChangePercent: 25}}
		server.gainers.On("DayGainers", mock.Anything, 5).Return(gainers, nil).Once()

		var body handler.GainersResponse
		resp := getJSON(t, server.URL+"/api/gainers?count=5", &body)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, gainers, body.Gainers)
	})

	t.Run("Invalid gainer count", func(t *testing.T) {
		resp := getJSON(t, server.URL+"/api/gainers?count=1000", nil)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestDashboardPage(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	server := setupTestServer(t)

	t.Run("Index", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/")
		require.NoError(t, err)
		defer resp.Body.Close()

		page, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
		assert.Contains(t, string(page), "<h1>Stock Ticker Dashboard</h1>")
		assert.Contains(t, string(page), `max="2023-06-30"`)
		assert.Contains(t, string(page), `min="2015-01-01"`)
		assert.Contains(t, string(page), `data-default="TSLA"`)
	})

	t.Run("Health", func(t *testing.T) {
		var body handler.HealthResponse
		resp := getJSON(t, server.URL+"/healthz", &body)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, handler.HealthResponse{Status: "ok", Tickers: 3}, body)
	})
}
