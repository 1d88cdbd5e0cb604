package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lasupernova/stock-ticker-dash/internal/domain/entity"
	"github.com/lasupernova/stock-ticker-dash/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2023-01-03 .. 2023-01-06 09:30 New York, gmtoffset -18000
const chartBody = `{
	"chart": {
		"result": [{
			"meta": {"currency": "USD", "symbol": "TSLA", "gmtoffset": -18000},
			"timestamp": [1672756200, 1672842600, 1672929000, 1673015400, 1673015400],
			"indicators": {"quote": [{"close": [108.1, null, 110.3, 113.0, 113.06]}]}
		}],
		"error": null
	}
}`

func newYahoo(url string) *YahooClient {
	return NewYahooClient(YahooConfig{Endpoint: url, Timeout: time.Second}, logger.Nop())
}

func TestYahooFetchPrices(t *testing.T) {
	ctx := context.Background()
	start := entity.NewDate(2023, 1, 1)
	end := entity.NewDate(2023, 1, 6)

	t.Run("Closes keyed by trading day", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v8/finance/chart/TSLA", r.URL.Path)
			assert.Equal(t, "1d", r.URL.Query().Get("interval"))
			assert.Equal(t, "1672531200", r.URL.Query().Get("period1"))
			assert.Equal(t, "1673049600", r.URL.Query().Get("period2"))
			assert.NotEmpty(t, r.Header.Get("User-Agent"))
			w.Write([]byte(chartBody))
		}))
		defer server.Close()

		prices, err := newYahoo(server.URL).FetchPrices(ctx, "TSLA", start, end)
		require.NoError(t, err)

		assert.Equal(t, []time.Time{
			entity.NewDate(2023, 1, 3),
			entity.NewDate(2023, 1, 5),
			entity.NewDate(2023, 1, 6),
		}, prices.Dates())
		assert.Equal(t, []float64{108.1, 110.3, 113.06}, prices.Values())
	})

	t.Run("Unknown symbol", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"chart": {"result": null, "error": {"code": "Not Found", "description": "No data found, symbol may be delisted"}}}`))
		}))
		defer server.Close()

		_, err := newYahoo(server.URL).FetchPrices(ctx, "NOPE", start, end)
		assert.ErrorIs(t, err, entity.ErrSymbolNotFound)
	})

	t.Run("Rate limited is remote unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`Too Many Requests`))
		}))
		defer server.Close()

		_, err := newYahoo(server.URL).FetchPrices(ctx, "TSLA", start, end)

		var remote *entity.RemoteUnavailableError
		require.ErrorAs(t, err, &remote)
		assert.Equal(t, yahooSource, remote.Source)
	})

	t.Run("Non-numeric close is malformed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"chart": {"result": [{"meta": {"gmtoffset": 0}, "timestamp": [1672704000], "indicators": {"quote": [{"close": ["N/A"]}]}}]}}`))
		}))
		defer server.Close()

		_, err := newYahoo(server.URL).FetchPrices(ctx, "TSLA", start, end)

		var malformed *entity.MalformedSeriesError
		assert.ErrorAs(t, err, &malformed)
	})
}

func TestYahooDayGainers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/finance/screener/predefined/saved", r.URL.Path)
		assert.Equal(t, "day_gainers", r.URL.Query().Get("scrIds"))
		assert.Equal(t, "2", r.URL.Query().Get("count"))

		w.Write([]byte(`{"finance": {"result": [{"quotes": [
			{"symbol": "ABC", "shortName": "ABC Corp", "longName": "ABC Corporation", "regularMarketPrice": 12.5, "regularMarketChange": 2.5, "regularMarketChangePercent": 25.0, "regularMarketVolume": 1500000, "marketCap": 900000000},
			{"symbol": "XYZ", "shortName": "XYZ Inc", "regularMarketPrice": 40, "regularMarketChange": 6, "regularMarketChangePercent": 17.6},
			{"symbol": "EXTRA", "shortName": "Extra"}
		]}], "error": null}}`))
	}))
	defer server.Close()

	gainers, err := newYahoo(server.URL).DayGainers(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, gainers, 2)

	assert.Equal(t, "ABC", gainers[0].Symbol)
	assert.Equal(t, "ABC Corporation", gainers[0].Name)
	assert.Equal(t, int64(1500000), gainers[0].Volume)
	assert.Equal(t, "XYZ Inc", gainers[1].Name)
	assert.Equal(t, 17.6, gainers[1].ChangePercent)
}
