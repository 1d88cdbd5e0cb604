package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lasupernova/stock-ticker-dash/internal/domain/entity"
	"github.com/lasupernova/stock-ticker-dash/internal/infrastructure/logger"
)

const (
	yahooSource   = "yahoo"
	yahooNotFound = "Not Found"
)

// YahooConfig points the client at the chart and screener hosts
type YahooConfig struct {
	Endpoint         string
	ScreenerEndpoint string
	Timeout          time.Duration
}

// YahooClient reads daily closes and the day gainers screener from Yahoo Finance
type YahooClient struct {
	endpoint         string
	screenerEndpoint string
	httpClient       *http.Client
	logger           logger.Logger
}

// NewYahooClient creates a new Yahoo Finance client
func NewYahooClient(cfg YahooConfig, log logger.Logger) *YahooClient {
	screener := cfg.ScreenerEndpoint
	if screener == "" {
		screener = cfg.Endpoint
	}
	return &YahooClient{
		endpoint:         strings.TrimRight(cfg.Endpoint, "/"),
		screenerEndpoint: strings.TrimRight(screener, "/"),
		httpClient:       newHTTPClient(cfg.Timeout),
		logger:           orDefault(log).WithField("source", yahooSource),
	}
}

var yahooHeaders = map[string]string{"User-Agent": "Mozilla/5.0"}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// yahooChart is the response structure from the chart API
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency  string `json:"currency"`
				Symbol    string `json:"symbol"`
				GMTOffset int64  `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []interface{} `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

// FetchPrices retrieves the daily closing price of symbol for every trading day in [start, end].
// Null closes (market holidays) are skipped.
func (c *YahooClient) FetchPrices(ctx context.Context, symbol string, start, end time.Time) (entity.Series, error) {
	start, end = entity.DateOf(start), entity.DateOf(end)

	query := url.Values{}
	query.Set("period1", fmt.Sprint(start.Unix()))
	query.Set("period2", fmt.Sprint(end.AddDate(0, 0, 1).Unix()))
	query.Set("interval", "1d")
	query.Set("events", "history")

	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.endpoint, url.PathEscape(symbol), query.Encode())

	resp, err := get(ctx, c.httpClient, yahooSource, reqURL, yahooHeaders)
	if err != nil {
		return entity.Series{}, err
	}

	var chart yahooChart
	decodeErr := json.Unmarshal(resp.body, &chart)

	// unknown symbols come back as 404 with a chart error body
	if decodeErr == nil && chart.Chart.Error != nil {
		if chart.Chart.Error.Code == yahooNotFound {
			return entity.Series{}, fmt.Errorf("%w: %s", entity.ErrSymbolNotFound, symbol)
		}
		return entity.Series{}, entity.NewRemoteUnavailableError(yahooSource, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description))
	}
	if resp.status != http.StatusOK {
		return entity.Series{}, statusError(yahooSource, resp)
	}
	if decodeErr != nil {
		return entity.Series{}, entity.NewRemoteUnavailableError(yahooSource, fmt.Errorf("yahoo decode: %w", decodeErr))
	}
	if len(chart.Chart.Result) == 0 {
		return entity.MustSeries(), nil
	}

	result := chart.Chart.Result[0]
	if result.Meta.Currency != "" && result.Meta.Currency != string(entity.BaseCurrency) {
		c.logger.Warn("Price series is not quoted in the base currency", map[string]interface{}{
			"symbol":   symbol,
			"currency": result.Meta.Currency,
		})
	}

	if len(result.Indicators.Quote) == 0 {
		return entity.MustSeries(), nil
	}
	closes := result.Indicators.Quote[0].Close

	// the live bar can repeat the last trading day; later entries win
	byDay := make(map[time.Time]float64, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		day := entity.DateOf(time.Unix(ts+result.Meta.GMTOffset, 0).UTC())
		if !inRange(day, start, end) {
			continue
		}
		v, err := entity.ParseValue(day, closes[i])
		if err != nil {
			return entity.Series{}, err
		}
		byDay[day] = v
	}

	points := make([]entity.DatedValue, 0, len(byDay))
	for day, v := range byDay {
		points = append(points, entity.DatedValue{Date: day, Value: v})
	}

	series, err := entity.NewSeries(points...)
	if err != nil {
		return entity.Series{}, err
	}

	c.logger.Info("Prices retrieved", map[string]interface{}{
		"symbol": symbol,
		"days":   series.Len(),
	})

	return series, nil
}

type yahooScreener struct {
	Finance struct {
		Result []struct {
			Quotes []struct {
				Symbol                     string  `json:"symbol"`
				ShortName                  string  `json:"shortName"`
				LongName                   string  `json:"longName"`
				RegularMarketPrice         float64 `json:"regularMarketPrice"`
				RegularMarketChange        float64 `json:"regularMarketChange"`
				RegularMarketChangePercent float64 `json:"regularMarketChangePercent"`
				RegularMarketVolume        float64 `json:"regularMarketVolume"`
				MarketCap                  float64 `json:"marketCap"`
			} `json:"quotes"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"finance"`
}

// DayGainers retrieves the top count stocks of the day_gainers screener
func (c *YahooClient) DayGainers(ctx context.Context, count int) ([]entity.Gainer, error) {
	if count <= 0 {
		count = 25
	}

	query := url.Values{}
	query.Set("scrIds", "day_gainers")
	query.Set("count", fmt.Sprint(count))

	reqURL := c.screenerEndpoint + "/v1/finance/screener/predefined/saved?" + query.Encode()

	resp, err := get(ctx, c.httpClient, yahooSource, reqURL, yahooHeaders)
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, statusError(yahooSource, resp)
	}

	var screener yahooScreener
	if err := json.Unmarshal(resp.body, &screener); err != nil {
		return nil, entity.NewRemoteUnavailableError(yahooSource, fmt.Errorf("yahoo decode: %w", err))
	}
	if screener.Finance.Error != nil {
		return nil, entity.NewRemoteUnavailableError(yahooSource, fmt.Errorf("yahoo api error: %s", screener.Finance.Error.Description))
	}

	gainers := []entity.Gainer{}
	for _, r := range screener.Finance.Result {
		for _, q := range r.Quotes {
			name := q.LongName
			if name == "" {
				name = q.ShortName
			}
			gainers = append(gainers, entity.Gainer{
				Symbol:        q.Symbol,
				Name:          name,
				Price:         q.RegularMarketPrice,
				Change:        q.RegularMarketChange,
				ChangePercent: q.RegularMarketChangePercent,
				Volume:        int64(q.RegularMarketVolume),
				MarketCap:     int64(q.MarketCap),
			})
		}
	}

	if len(gainers) > count {
		gainers = gainers[:count]
	}

	return gainers, nil
}
