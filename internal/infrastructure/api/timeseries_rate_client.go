package api

import (
	"bytes"
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

const timeseriesSource = "exchange-rates"

// TimeseriesRateClient reads daily rates from a Frankfurter-style time series endpoint:
// GET {endpoint}/{start}..{end}?from=USD&to={currency}
type TimeseriesRateClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     logger.Logger
}

// NewTimeseriesRateClient creates a client for the configured endpoint
func NewTimeseriesRateClient(cfg RateFetcherConfig, log logger.Logger) *TimeseriesRateClient {
	return &TimeseriesRateClient{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:     cfg.APIKey,
		httpClient: newHTTPClient(cfg.Timeout),
		logger:     orDefault(log).WithField("source", timeseriesSource),
	}
}

// TimeseriesResponse is the body returned by the time series endpoint
type TimeseriesResponse struct {
	Base      string                            `json:"base"`
	StartDate string                            `json:"start_date"`
	EndDate   string                            `json:"end_date"`
	Rates     map[string]map[string]interface{} `json:"rates"`
}

// FetchRates retrieves one rate per reported day in [start, end]. Days the remote
// reports without the requested currency are skipped. There is a single attempt.
func (c *TimeseriesRateClient) FetchRates(ctx context.Context, start, end time.Time, currency entity.Currency) (entity.Series, error) {
	if currency.IsBase() {
		return entity.Series{}, fmt.Errorf("%w: %s is the base currency", entity.ErrUnsupportedCurrency, currency)
	}

	query := url.Values{}
	query.Set("from", string(entity.BaseCurrency))
	query.Set("to", string(currency))
	if c.apiKey != "" {
		query.Set("access_key", c.apiKey)
	}

	reqURL := fmt.Sprintf("%s/%s..%s?%s", c.endpoint, entity.FormatDate(start), entity.FormatDate(end), query.Encode())

	c.logger.Debug("Requesting exchange rates", map[string]interface{}{
		"currency": string(currency),
		"start":    entity.FormatDate(start),
		"end":      entity.FormatDate(end),
	})

	resp, err := get(ctx, c.httpClient, timeseriesSource, reqURL, nil)
	if err != nil {
		return entity.Series{}, err
	}

	if isNoDataReply(resp) {
		c.logger.Warn("No exchange rates for range", map[string]interface{}{
			"currency": string(currency),
			"start":    entity.FormatDate(start),
			"end":      entity.FormatDate(end),
		})
		return entity.MustSeries(), nil
	}
	if resp.status != http.StatusOK {
		return entity.Series{}, statusError(timeseriesSource, resp)
	}

	var body TimeseriesResponse
	dec := json.NewDecoder(bytes.NewReader(resp.body))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return entity.Series{}, entity.NewRemoteUnavailableError(timeseriesSource, fmt.Errorf("failed to decode response: %w", err))
	}

	if body.Base != "" && body.Base != string(entity.BaseCurrency) {
		return entity.Series{}, entity.NewRemoteUnavailableError(timeseriesSource, fmt.Errorf("unexpected base currency %s", body.Base))
	}

	raw := make(map[string]interface{}, len(body.Rates))
	for day, byCurrency := range body.Rates {
		v, ok := byCurrency[string(currency)]
		if !ok {
			continue
		}
		d, err := entity.ParseDate(day)
		if err != nil {
			return entity.Series{}, &entity.MalformedSeriesError{Value: day, Reason: "bad date key"}
		}
		// the remote may snap the start back to the previous business day
		if !inRange(d, start, end) {
			continue
		}
		raw[day] = v
	}

	series, err := entity.ParseSeries(raw)
	if err != nil {
		return entity.Series{}, err
	}

	c.logger.Info("Exchange rates retrieved", map[string]interface{}{
		"currency": string(currency),
		"days":     series.Len(),
	})

	return series, nil
}

// isNoDataReply reports the provider's 404 for a range without rates, which
// carries {"message": "not found"}. Any other 404 is a failure.
func isNoDataReply(resp *response) bool {
	if resp.status != http.StatusNotFound {
		return false
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.body, &body); err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(body.Message), "not found")
}
