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
	treasurySource   = "treasury"
	exchangeRatePath = "/v1/accounting/od/rates_of_exchange"
	treasuryPageSize = 10000
)

// treasuryCurrencies maps ISO codes to the Treasury's country_currency_desc values
var treasuryCurrencies = map[entity.Currency]string{
	"EUR": "Euro Zone-Euro",
	"CAD": "Canada-Dollar",
	"GBP": "United Kingdom-Pound",
	"JPY": "Japan-Yen",
	"CHF": "Switzerland-Franc",
	"AUD": "Australia-Dollar",
	"MXN": "Mexico-Peso",
	"SEK": "Sweden-Krona",
}

// TreasuryRateClient reads the Treasury reporting rates of exchange.
// The Treasury publishes quarterly, so a range yields a sparse series.
type TreasuryRateClient struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
}

// NewTreasuryRateClient creates a new Treasury API client
func NewTreasuryRateClient(cfg RateFetcherConfig, log logger.Logger) *TreasuryRateClient {
	return &TreasuryRateClient{
		baseURL:    strings.TrimRight(cfg.Endpoint, "/"),
		httpClient: newHTTPClient(cfg.Timeout),
		logger:     orDefault(log).WithField("source", treasurySource),
	}
}

// TreasuryRecord is one row of rates_of_exchange
type TreasuryRecord struct {
	CountryCurrencyDesc string `json:"country_currency_desc"`
	ExchangeRate        string `json:"exchange_rate"`
	RecordDate          string `json:"record_date"`
}

// TreasuryResponse represents the response structure from the Treasury API
type TreasuryResponse struct {
	Data []TreasuryRecord `json:"data"`
	Meta struct {
		Count      int `json:"count"`
		TotalCount int `json:"total-count"`
	} `json:"meta"`
}

// FetchRates retrieves every rate recorded for currency in [start, end]
func (c *TreasuryRateClient) FetchRates(ctx context.Context, start, end time.Time, currency entity.Currency) (entity.Series, error) {
	desc, ok := treasuryCurrencies[currency]
	if !ok {
		return entity.Series{}, fmt.Errorf("%w: treasury has no rates for %s", entity.ErrUnsupportedCurrency, currency)
	}

	query := url.Values{}
	query.Set("fields", "country_currency_desc,exchange_rate,record_date")
	query.Set("filter", fmt.Sprintf("country_currency_desc:eq:%s,record_date:gte:%s,record_date:lte:%s",
		desc, entity.FormatDate(start), entity.FormatDate(end)))
	query.Set("sort", "record_date")
	query.Set("page[size]", fmt.Sprint(treasuryPageSize))

	reqURL := c.baseURL + exchangeRatePath + "?" + query.Encode()

	c.logger.Debug("Treasury API request", map[string]interface{}{
		"url":      reqURL,
		"currency": string(currency),
	})

	resp, err := get(ctx, c.httpClient, treasurySource, reqURL, nil)
	if err != nil {
		return entity.Series{}, err
	}
	if resp.status != http.StatusOK {
		return entity.Series{}, statusError(treasurySource, resp)
	}

	var treasuryResp TreasuryResponse
	if err := json.Unmarshal(resp.body, &treasuryResp); err != nil {
		return entity.Series{}, entity.NewRemoteUnavailableError(treasurySource, fmt.Errorf("failed to decode response: %w", err))
	}

	rates, err := treasuryRates(currency, desc, treasuryResp.Data)
	if err != nil {
		return entity.Series{}, err
	}

	series, err := entity.RateSeries(string(currency), rates)
	if err != nil {
		return entity.Series{}, err
	}

	c.logger.Info("Treasury rates retrieved", map[string]interface{}{
		"currency": string(currency),
		"records":  series.Len(),
	})

	return series, nil
}

// treasuryRates converts the rows for desc into rates. exchange_rate arrives as
// a string and anything non-numeric is a MalformedSeriesError. A later row for
// the same record_date replaces the earlier one.
func treasuryRates(currency entity.Currency, desc string, rows []TreasuryRecord) ([]entity.ExchangeRate, error) {
	rates := make([]entity.ExchangeRate, 0, len(rows))
	byDate := make(map[string]int, len(rows))

	for _, row := range rows {
		if row.CountryCurrencyDesc != desc {
			continue
		}

		date, err := entity.ParseDate(row.RecordDate)
		if err != nil {
			return nil, &entity.MalformedSeriesError{Value: row.RecordDate, Reason: "bad record_date"}
		}
		rate, err := entity.ParseValue(date, row.ExchangeRate)
		if err != nil {
			return nil, err
		}

		r := entity.ExchangeRate{Currency: string(currency), Date: date, Rate: rate}
		if i, ok := byDate[row.RecordDate]; ok {
			rates[i] = r
			continue
		}
		byDate[row.RecordDate] = len(rates)
		rates = append(rates, r)
	}

	return rates, nil
}
