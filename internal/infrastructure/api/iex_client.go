package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lasupernova/stock-ticker-dash/internal/domain/entity"
	"github.com/lasupernova/stock-ticker-dash/internal/infrastructure/logger"
)

const iexSource = "iex"

// IEXClient reads the IEX reference symbol list
type IEXClient struct {
	endpoint   string
	httpClient *http.Client
	logger     logger.Logger
}

// NewIEXClient creates a new IEX reference data client
func NewIEXClient(endpoint string, timeout time.Duration, log logger.Logger) *IEXClient {
	return &IEXClient{
		endpoint:   endpoint,
		httpClient: newHTTPClient(timeout),
		logger:     orDefault(log).WithField("source", iexSource),
	}
}

// iexSymbol is one element of the ref-data/symbols array; isEnabled and iexId are not kept
type iexSymbol struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Date   string `json:"date"`
	Type   string `json:"type"`
}

// FetchTickers returns the reference information for every IEX symbol
func (c *IEXClient) FetchTickers(ctx context.Context) ([]entity.Ticker, error) {
	resp, err := get(ctx, c.httpClient, iexSource, c.endpoint, nil)
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, statusError(iexSource, resp)
	}

	var rows []iexSymbol
	if err := json.Unmarshal(resp.body, &rows); err != nil {
		return nil, entity.NewRemoteUnavailableError(iexSource, fmt.Errorf("failed to decode response: %w", err))
	}

	tickers := make([]entity.Ticker, 0, len(rows))
	for _, row := range rows {
		t := entity.Ticker{
			Symbol: row.Symbol,
			Name:   row.Name,
			Type:   row.Type,
		}
		if row.Date != "" {
			if d, err := entity.ParseDate(row.Date); err == nil {
				t.Date = d
			}
		}
		if err := t.Validate(); err != nil {
			c.logger.Debug("Skipping reference row", map[string]interface{}{
				"symbol": row.Symbol,
				"error":  err.Error(),
			})
			continue
		}
		tickers = append(tickers, t)
	}

	c.logger.Info("Reference symbols retrieved", map[string]interface{}{
		"symbols": len(tickers),
	})

	return tickers, nil
}
