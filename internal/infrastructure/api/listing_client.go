package api

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lasupernova/stock-ticker-dash/internal/domain/entity"
	"github.com/lasupernova/stock-ticker-dash/internal/infrastructure/logger"
)

const listingSource = "listings"

// symbol column names used by the nasdaqlisted and otherlisted files
var symbolColumns = []string{"Symbol", "ACT Symbol", "NASDAQ Symbol"}

// ListingClient downloads pipe-delimited exchange listing files
type ListingClient struct {
	httpClient *http.Client
	logger     logger.Logger
}

// NewListingClient creates a new listing client
func NewListingClient(timeout time.Duration, log logger.Logger) *ListingClient {
	return &ListingClient{
		httpClient: newHTTPClient(timeout),
		logger:     orDefault(log).WithField("source", listingSource),
	}
}

// FetchSymbols returns the symbols of one listing file, test issues excluded
func (c *ListingClient) FetchSymbols(ctx context.Context, name, listingURL string) ([]string, error) {
	resp, err := get(ctx, c.httpClient, listingSource+":"+name, listingURL, nil)
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, statusError(listingSource+":"+name, resp)
	}

	symbols, err := ParseListing(bytes.NewReader(resp.body))
	if err != nil {
		return nil, entity.NewRemoteUnavailableError(listingSource+":"+name, err)
	}

	c.logger.Info("Listing retrieved", map[string]interface{}{
		"listing": name,
		"symbols": len(symbols),
	})

	return symbols, nil
}

// ParseListing reads a pipe-delimited listing with a header row. The
// "File Creation Time" trailer and rows flagged as test issues are dropped.
func ParseListing(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = '|'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read listing header: %w", err)
	}

	symbolCol, testCol := -1, -1
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "Test Issue" {
			testCol = i
		}
		if symbolCol >= 0 {
			continue
		}
		for _, name := range symbolColumns {
			if h == name {
				symbolCol = i
				break
			}
		}
	}
	if symbolCol < 0 {
		return nil, errors.New("listing has no symbol column")
	}

	var symbols []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read listing: %w", err)
		}
		if len(record) > 0 && strings.HasPrefix(record[0], "File Creation Time") {
			continue
		}
		if symbolCol >= len(record) {
			continue
		}
		if testCol >= 0 && testCol < len(record) && strings.TrimSpace(record[testCol]) == "Y" {
			continue
		}

		symbol := strings.TrimSpace(record[symbolCol])
		if symbol != "" {
			symbols = append(symbols, symbol)
		}
	}

	return symbols, nil
}
