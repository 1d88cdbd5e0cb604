// Package service internal/application/service/chart_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lasupernova/stock-ticker-dash/internal/domain/entity"
	"github.com/lasupernova/stock-ticker-dash/internal/domain/repository"
	domainservice "github.com/lasupernova/stock-ticker-dash/internal/domain/service"
	"github.com/lasupernova/stock-ticker-dash/internal/infrastructure/logger"
	"github.com/lasupernova/stock-ticker-dash/internal/infrastructure/middleware"
)

// DefaultMaxSymbols bounds the number of traces in one chart
const DefaultMaxSymbols = 10

// ErrInvalidRequest is returned for chart requests that cannot be rendered
var ErrInvalidRequest = errors.New("invalid chart request")

// ChartRequest describes one chart render
type ChartRequest struct {
	Symbols  []string
	Currency entity.Currency
	Range    entity.DateRange
}

// Trace is one line of the chart
type Trace struct {
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name"`
	X         []string  `json:"x"`
	Y         []float64 `json:"y"`
	LastValue string    `json:"last_value,omitempty"`
}

// Chart is the render result handed to the presentation layer
type Chart struct {
	Title      string          `json:"title"`
	YAxisTitle string          `json:"yaxis_title"`
	Currency   entity.Currency `json:"currency"`
	Start      string          `json:"start"`
	End        string          `json:"end"`
	Traces     []Trace         `json:"traces"`
}

// ChartServiceConfig bounds what a render may ask for
type ChartServiceConfig struct {
	Currencies []entity.Currency
	Earliest   time.Time
	MaxSymbols int
	Now        func() time.Time
}

// ChartService fetches, converts and assembles price charts
type ChartService struct {
	prices  domainservice.PriceSeriesProvider
	rates   domainservice.RateFetcher
	tickers repository.TickerRepository
	cfg     ChartServiceConfig
	logger  logger.Logger
}

// NewChartService creates a new chart service. tickers may be nil, in which
// case traces are named by symbol.
func NewChartService(
	prices domainservice.PriceSeriesProvider,
	rates domainservice.RateFetcher,
	tickers repository.TickerRepository,
	cfg ChartServiceConfig,
	log logger.Logger,
) *ChartService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	if cfg.MaxSymbols <= 0 {
		cfg.MaxSymbols = DefaultMaxSymbols
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &ChartService{
		prices:  prices,
		rates:   rates,
		tickers: tickers,
		cfg:     cfg,
		logger:  log,
	}
}

// Currencies returns the currencies a chart can be rendered in
func (s *ChartService) Currencies() []entity.Currency {
	if s.cfg.Currencies == nil {
		return entity.SupportedCurrencies
	}
	return s.cfg.Currencies
}

// Earliest returns the first day a chart may start on
func (s *ChartService) Earliest() time.Time {
	return s.cfg.Earliest
}

// Today returns the last day a chart may end on
func (s *ChartService) Today() time.Time {
	return entity.DateOf(s.cfg.Now())
}

// Render builds one trace per requested symbol. Symbols are processed in
// order and the first failure aborts the whole render.
func (s *ChartService) Render(ctx context.Context, req ChartRequest) (*Chart, error) {
	requestID := middleware.GetRequestID(ctx)

	symbols, currency, err := s.validate(req)
	if err != nil {
		s.logger.Warn("Rejected chart request", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		return nil, err
	}

	start, end := req.Range.Start, req.Range.End

	s.logger.Info("Rendering chart", map[string]interface{}{
		"request_id": requestID,
		"symbols":    strings.Join(symbols, ","),
		"currency":   currency.String(),
		"start":      entity.FormatDate(start),
		"end":        entity.FormatDate(end),
	})

	var rates *entity.Series
	if !currency.IsBase() {
		series, err := s.rates.FetchRates(ctx, start, end, currency)
		if err != nil {
			s.logger.Error("Failed to fetch exchange rates", map[string]interface{}{
				"request_id": requestID,
				"currency":   currency.String(),
				"error":      err.Error(),
			})
			return nil, fmt.Errorf("failed to fetch %s exchange rates: %w", currency, err)
		}
		if series.IsEmpty() {
			s.logger.Warn("No exchange rates in range", map[string]interface{}{
				"request_id": requestID,
				"currency":   currency.String(),
			})
		}
		rates = &series
	}

	chart := &Chart{
		Title:      s.title(symbols),
		YAxisTitle: fmt.Sprintf("Price [%s]", currency.Grapheme()),
		Currency:   currency,
		Start:      entity.FormatDate(start),
		End:        entity.FormatDate(end),
		Traces:     make([]Trace, 0, len(symbols)),
	}

	for _, symbol := range symbols {
		trace, err := s.trace(ctx, symbol, currency, start, end, rates)
		if err != nil {
			s.logger.Error("Failed to build trace", map[string]interface{}{
				"request_id": requestID,
				"symbol":     symbol,
				"error":      err.Error(),
			})
			return nil, err
		}
		chart.Traces = append(chart.Traces, trace)
	}

	s.logger.Debug("Chart rendered", map[string]interface{}{
		"request_id": requestID,
		"traces":     len(chart.Traces),
	})

	return chart, nil
}

func (s *ChartService) validate(req ChartRequest) ([]string, entity.Currency, error) {
	symbols := normaliseSymbols(req.Symbols)
	if len(symbols) == 0 {
		return nil, "", fmt.Errorf("%w: at least one symbol is required", ErrInvalidRequest)
	}
	if len(symbols) > s.cfg.MaxSymbols {
		return nil, "", fmt.Errorf("%w: at most %d symbols can be charted", ErrInvalidRequest, s.cfg.MaxSymbols)
	}

	currency, err := entity.ParseCurrency(string(req.Currency), s.Currencies())
	if err != nil {
		return nil, "", err
	}

	if err := req.Range.Validate(s.cfg.Earliest, s.Today()); err != nil {
		return nil, "", err
	}

	return symbols, currency, nil
}

func (s *ChartService) trace(ctx context.Context, symbol string, currency entity.Currency, start, end time.Time, rates *entity.Series) (Trace, error) {
	prices, err := s.prices.FetchPrices(ctx, symbol, start, end)
	if err != nil {
		return Trace{}, fmt.Errorf("failed to fetch prices for %s: %w", symbol, err)
	}

	converted, err := domainservice.Reconcile(prices, rates)
	if err != nil {
		return Trace{}, fmt.Errorf("failed to convert prices for %s: %w", symbol, err)
	}

	trace := Trace{
		Symbol: symbol,
		Name:   s.traceName(ctx, symbol),
		X:      make([]string, 0, converted.Len()),
		Y:      converted.Values(),
	}
	for _, d := range converted.Dates() {
		trace.X = append(trace.X, entity.FormatDate(d))
	}
	if last, ok := converted.Last(); ok {
		trace.LastValue = currency.FormatAmount(last.Value)
	}

	return trace, nil
}

func (s *ChartService) traceName(ctx context.Context, symbol string) string {
	if s.tickers == nil {
		return symbol
	}

	ticker, err := s.tickers.FindBySymbol(ctx, symbol)
	if err != nil {
		if !errors.Is(err, entity.ErrTickerNotFound) {
			s.logger.Warn("Ticker lookup failed", map[string]interface{}{
				"request_id": middleware.GetRequestID(ctx),
				"symbol":     symbol,
				"error":      err.Error(),
			})
		}
		return symbol
	}

	if label := ticker.Label(); label != "" {
		return label
	}
	return symbol
}

func (s *ChartService) title(symbols []string) string {
	return fmt.Sprintf("Closing prices for: %s", strings.Join(symbols, ", "))
}

func normaliseSymbols(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, raw := range in {
		symbol := strings.ToUpper(strings.TrimSpace(raw))
		if symbol == "" || seen[symbol] {
			continue
		}
		seen[symbol] = true
		out = append(out, symbol)
	}
	return out
}
