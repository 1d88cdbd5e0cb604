// Package service internal/application/service/ticker_service.go
package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lasupernova/stock-ticker-dash/internal/domain/entity"
	"github.com/lasupernova/stock-ticker-dash/internal/domain/repository"
	"github.com/lasupernova/stock-ticker-dash/internal/infrastructure/logger"
	"github.com/lasupernova/stock-ticker-dash/internal/infrastructure/middleware"
)

// TickerService serves the ticker reference table
type TickerService struct {
	repo   repository.TickerRepository
	logger logger.Logger
}

// NewTickerService creates a new ticker service
func NewTickerService(repo repository.TickerRepository, log logger.Logger) *TickerService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &TickerService{
		repo:   repo,
		logger: log,
	}
}

// Options returns the selection list sorted by label. A non-empty query keeps
// options whose symbol starts with it or whose label contains it, ignoring
// case. limit <= 0 means no limit.
func (s *TickerService) Options(ctx context.Context, query string, limit int) ([]entity.TickerOption, error) {
	tickers, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list tickers", map[string]interface{}{
			"request_id": middleware.GetRequestID(ctx),
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("failed to list tickers: %w", err)
	}

	query = strings.ToLower(strings.TrimSpace(query))

	options := make([]entity.TickerOption, 0, len(tickers))
	for i := range tickers {
		opt, ok := tickers[i].Option()
		if !ok {
			continue
		}
		if query != "" && !matches(opt, query) {
			continue
		}
		options = append(options, opt)
	}

	sort.SliceStable(options, func(i, j int) bool {
		if options[i].Label != options[j].Label {
			return options[i].Label < options[j].Label
		}
		return options[i].Value < options[j].Value
	})

	if limit > 0 && len(options) > limit {
		options = options[:limit]
	}

	s.logger.Debug("Built ticker options", map[string]interface{}{
		"request_id": middleware.GetRequestID(ctx),
		"query":      query,
		"options":    len(options),
	})

	return options, nil
}

func matches(opt entity.TickerOption, query string) bool {
	return strings.HasPrefix(strings.ToLower(opt.Value), query) ||
		strings.Contains(strings.ToLower(opt.Label), query)
}

// Lookup returns the reference row for symbol
func (s *TickerService) Lookup(ctx context.Context, symbol string) (*entity.Ticker, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", ErrInvalidRequest)
	}

	ticker, err := s.repo.FindBySymbol(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to look up ticker %s: %w", symbol, err)
	}

	return ticker, nil
}

// Import stores every row of a reference table
func (s *TickerService) Import(ctx context.Context, tickers []entity.Ticker) (int, error) {
	if err := s.repo.StoreAll(ctx, tickers); err != nil {
		s.logger.Error("Failed to import tickers", map[string]interface{}{
			"request_id": middleware.GetRequestID(ctx),
			"rows":       len(tickers),
			"error":      err.Error(),
		})
		return 0, fmt.Errorf("failed to import tickers: %w", err)
	}

	s.logger.Info("Imported tickers", map[string]interface{}{
		"request_id": middleware.GetRequestID(ctx),
		"rows":       len(tickers),
	})

	return len(tickers), nil
}

// Count returns the number of stored tickers
func (s *TickerService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
