// Package repository internal/domain/repository/ticker_repository.go
package repository

import (
	"context"

	"github.com/lasupernova/stock-ticker-dash/internal/domain/entity"
)

// TickerRepository defines the interface for the ticker reference table
type TickerRepository interface {
	// Store saves a ticker, replacing any row with the same symbol
	Store(ctx context.Context, ticker *entity.Ticker) error

	// StoreAll saves a batch of tickers in one write
	StoreAll(ctx context.Context, tickers []entity.Ticker) error

	// FindBySymbol retrieves a ticker by its symbol
	FindBySymbol(ctx context.Context, symbol string) (*entity.Ticker, error)

	// List returns every stored ticker ordered by symbol
	List(ctx context.Context) ([]entity.Ticker, error)

	// Count returns the number of stored tickers
	Count(ctx context.Context) (int, error)
}
