package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v3"
	"github.com/lasupernova/stock-ticker-dash/internal/domain/entity"
)

const tickerPrefix = "ticker:"

// BadgerTickerRepository implements the ticker repository interface using BadgerDB
type BadgerTickerRepository struct {
	db *badger.DB
}

// NewBadgerTickerRepository creates a new BadgerDB ticker repository
func NewBadgerTickerRepository(db *badger.DB) *BadgerTickerRepository {
	return &BadgerTickerRepository{db: db}
}

// OpenBadger opens (or creates) a BadgerDB at path with Badger's own logging disabled
func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func tickerKey(symbol string) []byte {
	return []byte(tickerPrefix + strings.ToUpper(strings.TrimSpace(symbol)))
}

// Store saves a ticker under its symbol
func (r *BadgerTickerRepository) Store(ctx context.Context, ticker *entity.Ticker) error {
	if err := ticker.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(ticker)
	if err != nil {
		return fmt.Errorf("failed to marshal ticker: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(tickerKey(ticker.Symbol), data)
	})
	if err != nil {
		return fmt.Errorf("failed to store ticker: %w", err)
	}

	return nil
}

// StoreAll writes a batch of tickers; invalid rows fail the whole batch before anything is written
func (r *BadgerTickerRepository) StoreAll(ctx context.Context, tickers []entity.Ticker) error {
	for i := range tickers {
		if err := tickers[i].Validate(); err != nil {
			return fmt.Errorf("ticker %d: %w", i, err)
		}
	}

	wb := r.db.NewWriteBatch()
	defer wb.Cancel()

	for i := range tickers {
		data, err := json.Marshal(&tickers[i])
		if err != nil {
			return fmt.Errorf("failed to marshal ticker: %w", err)
		}
		if err := wb.Set(tickerKey(tickers[i].Symbol), data); err != nil {
			return fmt.Errorf("failed to store ticker: %w", err)
		}
	}

	if err := wb.Flush(); err != nil {
		return fmt.Errorf("failed to store tickers: %w", err)
	}

	return nil
}

// FindBySymbol retrieves a ticker by its symbol
func (r *BadgerTickerRepository) FindBySymbol(ctx context.Context, symbol string) (*entity.Ticker, error) {
	var ticker entity.Ticker

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(tickerKey(symbol))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &ticker)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", entity.ErrTickerNotFound, symbol)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to retrieve ticker: %w", err)
	}

	return &ticker, nil
}

// List returns every ticker in key order
func (r *BadgerTickerRepository) List(ctx context.Context) ([]entity.Ticker, error) {
	tickers := []entity.Ticker{}

	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(tickerPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var t entity.Ticker
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &t)
			})
			if err != nil {
				return err
			}
			tickers = append(tickers, t)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tickers: %w", err)
	}

	return tickers, nil
}

// Count returns the number of stored tickers
func (r *BadgerTickerRepository) Count(ctx context.Context) (int, error) {
	count := 0

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(tickerPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count tickers: %w", err)
	}

	return count, nil
}
