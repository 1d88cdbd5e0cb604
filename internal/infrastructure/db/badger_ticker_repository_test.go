package db

import (
	"context"
	"testing"

	"github.com/lasupernova/stock-ticker-dash/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *BadgerTickerRepository {
	t.Helper()

	badgerDB, err := OpenBadger(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { badgerDB.Close() })

	return NewBadgerTickerRepository(badgerDB)
}

func TestBadgerTickerRepository(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	tesla := &entity.Ticker{Symbol: "TSLA", Name: "Tesla Inc.", Date: entity.NewDate(2019, 1, 4), Type: "cs"}

	t.Run("Store and find", func(t *testing.T) {
		require.NoError(t, repo.Store(ctx, tesla))

		found, err := repo.FindBySymbol(ctx, "TSLA")
		require.NoError(t, err)
		assert.Equal(t, tesla, found)

		found, err = repo.FindBySymbol(ctx, "tsla")
		require.NoError(t, err)
		assert.Equal(t, "Tesla Inc.", found.Name)
	})

	t.Run("Missing symbol", func(t *testing.T) {
		_, err := repo.FindBySymbol(ctx, "NOPE")
		assert.ErrorIs(t, err, entity.ErrTickerNotFound)
	})

	t.Run("Invalid ticker", func(t *testing.T) {
		assert.Error(t, repo.Store(ctx, &entity.Ticker{}))
	})

	t.Run("Store all, list and count", func(t *testing.T) {
		batch := []entity.Ticker{
			{Symbol: "AAPL", Name: "Apple Inc.", Type: "cs"},
			{Symbol: "BTCUSDT", Name: "Bitcoin USD", Type: "crypto"},
			{Symbol: "TSLA", Name: "Tesla, Inc."},
		}
		require.NoError(t, repo.StoreAll(ctx, batch))

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		tickers, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, tickers, 3)
		assert.Equal(t, "AAPL", tickers[0].Symbol)
		assert.Equal(t, "BTCUSDT", tickers[1].Symbol)
		assert.Equal(t, "Tesla, Inc.", tickers[2].Name, "batch replaces the earlier row")
	})

	t.Run("Invalid row rejects the batch", func(t *testing.T) {
		err := repo.StoreAll(ctx, []entity.Ticker{{Symbol: "MSFT"}, {Symbol: ""}})
		assert.Error(t, err)

		_, err = repo.FindBySymbol(ctx, "MSFT")
		assert.ErrorIs(t, err, entity.ErrTickerNotFound)
	})
}
