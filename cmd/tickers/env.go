package main

import (
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v3"
	"github.com/lasupernova/stock-ticker-dash/internal/infrastructure/config"
	"github.com/lasupernova/stock-ticker-dash/internal/infrastructure/db"
	"github.com/lasupernova/stock-ticker-dash/internal/infrastructure/logger"
)

// env is what every subcommand needs: configuration, a logger and the ticker store
type env struct {
	cfg  *config.Config
	log  logger.Logger
	db   *badger.DB
	repo *db.BadgerTickerRepository
}

func openEnv() (*env, error) {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return nil, err
	}

	log := logger.NewJSONLogger(os.Stderr, logger.ParseLevel(cfg.Log.Level))
	logger.SetDefaultLogger(log)

	if err := os.MkdirAll(cfg.Tickers.DBPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	badgerDB, err := db.OpenBadger(cfg.Tickers.DBPath)
	if err != nil {
		return nil, err
	}

	return &env{
		cfg:  cfg,
		log:  log,
		db:   badgerDB,
		repo: db.NewBadgerTickerRepository(badgerDB),
	}, nil
}

func (e *env) Close() {
	if err := e.db.Close(); err != nil {
		e.log.Error("Error closing BadgerDB", map[string]interface{}{"error": err.Error()})
	}
}
