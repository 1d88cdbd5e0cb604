package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/lasupernova/stock-ticker-dash/internal/application/service"
	"github.com/lasupernova/stock-ticker-dash/internal/domain/repository"
	domainservice "github.com/lasupernova/stock-ticker-dash/internal/domain/service"
	"github.com/lasupernova/stock-ticker-dash/internal/infrastructure/api"
	"github.com/lasupernova/stock-ticker-dash/internal/infrastructure/config"
	"github.com/lasupernova/stock-ticker-dash/internal/infrastructure/db"
	"github.com/lasupernova/stock-ticker-dash/internal/infrastructure/handler"
	"github.com/lasupernova/stock-ticker-dash/internal/infrastructure/logger"
	"github.com/lasupernova/stock-ticker-dash/internal/infrastructure/middleware"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Fatal("Failed to load configuration", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log := logger.NewJSONLogger(os.Stdout, logger.ParseLevel(cfg.Log.Level))
	logger.SetDefaultLogger(log)

	log.Info("Starting stock ticker dashboard", map[string]interface{}{
		"addr":           cfg.Server.Addr,
		"rates_provider": cfg.Rates.Provider,
	})

	currencies, err := cfg.SupportedCurrencies()
	if err != nil {
		log.Fatal("Invalid currency configuration", map[string]interface{}{"error": err.Error()})
	}
	earliest, err := cfg.EarliestDate()
	if err != nil {
		log.Fatal("Invalid earliest date", map[string]interface{}{"error": err.Error()})
	}

	// Setup BadgerDB
	if err := os.MkdirAll(cfg.Tickers.DBPath, 0755); err != nil {
		log.Fatal("Failed to create database directory", map[string]interface{}{"error": err.Error()})
	}
	badgerDB, err := db.OpenBadger(cfg.Tickers.DBPath)
	if err != nil {
		log.Fatal("Failed to open database", map[string]interface{}{
			"path":  cfg.Tickers.DBPath,
			"error": err.Error(),
		})
	}
	defer func() {
		if err := badgerDB.Close(); err != nil {
			log.Error("Error closing BadgerDB", map[string]interface{}{"error": err.Error()})
		}
	}()

	tickerRepo := db.NewBadgerTickerRepository(badgerDB)
	seedTickers(tickerRepo, cfg.Tickers.CSVPath, log)

	// Initialize API clients
	rates := newRateFetcher(cfg, log)
	yahoo := api.NewYahooClient(api.YahooConfig{
		Endpoint:         cfg.Prices.Endpoint,
		ScreenerEndpoint: cfg.Prices.ScreenerEndpoint,
		Timeout:          cfg.Prices.Timeout,
	}, log)

	// Initialize services
	chartService := service.NewChartService(yahoo, rates, tickerRepo, service.ChartServiceConfig{
		Currencies: currencies,
		Earliest:   earliest,
	}, log)
	tickerService := service.NewTickerService(tickerRepo, log)

	// Initialize handlers
	chartHandler := handler.NewChartHandler(chartService, log)
	tickerHandler := handler.NewTickerHandler(tickerService, yahoo, log)
	dashboardHandler := handler.NewDashboardHandler(chartService, tickerService, handler.DashboardConfig{
		Title:           cfg.Dashboard.Title,
		DefaultSymbols:  cfg.Dashboard.DefaultSymbols,
		DefaultCurrency: cfg.Dashboard.DefaultCurrency,
	}, log)

	// Setup router
	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.LoggingMiddleware(log))
	router.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))
	chartHandler.RegisterRoutes(router)
	tickerHandler.RegisterRoutes(router)
	dashboardHandler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("Server listening", map[string]interface{}{"addr": cfg.Server.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", map[string]interface{}{"error": err.Error()})
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", map[string]interface{}{"error": err.Error()})
	}
}

func newRateFetcher(cfg *config.Config, log logger.Logger) domainservice.RateFetcher {
	rateCfg := api.RateFetcherConfig{
		Endpoint: cfg.Rates.Endpoint,
		APIKey:   cfg.Rates.APIKey,
		Timeout:  cfg.Rates.Timeout,
	}

	if cfg.Rates.Provider == config.RatesProviderTreasury {
		return api.NewTreasuryRateClient(rateCfg, log)
	}
	return api.NewTimeseriesRateClient(rateCfg, log)
}

// seedTickers imports the CSV reference table into an empty store
func seedTickers(repo repository.TickerRepository, csvPath string, log logger.Logger) {
	ctx := context.Background()

	count, err := repo.Count(ctx)
	if err != nil {
		log.Error("Failed to count tickers", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if count > 0 {
		return
	}

	tickers, err := db.CSVTickerTable{Path: csvPath}.Read()
	if err != nil {
		log.Warn("No ticker table to seed from", map[string]interface{}{
			"path":  csvPath,
			"error": err.Error(),
		})
		return
	}

	if err := repo.StoreAll(ctx, tickers); err != nil {
		log.Error("Failed to seed tickers", map[string]interface{}{
			"path":  csvPath,
			"error": err.Error(),
		})
		return
	}

	log.Info("Seeded ticker store", map[string]interface{}{
		"path":    csvPath,
		"tickers": len(tickers),
	})
}
