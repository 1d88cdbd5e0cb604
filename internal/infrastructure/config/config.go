// Package config loads the dashboard and collector configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lasupernova/stock-ticker-dash/internal/domain/entity"
	"gopkg.in/yaml.v3"
)

// Rate providers understood by the server
const (
	RatesProviderTimeseries = "timeseries"
	RatesProviderTreasury   = "treasury"
)

// Listing is a named exchange listing file
type Listing struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr           string   `yaml:"addr"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Rates struct {
		Provider string        `yaml:"provider"`
		Endpoint string        `yaml:"endpoint"`
		APIKey   string        `yaml:"api_key"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"rates"`
	Prices struct {
		Endpoint         string        `yaml:"endpoint"`
		ScreenerEndpoint string        `yaml:"screener_endpoint"`
		Timeout          time.Duration `yaml:"timeout"`
	} `yaml:"prices"`
	Tickers struct {
		CSVPath     string    `yaml:"csv_path"`
		DBPath      string    `yaml:"db_path"`
		IEXEndpoint string    `yaml:"iex_endpoint"`
		Listings    []Listing `yaml:"listings"`
		CollectCron string    `yaml:"collect_cron"`
	} `yaml:"tickers"`
	Dashboard struct {
		Title           string   `yaml:"title"`
		DefaultSymbols  []string `yaml:"default_symbols"`
		DefaultCurrency string   `yaml:"default_currency"`
		Currencies      []string `yaml:"currencies"`
		EarliestDate    string   `yaml:"earliest_date"`
	} `yaml:"dashboard"`
}

// Load reads an optional .env file and the YAML config at path, then applies
// environment overrides and defaults and validates the result. A missing
// config file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("RATES_PROVIDER"); v != "" {
		c.Rates.Provider = v
	}
	if v := os.Getenv("RATES_ENDPOINT"); v != "" {
		c.Rates.Endpoint = v
	}
	if v := os.Getenv("RATES_API_KEY"); v != "" {
		c.Rates.APIKey = v
	}
	if v := os.Getenv("RATES_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("RATES_TIMEOUT: %w", err)
		}
		c.Rates.Timeout = d
	}
	if v := os.Getenv("PRICES_ENDPOINT"); v != "" {
		c.Prices.Endpoint = v
	}
	if v := os.Getenv("TICKERS_CSV_PATH"); v != "" {
		c.Tickers.CSVPath = v
	}
	if v := os.Getenv("TICKERS_DB_PATH"); v != "" {
		c.Tickers.DBPath = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8050"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Rates.Provider == "" {
		c.Rates.Provider = RatesProviderTimeseries
	}
	if c.Rates.Endpoint == "" {
		switch c.Rates.Provider {
		case RatesProviderTreasury:
			c.Rates.Endpoint = "https://api.fiscaldata.treasury.gov/services/api/fiscal_service"
		default:
			c.Rates.Endpoint = "https://api.frankfurter.app"
		}
	}
	if c.Rates.Timeout == 0 {
		c.Rates.Timeout = 10 * time.Second
	}
	if c.Prices.Endpoint == "" {
		c.Prices.Endpoint = "https://query1.finance.yahoo.com"
	}
	if c.Prices.ScreenerEndpoint == "" {
		c.Prices.ScreenerEndpoint = c.Prices.Endpoint
	}
	if c.Prices.Timeout == 0 {
		c.Prices.Timeout = 30 * time.Second
	}
	if c.Tickers.CSVPath == "" {
		c.Tickers.CSVPath = "data/stock_info.csv"
	}
	if c.Tickers.DBPath == "" {
		c.Tickers.DBPath = "data/tickers"
	}
	if c.Tickers.IEXEndpoint == "" {
		c.Tickers.IEXEndpoint = "https://api.iextrading.com/1.0/ref-data/symbols"
	}
	if len(c.Tickers.Listings) == 0 {
		c.Tickers.Listings = []Listing{
			{Name: "NASDAQ", URL: "https://www.nasdaqtrader.com/dynamic/SymDir/nasdaqlisted.txt"},
			{Name: "others", URL: "https://www.nasdaqtrader.com/dynamic/SymDir/otherlisted.txt"},
		}
	}
	if c.Dashboard.Title == "" {
		c.Dashboard.Title = "Stock Ticker Dashboard"
	}
	if len(c.Dashboard.DefaultSymbols) == 0 {
		c.Dashboard.DefaultSymbols = []string{"TSLA"}
	}
	if c.Dashboard.DefaultCurrency == "" {
		c.Dashboard.DefaultCurrency = string(entity.BaseCurrency)
	}
	if len(c.Dashboard.Currencies) == 0 {
		for _, cur := range entity.SupportedCurrencies {
			c.Dashboard.Currencies = append(c.Dashboard.Currencies, string(cur))
		}
	}
	if c.Dashboard.EarliestDate == "" {
		c.Dashboard.EarliestDate = "2015-01-01"
	}
}

// Validate checks that all fields are usable.
func (c *Config) Validate() error {
	switch c.Rates.Provider {
	case RatesProviderTimeseries, RatesProviderTreasury:
	default:
		return fmt.Errorf("rates.provider must be %q or %q, got %q", RatesProviderTimeseries, RatesProviderTreasury, c.Rates.Provider)
	}
	if !strings.HasPrefix(c.Rates.Endpoint, "http") {
		return fmt.Errorf("rates.endpoint must be an http(s) URL")
	}
	if c.Rates.Timeout < 0 || c.Prices.Timeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	for _, l := range c.Tickers.Listings {
		if l.Name == "" || l.URL == "" {
			return fmt.Errorf("tickers.listings entries need a name and url")
		}
	}

	currencies, err := c.SupportedCurrencies()
	if err != nil {
		return err
	}
	if _, err := entity.ParseCurrency(c.Dashboard.DefaultCurrency, currencies); err != nil {
		return fmt.Errorf("dashboard.default_currency: %w", err)
	}
	if _, err := c.EarliestDate(); err != nil {
		return fmt.Errorf("dashboard.earliest_date: %w", err)
	}
	return nil
}

// SupportedCurrencies returns the configured selection list, base currency first
func (c *Config) SupportedCurrencies() ([]entity.Currency, error) {
	out := []entity.Currency{entity.BaseCurrency}
	for _, code := range c.Dashboard.Currencies {
		cur, err := entity.ParseCurrency(code, allISO(code))
		if err != nil {
			return nil, fmt.Errorf("dashboard.currencies: %w", err)
		}
		if cur.IsBase() {
			continue
		}
		out = append(out, cur)
	}
	return out, nil
}

// allISO admits code itself so ParseCurrency only checks it is a real ISO code
func allISO(code string) []entity.Currency {
	return []entity.Currency{entity.Currency(strings.ToUpper(strings.TrimSpace(code)))}
}

// EarliestDate parses dashboard.earliest_date
func (c *Config) EarliestDate() (time.Time, error) {
	return entity.ParseDate(c.Dashboard.EarliestDate)
}
