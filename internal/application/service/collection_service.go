// Package service internal/application/service/collection_service.go
package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lasupernova/stock-ticker-dash/internal/domain/entity"
	"github.com/lasupernova/stock-ticker-dash/internal/domain/repository"
	"github.com/lasupernova/stock-ticker-dash/internal/infrastructure/logger"
)

// Listing names an exchange listing file
type Listing struct {
	Name string
	URL  string
}

// ListingSource fetches the symbols of one exchange listing
type ListingSource interface {
	FetchSymbols(ctx context.Context, name, url string) ([]string, error)
}

// ReferenceSource fetches the symbols the reference data knows about
type ReferenceSource interface {
	FetchTickers(ctx context.Context) ([]entity.Ticker, error)
}

// TickerTable persists the collected reference table
type TickerTable interface {
	Write(tickers []entity.Ticker) error
}

// CollectionResult summarises one collection run
type CollectionResult struct {
	PerListing   map[string]int
	Listed       int
	Reference    int
	Consolidated int
	Added        int
	Total        int
}

// CollectionService rebuilds the ticker reference table from exchange listings
type CollectionService struct {
	listings  []Listing
	listing   ListingSource
	reference ReferenceSource
	table     TickerTable
	repo      repository.TickerRepository
	now       func() time.Time
	logger    logger.Logger
}

// NewCollectionService creates a new collection service. table and repo may
// be nil to skip that output.
func NewCollectionService(
	listings []Listing,
	listing ListingSource,
	reference ReferenceSource,
	table TickerTable,
	repo repository.TickerRepository,
	log logger.Logger,
) *CollectionService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &CollectionService{
		listings:  listings,
		listing:   listing,
		reference: reference,
		table:     table,
		repo:      repo,
		now:       time.Now,
		logger:    log,
	}
}

// Collect runs one collection: every listing symbol that the reference data
// does not know, even under its alternate spelling, is appended with today's
// date and no name or type.
func (s *CollectionService) Collect(ctx context.Context) (*CollectionResult, error) {
	s.logger.Info("Retrieving stock symbols", map[string]interface{}{
		"listings": len(s.listings),
	})

	result := &CollectionResult{PerListing: make(map[string]int, len(s.listings))}

	listed, err := s.listedSymbols(ctx, result)
	if err != nil {
		return nil, err
	}

	reference, err := s.reference.FetchTickers(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch reference symbols", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to fetch reference symbols: %w", err)
	}
	result.Reference = len(reference)

	known := make(map[string]bool, len(reference))
	for _, t := range reference {
		known[t.Symbol] = true
	}

	missing, consolidated := missingSymbols(listed, known)
	result.Consolidated = consolidated
	result.Added = len(missing)

	today := entity.DateOf(s.now())
	tickers := make([]entity.Ticker, 0, len(reference)+len(missing))
	tickers = append(tickers, reference...)
	for _, symbol := range missing {
		tickers = append(tickers, entity.Ticker{Symbol: symbol, Date: today})
	}
	result.Total = len(tickers)

	s.logger.Info("Consolidated alternate spellings", map[string]interface{}{
		"consolidated": result.Consolidated,
		"added":        result.Added,
		"total":        result.Total,
	})

	if s.table != nil {
		if err := s.table.Write(tickers); err != nil {
			return nil, fmt.Errorf("failed to write ticker table: %w", err)
		}
	}
	if s.repo != nil {
		if err := s.repo.StoreAll(ctx, tickers); err != nil {
			return nil, fmt.Errorf("failed to store tickers: %w", err)
		}
	}

	return result, nil
}

func (s *CollectionService) listedSymbols(ctx context.Context, result *CollectionResult) ([]string, error) {
	seen := make(map[string]bool)
	var all []string

	for _, l := range s.listings {
		symbols, err := s.listing.FetchSymbols(ctx, l.Name, l.URL)
		if err != nil {
			s.logger.Error("Failed to fetch listing", map[string]interface{}{
				"listing": l.Name,
				"error":   err.Error(),
			})
			return nil, fmt.Errorf("failed to fetch listing %s: %w", l.Name, err)
		}

		result.PerListing[l.Name] = len(symbols)
		s.logger.Info("Fetched listing", map[string]interface{}{
			"listing": l.Name,
			"symbols": len(symbols),
		})

		for _, sym := range symbols {
			if !seen[sym] {
				seen[sym] = true
				all = append(all, sym)
			}
		}
	}

	sort.Strings(all)
	result.Listed = len(all)

	s.logger.Info("Total number of stock symbols retrieved", map[string]interface{}{
		"symbols": result.Listed,
	})

	return all, nil
}

// missingSymbols rewrites listing symbols to the reference spelling where one
// exists ("$" to "-", then "-" to ".") and returns what is still unknown
// together with the number of symbols the rewrite resolved.
func missingSymbols(listed []string, known map[string]bool) ([]string, int) {
	seeminglyMissing := 0
	for _, sym := range listed {
		if !known[sym] {
			seeminglyMissing++
		}
	}

	seen := make(map[string]bool)
	var missing []string
	for _, sym := range listed {
		if alt := strings.ReplaceAll(sym, "$", "-"); known[alt] {
			sym = alt
		}
		if alt := strings.ReplaceAll(sym, "-", "."); known[alt] {
			sym = alt
		}
		if known[sym] || seen[sym] {
			continue
		}
		seen[sym] = true
		missing = append(missing, sym)
	}

	return missing, seeminglyMissing - len(missing)
}
