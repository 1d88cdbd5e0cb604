// Package handler internal/infrastructure/handler/chart_handler.go
package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/lasupernova/stock-ticker-dash/internal/application/service"
	"github.com/lasupernova/stock-ticker-dash/internal/domain/entity"
	"github.com/lasupernova/stock-ticker-dash/internal/infrastructure/logger"
	"github.com/lasupernova/stock-ticker-dash/internal/infrastructure/middleware"
)

// ChartHandler handles HTTP requests for price charts
type ChartHandler struct {
	service *service.ChartService
	logger  logger.Logger
}

// NewChartHandler creates a new chart handler
func NewChartHandler(service *service.ChartService, log logger.Logger) *ChartHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &ChartHandler{
		service: service,
		logger:  log,
	}
}

// GetChart handles rendering the chart for the requested symbols
func (h *ChartHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	query := r.URL.Query()

	h.logger.Info("Handling chart request", map[string]interface{}{
		"request_id": requestID,
		"symbols":    query.Get("symbols"),
		"currency":   query.Get("currency"),
	})

	dateRange, err := h.parseRange(query.Get("start"), query.Get("end"))
	if err != nil {
		sendServiceError(w, h.logger, err, requestID)
		return
	}

	req := service.ChartRequest{
		Symbols:  splitSymbols(query["symbols"]),
		Currency: entity.Currency(query.Get("currency")),
		Range:    dateRange,
	}

	chart, err := h.service.Render(r.Context(), req)
	if err != nil {
		sendServiceError(w, h.logger, err, requestID)
		return
	}

	sendJSON(w, h.logger, chart, requestID)
}

// GetCurrencies handles listing the currencies a chart can be rendered in
func (h *ChartHandler) GetCurrencies(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	sendJSON(w, h.logger, newCurrencyResponses(h.service.Currencies()), requestID)
}

// parseRange reads YYYY-MM-DD bounds; a missing end means today and a missing
// start means one year before the end, clamped to the earliest allowed day
func (h *ChartHandler) parseRange(startParam, endParam string) (entity.DateRange, error) {
	end := h.service.Today()
	if endParam != "" {
		d, err := entity.ParseDate(endParam)
		if err != nil {
			return entity.DateRange{}, fmt.Errorf("%w: %v", entity.ErrInvalidDateRange, err)
		}
		end = d
	}

	start := defaultStart(end, h.service.Earliest())
	if startParam != "" {
		d, err := entity.ParseDate(startParam)
		if err != nil {
			return entity.DateRange{}, fmt.Errorf("%w: %v", entity.ErrInvalidDateRange, err)
		}
		start = d
	}

	return entity.NewDateRange(start, end), nil
}

func splitSymbols(values []string) []string {
	var out []string
	for _, v := range values {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// defaultStart is the start date the dashboard preselects
func defaultStart(today, earliest time.Time) time.Time {
	start := today.AddDate(-1, 0, 0)
	if start.Before(earliest) {
		return earliest
	}
	return start
}

// RegisterRoutes registers the chart handler routes
func (h *ChartHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/chart", h.GetChart).Methods("GET")
	router.HandleFunc("/api/currencies", h.GetCurrencies).Methods("GET")

	h.logger.Info("Chart routes registered", map[string]interface{}{
		"routes": []string{
			"GET /api/chart",
			"GET /api/currencies",
		},
	})
}
