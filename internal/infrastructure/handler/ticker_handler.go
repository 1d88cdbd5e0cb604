// Package handler internal/infrastructure/handler/ticker_handler.go
package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/lasupernova/stock-ticker-dash/internal/application/service"
	domainservice "github.com/lasupernova/stock-ticker-dash/internal/domain/service"
	"github.com/lasupernova/stock-ticker-dash/internal/infrastructure/logger"
	"github.com/lasupernova/stock-ticker-dash/internal/infrastructure/middleware"
)

const (
	defaultGainers = 10
	maxGainers     = 100
)

// TickerHandler handles HTTP requests for the ticker reference table
type TickerHandler struct {
	service *service.TickerService
	gainers domainservice.GainersProvider
	logger  logger.Logger
}

// NewTickerHandler creates a new ticker handler. gainers may be nil, which
// leaves the day gainers route unregistered.
func NewTickerHandler(service *service.TickerService, gainers domainservice.GainersProvider, log logger.Logger) *TickerHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &TickerHandler{
		service: service,
		gainers: gainers,
		logger:  log,
	}
}

// ListOptions handles the ticker selection list
func (h *TickerHandler) ListOptions(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	query := r.URL.Query()

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.logger.Warn("Invalid limit parameter", map[string]interface{}{
				"request_id": requestID,
				"limit":      raw,
			})
			sendErrorResponse(w, h.logger, "Invalid limit",
				"The 'limit' query parameter must be a non-negative integer", http.StatusBadRequest, requestID)
			return
		}
		limit = n
	}

	options, err := h.service.Options(r.Context(), query.Get("q"), limit)
	if err != nil {
		sendServiceError(w, h.logger, err, requestID)
		return
	}

	sendJSON(w, h.logger, TickerOptionsResponse{Options: options, Count: len(options)}, requestID)
}

// GetTicker handles retrieving one reference row
func (h *TickerHandler) GetTicker(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	symbol := mux.Vars(r)["symbol"]

	h.logger.Debug("Handling get ticker request", map[string]interface{}{
		"request_id": requestID,
		"symbol":     symbol,
	})

	ticker, err := h.service.Lookup(r.Context(), symbol)
	if err != nil {
		sendServiceError(w, h.logger, err, requestID)
		return
	}

	sendJSON(w, h.logger, newTickerResponse(ticker), requestID)
}

// GetGainers handles the day gainers screener
func (h *TickerHandler) GetGainers(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	count := defaultGainers
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxGainers {
			h.logger.Warn("Invalid count parameter", map[string]interface{}{
				"request_id": requestID,
				"count":      raw,
			})
			sendErrorResponse(w, h.logger, "Invalid count",
				"The 'count' query parameter must be between 1 and "+strconv.Itoa(maxGainers),
				http.StatusBadRequest, requestID)
			return
		}
		count = n
	}

	gainers, err := h.gainers.DayGainers(r.Context(), count)
	if err != nil {
		sendServiceError(w, h.logger, err, requestID)
		return
	}

	sendJSON(w, h.logger, GainersResponse{Gainers: gainers}, requestID)
}

// RegisterRoutes registers the ticker handler routes
func (h *TickerHandler) RegisterRoutes(router *mux.Router) {
	routes := []string{
		"GET /api/tickers",
		"GET /api/tickers/{symbol}",
	}

	router.HandleFunc("/api/tickers", h.ListOptions).Methods("GET")
	router.HandleFunc("/api/tickers/{symbol}", h.GetTicker).Methods("GET")
	if h.gainers != nil {
		router.HandleFunc("/api/gainers", h.GetGainers).Methods("GET")
		routes = append(routes, "GET /api/gainers")
	}

	h.logger.Info("Ticker routes registered", map[string]interface{}{
		"routes": routes,
	})
}
