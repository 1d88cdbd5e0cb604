// Package handler internal/infrastructure/handler/dashboard_handler.go
package handler

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/lasupernova/stock-ticker-dash/internal/application/service"
	"github.com/lasupernova/stock-ticker-dash/internal/domain/entity"
	"github.com/lasupernova/stock-ticker-dash/internal/infrastructure/logger"
	"github.com/lasupernova/stock-ticker-dash/internal/infrastructure/middleware"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTemplate = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

// DashboardConfig holds the page defaults
type DashboardConfig struct {
	Title           string
	DefaultSymbols  []string
	DefaultCurrency string
}

type dashboardPage struct {
	Title           string
	DefaultSymbols  string
	DefaultCurrency string
	Currencies      []CurrencyResponse
	Earliest        string
	Today           string
	Start           string
}

// DashboardHandler serves the dashboard page and the health check
type DashboardHandler struct {
	charts  *service.ChartService
	tickers *service.TickerService
	cfg     DashboardConfig
	logger  logger.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(charts *service.ChartService, tickers *service.TickerService, cfg DashboardConfig, log logger.Logger) *DashboardHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	if cfg.Title == "" {
		cfg.Title = "Stock Ticker Dashboard"
	}

	return &DashboardHandler{
		charts:  charts,
		tickers: tickers,
		cfg:     cfg,
		logger:  log,
	}
}

// Index renders the dashboard page
func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	today := h.charts.Today()
	earliest := h.charts.Earliest()

	page := dashboardPage{
		Title:           h.cfg.Title,
		DefaultSymbols:  strings.Join(h.cfg.DefaultSymbols, ","),
		DefaultCurrency: strings.ToUpper(h.cfg.DefaultCurrency),
		Currencies:      newCurrencyResponses(h.charts.Currencies()),
		Today:           entity.FormatDate(today),
		Start:           entity.FormatDate(defaultStart(today, earliest)),
	}
	if page.DefaultCurrency == "" {
		page.DefaultCurrency = entity.BaseCurrency.String()
	}
	if !earliest.IsZero() {
		page.Earliest = entity.FormatDate(earliest)
	}

	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, page); err != nil {
		h.logger.Error("Failed to render dashboard", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Internal server error",
			"The dashboard could not be rendered", http.StatusInternalServerError, requestID)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// Health reports whether the ticker store can be read
func (h *DashboardHandler) Health(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	count, err := h.tickers.Count(r.Context())
	if err != nil {
		h.logger.Error("Health check failed", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Unhealthy",
			"The ticker store could not be read", http.StatusServiceUnavailable, requestID)
		return
	}

	sendJSON(w, h.logger, HealthResponse{Status: "ok", Tickers: count}, requestID)
}

// RegisterRoutes registers the dashboard handler routes
func (h *DashboardHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/", h.Index).Methods("GET")
	router.HandleFunc("/healthz", h.Health).Methods("GET")

	h.logger.Info("Dashboard routes registered", map[string]interface{}{
		"routes": []string{
			"GET /",
			"GET /healthz",
		},
	})
}
