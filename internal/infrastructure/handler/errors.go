package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lasupernova/stock-ticker-dash/internal/application/service"
	"github.com/lasupernova/stock-ticker-dash/internal/domain/entity"
	"github.com/lasupernova/stock-ticker-dash/internal/infrastructure/logger"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error       string `json:"error"`
	Status      int    `json:"status"`
	Description string `json:"description,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

// sendServiceError maps a service error onto a status code and error envelope
func sendServiceError(w http.ResponseWriter, log logger.Logger, err error, requestID string) {
	var (
		malformed *entity.MalformedSeriesError
		remote    *entity.RemoteUnavailableError
	)

	fields := map[string]interface{}{
		"request_id": requestID,
		"error":      err.Error(),
	}

	switch {
	case errors.As(err, &malformed):
		log.Error("Remote returned malformed data", fields)
		sendErrorResponse(w, log, "Malformed market data",
			err.Error(), http.StatusBadGateway, requestID)
	case errors.As(err, &remote):
		log.Error("Remote source unavailable", fields)
		sendErrorResponse(w, log, "Market data unavailable",
			"The "+remote.Source+" data source is unavailable. Please try again later.",
			http.StatusServiceUnavailable, requestID)
	case errors.Is(err, entity.ErrTickerNotFound), errors.Is(err, entity.ErrSymbolNotFound):
		log.Warn("Symbol not found", fields)
		sendErrorResponse(w, log, "Symbol not found", err.Error(), http.StatusNotFound, requestID)
	case errors.Is(err, entity.ErrInvalidDateRange):
		log.Warn("Invalid date range", fields)
		sendErrorResponse(w, log, "Invalid date range", err.Error(), http.StatusBadRequest, requestID)
	case errors.Is(err, entity.ErrUnsupportedCurrency):
		log.Warn("Unsupported currency", fields)
		sendErrorResponse(w, log, "Unsupported currency", err.Error(), http.StatusBadRequest, requestID)
	case errors.Is(err, service.ErrInvalidRequest):
		log.Warn("Invalid request", fields)
		sendErrorResponse(w, log, "Invalid request", err.Error(), http.StatusBadRequest, requestID)
	default:
		log.Error("Unexpected error", fields)
		sendErrorResponse(w, log, "Internal server error",
			"An unexpected error occurred. Please try again later.",
			http.StatusInternalServerError, requestID)
	}
}

func sendErrorResponse(w http.ResponseWriter, log logger.Logger, message, description string, statusCode int, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := ErrorResponse{
		Error:       message,
		Status:      statusCode,
		Description: description,
		RequestID:   requestID,
	}

	log.Debug("Sending error response", map[string]interface{}{
		"request_id":  requestID,
		"status_code": statusCode,
		"message":     message,
	})

	json.NewEncoder(w).Encode(resp)
}

// sendJSON writes v as JSON; if v cannot be encoded the client gets a 500
func sendJSON(w http.ResponseWriter, log logger.Logger, v interface{}, requestID string) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		log.Error("Failed to encode response", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, log, "Internal server error",
			"The response could not be encoded", http.StatusInternalServerError, requestID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	buf.WriteTo(w)
}
