// internal/infrastructure/middleware/middleware_test.go
package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lasupernova/stock-ticker-dash/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
)

func TestRequestIDMiddleware(t *testing.T) {
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(GetRequestID(r.Context())))
	})

	handler := RequestIDMiddleware(nextHandler)

	t.Run("Generates an ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/chart", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		requestID := w.Header().Get(RequestIDHeader)
		assert.Len(t, requestID, 36)
		assert.Equal(t, requestID, w.Body.String())
	})

	t.Run("Keeps an incoming ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/chart", nil)
		req.Header.Set(RequestIDHeader, "render-42")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, "render-42", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "render-42", w.Body.String())
	})
}

func TestGetRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "render-42")
	assert.Equal(t, "render-42", GetRequestID(ctx))

	assert.Equal(t, "unknown", GetRequestID(context.Background()))
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewJSONLogger(&buf, logger.InfoLevel)

	t.Run("Chain carries the request ID into the log", func(t *testing.T) {
		buf.Reset()
		final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(GetRequestID(r.Context())))
		})
		chain := RequestIDMiddleware(LoggingMiddleware(log)(final))

		req := httptest.NewRequest(http.MethodGet, "/api/tickers?q=tes", nil)
		req.Header.Set(RequestIDHeader, "render-42")
		w := httptest.NewRecorder()
		chain.ServeHTTP(w, req)

		assert.Equal(t, "render-42", w.Body.String())
		assert.Contains(t, buf.String(), "render-42")
		assert.Contains(t, buf.String(), "Request served")
		assert.Contains(t, buf.String(), `"status":200`)
		assert.Contains(t, buf.String(), `"content_length":9`)
	})

	t.Run("Server errors are logged at ERROR", func(t *testing.T) {
		buf.Reset()
		failing := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		LoggingMiddleware(log)(failing).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/chart", nil))

		assert.Contains(t, buf.String(), `"level":"error"`)
		assert.Contains(t, buf.String(), `"status":503`)
	})

	t.Run("Client errors are logged at WARN", func(t *testing.T) {
		buf.Reset()
		rejecting := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		})
		LoggingMiddleware(log)(rejecting).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/chart", nil))

		assert.Contains(t, buf.String(), `"level":"warn"`)
	})
}

func TestCORSMiddleware(t *testing.T) {
	handler := CORSMiddleware([]string{"http://localhost:3000"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/currencies", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/currencies", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
