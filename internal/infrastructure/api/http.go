package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lasupernova/stock-ticker-dash/internal/domain/entity"
	"github.com/lasupernova/stock-ticker-dash/internal/infrastructure/logger"
)

const defaultTimeout = 10 * time.Second

// RateFetcherConfig is everything a rate client needs to reach its remote
type RateFetcherConfig struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

func orDefault(log logger.Logger) logger.Logger {
	if log == nil {
		return logger.GetDefaultLogger()
	}
	return log
}

// response is a fully read HTTP response
type response struct {
	status int
	body   []byte
}

// get performs a single GET. Transport failures come back as RemoteUnavailableError;
// the status code is left to the caller since some sources put error details in 4xx bodies.
func get(ctx context.Context, client *http.Client, source, reqURL string, headers map[string]string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, entity.NewRemoteUnavailableError(source, fmt.Errorf("failed to execute request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, entity.NewRemoteUnavailableError(source, fmt.Errorf("failed to read response body: %w", err))
	}

	return &response{status: resp.StatusCode, body: body}, nil
}

func statusError(source string, resp *response) error {
	body := string(resp.body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return entity.NewRemoteUnavailableError(source, fmt.Errorf("API returned error status: %d, body: %s", resp.status, body))
}

func inRange(d, start, end time.Time) bool {
	return !d.Before(entity.DateOf(start)) && !d.After(entity.DateOf(end))
}
