package entity

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrDuplicateDate is returned when a series is built with two values for one day
	ErrDuplicateDate = errors.New("duplicate date in series")
	// ErrTickerNotFound is returned when the reference table has no such symbol
	ErrTickerNotFound = errors.New("ticker not found")
	// ErrSymbolNotFound is returned when the price source does not know a symbol
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrUnsupportedCurrency is returned for currencies outside the supported set
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	// ErrInvalidDateRange is returned for unordered or out-of-bounds ranges
	ErrInvalidDateRange = errors.New("invalid date range")
)

// MalformedSeriesError reports a series entry whose value is not a finite number
type MalformedSeriesError struct {
	Date   time.Time
	Value  interface{}
	Reason string
}

func (e *MalformedSeriesError) Error() string {
	date := "unknown date"
	if !e.Date.IsZero() {
		date = FormatDate(e.Date)
	}
	if e.Reason != "" {
		return fmt.Sprintf("malformed series value %v at %s: %s", e.Value, date, e.Reason)
	}
	return fmt.Sprintf("malformed series value %v at %s", e.Value, date)
}

// RemoteUnavailableError reports a failed call to a remote data source
type RemoteUnavailableError struct {
	Source string
	Err    error
}

func (e *RemoteUnavailableError) Error() string {
	return fmt.Sprintf("remote source %s unavailable: %v", e.Source, e.Err)
}

func (e *RemoteUnavailableError) Unwrap() error {
	return e.Err
}

// NewRemoteUnavailableError wraps err as a failure of the named source
func NewRemoteUnavailableError(source string, err error) *RemoteUnavailableError {
	return &RemoteUnavailableError{Source: source, Err: err}
}
