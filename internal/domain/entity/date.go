package entity

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date representation shared by every series
const DateLayout = "2006-01-02"

// NewDate returns the UTC midnight for the given calendar day
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf drops the time-of-day part of t, keeping the calendar day t has in its own location
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a YYYY-MM-DD string
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate formats a date as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateRange is an inclusive range of calendar days
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateRange normalises both ends to calendar days
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: DateOf(start), End: DateOf(end)}
}

// Validate checks that the range is ordered and lies within [earliest, today]
func (r DateRange) Validate(earliest, today time.Time) error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidDateRange)
	}
	if r.End.Before(r.Start) {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidDateRange, FormatDate(r.Start), FormatDate(r.End))
	}
	if !earliest.IsZero() && r.Start.Before(DateOf(earliest)) {
		return fmt.Errorf("%w: start %s is before %s", ErrInvalidDateRange, FormatDate(r.Start), FormatDate(earliest))
	}
	if r.End.After(DateOf(today)) {
		return fmt.Errorf("%w: end %s is in the future", ErrInvalidDateRange, FormatDate(r.End))
	}
	return nil
}
