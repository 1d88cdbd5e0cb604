package entity

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DatedValue is a single (calendar date, value) pair
type DatedValue struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series is an ordered mapping from calendar date to value.
// Points are sorted ascending and no two points share a date.
type Series struct {
	points []DatedValue
}

// NewSeries builds a series from points in any order
func NewSeries(points ...DatedValue) (Series, error) {
	sorted := make([]DatedValue, len(points))
	for i, p := range points {
		sorted[i] = DatedValue{Date: DateOf(p.Date), Value: p.Value}
	}

	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Date.Equal(sorted[i-1].Date) {
			return Series{}, fmt.Errorf("%w: %s", ErrDuplicateDate, FormatDate(sorted[i].Date))
		}
	}

	return Series{points: sorted}, nil
}

// MustSeries is NewSeries for literals known to be valid
func MustSeries(points ...DatedValue) Series {
	s, err := NewSeries(points...)
	if err != nil {
		panic(err)
	}
	return s
}

// ParseSeries builds a series from raw decoded values keyed by YYYY-MM-DD.
// Numbers and numeric strings are accepted; anything else is a MalformedSeriesError.
func ParseSeries(raw map[string]interface{}) (Series, error) {
	points := make([]DatedValue, 0, len(raw))
	for key, v := range raw {
		date, err := ParseDate(key)
		if err != nil {
			return Series{}, err
		}

		value, err := ParseValue(date, v)
		if err != nil {
			return Series{}, err
		}

		points = append(points, DatedValue{Date: date, Value: value})
	}

	return NewSeries(points...)
}

// ParseValue converts a raw decoded value into a finite float
func ParseValue(date time.Time, v interface{}) (float64, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, &MalformedSeriesError{Date: date, Value: v, Reason: "not a number"}
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, &MalformedSeriesError{Date: date, Value: v, Reason: "not a number"}
		}
		f = parsed
	default:
		return 0, &MalformedSeriesError{Date: date, Value: v, Reason: fmt.Sprintf("unexpected type %T", v)}
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &MalformedSeriesError{Date: date, Value: v, Reason: "not finite"}
	}

	return f, nil
}

// Len returns the number of points
func (s Series) Len() int {
	return len(s.points)
}

// IsEmpty reports whether the series has no points
func (s Series) IsEmpty() bool {
	return len(s.points) == 0
}

// Points returns a copy of the points in ascending date order
func (s Series) Points() []DatedValue {
	out := make([]DatedValue, len(s.points))
	copy(out, s.points)
	return out
}

// Dates returns the dates in ascending order
func (s Series) Dates() []time.Time {
	out := make([]time.Time, len(s.points))
	for i, p := range s.points {
		out[i] = p.Date
	}
	return out
}

// Values returns the values in date order
func (s Series) Values() []float64 {
	out := make([]float64, len(s.points))
	for i, p := range s.points {
		out[i] = p.Value
	}
	return out
}

// Value looks up the value recorded for a calendar day
func (s Series) Value(date time.Time) (float64, bool) {
	date = DateOf(date)
	i := sort.Search(len(s.points), func(i int) bool { return !s.points[i].Date.Before(date) })
	if i < len(s.points) && s.points[i].Date.Equal(date) {
		return s.points[i].Value, true
	}
	return 0, false
}

// First returns the earliest point
func (s Series) First() (DatedValue, bool) {
	if len(s.points) == 0 {
		return DatedValue{}, false
	}
	return s.points[0], true
}

// Last returns the latest point
func (s Series) Last() (DatedValue, bool) {
	if len(s.points) == 0 {
		return DatedValue{}, false
	}
	return s.points[len(s.points)-1], true
}
