package entity

import (
	"errors"
	"strings"
	"time"
)

// CryptoType is the asset type the reference data uses for crypto currencies
const CryptoType = "crypto"

// Ticker is one row of the ticker reference table
type Ticker struct {
	Symbol string    `json:"symbol"`
	Name   string    `json:"name"`
	Date   time.Time `json:"date"`
	Type   string    `json:"type"`
}

// TickerOption is one entry of the ticker selection list
type TickerOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Validate ensures the ticker can be stored
func (t *Ticker) Validate() error {
	if strings.TrimSpace(t.Symbol) == "" {
		return errors.New("symbol must not be empty")
	}

	if strings.ContainsAny(t.Symbol, " \t\n") {
		return errors.New("symbol must not contain whitespace")
	}

	return nil
}

func isMissing(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "nan")
}

// HasName reports whether the reference data carries a display name
func (t *Ticker) HasName() bool {
	return !isMissing(t.Name)
}

// IsCrypto reports whether the ticker is a crypto currency
func (t *Ticker) IsCrypto() bool {
	return strings.EqualFold(t.Type, CryptoType)
}

// Label is the text shown in the selection list: the name, marked for crypto,
// or the bare symbol when the reference data has no name. Rows without a
// symbol have no label.
func (t *Ticker) Label() string {
	switch {
	case isMissing(t.Symbol):
		return ""
	case !t.HasName():
		return t.Symbol
	case t.IsCrypto():
		return t.Name + " [CRYPTO]"
	default:
		return t.Name
	}
}

// Option returns the selection entry and false for tickers that are not listed
func (t *Ticker) Option() (TickerOption, bool) {
	label := t.Label()
	if label == "" {
		return TickerOption{}, false
	}
	return TickerOption{Label: label, Value: t.Symbol}, true
}
