package handler

import (
	"github.com/lasupernova/stock-ticker-dash/internal/domain/entity"
)

// CurrencyResponse is one entry of the currency selection list
type CurrencyResponse struct {
	Code     string `json:"code"`
	Grapheme string `json:"grapheme"`
	Base     bool   `json:"base"`
}

// TickerResponse represents one row of the ticker reference table
type TickerResponse struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name,omitempty"`
	Label  string `json:"label"`
	Date   string `json:"date,omitempty"`
	Type   string `json:"type,omitempty"`
}

// TickerOptionsResponse represents the response for the ticker options endpoint
type TickerOptionsResponse struct {
	Options []entity.TickerOption `json:"options"`
	Count   int                   `json:"count"`
}

// GainersResponse represents the response for the day gainers endpoint
type GainersResponse struct {
	Gainers []entity.Gainer `json:"gainers"`
}

// HealthResponse represents the response for the health endpoint
type HealthResponse struct {
	Status  string `json:"status"`
	Tickers int    `json:"tickers"`
}

func newTickerResponse(t *entity.Ticker) TickerResponse {
	resp := TickerResponse{
		Symbol: t.Symbol,
		Label:  t.Label(),
		Type:   t.Type,
	}
	if t.HasName() {
		resp.Name = t.Name
	}
	if !t.Date.IsZero() {
		resp.Date = entity.FormatDate(t.Date)
	}
	return resp
}

func newCurrencyResponses(currencies []entity.Currency) []CurrencyResponse {
	out := make([]CurrencyResponse, 0, len(currencies))
	for _, c := range currencies {
		out = append(out, CurrencyResponse{
			Code:     c.String(),
			Grapheme: c.Grapheme(),
			Base:     c.IsBase(),
		})
	}
	return out
}
