package entity

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code the dashboard can convert prices into
type Currency string

// BaseCurrency is the currency every price series is quoted in
const BaseCurrency Currency = money.USD

// SupportedCurrencies is the default set offered for selection, base first
var SupportedCurrencies = []Currency{
	BaseCurrency,
	money.EUR,
	money.CAD,
	money.GBP,
	money.JPY,
	money.CHF,
	money.AUD,
}

// ParseCurrency normalises code and checks it against allowed.
// A nil allowed list means SupportedCurrencies.
func ParseCurrency(code string, allowed []Currency) (Currency, error) {
	if allowed == nil {
		allowed = SupportedCurrencies
	}

	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if c == "" {
		return BaseCurrency, nil
	}

	if money.GetCurrency(string(c)) == nil {
		return "", fmt.Errorf("%w: %q is not an ISO currency code", ErrUnsupportedCurrency, code)
	}

	for _, a := range allowed {
		if a == c {
			return c, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrUnsupportedCurrency, c)
}

// IsBase reports whether no conversion is needed
func (c Currency) IsBase() bool {
	return c == BaseCurrency
}

// Grapheme returns the currency symbol, falling back to the code
func (c Currency) Grapheme() string {
	if cur := money.GetCurrency(string(c)); cur != nil && cur.Grapheme != "" {
		return cur.Grapheme
	}
	return string(c)
}

// FormatAmount renders amount the way the currency is usually written
func (c Currency) FormatAmount(amount float64) string {
	cur := money.GetCurrency(string(c))
	if cur == nil {
		return fmt.Sprintf("%.2f %s", amount, c)
	}

	factor := decimal.New(1, int32(cur.Fraction))
	minor := decimal.NewFromFloat(amount).Mul(factor).Round(0)
	return money.New(minor.IntPart(), cur.Code).Display()
}

func (c Currency) String() string {
	return string(c)
}
