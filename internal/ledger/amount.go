package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

var currencyTokens = []string{"دينار", "TND", "DT", "د.", "د", "€", "$"}

// ParseAmount reads a stored money cell. Currency tokens and spaces are
// stripped and a comma decimal separator is accepted; anything unparseable
// is zero.
func ParseAmount(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero
	}
	for _, tok := range currencyTokens {
		s = strings.ReplaceAll(s, tok, "")
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatAmount renders an amount the way it is persisted (two decimals)
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Sum adds up amounts
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
