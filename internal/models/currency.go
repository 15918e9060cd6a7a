package models

import (
	"regexp"
	"strings"

	"github.com/sbilibin2017/gw-exchange-rates/internal/apperrors"
)

var currencyCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Common currency codes.
const (
	USD = "USD"
	EUR = "EUR"
	GBP = "GBP"
	JPY = "JPY"
	CHF = "CHF"
	AUD = "AUD"
	CAD = "CAD"
	BTC = "BTC"
	ETH = "ETH"
)

// NormalizeCurrency uppercases code and checks it has the ^[A-Z]{3}$ shape.
// The code is not checked against any canonical list.
func NormalizeCurrency(code string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if !currencyCodePattern.MatchString(c) {
		return "", apperrors.Validation("invalid currency code " + quote(code))
	}
	return c, nil
}

// SameCurrency reports whether a and b name the same currency, ignoring case.
func SameCurrency(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func quote(s string) string {
	return `"` + s + `"`
}
