package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used on the wire and in storage.
const DateLayout = "2006-01-02"

// LatestDate is the sentinel accepted in place of a date for the current rate.
const LatestDate = "latest"

// RateRecord is one cached rate, identified by (From, To, Date). Rate is always positive.
type RateRecord struct {
	From string          `db:"from_currency"`
	To   string          `db:"to_currency"`
	Rate decimal.Decimal `db:"rate"`
	Date time.Time       `db:"rate_date"`
}

// Source tells where a quote came from.
type Source string

const (
	SourceCache    Source = "CACHE"
	SourceProvider Source = "PROVIDER"
)

// Quote is the result of resolving one pair for one date.
type Quote struct {
	From     string
	To       string
	Rate     decimal.Decimal
	Date     time.Time
	Source   Source
	Identity bool   // from == to shortcut
	Warning  string // set when the cache degraded but the quote was still produced
}

var precisionThreshold = decimal.New(1, -2)

// RatePrecision returns the number of fractional digits used to emit rate:
// 10 below 0.01, 8 otherwise (0.01 itself uses 8).
func RatePrecision(rate decimal.Decimal) int32 {
	if rate.LessThan(precisionThreshold) {
		return 10
	}
	return 8
}

// FormatRate renders rate with RatePrecision fractional digits.
func FormatRate(rate decimal.Decimal) string {
	return rate.StringFixed(RatePrecision(rate))
}

// FormattedRate renders the quote rate. Identity quotes render as "1.00".
func (q *Quote) FormattedRate() string {
	if q.Identity {
		return q.Rate.StringFixed(2)
	}
	return FormatRate(q.Rate)
}

// Inverse returns 1/rate. The caller guarantees rate is non-zero.
func Inverse(rate decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(1).Div(rate)
}
