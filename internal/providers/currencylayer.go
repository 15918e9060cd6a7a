// Package providers implements external exchange rate sources.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sbilibin2017/gw-exchange-rates/internal/apperrors"
	"github.com/sbilibin2017/gw-exchange-rates/internal/logger"
	"github.com/sbilibin2017/gw-exchange-rates/internal/models"
	"github.com/shopspring/decimal"
)

// CurrencyLayer error codes with a dedicated classification.
const (
	currencyLayerUsageLimit      = 104
	currencyLayerInvalidCurrency = 202
)

// CurrencyLayerEarliestDate is the first day the /historical endpoint serves.
var CurrencyLayerEarliestDate = time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)

var defaultCurrencies = []string{
	models.USD, models.EUR, models.GBP, models.JPY, models.CHF, models.AUD, models.CAD,
}

// CurrencyLayerProvider fetches rates from the currencylayer.com REST API.
type CurrencyLayerProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewCurrencyLayerProvider builds a provider for host. A host that already
// carries a scheme is used verbatim, otherwise useHTTPS selects it.
func NewCurrencyLayerProvider(apiKey, host string, useHTTPS bool, timeout time.Duration) *CurrencyLayerProvider {
	return &CurrencyLayerProvider{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL(host, useHTTPS),
		apiKey:  apiKey,
	}
}

func (p *CurrencyLayerProvider) Name() string { return "currencylayer" }

type currencyLayerResponse struct {
	Success bool                       `json:"success"`
	Quotes  map[string]decimal.Decimal `json:"quotes"`
	Error   *struct {
		Code int    `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

// Fetch returns the rate for from->to. A nil date asks for the live rate.
func (p *CurrencyLayerProvider) Fetch(ctx context.Context, from, to string, date *time.Time) (decimal.Decimal, error) {
	if models.SameCurrency(from, to) {
		return decimal.NewFromInt(1), nil
	}
	if date != nil && date.Before(CurrencyLayerEarliestDate) {
		return decimal.Zero, apperrors.Provider(apperrors.CodeDateOutOfRange,
			"date is before earliest available date "+CurrencyLayerEarliestDate.Format(models.DateLayout), nil)
	}

	endpoint := "/live"
	params := url.Values{}
	params.Set("access_key", p.apiKey)
	params.Set("source", from)
	params.Set("currencies", to)
	if date != nil {
		endpoint = "/historical"
		params.Set("date", date.Format(models.DateLayout))
	}

	body, status, err := getBody(ctx, p.client, p.baseURL+endpoint+"?"+params.Encode())
	if err != nil {
		logger.Log.Errorw("currencylayer request failed", "from", from, "to", to, "endpoint", endpoint, "error", err)
		return decimal.Zero, err
	}

	var data currencyLayerResponse
	if err := json.Unmarshal(body, &data); err != nil {
		logger.Log.Errorw("currencylayer invalid response", "status", status, "error", err)
		return decimal.Zero, apperrors.Provider(apperrors.CodeInvalidResponse, "invalid JSON response from API", err)
	}

	if !data.Success {
		code, info := 0, "unknown API error"
		if data.Error != nil {
			code = data.Error.Code
			if data.Error.Info != "" {
				info = data.Error.Info
			}
		}
		logger.Log.Warnw("currencylayer api error", "from", from, "to", to, "code", code, "info", info)

		switch code {
		case currencyLayerUsageLimit:
			return decimal.Zero, apperrors.Provider(apperrors.CodeUpstreamLimit, info, nil)
		case currencyLayerInvalidCurrency:
			return decimal.Zero, apperrors.Provider(apperrors.CodeInvalidCurrency, info, nil)
		default:
			return decimal.Zero, apperrors.Provider(apperrors.CodeAPI, info, nil)
		}
	}

	rate, ok := data.Quotes[from+to]
	if !ok {
		return decimal.Zero, apperrors.Provider(apperrors.CodeRateNotFound,
			fmt.Sprintf("rate not found for %s to %s", from, to), nil)
	}
	if !rate.IsPositive() {
		return decimal.Zero, apperrors.Provider(apperrors.CodeInvalidResponse,
			fmt.Sprintf("non-positive rate %s for %s to %s", rate, from, to), nil)
	}

	return rate, nil
}

// IsAvailable probes the live USD->EUR quote.
func (p *CurrencyLayerProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.Fetch(ctx, models.USD, models.EUR, nil)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Log.Warnw("currencylayer unavailable", "error", err)
	}
	return err == nil
}

// SupportedCurrencies returns a reference list. The API accepts any ISO code.
func (p *CurrencyLayerProvider) SupportedCurrencies() []string {
	out := make([]string, len(defaultCurrencies))
	copy(out, defaultCurrencies)
	return out
}
