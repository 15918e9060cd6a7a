package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/gw-exchange-rates/internal/apperrors"
	"github.com/sbilibin2017/gw-exchange-rates/internal/logger"
	"github.com/sbilibin2017/gw-exchange-rates/internal/models"
)

var (
	fixerCurrencies = []string{
		models.EUR, models.USD, models.GBP, models.JPY, models.CHF, models.AUD, models.CAD,
	}
	exchangeRatesAPICurrencies = []string{
		models.EUR, models.USD, models.GBP, models.JPY, models.BTC, models.ETH,
	}
)

// ratesAPIProvider speaks the /{date|latest}?base=&symbols= dialect shared
// by fixer.io and exchangeratesapi.io. Rates come back under rates[to].
type ratesAPIProvider struct {
	name       string
	client     *http.Client
	baseURL    string
	apiKey     string
	currencies []string
}

// FixerProvider fetches rates from the fixer.io API.
type FixerProvider struct {
	ratesAPIProvider
}

func NewFixerProvider(apiKey, host string, useHTTPS bool, timeout time.Duration) *FixerProvider {
	return &FixerProvider{newRatesAPIProvider("fixer", apiKey, host, useHTTPS, timeout, fixerCurrencies)}
}

// ExchangeRatesAPIProvider fetches rates from the exchangeratesapi.io API.
type ExchangeRatesAPIProvider struct {
	ratesAPIProvider
}

func NewExchangeRatesAPIProvider(apiKey, host string, useHTTPS bool, timeout time.Duration) *ExchangeRatesAPIProvider {
	return &ExchangeRatesAPIProvider{newRatesAPIProvider("exchangeratesapi", apiKey, host, useHTTPS, timeout, exchangeRatesAPICurrencies)}
}

func newRatesAPIProvider(name, apiKey, host string, useHTTPS bool, timeout time.Duration, currencies []string) ratesAPIProvider {
	return ratesAPIProvider{
		name:       name,
		client:     &http.Client{Timeout: timeout},
		baseURL:    baseURL(host, useHTTPS),
		apiKey:     apiKey,
		currencies: currencies,
	}
}

func (p *ratesAPIProvider) Name() string { return p.name }

type ratesAPIResponse struct {
	Success *bool                      `json:"success"`
	Rates   map[string]decimal.Decimal `json:"rates"`
	Error   json.RawMessage            `json:"error"`
}

func (r *ratesAPIResponse) failed() bool {
	if r.Success != nil && !*r.Success {
		return true
	}
	return len(r.Error) > 0 && string(r.Error) != "null"
}

type ratesAPIError struct {
	Code int    `json:"code"`
	Type string `json:"type"`
	Info string `json:"info"`
}

// Fetch returns the rate for from->to. A nil date asks for the latest rate.
func (p *ratesAPIProvider) Fetch(ctx context.Context, from, to string, date *time.Time) (decimal.Decimal, error) {
	if models.SameCurrency(from, to) {
		return decimal.NewFromInt(1), nil
	}
	if p.apiKey == "" {
		return decimal.Zero, apperrors.Provider(apperrors.CodeAPI, "API key not configured", nil)
	}

	path := "/" + models.LatestDate
	if date != nil {
		path = "/" + date.Format(models.DateLayout)
	}
	params := url.Values{}
	params.Set("access_key", p.apiKey)
	params.Set("base", from)
	params.Set("symbols", to)

	body, status, err := getBody(ctx, p.client, p.baseURL+path+"?"+params.Encode())
	if err != nil {
		logger.Log.Errorw(p.name+" request failed", "from", from, "to", to, "path", path, "error", err)
		return decimal.Zero, err
	}

	var data ratesAPIResponse
	if err := json.Unmarshal(body, &data); err != nil {
		logger.Log.Errorw(p.name+" invalid response", "status", status, "error", err)
		return decimal.Zero, apperrors.Provider(apperrors.CodeInvalidResponse, "invalid JSON response from API", err)
	}

	if data.failed() {
		err := classifyRatesAPIError(data.Error)
		logger.Log.Warnw(p.name+" api error", "from", from, "to", to, "status", status, "error", err)
		return decimal.Zero, err
	}

	rate, ok := data.Rates[to]
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

// classifyRatesAPIError maps the error member, which is an object on fixer
// and may be a bare string on exchangeratesapi.
func classifyRatesAPIError(raw json.RawMessage) error {
	info := "unknown API error"

	var obj ratesAPIError
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Info != "" {
			info = obj.Info
		} else if obj.Type != "" {
			info = obj.Type
		}
		switch obj.Code {
		case currencyLayerUsageLimit:
			return apperrors.Provider(apperrors.CodeUpstreamLimit, info, nil)
		case currencyLayerInvalidCurrency:
			return apperrors.Provider(apperrors.CodeInvalidCurrency, info, nil)
		}
		return apperrors.Provider(apperrors.CodeAPI, info, nil)
	}

	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil && msg != "" {
		info = msg
	}
	return apperrors.Provider(apperrors.CodeAPI, info, nil)
}

// IsAvailable reports whether an API key is configured. No request is made.
func (p *ratesAPIProvider) IsAvailable(_ context.Context) bool {
	return p.apiKey != ""
}

func (p *ratesAPIProvider) SupportedCurrencies() []string {
	out := make([]string, len(p.currencies))
	copy(out, p.currencies)
	return out
}
