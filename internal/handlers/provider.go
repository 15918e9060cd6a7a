package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sbilibin2017/gw-exchange-rates/internal/models"
)

// NewGetCurrenciesHandler lists the provider's reference currencies.
// @Summary List supported currencies
// @Description Returns the reference currency list of the configured provider
// @Tags provider
// @Produce json
// @Success 200 {object} models.CurrenciesResponse
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Router /api/v1/currencies [get]
// @Security BearerAuth
func NewGetCurrenciesHandler(provider ProviderInfo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.CurrenciesResponse{
			Success:    true,
			Provider:   provider.Name(),
			Currencies: provider.SupportedCurrencies(),
		})
	}
}

// NewGetProviderStatusHandler probes the provider.
// @Summary Provider status
// @Description Reports whether the configured provider answers a probe request
// @Tags provider
// @Produce json
// @Success 200 {object} models.ProviderStatusResponse
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Router /api/v1/provider/status [get]
// @Security BearerAuth
func NewGetProviderStatusHandler(provider ProviderInfo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.ProviderStatusResponse{
			Success:   true,
			Provider:  provider.Name(),
			Available: provider.IsAvailable(r.Context()),
		})
	}
}

func RegisterGetCurrenciesHandler(r chi.Router, h http.HandlerFunc) {
	r.Get("/currencies", h)
}

func RegisterGetProviderStatusHandler(r chi.Router, h http.HandlerFunc) {
	r.Get("/provider/status", h)
}
