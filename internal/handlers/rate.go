package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sbilibin2017/gw-exchange-rates/internal/apperrors"
	"github.com/sbilibin2017/gw-exchange-rates/internal/logger"
	"github.com/sbilibin2017/gw-exchange-rates/internal/models"
)

var validate = validator.New()

// NewGetRateHandler returns the exchange rate endpoint.
// @Summary Get exchange rate
// @Description Resolves the rate of one unit of `from` in `to` for a date, preferring the cache over the provider
// @Tags rates
// @Produce json
// @Param from query string true "Source currency code" example(USD)
// @Param to query string true "Target currency code" example(EUR)
// @Param date query string false "YYYY-MM-DD or latest" example(2023-01-01)
// @Success 200 {object} models.RateResponse
// @Failure 400 {object} models.ErrorResponse "Missing parameters, malformed currency or date, future date"
// @Failure 401 {object} models.ErrorResponse "Invalid or missing token"
// @Failure 404 {object} models.ErrorResponse "Rate not found"
// @Failure 429 {object} models.ErrorResponse "Too many requests"
// @Failure 500 {object} models.ErrorResponse "Provider or internal failure"
// @Failure 503 {object} models.ErrorResponse "Rate store unavailable"
// @Router /api/v1/rate [get]
// @Security BearerAuth
func NewGetRateHandler(resolver RateResolver, auth PairValidator, limiter Limiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		query := models.RateQuery{
			From: strings.TrimSpace(q.Get("from")),
			To:   strings.TrimSpace(q.Get("to")),
			Date: strings.TrimSpace(q.Get("date")),
		}
		if err := validate.Struct(query); err != nil {
			writeError(w, apperrors.Validation("Missing required parameters"))
			return
		}

		from, to := strings.ToUpper(query.From), strings.ToUpper(query.To)

		if !auth.Validate(r.Header, from, to) {
			writeError(w, apperrors.New(apperrors.KindAuth, apperrors.CodeUnauthorized, "Invalid or missing authentication token"))
			return
		}

		client := clientID(r)
		allowed, err := limiter.CheckLimit(r.Context(), client)
		if err != nil {
			logger.Log.Errorw("rate limiter degraded", "client", client, "error", err)
		}
		if !allowed {
			writeError(w, apperrors.New(apperrors.KindRateLimited, apperrors.CodeTooManyRequests, "Rate limit exceeded. Please try again later."))
			return
		}

		quote, err := resolver.Resolve(r.Context(), from, to, query.Date)
		if err != nil {
			logger.Log.Infow("rate resolution failed", "from", from, "to", to, "date", query.Date, "error", err)
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, models.RateResponse{
			Success: true,
			Data: models.RateData{
				From:      quote.From,
				To:        quote.To,
				Rate:      quote.FormattedRate(),
				Date:      quote.Date.Format(models.DateLayout),
				Timestamp: time.Now().Unix(),
				Source:    string(quote.Source),
			},
			Warning: quote.Warning,
		})
	}
}

// RegisterGetRateHandler registers the rate route on the /api/v1 router.
func RegisterGetRateHandler(r chi.Router, h http.HandlerFunc) {
	r.Get("/rate", h)
}
