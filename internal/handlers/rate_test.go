package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/gw-exchange-rates/internal/apperrors"
	"github.com/sbilibin2017/gw-exchange-rates/internal/handlers"
	"github.com/sbilibin2017/gw-exchange-rates/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

func TestGetRateHandler(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		mockSetup func(res *handlers.MockRateResolver, auth *handlers.MockPairValidator, lim *handlers.MockLimiter)
		wantCode  int
		wantBody  map[string]interface{}
	}{
		{
			name:   "success from provider",
			target: "/rate?from=usd&to=eur&date=2023-01-01",
			mockSetup: func(res *handlers.MockRateResolver, auth *handlers.MockPairValidator, lim *handlers.MockLimiter) {
				auth.EXPECT().Validate(gomock.Any(), "USD", "EUR").Return(true)
				lim.EXPECT().CheckLimit(gomock.Any(), "192.0.2.1").Return(true, nil)
				res.EXPECT().Resolve(gomock.Any(), "USD", "EUR", "2023-01-01").Return(&models.Quote{
					From: "USD", To: "EUR", Rate: decimal.RequireFromString("0.934"), Date: day, Source: models.SourceProvider,
				}, nil)
			},
			wantCode: http.StatusOK,
			wantBody: map[string]interface{}{
				"success": true,
				"data": map[string]interface{}{
					"from":   "USD",
					"to":     "EUR",
					"rate":   "0.93400000",
					"date":   "2023-01-01",
					"source": "PROVIDER",
				},
			},
		},
		{
			name:   "identity with warning free body",
			target: "/rate?from=EUR&to=eur",
			mockSetup: func(res *handlers.MockRateResolver, auth *handlers.MockPairValidator, lim *handlers.MockLimiter) {
				auth.EXPECT().Validate(gomock.Any(), "EUR", "EUR").Return(true)
				lim.EXPECT().CheckLimit(gomock.Any(), gomock.Any()).Return(true, nil)
				res.EXPECT().Resolve(gomock.Any(), "EUR", "EUR", "").Return(&models.Quote{
					From: "EUR", To: "EUR", Rate: decimal.NewFromInt(1), Date: day, Source: models.SourceCache, Identity: true,
				}, nil)
			},
			wantCode: http.StatusOK,
			wantBody: map[string]interface{}{
				"success": true,
				"data": map[string]interface{}{
					"from": "EUR", "to": "EUR", "rate": "1.00", "date": "2023-01-01", "source": "CACHE",
				},
			},
		},
		{
			name:   "warning is passed through",
			target: "/rate?from=USD&to=EUR&date=2023-01-01",
			mockSetup: func(res *handlers.MockRateResolver, auth *handlers.MockPairValidator, lim *handlers.MockLimiter) {
				auth.EXPECT().Validate(gomock.Any(), "USD", "EUR").Return(true)
				lim.EXPECT().CheckLimit(gomock.Any(), gomock.Any()).Return(true, nil)
				res.EXPECT().Resolve(gomock.Any(), "USD", "EUR", "2023-01-01").Return(&models.Quote{
					From: "USD", To: "EUR", Rate: decimal.RequireFromString("0.934"), Date: day,
					Source: models.SourceProvider, Warning: "cache down",
				}, nil)
			},
			wantCode: http.StatusOK,
			wantBody: map[string]interface{}{
				"success": true,
				"warning": "cache down",
				"data": map[string]interface{}{
					"from": "USD", "to": "EUR", "rate": "0.93400000", "date": "2023-01-01", "source": "PROVIDER",
				},
			},
		},
		{
			name:      "missing parameters",
			target:    "/rate?from=USD",
			mockSetup: func(res *handlers.MockRateResolver, auth *handlers.MockPairValidator, lim *handlers.MockLimiter) {},
			wantCode:  http.StatusBadRequest,
			wantBody: map[string]interface{}{
				"success": false, "error": "Bad Request", "code": "VALIDATION_ERROR", "message": "Missing required parameters",
			},
		},
		{
			name:   "unauthorized",
			target: "/rate?from=USD&to=EUR",
			mockSetup: func(res *handlers.MockRateResolver, auth *handlers.MockPairValidator, lim *handlers.MockLimiter) {
				auth.EXPECT().Validate(gomock.Any(), "USD", "EUR").Return(false)
			},
			wantCode: http.StatusUnauthorized,
			wantBody: map[string]interface{}{
				"success": false, "error": "Unauthorized", "code": "UNAUTHORIZED", "message": "Invalid or missing authentication token",
			},
		},
		{
			name:   "rate limited locally",
			target: "/rate?from=USD&to=EUR",
			mockSetup: func(res *handlers.MockRateResolver, auth *handlers.MockPairValidator, lim *handlers.MockLimiter) {
				auth.EXPECT().Validate(gomock.Any(), "USD", "EUR").Return(true)
				lim.EXPECT().CheckLimit(gomock.Any(), "192.0.2.1").Return(false, nil)
			},
			wantCode: http.StatusTooManyRequests,
			wantBody: map[string]interface{}{
				"success": false, "error": "Too Many Requests", "code": "TOO_MANY_REQUESTS", "message": "Rate limit exceeded. Please try again later.",
			},
		},
		{
			name:   "limiter failure admits request",
			target: "/rate?from=USD&to=EUR",
			mockSetup: func(res *handlers.MockRateResolver, auth *handlers.MockPairValidator, lim *handlers.MockLimiter) {
				auth.EXPECT().Validate(gomock.Any(), "USD", "EUR").Return(true)
				lim.EXPECT().CheckLimit(gomock.Any(), gomock.Any()).Return(true, errors.New("store down"))
				res.EXPECT().Resolve(gomock.Any(), "USD", "EUR", "").Return(&models.Quote{
					From: "USD", To: "EUR", Rate: decimal.RequireFromString("0.9"), Date: day, Source: models.SourceProvider,
				}, nil)
			},
			wantCode: http.StatusOK,
			wantBody: map[string]interface{}{
				"success": true,
				"data": map[string]interface{}{
					"from": "USD", "to": "EUR", "rate": "0.90000000", "date": "2023-01-01", "source": "PROVIDER",
				},
			},
		},
		{
			name:   "future date",
			target: "/rate?from=USD&to=EUR&date=2999-01-01",
			mockSetup: func(res *handlers.MockRateResolver, auth *handlers.MockPairValidator, lim *handlers.MockLimiter) {
				auth.EXPECT().Validate(gomock.Any(), "USD", "EUR").Return(true)
				lim.EXPECT().CheckLimit(gomock.Any(), gomock.Any()).Return(true, nil)
				res.EXPECT().Resolve(gomock.Any(), "USD", "EUR", "2999-01-01").
					Return(nil, apperrors.Validation("Date cannot be in the future"))
			},
			wantCode: http.StatusBadRequest,
			wantBody: map[string]interface{}{
				"success": false, "error": "Bad Request", "code": "VALIDATION_ERROR", "message": "Date cannot be in the future",
			},
		},
		{
			name:   "not found",
			target: "/rate?from=USD&to=XYZ",
			mockSetup: func(res *handlers.MockRateResolver, auth *handlers.MockPairValidator, lim *handlers.MockLimiter) {
				auth.EXPECT().Validate(gomock.Any(), "USD", "XYZ").Return(true)
				lim.EXPECT().CheckLimit(gomock.Any(), gomock.Any()).Return(true, nil)
				res.EXPECT().Resolve(gomock.Any(), "USD", "XYZ", "").
					Return(nil, apperrors.NotFound("Exchange rate not available for the specified currencies and date", nil))
			},
			wantCode: http.StatusNotFound,
			wantBody: map[string]interface{}{
				"success": false, "error": "Rate not found", "code": "RATE_NOT_FOUND",
				"message": "Exchange rate not available for the specified currencies and date",
			},
		},
		{
			name:   "upstream limit is internal",
			target: "/rate?from=USD&to=EUR",
			mockSetup: func(res *handlers.MockRateResolver, auth *handlers.MockPairValidator, lim *handlers.MockLimiter) {
				auth.EXPECT().Validate(gomock.Any(), "USD", "EUR").Return(true)
				lim.EXPECT().CheckLimit(gomock.Any(), gomock.Any()).Return(true, nil)
				res.EXPECT().Resolve(gomock.Any(), "USD", "EUR", "").
					Return(nil, apperrors.Provider(apperrors.CodeUpstreamLimit, "usage limit reached", nil))
			},
			wantCode: http.StatusInternalServerError,
			wantBody: map[string]interface{}{
				"success": false, "error": "Internal server error", "code": "RATE_LIMIT_EXCEEDED", "message": "usage limit reached",
			},
		},
		{
			name:   "store unavailable",
			target: "/rate?from=USD&to=EUR",
			mockSetup: func(res *handlers.MockRateResolver, auth *handlers.MockPairValidator, lim *handlers.MockLimiter) {
				auth.EXPECT().Validate(gomock.Any(), "USD", "EUR").Return(true)
				lim.EXPECT().CheckLimit(gomock.Any(), gomock.Any()).Return(true, nil)
				res.EXPECT().Resolve(gomock.Any(), "USD", "EUR", "").
					Return(nil, apperrors.StoreUnavailable("rate store is unreachable", nil))
			},
			wantCode: http.StatusServiceUnavailable,
			wantBody: map[string]interface{}{
				"success": false, "error": "Service Unavailable", "code": "STORE_UNAVAILABLE", "message": "rate store is unreachable",
			},
		},
		{
			name:   "foreign error is masked",
			target: "/rate?from=USD&to=EUR",
			mockSetup: func(res *handlers.MockRateResolver, auth *handlers.MockPairValidator, lim *handlers.MockLimiter) {
				auth.EXPECT().Validate(gomock.Any(), "USD", "EUR").Return(true)
				lim.EXPECT().CheckLimit(gomock.Any(), gomock.Any()).Return(true, nil)
				res.EXPECT().Resolve(gomock.Any(), "USD", "EUR", "").Return(nil, errors.New("pq: secret detail"))
			},
			wantCode: http.StatusInternalServerError,
			wantBody: map[string]interface{}{
				"success": false, "error": "Internal server error", "code": "INTERNAL_ERROR", "message": "internal error",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			res := handlers.NewMockRateResolver(ctrl)
			auth := handlers.NewMockPairValidator(ctrl)
			lim := handlers.NewMockLimiter(ctrl)
			tt.mockSetup(res, auth, lim)

			handler := handlers.NewGetRateHandler(res, auth, lim)
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			require.Equal(t, tt.wantCode, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var got map[string]interface{}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))

			if data, ok := got["data"].(map[string]interface{}); ok {
				ts, ok := data["timestamp"].(float64)
				require.True(t, ok)
				assert.Greater(t, ts, float64(0))
				delete(data, "timestamp")
			}
			assert.Equal(t, tt.wantBody, got)
		})
	}
}
