package middlewares

import (
	"encoding/json"
	"net/http"

	"github.com/sbilibin2017/gw-exchange-rates/internal/apperrors"
	"github.com/sbilibin2017/gw-exchange-rates/internal/models"
)

// Validator checks request credentials for a currency pair.
type Validator interface {
	Validate(headers http.Header, from, to string) bool
}

// AuthMiddleware guards routes that are not bound to a currency pair.
// The credential is validated against the empty pair.
func AuthMiddleware(v Validator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !v.Validate(r.Header, "", "") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(models.ErrorResponse{
					Success: false,
					Error:   apperrors.OutcomeUnauthorized.Title,
					Code:    apperrors.CodeUnauthorized,
					Message: "Invalid or missing authentication token",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
