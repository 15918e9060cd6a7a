package handlers

//go:generate mockgen -source=handlers.go -destination=handlers_mock.go -package=handlers

import (
	"context"
	"encoding/json"
	"net"
	"net/http"

	"github.com/sbilibin2017/gw-exchange-rates/internal/apperrors"
	"github.com/sbilibin2017/gw-exchange-rates/internal/models"
)

// RateResolver resolves a currency pair for a date.
type RateResolver interface {
	Resolve(ctx context.Context, from, to, date string) (*models.Quote, error)
}

// PairValidator validates request credentials for a currency pair.
type PairValidator interface {
	Validate(headers http.Header, from, to string) bool
}

// Limiter admits or rejects a request for a client.
type Limiter interface {
	CheckLimit(ctx context.Context, clientID string) (bool, error)
}

// ProviderInfo describes the configured external provider.
type ProviderInfo interface {
	Name() string
	IsAvailable(ctx context.Context) bool
	SupportedCurrencies() []string
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err with the outcome of its kind.
func writeError(w http.ResponseWriter, err error) {
	appErr := apperrors.As(err)
	outcome := apperrors.OutcomeOf(appErr)

	message := appErr.Message
	if appErr.Kind == apperrors.KindInternal {
		message = "internal error"
	}

	writeJSON(w, outcome.Status, models.ErrorResponse{
		Success: false,
		Error:   outcome.Title,
		Code:    appErr.Code,
		Message: message,
	})
}

// clientID returns the caller IP. RemoteAddr is already rewritten by the
// real IP middleware when a proxy header is present.
func clientID(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
