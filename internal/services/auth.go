package services

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sbilibin2017/gw-exchange-rates/internal/jwt"
	"github.com/sbilibin2017/gw-exchange-rates/internal/logger"
)

// Credential schemes.
const (
	AuthModePlain = "plain"
	AuthModeHash  = "hash"
	AuthModeJWT   = "jwt"
)

// Authenticator checks the bearer credential of a request against a shared
// secret. In hash and jwt modes the credential is bound to the currency pair.
type Authenticator struct {
	enabled bool
	secret  string
	mode    string
	tokens  *jwt.JWT
}

func NewAuthenticator(enabled bool, secret, mode string, ttl time.Duration) (*Authenticator, error) {
	switch mode {
	case "":
		mode = AuthModePlain
	case AuthModePlain, AuthModeHash, AuthModeJWT:
	default:
		return nil, fmt.Errorf("unknown auth mode %q", mode)
	}
	if enabled && secret == "" {
		return nil, fmt.Errorf("auth secret is required when auth is enabled")
	}

	return &Authenticator{
		enabled: enabled,
		secret:  secret,
		mode:    mode,
		tokens:  jwt.New(secret, ttl),
	}, nil
}

// Enabled reports whether Validate checks anything at all.
func (a *Authenticator) Enabled() bool { return a.enabled }

// Validate reports whether headers carry a bearer credential valid for
// from->to. The comparison is order-sensitive.
func (a *Authenticator) Validate(headers http.Header, from, to string) bool {
	if !a.enabled {
		return true
	}

	token, err := jwt.TokenFromHeader(headers)
	if err != nil {
		logger.Log.Warnw("authorization failed", "error", err)
		return false
	}

	from, to = strings.ToUpper(from), strings.ToUpper(to)

	var ok bool
	switch a.mode {
	case AuthModeHash:
		ok = constantTimeEqual(token, pairHash(a.secret, from, to))
	case AuthModeJWT:
		ok = a.tokens.Allows(token, from, to)
	default:
		ok = constantTimeEqual(token, a.secret)
	}

	if !ok {
		logger.Log.Warnw("authorization failed", "mode", a.mode, "from", from, "to", to)
	}
	return ok
}

// GenerateToken issues the credential a client must present for from->to.
func (a *Authenticator) GenerateToken(from, to string) (string, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)

	switch a.mode {
	case AuthModeHash:
		return pairHash(a.secret, from, to), nil
	case AuthModeJWT:
		return a.tokens.Generate(from, to)
	default:
		return a.secret, nil
	}
}

func pairHash(secret, from, to string) string {
	sum := sha256.Sum256([]byte(secret + from + to))
	return hex.EncodeToString(sum[:])
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
