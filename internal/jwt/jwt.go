package jwt

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingHeader = errors.New("authorization header missing")
	ErrInvalidHeader = errors.New("invalid authorization header format")
	ErrInvalidToken  = errors.New("invalid token")
)

// PairClaims binds a token to one currency pair.
type PairClaims struct {
	From string `json:"from"`
	To   string `json:"to"`
	jwt.RegisteredClaims
}

// JWT signs and verifies pair-bound HS256 tokens.
type JWT struct {
	SecretKey string        // Secret key for signing tokens
	Exp       time.Duration // Token expiration duration
	now       func() time.Time
}

// New creates a new JWT instance
func New(secretKey string, expiration time.Duration) *JWT {
	return &JWT{
		SecretKey: secretKey,
		Exp:       expiration,
		now:       time.Now,
	}
}

// Generate creates a token for the from/to pair.
func (j *JWT) Generate(from, to string) (string, error) {
	now := j.now()
	claims := PairClaims{
		From: from,
		To:   to,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.Exp)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.SecretKey))
}

// Parse verifies the signature and expiry and returns the claims.
func (j *JWT) Parse(tokenString string) (*PairClaims, error) {
	claims := &PairClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(j.SecretKey), nil
	}, jwt.WithTimeFunc(j.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Allows reports whether tokenString is valid for exactly the from/to pair.
func (j *JWT) Allows(tokenString, from, to string) bool {
	claims, err := j.Parse(tokenString)
	if err != nil {
		return false
	}
	return claims.From == from && claims.To == to
}

// TokenFromHeader extracts the bearer token from the Authorization header.
func TokenFromHeader(h http.Header) (string, error) {
	authHeader := h.Get("Authorization")
	if authHeader == "" {
		return "", ErrMissingHeader
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", ErrInvalidHeader
	}

	return parts[1], nil
}
