package services

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bearer(token string) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	return h
}

func TestNewAuthenticator(t *testing.T) {
	_, err := NewAuthenticator(true, "s", "oauth", time.Hour)
	assert.Error(t, err)

	_, err = NewAuthenticator(true, "", AuthModePlain, time.Hour)
	assert.Error(t, err)

	a, err := NewAuthenticator(false, "", "", time.Hour)
	require.NoError(t, err)
	assert.False(t, a.Enabled())
}

func TestAuthenticator_Disabled(t *testing.T) {
	a, err := NewAuthenticator(false, "secret", AuthModeHash, time.Hour)
	require.NoError(t, err)

	assert.True(t, a.Validate(http.Header{}, "USD", "EUR"))
	assert.True(t, a.Validate(bearer("garbage"), "USD", "EUR"))
}

func TestAuthenticator_Plain(t *testing.T) {
	a, err := NewAuthenticator(true, "secret", AuthModePlain, time.Hour)
	require.NoError(t, err)

	token, err := a.GenerateToken("usd", "eur")
	require.NoError(t, err)
	assert.Equal(t, "secret", token)

	tests := []struct {
		name    string
		headers http.Header
		want    bool
	}{
		{"valid", bearer("secret"), true},
		{"lowercase scheme", http.Header{"Authorization": []string{"bearer secret"}}, true},
		{"wrong secret", bearer("nope"), false},
		{"missing header", http.Header{}, false},
		{"basic scheme", http.Header{"Authorization": []string{"Basic secret"}}, false},
		{"prefix of secret", bearer("secre"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Validate(tt.headers, "USD", "EUR"))
		})
	}
}

func TestAuthenticator_Hash(t *testing.T) {
	a, err := NewAuthenticator(true, "secret", AuthModeHash, time.Hour)
	require.NoError(t, err)

	sum := sha256.Sum256([]byte("secretUSDEUR"))
	expected := hex.EncodeToString(sum[:])

	token, err := a.GenerateToken("usd", "eur")
	require.NoError(t, err)
	assert.Equal(t, expected, token)

	assert.True(t, a.Validate(bearer(token), "USD", "EUR"))
	assert.True(t, a.Validate(bearer(token), "usd", "eur"))
	assert.False(t, a.Validate(bearer(token), "EUR", "USD"), "pair order matters")
	assert.False(t, a.Validate(bearer(token), "USD", "GBP"))
	assert.False(t, a.Validate(bearer("secret"), "USD", "EUR"))

	other, err := a.GenerateToken("EUR", "USD")
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestAuthenticator_JWT(t *testing.T) {
	a, err := NewAuthenticator(true, "secret", AuthModeJWT, time.Hour)
	require.NoError(t, err)

	token, err := a.GenerateToken("usd", "eur")
	require.NoError(t, err)

	assert.True(t, a.Validate(bearer(token), "USD", "EUR"))
	assert.False(t, a.Validate(bearer(token), "EUR", "USD"))

	b, err := NewAuthenticator(true, "other", AuthModeJWT, time.Hour)
	require.NoError(t, err)
	assert.False(t, b.Validate(bearer(token), "USD", "EUR"))

	expired, err := NewAuthenticator(true, "secret", AuthModeJWT, -time.Minute)
	require.NoError(t, err)
	old, err := expired.GenerateToken("USD", "EUR")
	require.NoError(t, err)
	assert.False(t, a.Validate(bearer(old), "USD", "EUR"))
}

func TestAuthenticator_EmptyPair(t *testing.T) {
	for _, mode := range []string{AuthModePlain, AuthModeHash, AuthModeJWT} {
		t.Run(mode, func(t *testing.T) {
			a, err := NewAuthenticator(true, "secret", mode, time.Hour)
			require.NoError(t, err)

			token, err := a.GenerateToken("", "")
			require.NoError(t, err)
			assert.True(t, a.Validate(bearer(token), "", ""))
		})
	}
}
