package jwt

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_GenerateAndParse(t *testing.T) {
	j := New("test-secret", time.Minute)

	token, err := j.Generate("USD", "EUR")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := j.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "USD", claims.From)
	assert.Equal(t, "EUR", claims.To)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestJWT_Allows(t *testing.T) {
	j := New("test-secret", time.Minute)
	token, err := j.Generate("USD", "EUR")
	require.NoError(t, err)

	assert.True(t, j.Allows(token, "USD", "EUR"))
	assert.False(t, j.Allows(token, "EUR", "USD"))
	assert.False(t, j.Allows(token, "USD", "GBP"))
	assert.False(t, New("other-secret", time.Minute).Allows(token, "USD", "EUR"))
}

func TestJWT_ExpiredToken(t *testing.T) {
	j := New("test-secret", -time.Minute) // already expired

	token, err := j.Generate("USD", "EUR")
	require.NoError(t, err)

	claims, err := j.Parse(token)
	assert.Error(t, err)
	assert.Nil(t, claims)
	assert.False(t, j.Allows(token, "USD", "EUR"))
}

func TestJWT_ClockControlsExpiry(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	j := New("test-secret", time.Hour)
	j.now = func() time.Time { return base }

	token, err := j.Generate("USD", "EUR")
	require.NoError(t, err)
	assert.True(t, j.Allows(token, "USD", "EUR"))

	j.now = func() time.Time { return base.Add(2 * time.Hour) }
	assert.False(t, j.Allows(token, "USD", "EUR"))
}

func TestJWT_RejectsOtherMethodsAndGarbage(t *testing.T) {
	j := New("secret", time.Minute)

	_, err := j.Parse("invalid.token.string")
	assert.Error(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, PairClaims{From: "USD", To: "EUR"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	assert.False(t, j.Allows(unsigned, "USD", "EUR"))
}

func TestTokenFromHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{"bearer", "Bearer abc", "abc", nil},
		{"lowercase scheme", "bearer abc", "abc", nil},
		{"extra spaces", "  Bearer   abc ", "abc", nil},
		{"missing", "", "", ErrMissingHeader},
		{"wrong scheme", "Basic abc", "", ErrInvalidHeader},
		{"no token", "Bearer", "", ErrInvalidHeader},
		{"too many parts", "Bearer a b", "", ErrInvalidHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.header != "" {
				h.Set("Authorization", tt.header)
			}
			got, err := TokenFromHeader(h)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.want, got)
		})
	}
}
