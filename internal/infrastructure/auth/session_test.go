package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signTestToken(t *testing.T, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestNewSession(t *testing.T) {
	raw := signTestToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "5",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID:    5,
		CompanyID: 3,
		Username:  "jordan",
	})

	session, err := NewSession(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(5), session.UserID())
	assert.Equal(t, int64(3), session.CompanyID())
	assert.Equal(t, "jordan", session.Username())
	assert.Equal(t, raw, session.Token())
	assert.False(t, session.ExpiresAt().IsZero())
}

func TestNewSessionExpired(t *testing.T) {
	raw := signTestToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
		UserID:    5,
		CompanyID: 3,
	})

	_, err := NewSession(raw)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestNewSessionMissingClaims(t *testing.T) {
	tests := []struct {
		name   string
		claims *Claims
		want   error
	}{
		{"no user", &Claims{CompanyID: 3}, ErrMissingUserID},
		{"no company", &Claims{UserID: 5}, ErrMissingCompany},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSession(signTestToken(t, tt.claims))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewSessionMalformed(t *testing.T) {
	_, err := NewSession("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
