package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaker_IssueAndParse_ValidCases(t *testing.T) {
	secretKey := "test_secret_key_1234567890"
	tokenTTL := 15 * time.Minute
	maker := NewMaker(secretKey, tokenTTL)

	tests := []struct {
		name    string
		userUID string
	}{
		{
			name:    "plain uid",
			userUID: "550e8400-e29b-41d4-a716-446655440000",
		},
		{
			name:    "another uid",
			userUID: "8a5075f2-9a69-4bb4-9d3c-bb8b704e65cf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.Issue(tt.userUID)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := maker.Parse(token)
			require.NoError(t, err)

			assert.Equal(t, tt.userUID, claims.UserUID)
			assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Second)
			assert.WithinDuration(t, time.Now().Add(tokenTTL), claims.ExpiresAt.Time, time.Second)
		})
	}
}

func TestMaker_Parse_InvalidTokens(t *testing.T) {
	secretKey := "test_secret_key_1234567890"
	maker := NewMaker(secretKey, 15*time.Minute)

	validToken, err := maker.Issue("550e8400-e29b-41d4-a716-446655440000")
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{
			name:    "empty token",
			token:   "",
			wantErr: ErrTokenMalformed,
		},
		{
			name:    "garbage token",
			token:   "invalid.token.here",
			wantErr: ErrTokenMalformed,
		},
		{
			name:    "expired token",
			token:   createExpiredToken(t, secretKey),
			wantErr: ErrTokenExpired,
		},
		{
			name:    "wrong secret key",
			token:   createTokenWithWrongSecret(t),
			wantErr: ErrTokenMalformed,
		},
		{
			name:    "tampered token",
			token:   validToken + "tampered",
			wantErr: ErrTokenMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := maker.Parse(tt.token)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, claims)
		})
	}
}

func TestMaker_TTL(t *testing.T) {
	maker := NewMaker("secret", 24*time.Hour)
	assert.Equal(t, 24*time.Hour, maker.TTL())
}

func createExpiredToken(t *testing.T, secretKey string) string {
	t.Helper()
	expired := NewMaker(secretKey, -time.Minute)
	token, err := expired.Issue("550e8400-e29b-41d4-a716-446655440000")
	require.NoError(t, err)
	return token
}

func createTokenWithWrongSecret(t *testing.T) string {
	t.Helper()
	other := NewMaker("completely_different_secret", 15*time.Minute)
	token, err := other.Issue("550e8400-e29b-41d4-a716-446655440000")
	require.NoError(t, err)
	return token
}
