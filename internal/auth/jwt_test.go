package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestManager(ttl time.Duration) *JWTManager {
	return NewJWTManager(JWTConfig{
		SecretKey:      "catalog-test-secret",
		AccessTokenTTL: ttl,
		Issuer:         "identity",
	})
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := newTestManager(time.Hour)

	token, expiresAt, err := m.GenerateAccessToken("user-42", []string{"categories:write"})
	require.NoError(t, err)
	require.True(t, expiresAt.After(time.Now()))

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, "user-42", claims.Subject)
	require.Equal(t, []string{"categories:write"}, claims.Permissions)
}

func TestJWTManager_Expired(t *testing.T) {
	m := newTestManager(-time.Minute)

	token, _, err := m.GenerateAccessToken("user-42", nil)
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTManager_WrongSecret(t *testing.T) {
	token, _, err := newTestManager(time.Hour).GenerateAccessToken("user-42", nil)
	require.NoError(t, err)

	other := NewJWTManager(JWTConfig{SecretKey: "another-secret", Issuer: "identity"})
	_, err = other.ValidateAccessToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_WrongIssuer(t *testing.T) {
	token, _, err := newTestManager(time.Hour).GenerateAccessToken("user-42", nil)
	require.NoError(t, err)

	other := NewJWTManager(JWTConfig{SecretKey: "catalog-test-secret", Issuer: "someone-else"})
	_, err = other.ValidateAccessToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_Garbage(t *testing.T) {
	_, err := newTestManager(time.Hour).ValidateAccessToken("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestClaims_HasPermission(t *testing.T) {
	tests := []struct {
		name  string
		perms []string
		want  bool
	}{
		{name: "exact", perms: []string{"categories:write"}, want: true},
		{name: "resource wildcard", perms: []string{"categories:*"}, want: true},
		{name: "action wildcard", perms: []string{"*:write"}, want: true},
		{name: "super admin", perms: []string{"*:*"}, want: true},
		{name: "other action", perms: []string{"categories:read"}, want: false},
		{name: "none", perms: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Claims{Permissions: tt.perms}
			require.Equal(t, tt.want, c.HasPermission("categories", "write"))
		})
	}
}
