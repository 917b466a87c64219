package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agricoventas/platform/internal/config"
	"github.com/agricoventas/platform/internal/entity"
)

func testManager(secret string) *TokenManager {
	return NewTokenManager(config.Config{
		Auth: config.Auth{
			JWTSecret: secret,
			TokenTTL:  time.Hour,
			Issuer:    "agricoventas-test",
		},
	})
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	m := testManager("test-secret")

	token, err := m.Issue(42, "maria@example.com", entity.RoleSeller)
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	require.Equal(t, int64(42), claims.UserID)
	require.Equal(t, "maria@example.com", claims.Email)
	require.Equal(t, entity.RoleSeller, claims.Role)

	actor := claims.Actor()
	require.Equal(t, int64(42), actor.UserID)
	require.True(t, actor.Seller())
	require.False(t, actor.Admin())
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := testManager("test-secret")

	issued := time.Now().UTC()
	m.now = func() time.Time { return issued }
	token, err := m.Issue(42, "maria@example.com", entity.RoleBuyer)
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = m.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := testManager("secret-a").Issue(42, "maria@example.com", entity.RoleBuyer)
	require.NoError(t, err)

	_, err = testManager("secret-b").Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := testManager("test-secret")
	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := m.Verify(token)
		require.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse battery staple", hash)

	require.True(t, VerifyPassword(hash, "correct horse battery staple"))
	require.False(t, VerifyPassword(hash, "wrong password"))
	require.False(t, VerifyPassword("not-an-encoded-hash", "anything"))
}
