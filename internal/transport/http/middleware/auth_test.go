package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/agricoventas/platform/internal/auth"
	"github.com/agricoventas/platform/internal/config"
	"github.com/agricoventas/platform/internal/entity"
)

func testTokens(t *testing.T) *auth.TokenManager {
	t.Helper()
	return auth.NewTokenManager(config.Config{
		Auth: config.Auth{
			JWTSecret: "test-secret",
			TokenTTL:  time.Hour,
			Issuer:    "agricoventas-test",
		},
	})
}

func perform(t *testing.T, authorization string, handler echo.HandlerFunc, mw ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	wrapped := handler
	for i := len(mw) - 1; i >= 0; i-- {
		wrapped = mw[i](wrapped)
	}
	require.NoError(t, wrapped(c))
	return rec
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestAuthenticate(t *testing.T) {
	tokens := testTokens(t)

	t.Run("valid bearer token sets the actor", func(t *testing.T) {
		token, err := tokens.Issue(42, "maria@example.com", entity.RoleSeller)
		require.NoError(t, err)

		rec := perform(t, "Bearer "+token, func(c echo.Context) error {
			actor, ok := Actor(c)
			require.True(t, ok)
			require.Equal(t, int64(42), actor.UserID)
			require.Equal(t, entity.RoleSeller, actor.Role)
			return c.NoContent(http.StatusOK)
		}, Authenticate(tokens))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing header passes through anonymously", func(t *testing.T) {
		rec := perform(t, "", func(c echo.Context) error {
			_, ok := Actor(c)
			require.False(t, ok)
			return c.NoContent(http.StatusOK)
		}, Authenticate(tokens))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("non-bearer scheme is unauthorized", func(t *testing.T) {
		rec := perform(t, "Basic dXNlcjpwYXNz", okHandler, Authenticate(tokens))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token is unauthorized", func(t *testing.T) {
		rec := perform(t, "Bearer not-a-token", okHandler, Authenticate(tokens))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequire(t *testing.T) {
	tokens := testTokens(t)

	t.Run("anonymous requests are rejected", func(t *testing.T) {
		rec := perform(t, "", okHandler, Authenticate(tokens), Require())
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("authenticated requests pass", func(t *testing.T) {
		token, err := tokens.Issue(7, "seller@example.com", entity.RoleSeller)
		require.NoError(t, err)

		rec := perform(t, "Bearer "+token, okHandler, Authenticate(tokens), Require())
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequireRoles(t *testing.T) {
	tokens := testTokens(t)
	adminOnly := RequireRoles(entity.RoleAdmin)

	t.Run("wrong role is forbidden", func(t *testing.T) {
		token, err := tokens.Issue(3, "buyer@example.com", entity.RoleBuyer)
		require.NoError(t, err)

		rec := perform(t, "Bearer "+token, okHandler, Authenticate(tokens), adminOnly)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("allowed role passes", func(t *testing.T) {
		token, err := tokens.Issue(1, "admin@example.com", entity.RoleAdmin)
		require.NoError(t, err)

		rec := perform(t, "Bearer "+token, okHandler, Authenticate(tokens), adminOnly)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("anonymous is unauthorized", func(t *testing.T) {
		rec := perform(t, "", okHandler, Authenticate(tokens), adminOnly)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
