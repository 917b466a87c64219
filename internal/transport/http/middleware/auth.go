package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/agricoventas/platform/internal/auth"
	"github.com/agricoventas/platform/internal/presentation/http/response"
	"github.com/agricoventas/platform/pkg/errorbank"
)

const actorKey = "auth.actor"

// Authenticate verifies a bearer token when one is present and stores the
// resulting actor on the request context. Requests without a token pass
// through anonymously; Require and RequireRoles enforce presence.
func Authenticate(tokens *auth.TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return next(c)
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				return response.New(c).
					WithError(errorbank.Unauthorized("authorization header must use the Bearer scheme")).
					Build()
			}

			claims, err := tokens.Verify(strings.TrimSpace(token))
			if err != nil {
				return response.New(c).
					WithError(errorbank.Unauthorized("invalid or expired token")).
					Build()
			}

			c.Set(actorKey, claims.Actor())
			return next(c)
		}
	}
}

// Require rejects unauthenticated requests.
func Require() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := Actor(c); !ok {
				return response.New(c).
					WithError(errorbank.Unauthorized("authentication required")).
					Build()
			}
			return next(c)
		}
	}
}

// RequireRoles rejects callers whose role is not in the allowed set.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := Actor(c)
			if !ok {
				return response.New(c).
					WithError(errorbank.Unauthorized("authentication required")).
					Build()
			}
			if !allowed[actor.Role] {
				return response.New(c).
					WithError(errorbank.Forbidden("insufficient role")).
					Build()
			}
			return next(c)
		}
	}
}

// Actor returns the authenticated caller, if any.
func Actor(c echo.Context) (auth.Actor, bool) {
	actor, ok := c.Get(actorKey).(auth.Actor)
	return actor, ok
}

// MustActor returns the authenticated caller; routes behind Require can
// assume presence.
func MustActor(c echo.Context) auth.Actor {
	actor, _ := Actor(c)
	return actor
}
