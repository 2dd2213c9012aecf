package http

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tmtrack/core/internal/domain/entities"
	"github.com/tmtrack/core/internal/ports"
)

const identityContextKey = "identity"

// BearerToken extracts the token from an Authorization header. Anything
// other than the exact "Bearer <token>" scheme yields an empty token, which
// resolves to the guest identity.
func BearerToken(header string) string {
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return ""
	}
	return strings.TrimSpace(token)
}

// IdentityMiddleware resolves the request's bearer token and stores the
// resulting identity in the echo context. It never rejects a request:
// identity is annotation, not access control.
func IdentityMiddleware(resolver ports.IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			c.Set(identityContextKey, resolver.Resolve(token))
			return next(c)
		}
	}
}

// IdentityFromContext retrieves the identity stored by IdentityMiddleware,
// falling back to a bare guest identity when the middleware did not run.
func IdentityFromContext(c echo.Context) entities.Identity {
	if ident, ok := c.Get(identityContextKey).(entities.Identity); ok {
		return ident
	}
	return entities.Identity{UserID: entities.GuestUserID, Groups: []string{}}
}
