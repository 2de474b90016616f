// Package middleware holds the gateway's edge verification. Access tokens are
// validated statelessly: there is no revocation store, so a leaked access
// token stays valid for the remainder of its 15-minute window even after
// logout. Only refresh tokens are revocable (identity service).
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/socialmesh/platform/pkg/logging"
	"github.com/socialmesh/platform/pkg/tokens"
)

const (
	CtxUserID   = "user_id"
	CtxUsername = "username"
)

// VerifyJWT extracts and verifies the bearer token and exposes the decoded
// identity on the echo context for the proxy layer. It never refreshes
// inline; an expired token is the client's problem.
func VerifyJWT(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			l := logging.FromContext(c.Request().Context())

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				l.Warn("access attempt without token")
				return echo.NewHTTPError(http.StatusUnauthorized, echo.Map{
					"success": false,
					"message": "authentication required",
				})
			}

			claims, err := tokens.AccessClaimsFromToken(token, secret)
			if err != nil || claims.Subject == "" {
				l.Warn("invalid or expired token")
				return echo.NewHTTPError(http.StatusUnauthorized, echo.Map{
					"success": false,
					"message": "invalid token",
				})
			}

			c.Set(CtxUserID, claims.Subject)
			c.Set(CtxUsername, claims.Username)
			return next(c)
		}
	}
}
