package identity

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	HeaderUserID = "x-user-id"
	CtxUserID    = "user_id"
)

// RequireIdentity reads the gateway-injected identity header. The header is
// authoritative: the service must only be reachable through the gateway, so
// no further verification happens here.
func RequireIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get(HeaderUserID)
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, echo.Map{
					"success": false,
					"message": "authentication required",
				})
			}
			userID, err := uuid.Parse(raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, echo.Map{
					"success": false,
					"message": "authentication required",
				})
			}
			c.Set(CtxUserID, userID)
			return next(c)
		}
	}
}

// UserID returns the identity set by RequireIdentity.
func UserID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(CtxUserID).(uuid.UUID)
	return id, ok
}
