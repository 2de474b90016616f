package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"

	"github.com/socialmesh/platform/pkg/ratelimit"
)

type Deps struct {
	AuthHandler *AuthHTTP

	// GlobalLimiter repeats the gateway's ingress limit here as defense in
	// depth; SensitiveLimiter guards registration specifically.
	GlobalLimiter    *ratelimit.Limiter
	SensitiveLimiter *ratelimit.Limiter

	RequestLogger echo.MiddlewareFunc
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.Use(ecM.Recover(), ecM.RequestID(), ecM.Secure())
	if d.RequestLogger != nil {
		e.Use(d.RequestLogger)
	}

	auth := e.Group("/api/auth")
	if d.GlobalLimiter != nil {
		auth.Use(d.GlobalLimiter.Middleware())
	}

	register := auth.Group("")
	if d.SensitiveLimiter != nil {
		register.Use(d.SensitiveLimiter.Middleware())
	}
	register.POST("/register", d.AuthHandler.Register)

	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refreshToken", d.AuthHandler.Refresh)
	auth.POST("/logout", d.AuthHandler.Logout)
}
