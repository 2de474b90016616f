package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"

	"github.com/socialmesh/platform/gateway/internal/middleware"
	"github.com/socialmesh/platform/pkg/ratelimit"
)

type Deps struct {
	IdentityURL string
	PostURL     string
	MediaURL    string

	JWTSecret []byte

	GlobalLimiter    *ratelimit.Limiter
	SensitiveLimiter *ratelimit.Limiter

	RequestLogger echo.MiddlewareFunc
}

func Register(e *echo.Echo, d *Deps) error {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.Use(ecM.Recover(), ecM.RequestID(), ecM.Secure())
	if d.RequestLogger != nil {
		e.Use(d.RequestLogger)
	}
	if d.GlobalLimiter != nil {
		e.Use(d.GlobalLimiter.Middleware())
	}

	identityProxy, err := newProxy(d.IdentityURL, "/v1", "/api")
	if err != nil {
		return err
	}
	postProxy, err := newProxy(d.PostURL, "/v1", "/api")
	if err != nil {
		return err
	}
	mediaProxy, err := newProxy(d.MediaURL, "/v1", "/api")
	if err != nil {
		return err
	}

	// Auth endpoints are public but abuse-prone, hence the stricter window.
	auth := e.Group("/v1/auth")
	if d.SensitiveLimiter != nil {
		auth.Use(d.SensitiveLimiter.Middleware())
	}
	auth.Any("", identityProxy)
	auth.Any("/*", identityProxy)

	protected := e.Group("/v1")
	protected.Use(middleware.VerifyJWT(d.JWTSecret))
	protected.Any("/posts", postProxy)
	protected.Any("/posts/*", postProxy)
	protected.Any("/media", mediaProxy)
	protected.Any("/media/*", mediaProxy)

	return nil
}
