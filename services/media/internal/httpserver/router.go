package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"

	"github.com/socialmesh/platform/pkg/identity"
)

type Deps struct {
	MediaHandler  *MediaHTTP
	RequestLogger echo.MiddlewareFunc
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.Use(ecM.Recover(), ecM.RequestID(), ecM.Secure())
	if d.RequestLogger != nil {
		e.Use(d.RequestLogger)
	}

	media := e.Group("/api/media")
	media.Use(identity.RequireIdentity())

	media.POST("/upload", d.MediaHandler.Upload)
	media.GET("", d.MediaHandler.List)
}
