package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"

	"github.com/socialmesh/platform/pkg/identity"
)

type Deps struct {
	PostHandler   *PostHTTP
	RequestLogger echo.MiddlewareFunc
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.Use(ecM.Recover(), ecM.RequestID(), ecM.Secure())
	if d.RequestLogger != nil {
		e.Use(d.RequestLogger)
	}

	posts := e.Group("/api/posts")
	posts.Use(identity.RequireIdentity())

	posts.POST("/create-post", d.PostHandler.CreatePost)
	posts.GET("/allposts", d.PostHandler.GetAllPosts)
	posts.GET("/search", d.PostHandler.SearchPosts)
	posts.GET("/:id", d.PostHandler.GetPost)
	posts.DELETE("/:id", d.PostHandler.DeletePost)
}
