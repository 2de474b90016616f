package httpserver

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/socialmesh/platform/pkg/identity"
	"github.com/socialmesh/platform/pkg/logging"
	"github.com/socialmesh/platform/pkg/pagination"
	"github.com/socialmesh/platform/services/post/internal/service"
	"github.com/socialmesh/platform/services/post/internal/transport"
)

type PostHTTP struct {
	Svc      *service.PostService
	Validate *validator.Validate
}

func NewPostHTTP(svc *service.PostService) *PostHTTP {
	return &PostHTTP{Svc: svc, Validate: validator.New()}
}

func (h *PostHTTP) CreatePost(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "post.create")

	userID, ok := identity.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, errBody("authentication required"))
	}

	var req transport.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_post_rejected", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, errBody("invalid request body"))
	}
	if err := h.Validate.Struct(&req); err != nil {
		l.Warn("create_post_rejected", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, errBody("content is required and at most 500 characters"))
	}

	post, err := h.Svc.CreatePost(ctx, userID, req.Content, req.MediaIDs)
	if err != nil {
		l.Error("create_post_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, errBody("error creating post"))
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "post created successfully",
		"postId":  post.ID.String(),
	})
}

func (h *PostHTTP) GetAllPosts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "post.list")

	page := pagination.ParseIntDefault(c.QueryParam("page"), 1)
	limit := pagination.ParseIntDefault(c.QueryParam("limit"), pagination.DefaultPageSize)

	payload, err := h.Svc.ListPosts(ctx, page, limit)
	if err != nil {
		l.Error("list_posts_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, errBody("error getting posts"))
	}

	return c.JSONBlob(http.StatusOK, payload)
}

func (h *PostHTTP) GetPost(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "post.get")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errBody("invalid post id"))
	}

	payload, err := h.Svc.GetPost(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, errBody("post not found"))
		}
		l.Error("get_post_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, errBody("error getting post"))
	}

	return c.JSONBlob(http.StatusOK, payload)
}

func (h *PostHTTP) DeletePost(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "post.delete")

	userID, ok := identity.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, errBody("authentication required"))
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errBody("invalid post id"))
	}

	if err := h.Svc.DeletePost(ctx, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, errBody("post not found"))
		}
		l.Error("delete_post_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, errBody("error deleting post"))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "post deleted successfully",
	})
}

func (h *PostHTTP) SearchPosts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "post.search")

	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, errBody("query parameter q is required"))
	}

	page := pagination.ParseIntDefault(c.QueryParam("page"), 1)
	limit := pagination.ParseIntDefault(c.QueryParam("limit"), pagination.DefaultPageSize)

	total, posts, err := h.Svc.SearchPosts(ctx, query, page, limit)
	if err != nil {
		if errors.Is(err, service.ErrSearchDisabled) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, errBody("search is unavailable"))
		}
		l.Error("search_posts_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, errBody("error searching posts"))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"total":   total,
		"posts":   posts,
	})
}

func errBody(msg string) echo.Map {
	return echo.Map{"success": false, "message": msg}
}
