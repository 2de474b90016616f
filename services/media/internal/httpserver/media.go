package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/socialmesh/platform/pkg/identity"
	"github.com/socialmesh/platform/pkg/logging"
	"github.com/socialmesh/platform/services/media/internal/service"
)

type MediaHTTP struct {
	Svc *service.MediaService
}

func (h *MediaHTTP) Upload(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "media.upload")

	userID, ok := identity.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, errBody("authentication required"))
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		l.Warn("upload_rejected", "status", 400, "reason", "no file field")
		return echo.NewHTTPError(http.StatusBadRequest, errBody("file is required"))
	}

	src, err := fileHeader.Open()
	if err != nil {
		l.Error("upload_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, errBody("error uploading media"))
	}
	defer src.Close()

	mimeType := fileHeader.Header.Get(echo.HeaderContentType)
	if mimeType == "" {
		mimeType = echo.MIMEOctetStream
	}

	media, err := h.Svc.Upload(ctx, userID, fileHeader.Filename, mimeType, src)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, errBody("error uploading media"))
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"mediaId": media.ID.String(),
		"url":     media.URL,
	})
}

func (h *MediaHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "media.list")

	userID, ok := identity.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, errBody("authentication required"))
	}

	media, err := h.Svc.ListForUser(ctx, userID)
	if err != nil {
		l.Error("list_media_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, errBody("error getting media"))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"media":   media,
	})
}

func errBody(msg string) echo.Map {
	return echo.Map{"success": false, "message": msg}
}
