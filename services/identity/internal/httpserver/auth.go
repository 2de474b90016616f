package httpserver

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/socialmesh/platform/pkg/logging"
	"github.com/socialmesh/platform/services/identity/internal/repo"
	"github.com/socialmesh/platform/services/identity/internal/service"
	"github.com/socialmesh/platform/services/identity/internal/transport"
)

type AuthHTTP struct {
	Svc      *service.AuthService
	Validate *validator.Validate
}

func NewAuthHTTP(svc *service.AuthService) *AuthHTTP {
	return &AuthHTTP{Svc: svc, Validate: validator.New()}
}

func (h *AuthHTTP) bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errBody("invalid request body"))
	}
	if err := h.Validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return echo.NewHTTPError(http.StatusBadRequest, errBody("invalid field: "+verrs[0].Field()))
		}
		return echo.NewHTTPError(http.StatusBadRequest, errBody("validation failed"))
	}
	return nil
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.RegisterRequest
	if err := h.bind(c, &req); err != nil {
		l.Warn("register_rejected", "status", 400)
		return err
	}

	pair, err := h.Svc.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repo.ErrUserExists) {
			return echo.NewHTTPError(http.StatusBadRequest, errBody("user already exists"))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, errBody("internal server error"))
	}

	return c.JSON(http.StatusCreated, transport.TokenResponse{
		Success:      true,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := h.bind(c, &req); err != nil {
		l.Warn("login_rejected", "status", 400)
		return err
	}

	pair, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			// same message for unknown email and wrong password
			return echo.NewHTTPError(http.StatusBadRequest, errBody("invalid email or password"))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, errBody("internal server error"))
	}

	return c.JSON(http.StatusOK, transport.TokenResponse{
		Success:      true,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		UserID:       pair.UserID.String(),
	})
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	var req transport.RefreshRequest
	if err := h.bind(c, &req); err != nil {
		l.Warn("refresh_rejected", "status", 400)
		return err
	}

	pair, err := h.Svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrTokenInvalid) {
			return echo.NewHTTPError(http.StatusUnauthorized, errBody("invalid or expired refresh token"))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, errBody("internal server error"))
	}

	return c.JSON(http.StatusOK, transport.TokenResponse{
		Success:      true,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	var req transport.LogoutRequest
	if err := h.bind(c, &req); err != nil {
		l.Warn("logout_rejected", "status", 400)
		return err
	}

	if err := h.Svc.Logout(ctx, req.RefreshToken); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, errBody("internal server error"))
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func errBody(msg string) echo.Map {
	return echo.Map{"success": false, "message": msg}
}
