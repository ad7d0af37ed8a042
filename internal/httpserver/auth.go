package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mkovalev/accounts-api/internal/middleware"
	"github.com/mkovalev/accounts-api/internal/service"
	"github.com/mkovalev/accounts-api/pkg/logging"
)

type AuthHTTP struct {
	Svc *service.AuthService
	Dev bool
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return respondError(c, http.StatusBadRequest, "invalid_body", nil)
	}

	res, err := h.Svc.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return respondServiceError(c, err, h.Dev)
	}

	return respondOK(c, http.StatusCreated, echo.Map{
		"user":         res.User,
		"accessToken":  res.AccessToken,
		"refreshToken": res.RefreshToken,
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return respondError(c, http.StatusBadRequest, "invalid_body", nil)
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return respondServiceError(c, err, h.Dev)
	}

	return respondOK(c, http.StatusOK, echo.Map{
		"user":         res.User,
		"accessToken":  res.AccessToken,
		"refreshToken": res.RefreshToken,
	})
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("refresh_error", "status", 400, "error", err)
		return respondError(c, http.StatusBadRequest, "invalid_body", nil)
	}

	pair, err := h.Svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return respondServiceError(c, err, h.Dev)
	}

	return respondOK(c, http.StatusOK, echo.Map{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("logout_error", "status", 400, "error", err)
		return respondError(c, http.StatusBadRequest, "invalid_body", nil)
	}

	if err := h.Svc.Logout(ctx, req.RefreshToken); err != nil {
		return respondServiceError(c, err, h.Dev)
	}

	return respondOK(c, http.StatusOK, echo.Map{
		"message": "logged out",
	})
}

func (h *AuthHTTP) Profile(c echo.Context) error {
	ctx := c.Request().Context()

	claims, ok := middleware.IdentityFromContext(ctx)
	if !ok {
		return respondError(c, http.StatusUnauthorized, "unauthenticated", nil)
	}

	user, err := h.Svc.Profile(ctx, claims.UserID)
	if err != nil {
		return respondServiceError(c, err, h.Dev)
	}

	return respondOK(c, http.StatusOK, echo.Map{
		"user": user,
	})
}
