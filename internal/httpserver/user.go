package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mkovalev/accounts-api/internal/middleware"
	"github.com/mkovalev/accounts-api/internal/models"
	"github.com/mkovalev/accounts-api/internal/search"
	"github.com/mkovalev/accounts-api/internal/service"
	"github.com/mkovalev/accounts-api/pkg/logging"
)

type UserHTTP struct {
	Svc    *service.AuthService
	Search *search.Client
	Dev    bool
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

type setActiveRequest struct {
	IsActive bool `json:"isActive"`
}

func userIDParam(c echo.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// selfOrAdmin reports whether the caller may touch the user with the given id.
func selfOrAdmin(c echo.Context, id uint) bool {
	claims, ok := middleware.IdentityFromContext(c.Request().Context())
	if !ok {
		return false
	}
	return claims.UserID == id || claims.Role == models.RoleAdmin
}

func (h *UserHTTP) List(c echo.Context) error {
	users, err := h.Svc.ListUsers(c.Request().Context())
	if err != nil {
		return respondServiceError(c, err, h.Dev)
	}
	return respondOK(c, http.StatusOK, echo.Map{"users": users})
}

func (h *UserHTTP) Get(c echo.Context) error {
	id, ok := userIDParam(c)
	if !ok {
		return respondError(c, http.StatusBadRequest, "invalid_id", nil)
	}
	if !selfOrAdmin(c, id) {
		return respondError(c, http.StatusForbidden, "forbidden", nil)
	}

	user, err := h.Svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return respondServiceError(c, err, h.Dev)
	}
	return respondOK(c, http.StatusOK, echo.Map{"user": user})
}

func (h *UserHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_update")

	id, ok := userIDParam(c)
	if !ok {
		return respondError(c, http.StatusBadRequest, "invalid_id", nil)
	}
	if !selfOrAdmin(c, id) {
		return respondError(c, http.StatusForbidden, "forbidden", nil)
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_error", "status", 400, "error", err)
		return respondError(c, http.StatusBadRequest, "invalid_body", nil)
	}

	user, err := h.Svc.UpdateUser(ctx, id, service.UserUpdate{
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		return respondServiceError(c, err, h.Dev)
	}
	return respondOK(c, http.StatusOK, echo.Map{"user": user})
}

func (h *UserHTTP) SetActive(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_set_active")

	id, ok := userIDParam(c)
	if !ok {
		return respondError(c, http.StatusBadRequest, "invalid_id", nil)
	}

	var req setActiveRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("set_active_error", "status", 400, "error", err)
		return respondError(c, http.StatusBadRequest, "invalid_body", nil)
	}

	user, err := h.Svc.SetUserActive(ctx, id, req.IsActive)
	if err != nil {
		return respondServiceError(c, err, h.Dev)
	}
	return respondOK(c, http.StatusOK, echo.Map{"user": user})
}

func (h *UserHTTP) Delete(c echo.Context) error {
	id, ok := userIDParam(c)
	if !ok {
		return respondError(c, http.StatusBadRequest, "invalid_id", nil)
	}

	if err := h.Svc.DeleteUser(c.Request().Context(), id); err != nil {
		return respondServiceError(c, err, h.Dev)
	}
	return respondOK(c, http.StatusOK, echo.Map{"message": "user deleted"})
}

func (h *UserHTTP) SearchUsers(c echo.Context) error {
	ctx := c.Request().Context()

	query := c.QueryParam("q")
	if query == "" {
		return respondError(c, http.StatusBadRequest, "missing_query", nil)
	}
	from := intQueryDefault(c, "from", 0)
	size := intQueryDefault(c, "size", 20)

	total, docs, err := h.Search.SearchUsers(ctx, query, from, size)
	if err != nil {
		if errors.Is(err, search.ErrNotConfigured) {
			return respondError(c, http.StatusServiceUnavailable, "search_unavailable", nil)
		}
		logging.FromContext(ctx).Error("user_search_failed", "error", err)
		return respondError(c, http.StatusBadGateway, "search_failed", nil)
	}

	return respondOK(c, http.StatusOK, echo.Map{
		"total": total,
		"users": docs,
	})
}

func intQueryDefault(c echo.Context, name string, def int) int {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
