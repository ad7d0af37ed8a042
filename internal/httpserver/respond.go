package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mkovalev/accounts-api/internal/service"
	"github.com/mkovalev/accounts-api/pkg/logging"
)

func respondOK(c echo.Context, code int, data any) error {
	return c.JSON(code, echo.Map{
		"success": true,
		"data":    data,
	})
}

func respondError(c echo.Context, code int, errCode string, details any) error {
	body := echo.Map{
		"success": false,
		"error":   errCode,
	}
	if details != nil {
		body["details"] = details
	}
	return c.JSON(code, body)
}

// respondServiceError maps the service error set onto the stable wire
// responses. Unclassified errors answer with a generic message; the detail is
// only echoed back in development mode.
func respondServiceError(c echo.Context, err error, dev bool) error {
	switch {
	case errors.Is(err, service.ErrDuplicateEmail):
		return respondError(c, http.StatusBadRequest, "duplicate_email", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		return respondError(c, http.StatusUnauthorized, "invalid_credentials", nil)
	case errors.Is(err, service.ErrInvalidToken):
		return respondError(c, http.StatusForbidden, "invalid_token", nil)
	case errors.Is(err, service.ErrTokenExpired):
		return respondError(c, http.StatusForbidden, "token_expired", nil)
	case errors.Is(err, service.ErrUserNotFound):
		return respondError(c, http.StatusNotFound, "user_not_found", nil)
	case errors.Is(err, service.ErrUnavailable):
		return respondError(c, http.StatusServiceUnavailable, "unavailable", nil)
	default:
		logging.FromContext(c.Request().Context()).Error("unhandled_error", "error", err)
		var details any
		if dev {
			details = err.Error()
		}
		return respondError(c, http.StatusInternalServerError, "internal_error", details)
	}
}
