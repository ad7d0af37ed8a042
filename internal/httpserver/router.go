package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mkovalev/accounts-api/internal/middleware"
	"github.com/mkovalev/accounts-api/internal/models"
)

type Deps struct {
	AuthHandler *AuthHTTP
	UserHandler *UserHTTP
	Gate        *middleware.AuthGate
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	auth := e.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh", d.AuthHandler.Refresh)
	auth.POST("/logout", d.AuthHandler.Logout)
	auth.GET("/profile", d.AuthHandler.Profile, d.Gate.RequireAuth)

	users := e.Group("/users", d.Gate.RequireAuth)
	users.GET("", d.UserHandler.List, middleware.RequireRoles(models.RoleAdmin))
	users.GET("/search", d.UserHandler.SearchUsers, middleware.RequireRoles(models.RoleAdmin))
	users.GET("/:id", d.UserHandler.Get)
	users.PUT("/:id", d.UserHandler.Update)
	users.PATCH("/:id/active", d.UserHandler.SetActive, middleware.RequireRoles(models.RoleAdmin))
	users.DELETE("/:id", d.UserHandler.Delete, middleware.RequireRoles(models.RoleAdmin))
}
