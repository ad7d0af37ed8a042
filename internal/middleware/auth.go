package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mkovalev/accounts-api/internal/tokens"
	"github.com/mkovalev/accounts-api/pkg/logging"
)

type identityKey struct{}

// WithIdentity stores the verified token payload in ctx for downstream
// handlers. The identity travels in the request context, never as mutable
// request state.
func WithIdentity(ctx context.Context, claims *tokens.Claims) context.Context {
	return context.WithValue(ctx, identityKey{}, claims)
}

func IdentityFromContext(ctx context.Context) (*tokens.Claims, bool) {
	claims, ok := ctx.Value(identityKey{}).(*tokens.Claims)
	return claims, ok
}

type AuthGate struct {
	Codec *tokens.Codec
}

func NewAuthGate(codec *tokens.Codec) *AuthGate {
	return &AuthGate{Codec: codec}
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireAuth rejects requests without a verifiable bearer access token.
// Missing token answers 401, a token that fails verification answers 403.
func (g *AuthGate) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := bearerToken(c)
		if token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
		}

		claims, err := g.Codec.VerifyAccess(token)
		if err != nil {
			logging.FromContext(c.Request().Context()).Warn("auth_rejected", "reason", "invalid access token", "error", err)
			return echo.NewHTTPError(http.StatusForbidden, "invalid token")
		}

		ctx := WithIdentity(c.Request().Context(), claims)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// OptionalAuth attaches an identity when a valid bearer token is present and
// otherwise lets the request through untouched.
func (g *AuthGate) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := bearerToken(c)
		if token == "" {
			return next(c)
		}

		claims, err := g.Codec.VerifyAccess(token)
		if err != nil {
			return next(c)
		}

		ctx := WithIdentity(c.Request().Context(), claims)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// RequireRoles gates a route to the listed roles. It expects RequireAuth to
// have run earlier in the chain.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := IdentityFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
			}
			for _, role := range roles {
				if claims.Role == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "forbidden")
		}
	}
}
