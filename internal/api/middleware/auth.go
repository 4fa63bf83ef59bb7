package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/pixelforge/storefront/internal/core/domain"
	"github.com/pixelforge/storefront/internal/core/ports"
)

// IdentityKey is the echo context key holding the resolved *domain.Identity.
const IdentityKey = "identity"

// Authenticate runs the authorization guard for one route. The Authorization
// header is passed through untouched; the guard decides what is acceptable
// for the required role.
func Authenticate(auth ports.AuthService, required ports.RequiredRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			credential := c.Request().Header.Get(echo.HeaderAuthorization)
			id, err := auth.Authenticate(c.Request().Context(), credential, required)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) {
					c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
				}
				return err
			}
			if id != nil {
				c.Set(IdentityKey, id)
			}
			return next(c)
		}
	}
}

// IdentityFrom returns the caller resolved by Authenticate, or nil for an
// anonymous request.
func IdentityFrom(c echo.Context) *domain.Identity {
	id, _ := c.Get(IdentityKey).(*domain.Identity)
	return id
}
