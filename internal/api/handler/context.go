package handler

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/pixelforge/storefront/internal/api/middleware"
	"github.com/pixelforge/storefront/internal/core/domain"
)

// caller returns the identity resolved by the Authenticate middleware, nil
// on anonymous routes.
func caller(c echo.Context) *domain.Identity {
	return middleware.IdentityFrom(c)
}

// bind decodes the request into req and validates it.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}

// pathParam returns the unescaped path parameter. Category names can carry
// spaces and other escaped characters.
func pathParam(c echo.Context, name string) string {
	raw := c.Param(name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
