package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pixelforge/storefront/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

var statusByCode = map[string]int{
	"unauthenticated":     http.StatusUnauthorized,
	"invalid_credentials": http.StatusUnauthorized,
	"forbidden":           http.StatusForbidden,
	"not_found":           http.StatusNotFound,
	"duplicate_identity":  http.StatusConflict,
	"duplicate_category":  http.StatusConflict,
	"product_locked":      http.StatusConflict,
	"validation_error":    http.StatusBadRequest,
	"unavailable":         http.StatusServiceUnavailable,
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain error
// kinds to HTTP statuses and renders {"code": "...", "error": "..."}.
// Unexpected errors are logged and rendered as a generic 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Code: httpCode(he.Code), Error: fmt.Sprintf("%v", he.Message)}
	}

	code := domain.Code(err)
	if status, ok := statusByCode[code]; ok {
		if code == "unavailable" {
			log.Error().Err(err).Str("path", c.Path()).Msg("dependency unavailable")
			return status, errorResponse{Code: code, Error: domain.ErrUnavailable.Error()}
		}
		return status, errorResponse{Code: code, Error: err.Error()}
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Code: "internal", Error: "internal server error"}
}

func httpCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthenticated"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusRequestEntityTooLarge:
		return "payload_too_large"
	case http.StatusUnsupportedMediaType:
		return "unsupported_media_type"
	}
	if status >= 500 {
		return "internal"
	}
	return "error"
}
