package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pixelforge/storefront/internal/api/metrics"
	"github.com/pixelforge/storefront/internal/core/domain"
	"github.com/pixelforge/storefront/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new USER account and returns it with an access token.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Email and password"
// @Success      201   {object}  apiResponse{data=authData}
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Register(c.Request().Context(), req.Email, req.Password)
	recordAuth("register", err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, apiResponse{
		Success: true,
		Message: "User registered successfully",
		Data:    authData{AccessToken: res.Token, TokenType: "bearer", User: res.User},
	})
}

// Login authenticates a user and returns a JWT.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Login credentials"
// @Success      200   {object}  apiResponse{data=authData}
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	recordAuth("login", err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, apiResponse{
		Success: true,
		Message: "Login successful",
		Data:    authData{AccessToken: res.Token, TokenType: "bearer", User: res.User},
	})
}

// Token is the OAuth2 password-grant endpoint used by API tooling.
//
// @Summary      OAuth2 token
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        username  formData  string  true  "Email"
// @Param        password  formData  string  true  "Password"
// @Success      200       {object}  tokenResponse
// @Failure      401       {object}  errorResponse
// @Router       /auth/token [post]
func (h *AuthHandler) Token(c echo.Context) error {
	var req tokenRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	recordAuth("login", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tokenResponse{AccessToken: res.Token, TokenType: "bearer"})
}

func recordAuth(action string, err error) {
	result := "success"
	if err != nil {
		result = domain.Code(err)
	}
	metrics.AuthAttemptsTotal.WithLabelValues(action, result).Inc()
}
