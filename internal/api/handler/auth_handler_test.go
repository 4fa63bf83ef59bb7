package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/pixelforge/storefront/internal/core/domain"
	"github.com/pixelforge/storefront/internal/core/ports"
)

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(_ context.Context, email, password string) (*ports.AuthResult, error) {
			if email != "alice@example.com" || password != "s3cretpass" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return &ports.AuthResult{
				Token: "tok",
				User:  &domain.User{ID: "u1", Email: email, Role: domain.RoleUser, PasswordHash: "hash"},
			}, nil
		},
	}
	h := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/register", `{"email":"alice@example.com","password":"s3cretpass"}`), rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			AccessToken string         `json:"access_token"`
			TokenType   string         `json:"token_type"`
			User        map[string]any `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.Success || resp.Data.AccessToken != "tok" || resp.Data.TokenType != "bearer" {
		t.Fatalf("unexpected payload: %s", rec.Body.String())
	}
	if resp.Data.User["role"] != "USER" {
		t.Errorf("expected USER role, got %v", resp.Data.User["role"])
	}
	if strings.Contains(rec.Body.String(), "hash") {
		t.Error("password hash must never be rendered")
	}
}

func TestAuthHandler_Register_Duplicate(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{
		registerFn: func(context.Context, string, string) (*ports.AuthResult, error) {
			return nil, domain.ErrDuplicateIdentity
		},
	})

	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/register", `{"email":"a@b.io","password":"longenough"}`), httptest.NewRecorder())
	if err := h.Register(c); !errors.Is(err, domain.ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
	}
}

func TestAuthHandler_Register_MissingFields(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{})

	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/register", `{"email":"a@b.io"}`), httptest.NewRecorder())
	err := h.Register(c)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "password" {
		t.Fatalf("expected ValidationError on password, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidJSON(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{})

	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/register", `{`), httptest.NewRecorder())
	err := h.Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{
		loginFn: func(context.Context, string, string) (*ports.AuthResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	})

	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/login", `{"email":"a@b.io","password":"wrong"}`), httptest.NewRecorder())
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Token_Form(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{
		loginFn: func(_ context.Context, email, password string) (*ports.AuthResult, error) {
			if email != "admin@pixelforge.test" || password != "pw" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return &ports.AuthResult{Token: "tok", User: &domain.User{Email: email}}, nil
		},
	})

	form := url.Values{"username": {"admin@pixelforge.test"}, "password": {"pw"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()

	if err := h.Token(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp tokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.AccessToken != "tok" || resp.TokenType != "bearer" {
		t.Errorf("unexpected token response %+v", resp)
	}
}
