package handler

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/pixelforge/storefront/internal/api/middleware"
	"github.com/pixelforge/storefront/internal/core/domain"
	"github.com/pixelforge/storefront/internal/core/ports"
)

var errNotStubbed = errors.New("not stubbed")

var testAdmin = &domain.Identity{UserID: "u-admin", Email: "admin@pixelforge.test", Role: domain.RoleAdmin}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func withCaller(c echo.Context, id *domain.Identity) echo.Context {
	c.Set(middleware.IdentityKey, id)
	return c
}

// ---------------------------------------------------------------------------
// Auth
// ---------------------------------------------------------------------------

type stubAuthService struct {
	registerFn func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.AuthResult, error)
}

func (s *stubAuthService) Register(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	if s.registerFn == nil {
		return nil, errNotStubbed
	}
	return s.registerFn(ctx, email, password)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	if s.loginFn == nil {
		return nil, errNotStubbed
	}
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Authenticate(context.Context, string, ports.RequiredRole) (*domain.Identity, error) {
	return nil, errNotStubbed
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

type stubProductService struct {
	createFn func(ctx context.Context, caller *domain.Identity, in domain.ProductInput) (*domain.Product, error)
	updateFn func(ctx context.Context, caller *domain.Identity, id string, c domain.ProductChanges) (*domain.Product, error)
	lockFn   func(ctx context.Context, caller *domain.Identity, id string, locked bool) (*domain.Product, error)
	deleteFn func(ctx context.Context, caller *domain.Identity, id string) error
	getFn    func(ctx context.Context, id string) (*domain.Product, error)
	listFn   func(ctx context.Context, f domain.ProductFilter) ([]*domain.Product, int64, error)
}

func (s *stubProductService) Create(ctx context.Context, caller *domain.Identity, in domain.ProductInput) (*domain.Product, error) {
	if s.createFn == nil {
		return nil, errNotStubbed
	}
	return s.createFn(ctx, caller, in)
}

func (s *stubProductService) Update(ctx context.Context, caller *domain.Identity, id string, c domain.ProductChanges) (*domain.Product, error) {
	if s.updateFn == nil {
		return nil, errNotStubbed
	}
	return s.updateFn(ctx, caller, id, c)
}

func (s *stubProductService) Lock(ctx context.Context, caller *domain.Identity, id string) (*domain.Product, error) {
	if s.lockFn == nil {
		return nil, errNotStubbed
	}
	return s.lockFn(ctx, caller, id, true)
}

func (s *stubProductService) Unlock(ctx context.Context, caller *domain.Identity, id string) (*domain.Product, error) {
	if s.lockFn == nil {
		return nil, errNotStubbed
	}
	return s.lockFn(ctx, caller, id, false)
}

func (s *stubProductService) Delete(ctx context.Context, caller *domain.Identity, id string) error {
	if s.deleteFn == nil {
		return errNotStubbed
	}
	return s.deleteFn(ctx, caller, id)
}

func (s *stubProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	if s.getFn == nil {
		return nil, errNotStubbed
	}
	return s.getFn(ctx, id)
}

func (s *stubProductService) List(ctx context.Context, f domain.ProductFilter) ([]*domain.Product, int64, error) {
	if s.listFn == nil {
		return nil, 0, errNotStubbed
	}
	return s.listFn(ctx, f)
}

// ---------------------------------------------------------------------------
// Categories
// ---------------------------------------------------------------------------

type stubCategoryService struct {
	ports.CategoryService
	getFn    func(ctx context.Context, name string) (*domain.Category, error)
	listFn   func(ctx context.Context, activeOnly bool, skip, limit int) ([]*domain.Category, int64, error)
	updateFn func(ctx context.Context, caller *domain.Identity, name string, u domain.CategoryUpdate) (*domain.Category, error)
}

func (s *stubCategoryService) Get(ctx context.Context, name string) (*domain.Category, error) {
	return s.getFn(ctx, name)
}

func (s *stubCategoryService) List(ctx context.Context, activeOnly bool, skip, limit int) ([]*domain.Category, int64, error) {
	return s.listFn(ctx, activeOnly, skip, limit)
}

func (s *stubCategoryService) Update(ctx context.Context, caller *domain.Identity, name string, u domain.CategoryUpdate) (*domain.Category, error) {
	return s.updateFn(ctx, caller, name, u)
}

// ---------------------------------------------------------------------------
// Inquiry
// ---------------------------------------------------------------------------

type stubInquiryService struct {
	submitFn func(ctx context.Context, in ports.InquiryInput) (*domain.Inquiry, error)
}

func (s *stubInquiryService) Submit(ctx context.Context, in ports.InquiryInput) (*domain.Inquiry, error) {
	return s.submitFn(ctx, in)
}
