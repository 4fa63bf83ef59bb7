package ports

import (
	"context"

	"github.com/pixelforge/storefront/internal/core/domain"
)

// RequiredRole is the authorization level an operation demands.
type RequiredRole int

const (
	// RequireNone allows anonymous access.
	RequireNone RequiredRole = iota
	// RequireAuthenticated allows any valid, existing account.
	RequireAuthenticated
	// RequireAdmin allows ADMIN accounts only.
	RequireAdmin
)

func (r RequiredRole) String() string {
	switch r {
	case RequireNone:
		return "NONE"
	case RequireAuthenticated:
		return "ANY_AUTHENTICATED"
	case RequireAdmin:
		return "ADMIN"
	}
	return "UNKNOWN"
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string
	User  *domain.User
}

// AuthService covers registration, login and request authorization.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// Authenticate resolves a raw Authorization credential to the caller.
	// With RequireNone it succeeds with a nil identity.
	Authenticate(ctx context.Context, credential string, required RequiredRole) (*domain.Identity, error)
}

// UserService exposes account lookups.
type UserService interface {
	Me(ctx context.Context, caller *domain.Identity) (*domain.User, error)
	Get(ctx context.Context, caller *domain.Identity, id string) (*domain.User, error)
	List(ctx context.Context, caller *domain.Identity, skip, limit int) ([]*domain.User, int64, error)
}

// CategoryService is the category registry.
type CategoryService interface {
	IsValidCategory(ctx context.Context, name string) (bool, error)
	IsSelectable(ctx context.Context, name string) (bool, error)
	Get(ctx context.Context, name string) (*domain.Category, error)
	List(ctx context.Context, activeOnly bool, skip, limit int) ([]*domain.Category, int64, error)
	Create(ctx context.Context, caller *domain.Identity, name, description string) (*domain.Category, error)
	Update(ctx context.Context, caller *domain.Identity, name string, u domain.CategoryUpdate) (*domain.Category, error)
	Rename(ctx context.Context, caller *domain.Identity, name, newName string) (*domain.Category, error)
	Deactivate(ctx context.Context, caller *domain.Identity, name string) (*domain.Category, error)
	Activate(ctx context.Context, caller *domain.Identity, name string) (*domain.Category, error)
}

// ProductService is the product lifecycle manager.
type ProductService interface {
	Create(ctx context.Context, caller *domain.Identity, in domain.ProductInput) (*domain.Product, error)
	Update(ctx context.Context, caller *domain.Identity, id string, changes domain.ProductChanges) (*domain.Product, error)
	Lock(ctx context.Context, caller *domain.Identity, id string) (*domain.Product, error)
	Unlock(ctx context.Context, caller *domain.Identity, id string) (*domain.Product, error)
	Delete(ctx context.Context, caller *domain.Identity, id string) error
	Get(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, int64, error)
}

// InquiryInput is a contact-form submission as received.
type InquiryInput struct {
	FirstName           string
	LastName            string
	Email               string
	PhoneNumber         string
	Subject             string
	Message             string
	SubscribeNewsletter bool
}

// InquiryService accepts customer inquiries.
type InquiryService interface {
	Submit(ctx context.Context, in InquiryInput) (*domain.Inquiry, error)
}
