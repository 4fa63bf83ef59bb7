package ports

import (
	"context"
	"time"

	"github.com/pixelforge/storefront/internal/core/domain"
)

// UserRepository is the credential store. It exclusively owns User records.
type UserRepository interface {
	// Create inserts a user; returns domain.ErrDuplicateIdentity when the
	// email is taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByEmail returns domain.ErrNotFound when no user has the email.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context, skip, limit int) ([]*domain.User, int64, error)
}

// CategoryRepository persists the category registry.
type CategoryRepository interface {
	// Create returns domain.ErrDuplicateCategory when the name is taken.
	Create(ctx context.Context, c *domain.Category) (*domain.Category, error)
	FindByName(ctx context.Context, name string) (*domain.Category, error)
	// Update applies every non-nil field of u in one write.
	Update(ctx context.Context, name string, u domain.CategoryUpdate, now time.Time) (*domain.Category, error)
	List(ctx context.Context, activeOnly bool, skip, limit int) ([]*domain.Category, int64, error)
}

// ProductRepository persists products. Every method is a single-document
// atomic write or read.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	// UpdateUnlocked applies patch only while the product is unlocked and
	// returns the updated product together with the image refs the write
	// replaced (nil when patch leaves images alone).
	// Returns domain.ErrProductLocked if it is locked at write time and
	// domain.ErrNotFound if it does not exist.
	UpdateUnlocked(ctx context.Context, id string, patch domain.ProductPatch, now time.Time) (*domain.Product, []string, error)
	SetLocked(ctx context.Context, id string, locked bool, now time.Time) (*domain.Product, error)
	Delete(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, int64, error)
}
