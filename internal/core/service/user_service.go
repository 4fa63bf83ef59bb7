package service

import (
	"context"
	"errors"

	"github.com/pixelforge/storefront/internal/core/domain"
	"github.com/pixelforge/storefront/internal/core/ports"
)

const (
	defaultUserPageSize = 100
	maxUserPageSize     = 1000
)

// UserService serves account lookups on top of the credential store.
type UserService struct {
	users ports.UserRepository
}

func NewUserService(users ports.UserRepository) *UserService {
	return &UserService{users: users}
}

// Me returns the account of the caller.
func (s *UserService) Me(ctx context.Context, caller *domain.Identity) (*domain.User, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}
	user, err := s.users.FindByEmail(ctx, caller.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, domain.Unavailable("find user", err)
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, caller *domain.Identity, id string) (*domain.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.Unavailable("find user", err)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, caller *domain.Identity, skip, limit int) ([]*domain.User, int64, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, 0, err
	}
	skip, limit, err := page(skip, limit, defaultUserPageSize, maxUserPageSize)
	if err != nil {
		return nil, 0, err
	}
	users, total, err := s.users.List(ctx, skip, limit)
	if err != nil {
		return nil, 0, domain.Unavailable("list users", err)
	}
	return users, total, nil
}

// requireAdmin enforces the ADMIN role at the service boundary, independent
// of the HTTP guard.
func requireAdmin(caller *domain.Identity) error {
	if caller == nil {
		return domain.ErrUnauthenticated
	}
	if !caller.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}

// page normalises skip/limit: limit <= 0 takes def, limit above max is capped.
func page(skip, limit, def, max int) (int, int, error) {
	if skip < 0 {
		return 0, 0, domain.Invalid("skip", "skip must be >= 0")
	}
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return skip, limit, nil
}
