package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/pixelforge/storefront/internal/core/domain"
	"github.com/pixelforge/storefront/internal/core/ports"
)

const (
	defaultCategoryPageSize = 100
	maxCategoryPageSize     = 1000
)

// CategoryService is the category registry. Mutations never touch products:
// a renamed or deactivated category stays referenced by name.
type CategoryService struct {
	repo   ports.CategoryRepository
	clock  ports.Clock
	logger zerolog.Logger
}

func NewCategoryService(repo ports.CategoryRepository, clock ports.Clock, logger zerolog.Logger) *CategoryService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &CategoryService{repo: repo, clock: clock, logger: logger}
}

// IsValidCategory reports whether name exists, active or not.
func (s *CategoryService) IsValidCategory(ctx context.Context, name string) (bool, error) {
	c, err := s.lookup(ctx, name)
	if err != nil {
		return false, err
	}
	return c != nil, nil
}

// IsSelectable reports whether name exists and is active, i.e. may be offered
// for new products.
func (s *CategoryService) IsSelectable(ctx context.Context, name string) (bool, error) {
	c, err := s.lookup(ctx, name)
	if err != nil {
		return false, err
	}
	return c != nil && c.IsActive, nil
}

func (s *CategoryService) lookup(ctx context.Context, name string) (*domain.Category, error) {
	if name == "" {
		return nil, nil
	}
	c, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, domain.Unavailable("find category", err)
	}
	return c, nil
}

func (s *CategoryService) Get(ctx context.Context, name string) (*domain.Category, error) {
	c, err := s.lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (s *CategoryService) List(ctx context.Context, activeOnly bool, skip, limit int) ([]*domain.Category, int64, error) {
	skip, limit, err := page(skip, limit, defaultCategoryPageSize, maxCategoryPageSize)
	if err != nil {
		return nil, 0, err
	}
	items, total, err := s.repo.List(ctx, activeOnly, skip, limit)
	if err != nil {
		return nil, 0, domain.Unavailable("list categories", err)
	}
	return items, total, nil
}

// Create adds an active category.
func (s *CategoryService) Create(ctx context.Context, caller *domain.Identity, name, description string) (*domain.Category, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if err := domain.ValidateCategoryName(name); err != nil {
		return nil, err
	}
	if err := domain.ValidateCategoryDescription(description); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.Category{
		Name:        name,
		Description: description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateCategory) {
			return nil, domain.ErrDuplicateCategory
		}
		return nil, domain.Unavailable("create category", err)
	}

	s.logger.Info().Str("category", created.Name).Str("by", caller.Email).Msg("category created")
	return created, nil
}

// Update applies name, description and active changes in one write.
func (s *CategoryService) Update(ctx context.Context, caller *domain.Identity, name string, u domain.CategoryUpdate) (*domain.Category, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if u.Empty() {
		return nil, domain.Invalid("", "no fields provided for update")
	}
	if u.Name != nil {
		if err := domain.ValidateCategoryName(*u.Name); err != nil {
			return nil, err
		}
	}
	if u.Description != nil {
		if err := domain.ValidateCategoryDescription(*u.Description); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.Update(ctx, name, u, s.clock.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return nil, domain.ErrNotFound
		case errors.Is(err, domain.ErrDuplicateCategory):
			return nil, domain.ErrDuplicateCategory
		}
		return nil, domain.Unavailable("update category", err)
	}

	s.logger.Info().Str("category", name).Str("now", updated.Name).Bool("active", updated.IsActive).Str("by", caller.Email).Msg("category updated")
	return updated, nil
}

func (s *CategoryService) Rename(ctx context.Context, caller *domain.Identity, name, newName string) (*domain.Category, error) {
	return s.Update(ctx, caller, name, domain.CategoryUpdate{Name: &newName})
}

func (s *CategoryService) Deactivate(ctx context.Context, caller *domain.Identity, name string) (*domain.Category, error) {
	active := false
	return s.Update(ctx, caller, name, domain.CategoryUpdate{IsActive: &active})
}

func (s *CategoryService) Activate(ctx context.Context, caller *domain.Identity, name string) (*domain.Category, error) {
	active := true
	return s.Update(ctx, caller, name, domain.CategoryUpdate{IsActive: &active})
}

// EnsureDefaults creates any missing default category. Used by the seed
// command.
func (s *CategoryService) EnsureDefaults(ctx context.Context, defaults []domain.Category) (int, error) {
	created := 0
	now := s.clock.Now().UTC()
	for _, c := range defaults {
		c := c
		c.CreatedAt, c.UpdatedAt = now, now
		if _, err := s.repo.Create(ctx, &c); err != nil {
			if errors.Is(err, domain.ErrDuplicateCategory) {
				continue
			}
			return created, domain.Unavailable("seed category", err)
		}
		created++
	}
	return created, nil
}
