package domain

import (
	"strings"
	"time"
)

const (
	MaxCategoryNameLength        = 100
	MaxCategoryDescriptionLength = 500
)

// DefaultCategories seeds a fresh registry.
var DefaultCategories = []Category{
	{Name: "Photo Magnets", Description: "Custom photo magnets printed from your pictures", IsActive: true},
	{Name: "Fridge Magnets", Description: "Decorative fridge magnets", IsActive: true},
	{Name: "Retro Prints", Description: "Polaroid-style retro photo prints", IsActive: true},
}

// Category is a curated grouping of products. Names match exactly and are
// case-sensitive.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryUpdate carries the fields to change. Nil means unchanged.
type CategoryUpdate struct {
	Name        *string
	Description *string
	IsActive    *bool
}

// Empty reports whether the update changes nothing.
func (u CategoryUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.IsActive == nil
}

// ValidateCategoryName checks the shape of a category name.
func ValidateCategoryName(name string) error {
	if strings.TrimSpace(name) == "" {
		return Invalid("name", "category name is required")
	}
	if name != strings.TrimSpace(name) {
		return Invalid("name", "category name must not have leading or trailing spaces")
	}
	if len(name) > MaxCategoryNameLength {
		return Invalid("name", "category name must be at most %d characters", MaxCategoryNameLength)
	}
	return nil
}

// ValidateCategoryDescription checks the description length.
func ValidateCategoryDescription(desc string) error {
	if len(desc) > MaxCategoryDescriptionLength {
		return Invalid("description", "description must be at most %d characters", MaxCategoryDescriptionLength)
	}
	return nil
}
