package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pixelforge/storefront/internal/core/domain"
)

func newCategoryFixture(names ...string) (*CategoryService, *stubCategoryRepo) {
	repo := newStubCategoryRepo(names...)
	return NewCategoryService(repo, newFakeClock(), nopLogger), repo
}

func TestCategoryService_Membership(t *testing.T) {
	svc, _ := newCategoryFixture("Photo Magnets", "Retro Prints")
	ctx := context.Background()

	cases := []struct {
		name string
		want bool
	}{
		{"Photo Magnets", true},
		{"Retro Prints", true},
		{"photo magnets", false},
		{"Nonexistent Category", false},
		{"", false},
	}
	for _, tc := range cases {
		got, err := svc.IsValidCategory(ctx, tc.name)
		if err != nil {
			t.Fatalf("%q: %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("IsValidCategory(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCategoryService_SelectableIsIndependentOfMembership(t *testing.T) {
	svc, _ := newCategoryFixture("Retro Prints")
	ctx := context.Background()

	if _, err := svc.Deactivate(ctx, adminCaller, "Retro Prints"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	valid, _ := svc.IsValidCategory(ctx, "Retro Prints")
	selectable, _ := svc.IsSelectable(ctx, "Retro Prints")
	if !valid {
		t.Error("inactive category must still be a valid member")
	}
	if selectable {
		t.Error("inactive category must not be selectable")
	}

	if _, err := svc.Activate(ctx, adminCaller, "Retro Prints"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if ok, _ := svc.IsSelectable(ctx, "Retro Prints"); !ok {
		t.Error("re-activated category must be selectable")
	}
}

func TestCategoryService_Create(t *testing.T) {
	svc, _ := newCategoryFixture()
	ctx := context.Background()

	c, err := svc.Create(ctx, adminCaller, "Gift Cards", "Printable gift cards")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !c.IsActive {
		t.Error("new category must be active")
	}
	if _, err := svc.Create(ctx, adminCaller, "Gift Cards", ""); !errors.Is(err, domain.ErrDuplicateCategory) {
		t.Errorf("expected ErrDuplicateCategory, got %v", err)
	}
}

func TestCategoryService_CreateValidation(t *testing.T) {
	svc, _ := newCategoryFixture()
	ctx := context.Background()

	for _, name := range []string{"", "   ", " Padded", strings.Repeat("x", domain.MaxCategoryNameLength+1)} {
		if _, err := svc.Create(ctx, adminCaller, name, ""); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("name %q: expected ErrValidation, got %v", name, err)
		}
	}
	if _, err := svc.Create(ctx, adminCaller, "Ok", strings.Repeat("d", domain.MaxCategoryDescriptionLength+1)); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("long description: expected ErrValidation, got %v", err)
	}
}

func TestCategoryService_MutationsRequireAdmin(t *testing.T) {
	svc, _ := newCategoryFixture("Photo Magnets")
	ctx := context.Background()

	if _, err := svc.Create(ctx, userCaller, "New", ""); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("create: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Rename(ctx, userCaller, "Photo Magnets", "X"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("rename: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Deactivate(ctx, nil, "Photo Magnets"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("deactivate: expected ErrUnauthenticated, got %v", err)
	}
}

func TestCategoryService_Rename(t *testing.T) {
	svc, _ := newCategoryFixture("Photo Magnets", "Retro Prints")
	ctx := context.Background()

	c, err := svc.Rename(ctx, adminCaller, "Photo Magnets", "Picture Magnets")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if c.Name != "Picture Magnets" {
		t.Errorf("expected new name, got %q", c.Name)
	}
	if ok, _ := svc.IsValidCategory(ctx, "Photo Magnets"); ok {
		t.Error("old name must no longer be valid")
	}
	if _, err := svc.Rename(ctx, adminCaller, "Picture Magnets", "Retro Prints"); !errors.Is(err, domain.ErrDuplicateCategory) {
		t.Errorf("rename onto existing: expected ErrDuplicateCategory, got %v", err)
	}
	if _, err := svc.Rename(ctx, adminCaller, "Missing", "Other"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("rename missing: expected ErrNotFound, got %v", err)
	}
}

func TestCategoryService_UpdateEmpty(t *testing.T) {
	svc, _ := newCategoryFixture("Photo Magnets")
	if _, err := svc.Update(context.Background(), adminCaller, "Photo Magnets", domain.CategoryUpdate{}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestCategoryService_ListActiveOnly(t *testing.T) {
	svc, _ := newCategoryFixture("A", "B", "C")
	ctx := context.Background()
	_, _ = svc.Deactivate(ctx, adminCaller, "B")

	all, total, err := svc.List(ctx, false, 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Errorf("expected 3 categories, got %d/%d", len(all), total)
	}
	active, total, _ := svc.List(ctx, true, 0, 0)
	if total != 2 || len(active) != 2 {
		t.Errorf("expected 2 active categories, got %d/%d", len(active), total)
	}
}

func TestCategoryService_StoreFailure(t *testing.T) {
	svc, repo := newCategoryFixture("A")
	repo.err = errors.New("db down")

	if _, err := svc.IsValidCategory(context.Background(), "A"); !errors.Is(err, domain.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestCategoryService_EnsureDefaults(t *testing.T) {
	svc, _ := newCategoryFixture("Photo Magnets")

	n, err := svc.EnsureDefaults(context.Background(), domain.DefaultCategories)
	if err != nil {
		t.Fatalf("ensure defaults: %v", err)
	}
	if n != len(domain.DefaultCategories)-1 {
		t.Errorf("expected %d new categories, got %d", len(domain.DefaultCategories)-1, n)
	}
	n, _ = svc.EnsureDefaults(context.Background(), domain.DefaultCategories)
	if n != 0 {
		t.Errorf("second run must create nothing, got %d", n)
	}
}
