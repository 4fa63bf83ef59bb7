package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/pixelforge/storefront/internal/core/domain"
	"github.com/pixelforge/storefront/internal/core/ports"
)

// categoryChecker is the part of the registry the lifecycle manager needs.
type categoryChecker interface {
	IsValidCategory(ctx context.Context, name string) (bool, error)
}

// ProductOptions tunes ProductService.
type ProductOptions struct {
	// AdminEmail receives product.created notifications.
	AdminEmail string
	Images     ImagePolicy
}

// ProductService is the product lifecycle manager. A product is created
// UNLOCKED; while LOCKED its content cannot change but it can still be
// unlocked or deleted.
type ProductService struct {
	repo       ports.ProductRepository
	categories categoryChecker
	images     ports.ImageStore
	notifier   ports.Notifier
	clock      ports.Clock
	opts       ProductOptions
	logger     zerolog.Logger
}

func NewProductService(
	repo ports.ProductRepository,
	categories categoryChecker,
	images ports.ImageStore,
	notifier ports.Notifier,
	clock ports.Clock,
	opts ProductOptions,
	logger zerolog.Logger,
) *ProductService {
	if clock == nil {
		clock = SystemClock{}
	}
	if opts.Images.MaxBytes == 0 && len(opts.Images.Extensions) == 0 {
		opts.Images = DefaultImagePolicy()
	}
	return &ProductService{
		repo:       repo,
		categories: categories,
		images:     images,
		notifier:   notifier,
		clock:      clock,
		opts:       opts,
		logger:     logger,
	}
}

func (s *ProductService) Create(ctx context.Context, caller *domain.Identity, in domain.ProductInput) (*domain.Product, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if err := domain.ValidateTitle(in.Title); err != nil {
		return nil, err
	}
	if err := domain.ValidatePrice(in.Price); err != nil {
		return nil, err
	}
	if err := domain.ValidateRating(in.Rating); err != nil {
		return nil, err
	}
	if err := domain.ValidateDescriptions(in.Description, in.ShortDescription); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, in.Category); err != nil {
		return nil, err
	}
	types, err := s.opts.Images.CheckAll(in.Images)
	if err != nil {
		return nil, err
	}

	refs, err := s.upload(ctx, in.Images, types)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.Product{
		Title:            in.Title,
		Description:      in.Description,
		ShortDescription: in.ShortDescription,
		Price:            in.Price,
		Category:         in.Category,
		Rating:           in.Rating,
		Images:           refs,
		IsLocked:         false,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		s.discard(ctx, refs)
		return nil, domain.Unavailable("create product", err)
	}

	s.logger.Info().Str("product_id", created.ID).Str("category", created.Category).Str("by", caller.Email).Msg("product created")

	if s.notifier != nil {
		s.notifier.Notify(domain.Event{
			Kind:      domain.EventProductCreated,
			Subject:   created.ID,
			Recipient: s.opts.AdminEmail,
			Attributes: map[string]string{
				"title":    created.Title,
				"category": created.Category,
				"price":    strconv.FormatFloat(created.Price, 'f', 2, 64),
			},
			OccurredAt: now,
		})
	}
	return created, nil
}

// Update applies every supplied field or none of them. The write is guarded
// by the lock flag in storage, so a Lock that lands between the read and the
// write wins and the update fails with domain.ErrProductLocked.
func (s *ProductService) Update(ctx context.Context, caller *domain.Identity, id string, changes domain.ProductChanges) (*domain.Product, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if changes.Empty() {
		return nil, domain.Invalid("", "no fields provided for update")
	}

	current, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.IsLocked {
		return nil, domain.ErrProductLocked
	}

	patch, err := s.validateChanges(ctx, current, changes)
	if err != nil {
		return nil, err
	}

	var uploaded []string
	if changes.Images != nil {
		types, err := s.opts.Images.CheckAll(*changes.Images)
		if err != nil {
			return nil, err
		}
		uploaded, err = s.upload(ctx, *changes.Images, types)
		if err != nil {
			return nil, err
		}
		patch.Images = &uploaded
	}

	updated, replaced, err := s.repo.UpdateUnlocked(ctx, id, patch, s.clock.Now().UTC())
	if err != nil {
		s.discard(ctx, uploaded)
		switch {
		case errors.Is(err, domain.ErrProductLocked):
			return nil, domain.ErrProductLocked
		case errors.Is(err, domain.ErrNotFound):
			return nil, domain.ErrNotFound
		}
		return nil, domain.Unavailable("update product", err)
	}

	s.discard(ctx, replaced)

	s.logger.Info().Str("product_id", id).Str("by", caller.Email).Msg("product updated")
	return updated, nil
}

// validateChanges checks every supplied field against the product it will be
// merged into and returns the storage patch without images.
func (s *ProductService) validateChanges(ctx context.Context, current *domain.Product, c domain.ProductChanges) (domain.ProductPatch, error) {
	var patch domain.ProductPatch

	if c.Title != nil {
		if err := domain.ValidateTitle(*c.Title); err != nil {
			return patch, err
		}
		patch.Title = c.Title
	}
	if c.Price != nil {
		if err := domain.ValidatePrice(*c.Price); err != nil {
			return patch, err
		}
		patch.Price = c.Price
	}
	if c.Rating != nil {
		if err := domain.ValidateRating(*c.Rating); err != nil {
			return patch, err
		}
		patch.Rating = c.Rating
	}

	desc, short := current.Description, current.ShortDescription
	if c.Description != nil {
		desc = *c.Description
		patch.Description = c.Description
	}
	if c.ShortDescription != nil {
		short = *c.ShortDescription
		patch.ShortDescription = c.ShortDescription
	}
	if err := domain.ValidateDescriptions(desc, short); err != nil {
		return patch, err
	}

	if c.Category != nil {
		if err := s.checkCategory(ctx, *c.Category); err != nil {
			return patch, err
		}
		patch.Category = c.Category
	}
	return patch, nil
}

func (s *ProductService) Lock(ctx context.Context, caller *domain.Identity, id string) (*domain.Product, error) {
	return s.setLocked(ctx, caller, id, true)
}

func (s *ProductService) Unlock(ctx context.Context, caller *domain.Identity, id string) (*domain.Product, error) {
	return s.setLocked(ctx, caller, id, false)
}

func (s *ProductService) setLocked(ctx context.Context, caller *domain.Identity, id string, locked bool) (*domain.Product, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	p, err := s.repo.SetLocked(ctx, id, locked, s.clock.Now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.Unavailable("set product lock", err)
	}
	s.logger.Info().Str("product_id", id).Str("state", string(p.State())).Str("by", caller.Email).Msg("product lock changed")
	return p, nil
}

// Delete removes the product in either state.
func (s *ProductService) Delete(ctx context.Context, caller *domain.Identity, id string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return domain.Unavailable("delete product", err)
	}
	s.discard(ctx, removed.Images)
	s.logger.Info().Str("product_id", id).Str("by", caller.Email).Msg("product deleted")
	return nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.find(ctx, id)
}

func (s *ProductService) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, int64, error) {
	skip, limit, err := page(filter.Skip, filter.Limit, domain.DefaultProductPageSize, domain.MaxProductPageSize)
	if err != nil {
		return nil, 0, err
	}
	filter.Skip, filter.Limit = skip, limit

	if filter.Category != "" {
		if err := s.checkCategory(ctx, filter.Category); err != nil {
			return nil, 0, err
		}
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, domain.Unavailable("list products", err)
	}
	return items, total, nil
}

func (s *ProductService) find(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.Unavailable("find product", err)
	}
	return p, nil
}

func (s *ProductService) checkCategory(ctx context.Context, name string) error {
	ok, err := s.categories.IsValidCategory(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return domain.Invalid("category", "category %q does not exist", name)
	}
	return nil
}

// upload stores every image or none: on failure the ones already stored are
// removed again.
func (s *ProductService) upload(ctx context.Context, uploads []domain.ImageUpload, types []string) ([]string, error) {
	refs := make([]string, 0, len(uploads))
	if len(uploads) == 0 {
		return refs, nil
	}
	if s.images == nil {
		return nil, domain.Unavailable("store image", errors.New("no image store configured"))
	}
	for i, u := range uploads {
		ref, err := s.images.Put(ctx, u.Filename, types[i], u.Data)
		if err != nil {
			s.discard(ctx, refs)
			return nil, domain.Unavailable("store image", err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// discard removes stored images, logging failures. Cancellation of the
// request does not stop the cleanup.
func (s *ProductService) discard(ctx context.Context, refs []string) {
	if s.images == nil || len(refs) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, ref := range refs {
		if err := s.images.Delete(ctx, ref); err != nil {
			s.logger.Warn().Err(err).Str("image", ref).Msg("failed to remove image")
		}
	}
}
