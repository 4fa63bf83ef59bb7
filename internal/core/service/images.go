package service

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/pixelforge/storefront/internal/core/domain"
)

const defaultMaxImageBytes = 5 * 1024 * 1024

// ImagePolicy decides which uploads are accepted as product images.
type ImagePolicy struct {
	MaxBytes   int64
	Extensions []string
	MIMETypes  []string
}

// DefaultImagePolicy accepts jpg, png, gif and webp up to 5 MiB.
func DefaultImagePolicy() ImagePolicy {
	return ImagePolicy{
		MaxBytes:   defaultMaxImageBytes,
		Extensions: []string{"jpg", "jpeg", "png", "gif", "webp"},
		MIMETypes:  []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
	}
}

// Check validates a single upload and returns its sniffed content type.
// The declared extension and the content must both be on the allow-lists.
func (p ImagePolicy) Check(u domain.ImageUpload) (string, error) {
	if u.Size() == 0 {
		return "", domain.Invalid("images", "image %q is empty", u.Filename)
	}
	if p.MaxBytes > 0 && u.Size() > p.MaxBytes {
		return "", domain.Invalid("images", "image %q exceeds %d bytes", u.Filename, p.MaxBytes)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(u.Filename), "."))
	if !slices.Contains(p.Extensions, ext) {
		return "", domain.Invalid("images", "image %q has unsupported extension; allowed: %s", u.Filename, strings.Join(p.Extensions, ", "))
	}

	mtype := mimetype.Detect(u.Data)
	for _, allowed := range p.MIMETypes {
		if mtype.Is(allowed) {
			return allowed, nil
		}
	}
	return "", domain.Invalid("images", "image %q is not a supported image type (detected %s)", u.Filename, mtype.String())
}

// CheckAll validates the count and every upload, returning the content types
// in input order.
func (p ImagePolicy) CheckAll(uploads []domain.ImageUpload) ([]string, error) {
	if err := domain.ValidateImageCount(len(uploads)); err != nil {
		return nil, err
	}
	types := make([]string, len(uploads))
	for i, u := range uploads {
		ct, err := p.Check(u)
		if err != nil {
			return nil, err
		}
		types[i] = ct
	}
	return types, nil
}
