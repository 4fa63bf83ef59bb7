package domain

import (
	"math"
	"strings"
	"time"
)

const (
	MaxProductImages       = 5
	MaxTitleLength         = 150
	MaxShortDescLength     = 300
	MaxDescriptionLength   = 5000
	MinRating              = 0.0
	MaxRating              = 5.0
	DefaultProductPageSize = 100
	MaxProductPageSize     = 1000
)

// LockState is the lifecycle state of a product.
type LockState string

const (
	StateUnlocked LockState = "UNLOCKED"
	StateLocked   LockState = "LOCKED"
)

// Product is the catalog aggregate. Category holds the category name; it is
// validated in the service layer, not by storage.
type Product struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	ShortDescription string    `json:"short_description,omitempty"`
	Price            float64   `json:"price"`
	Category         string    `json:"category"`
	Rating           float64   `json:"rating"`
	Images           []string  `json:"images"`
	IsLocked         bool      `json:"is_locked"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// State derives the lock state from the stored flag.
func (p *Product) State() LockState {
	if p.IsLocked {
		return StateLocked
	}
	return StateUnlocked
}

// ImageUpload is an image as received from a caller, before it is handed to
// the image store.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// Size returns the upload size in bytes.
func (u ImageUpload) Size() int64 { return int64(len(u.Data)) }

// ProductInput carries the fields of a new product.
type ProductInput struct {
	Title            string
	Description      string
	ShortDescription string
	Price            float64
	Category         string
	Rating           float64
	Images           []ImageUpload
}

// ProductChanges carries the fields of an update. Nil means unchanged; a
// non-nil Images replaces the whole image list (an empty slice clears it).
type ProductChanges struct {
	Title            *string
	Description      *string
	ShortDescription *string
	Price            *float64
	Category         *string
	Rating           *float64
	Images           *[]ImageUpload
}

// Empty reports whether the update changes nothing.
func (c ProductChanges) Empty() bool {
	return c.Title == nil && c.Description == nil && c.ShortDescription == nil &&
		c.Price == nil && c.Category == nil && c.Rating == nil && c.Images == nil
}

// ProductPatch is the validated, storage-ready form of ProductChanges.
type ProductPatch struct {
	Title            *string
	Description      *string
	ShortDescription *string
	Price            *float64
	Category         *string
	Rating           *float64
	Images           *[]string
}

// Apply returns a copy of p with the patch merged in and UpdatedAt set.
func (patch ProductPatch) Apply(p Product, now time.Time) *Product {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.ShortDescription != nil {
		p.ShortDescription = *patch.ShortDescription
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Rating != nil {
		p.Rating = *patch.Rating
	}
	if patch.Images != nil {
		p.Images = append([]string(nil), (*patch.Images)...)
	} else {
		p.Images = append([]string(nil), p.Images...)
	}
	p.UpdatedAt = now
	return &p
}

// ProductFilter selects products for listing. All predicates combine with AND.
type ProductFilter struct {
	Category     string
	UnlockedOnly bool
	Skip         int
	Limit        int
}

// ValidateTitle checks a product title.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return Invalid("title", "title is required")
	}
	if len([]rune(title)) > MaxTitleLength {
		return Invalid("title", "title must be at most %d characters", MaxTitleLength)
	}
	return nil
}

// ValidatePrice requires a finite price strictly greater than zero.
func ValidatePrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return Invalid("price", "price must be greater than 0")
	}
	return nil
}

// ValidateRating requires a rating within [MinRating, MaxRating].
func ValidateRating(rating float64) error {
	if math.IsNaN(rating) || rating < MinRating || rating > MaxRating {
		return Invalid("rating", "rating must be between %.1f and %.1f", MinRating, MaxRating)
	}
	return nil
}

// ValidateImageCount enforces the per-product image ceiling.
func ValidateImageCount(n int) error {
	if n > MaxProductImages {
		return Invalid("images", "maximum %d images allowed per product", MaxProductImages)
	}
	return nil
}

// ValidateDescriptions checks the optional free-text fields.
func ValidateDescriptions(desc, short string) error {
	if len(desc) > MaxDescriptionLength {
		return Invalid("description", "description must be at most %d characters", MaxDescriptionLength)
	}
	if len(short) > MaxShortDescLength {
		return Invalid("short_description", "short description must be at most %d characters", MaxShortDescLength)
	}
	return nil
}
