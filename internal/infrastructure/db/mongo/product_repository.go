package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pixelforge/storefront/internal/core/domain"
)

// ProductRepository implements ports.ProductRepository. Every mutation is a
// single findAndModify, so the lock flag is checked and the fields written in
// one atomic step.
type ProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{col: db.Collection(collectionProducts)}
}

type productDoc struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Title            string             `bson:"title"`
	Description      string             `bson:"description,omitempty"`
	ShortDescription string             `bson:"short_description,omitempty"`
	Price            float64            `bson:"price"`
	Category         string             `bson:"category"`
	Rating           float64            `bson:"rating"`
	Images           []string           `bson:"images"`
	IsLocked         bool               `bson:"is_locked"`
	CreatedAt        time.Time          `bson:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at"`
}

func (d *productDoc) toDomain() *domain.Product {
	images := d.Images
	if images == nil {
		images = []string{}
	}
	return &domain.Product{
		ID:               d.ID.Hex(),
		Title:            d.Title,
		Description:      d.Description,
		ShortDescription: d.ShortDescription,
		Price:            d.Price,
		Category:         d.Category,
		Rating:           d.Rating,
		Images:           images,
		IsLocked:         d.IsLocked,
		CreatedAt:        d.CreatedAt.UTC(),
		UpdatedAt:        d.UpdatedAt.UTC(),
	}
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	images := p.Images
	if images == nil {
		images = []string{}
	}
	doc := productDoc{
		Title:            p.Title,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		Price:            p.Price,
		Category:         p.Category,
		Rating:           p.Rating,
		Images:           images,
		IsLocked:         p.IsLocked,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toDomain(), nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc productDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return doc.toDomain(), nil
}

// UpdateUnlocked matches on is_locked=false and reads the document as it was
// before the write, so the replaced images are exactly the ones this write
// removed. When nothing matches, a second lookup tells a missing product from
// a locked one.
func (r *ProductRepository) UpdateUnlocked(ctx context.Context, id string, patch domain.ProductPatch, now time.Time) (*domain.Product, []string, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil, domain.ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc productDoc
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "is_locked": false},
		bson.M{"$set": patchSet(patch, now)},
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&doc)
	if err == nil {
		before := doc.toDomain()
		return patch.Apply(*before, now), replacedImages(before, patch), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil, fmt.Errorf("update product: %w", err)
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, nil, fmt.Errorf("count product: %w", err)
	}
	if n == 0 {
		return nil, nil, domain.ErrNotFound
	}
	return nil, nil, domain.ErrProductLocked
}

func replacedImages(before *domain.Product, patch domain.ProductPatch) []string {
	if patch.Images == nil {
		return nil
	}
	return before.Images
}

func (r *ProductRepository) SetLocked(ctx context.Context, id string, locked bool, now time.Time) (*domain.Product, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc productDoc
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"is_locked": locked, "updated_at": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("set product lock: %w", err)
	}
	return doc.toDomain(), nil
}

// Delete removes the product and returns it as it was.
func (r *ProductRepository) Delete(ctx context.Context, id string) (*domain.Product, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc productDoc
	if err := r.col.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("delete product: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ProductRepository) List(ctx context.Context, f domain.ProductFilter) ([]*domain.Product, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := productFilter(f)
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	cur, err := r.col.Find(ctx, filter, findOptions(f.Skip, f.Limit, bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, 0, fmt.Errorf("find products: %w", err)
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode products: %w", err)
	}

	out := make([]*domain.Product, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, total, nil
}

// productFilter builds the query document. Predicates are sibling keys, so
// MongoDB combines them with AND.
func productFilter(f domain.ProductFilter) bson.M {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.UnlockedOnly {
		filter["is_locked"] = false
	}
	return filter
}

// patchSet translates a patch into a $set document. Unset fields are left
// out; an empty image list is written as [] rather than dropped.
func patchSet(p domain.ProductPatch, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.ShortDescription != nil {
		set["short_description"] = *p.ShortDescription
	}
	if p.Price != nil {
		set["price"] = *p.Price
	}
	if p.Category != nil {
		set["category"] = *p.Category
	}
	if p.Rating != nil {
		set["rating"] = *p.Rating
	}
	if p.Images != nil {
		images := *p.Images
		if images == nil {
			images = []string{}
		}
		set["images"] = images
	}
	return set
}
