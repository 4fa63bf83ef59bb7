package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/pixelforge/storefront/internal/core/domain"
)

func TestProductFilter(t *testing.T) {
	cases := []struct {
		name   string
		filter domain.ProductFilter
		want   bson.M
	}{
		{"empty", domain.ProductFilter{}, bson.M{}},
		{"category", domain.ProductFilter{Category: "Retro Prints"}, bson.M{"category": "Retro Prints"}},
		{"unlocked", domain.ProductFilter{UnlockedOnly: true}, bson.M{"is_locked": false}},
		{"both", domain.ProductFilter{Category: "Retro Prints", UnlockedOnly: true},
			bson.M{"category": "Retro Prints", "is_locked": false}},
	}
	for _, tc := range cases {
		got := productFilter(tc.filter)
		if len(got) != len(tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
			continue
		}
		for k, v := range tc.want {
			if got[k] != v {
				t.Errorf("%s: key %q: expected %v, got %v", tc.name, k, v, got[k])
			}
		}
	}
}

func TestPatchSet(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	price := 1.0
	empty := []string{}

	set := patchSet(domain.ProductPatch{Price: &price, Images: &empty}, now)

	if set["price"] != 1.0 {
		t.Errorf("price: expected 1.0, got %v", set["price"])
	}
	if imgs, ok := set["images"].([]string); !ok || len(imgs) != 0 {
		t.Errorf("images: expected empty list, got %#v", set["images"])
	}
	if set["updated_at"] != now {
		t.Errorf("updated_at: expected %v, got %v", now, set["updated_at"])
	}
	for _, k := range []string{"title", "category", "rating", "description", "short_description"} {
		if _, ok := set[k]; ok {
			t.Errorf("unset field %q must not be written", k)
		}
	}
}

func TestObjectID(t *testing.T) {
	if _, ok := objectID("not-hex"); ok {
		t.Error("malformed id must not parse")
	}
	if _, ok := objectID("507f1f77bcf86cd799439011"); !ok {
		t.Error("valid hex id must parse")
	}
}

func TestReplacedImages(t *testing.T) {
	before := &domain.Product{Images: []string{"a.png", "b.png"}}

	if got := replacedImages(before, domain.ProductPatch{Title: ptrTo("x")}); got != nil {
		t.Errorf("patch without images must replace nothing, got %v", got)
	}
	none := []string{}
	got := replacedImages(before, domain.ProductPatch{Images: &none})
	if len(got) != 2 || got[0] != "a.png" || got[1] != "b.png" {
		t.Errorf("expected the previous images, got %v", got)
	}
}

func ptrTo[T any](v T) *T { return &v }
