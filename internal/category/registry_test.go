package category

import (
	"errors"
	"testing"

	"github.com/starford/ansuz/internal/apperr"
)

func testRegistry() *Registry {
	r := NewRegistry(nil)
	r.pick = func(int) int { return 0 } // deterministic color for tests
	return r
}

func TestEnsure_SynthesizesUnknownKey(t *testing.T) {
	r := testRegistry()
	c := r.Ensure("woodworking")
	if c.Name != "Woodworking" {
		t.Errorf("name = %q, want Woodworking", c.Name)
	}
	if c.Description != "Woodworking posts" {
		t.Errorf("description = %q", c.Description)
	}
	if c.Color != Palette[0] {
		t.Errorf("color = %q, want palette entry", c.Color)
	}
	if !r.Has("woodworking") {
		t.Error("synthesized entry not inserted")
	}
}

func TestEnsure_HyphenatedKey(t *testing.T) {
	r := testRegistry()
	c := r.Ensure("book-reviews")
	if c.Name != "Book Reviews" {
		t.Errorf("name = %q, want Book Reviews", c.Name)
	}
}

func TestEnsure_MultibyteKey(t *testing.T) {
	r := testRegistry()
	c := r.Ensure("édition-spéciale")
	if c.Name != "Édition Spéciale" {
		t.Errorf("name = %q, want Édition Spéciale", c.Name)
	}
}

func TestAll_ReturnsSnapshot(t *testing.T) {
	r := testRegistry()
	r.Ensure("woodworking")
	all := r.All()
	r.Ensure("gardening")
	if _, ok := all["gardening"]; ok {
		t.Error("snapshot reflects a later mutation")
	}
	if !r.Has("gardening") {
		t.Error("registry missing later entry")
	}
}

func TestEnsure_ExistingKeyUnchanged(t *testing.T) {
	r := NewRegistry(map[string]Category{
		"technical": {Name: "Custom Name", Description: "d", Color: "blue"},
	})
	c := r.Ensure("technical")
	if c.Name != "Custom Name" {
		t.Errorf("existing entry was replaced: %+v", c)
	}
}

func TestAdd(t *testing.T) {
	r := testRegistry()
	key, err := r.Add("Random Thoughts")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if key != "random-thoughts" {
		t.Errorf("key = %q, want random-thoughts", key)
	}
	c, _ := r.Get(key)
	if c.Name != "Random Thoughts" {
		t.Errorf("name = %q", c.Name)
	}
	if c.Description != "Random Thoughts posts" {
		t.Errorf("description = %q", c.Description)
	}
}

func TestAdd_Duplicate(t *testing.T) {
	r := testRegistry()
	if _, err := r.Add("Reviews"); err != nil {
		t.Fatal(err)
	}
	_, err := r.Add("Reviews")
	if !errors.Is(err, apperr.ErrDuplicateCategory) {
		t.Errorf("err = %v, want ErrDuplicateCategory", err)
	}
}

func TestAdd_EmptyKey(t *testing.T) {
	r := testRegistry()
	_, err := r.Add("!!!")
	var nameErr *InvalidNameError
	if !errors.As(err, &nameErr) {
		t.Errorf("err = %v, want InvalidNameError", err)
	}
}

func TestRemove_Guard(t *testing.T) {
	r := testRegistry()
	key, _ := r.Add("Reviews")

	if err := r.Remove(key, 2); !errors.Is(err, apperr.ErrCategoryInUse) {
		t.Errorf("err = %v, want ErrCategoryInUse", err)
	}
	if !r.Has(key) {
		t.Error("guarded remove must not delete the entry")
	}

	if err := r.Remove(key, 0); err != nil {
		t.Fatalf("Remove with zero posts: %v", err)
	}
	if r.Has(key) {
		t.Error("entry still present after remove")
	}
}

func TestRemove_Unknown(t *testing.T) {
	r := testRegistry()
	if err := r.Remove("ghost", 0); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
