// Package category maintains the set of known blog categories.
package category

import (
	"math/rand"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/post"
)

// Palette is the fixed set of presentation colors a category may use.
var Palette = []string{"blue", "purple", "orange", "green", "pink", "red", "yellow", "gray"}

// Category describes one category. The key is held by the registry, not
// the entry, mirroring the persisted index shape.
type Category struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// Defaults are the category entries seeded into a fresh registry.
var Defaults = map[string]Category{
	"technical":     {Name: "Technical", Description: "Programming, tutorials, technical insights", Color: "blue"},
	"philosophical": {Name: "Philosophical", Description: "Deep thoughts, ethics, life reflections", Color: "purple"},
	"random":        {Name: "Random Thoughts", Description: "Casual observations, personal musings", Color: "green"},
	"personal":      {Name: "Personal", Description: "Personal experiences and stories", Color: "pink"},
	"tutorials":     {Name: "Tutorials", Description: "Step-by-step guides and how-tos", Color: "indigo"},
	"reviews":       {Name: "Reviews", Description: "Book reviews, tool reviews, and opinions", Color: "yellow"},
	"adventure":     {Name: "Adventure", Description: "Travel stories, outdoor adventures, and explorations", Color: "orange"},
	"business":      {Name: "Business", Description: "Startup insights, product strategy, and business philosophy", Color: "green"},
}

// Registry holds category entries keyed by their stable keys.
//
// The registry has no locking of its own: it is owned by the coordinating
// blog service, which serializes access.
type Registry struct {
	entries map[string]Category
	pick    func(n int) int // index into Palette, swappable for tests
}

// NewRegistry creates a registry holding the given entries. A nil map
// starts the registry empty.
func NewRegistry(entries map[string]Category) *Registry {
	if entries == nil {
		entries = make(map[string]Category)
	}
	return &Registry{entries: entries, pick: rand.Intn}
}

// Get returns the entry for key and whether it exists.
func (r *Registry) Get(key string) (Category, bool) {
	c, ok := r.entries[key]
	return c, ok
}

// Has reports whether key is registered.
func (r *Registry) Has(key string) bool {
	_, ok := r.entries[key]
	return ok
}

// All returns a copy of the key → entry map. Callers may hold the
// result across later registry mutations.
func (r *Registry) All() map[string]Category {
	out := make(map[string]Category, len(r.entries))
	for k, c := range r.entries {
		out[k] = c
	}
	return out
}

// Len returns the number of registered categories.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Ensure returns the entry for key, synthesizing a default one if the key
// is unknown: display name from the key with hyphens as spaces, a
// "<name> posts" description, and a random palette color. The synthesized
// entry is inserted so the registry stays self-consistent with the posts
// that reference it.
func (r *Registry) Ensure(key string) Category {
	if c, ok := r.entries[key]; ok {
		return c
	}
	name := capitalizeWords(strings.ReplaceAll(key, "-", " "))
	c := Category{
		Name:        name,
		Description: name + " posts",
		Color:       Palette[r.pick(len(Palette))],
	}
	r.entries[key] = c
	return c
}

// Add registers a new category named name. The key is derived with the
// same normalization as post ids. Fails with ErrDuplicateCategory when
// the key is already present.
func (r *Registry) Add(name string) (string, error) {
	key := post.Slug(name)
	if key == "" {
		return "", &InvalidNameError{Name: name}
	}
	if _, ok := r.entries[key]; ok {
		return "", apperr.ErrDuplicateCategory
	}
	r.entries[key] = Category{
		Name:        name,
		Description: name + " posts",
		Color:       Palette[r.pick(len(Palette))],
	}
	return key, nil
}

// Remove deletes the category for key. postCount is the number of posts
// currently referencing the key; callers must recompute it immediately
// beforehand since the registry holds no back-references. Fails with
// ErrCategoryInUse when any post still references the key and with
// ErrNotFound when the key is unknown.
func (r *Registry) Remove(key string, postCount int) error {
	if _, ok := r.entries[key]; !ok {
		return apperr.ErrNotFound
	}
	if postCount > 0 {
		return apperr.ErrCategoryInUse
	}
	delete(r.entries, key)
	return nil
}

// InvalidNameError reports a category name that normalizes to an empty key.
type InvalidNameError struct {
	Name string
}

func (e *InvalidNameError) Error() string {
	return "category name yields empty key: " + e.Name
}

func capitalizeWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
