// Package index builds and serializes the derived blog index: the single
// JSON artifact the public rendering path reads.
package index

import (
	"encoding/json"
	"fmt"

	"github.com/starford/ansuz/internal/category"
)

// Entry is one published post in the index.
type Entry struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	File     string `json:"file"`
}

// LatestUpdates is the free-text side channel shown on the landing page.
// The lists are most-recent-first and maintained independently of posts.
type LatestUpdates struct {
	Reading  []string `json:"reading,omitempty"`
	Watched  []string `json:"watched,omitempty"`
	Building []string `json:"building,omitempty"`
}

// IsZero reports whether no list has any entries.
func (u *LatestUpdates) IsZero() bool {
	return u == nil || (len(u.Reading) == 0 && len(u.Watched) == 0 && len(u.Building) == 0)
}

// Index is the persisted index document.
type Index struct {
	Categories    map[string]category.Category `json:"categories"`
	Posts         []Entry                      `json:"posts"`
	LatestUpdates *LatestUpdates               `json:"latestUpdates,omitempty"`
}

// Marshal renders the index as indented UTF-8 JSON, the on-disk and
// on-remote representation.
func (ix *Index) Marshal() ([]byte, error) {
	if ix.Posts == nil {
		ix.Posts = []Entry{}
	}
	if ix.Categories == nil {
		ix.Categories = map[string]category.Category{}
	}
	data, err := json.MarshalIndent(ix, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("index: marshal: %w", err)
	}
	return data, nil
}

// Unmarshal parses a persisted index document. Missing optional keys are
// tolerated; there is no schema version field.
func Unmarshal(data []byte) (*Index, error) {
	var ix Index
	if err := json.Unmarshal(data, &ix); err != nil {
		return nil, fmt.Errorf("index: unmarshal: %w", err)
	}
	if ix.Categories == nil {
		ix.Categories = map[string]category.Category{}
	}
	if ix.Posts == nil {
		ix.Posts = []Entry{}
	}
	return &ix, nil
}
