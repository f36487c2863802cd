package index

import (
	"sort"
	"time"

	"github.com/starford/ansuz/internal/category"
	"github.com/starford/ansuz/internal/post"
)

// Warning describes a post skipped during a rebuild. Rebuild never fails;
// per-post problems are reported back so one bad document cannot block
// the index.
type Warning struct {
	PostID string
	Reason string
}

// Rebuild recomputes the index from the full set of known posts:
// categories referenced by posts but missing from the registry are
// synthesized, only published posts are listed, and entries are ordered
// by calendar date descending with scan order breaking ties.
//
// prev, when non-nil, supplies the latestUpdates side channel to carry
// over verbatim. Callers replacing it set the field on the result.
func Rebuild(posts []post.Post, registry *category.Registry, prev *LatestUpdates) (*Index, []Warning) {
	var warnings []Warning

	entries := make([]Entry, 0, len(posts))
	for _, p := range posts {
		if p.ID == "" {
			warnings = append(warnings, Warning{PostID: p.File, Reason: "post has no id"})
			continue
		}
		registry.Ensure(p.Category)
		if p.Status != post.StatusPublished {
			continue
		}
		entries = append(entries, Entry{ID: p.ID, Category: p.Category, File: p.File})
	}

	dates := make(map[string]time.Time, len(entries))
	for _, p := range posts {
		if t, ok := parseDate(p.Date); ok {
			dates[p.ID] = t
		} else if p.Status == post.StatusPublished {
			warnings = append(warnings, Warning{PostID: p.ID, Reason: "unparseable date: " + p.Date})
		}
	}

	// Calendar comparison, not lexical: dates were parsed above.
	// Undated posts sink to the bottom in scan order.
	sort.SliceStable(entries, func(i, j int) bool {
		return dates[entries[i].ID].After(dates[entries[j].ID])
	})

	ix := &Index{
		Categories: registry.All(),
		Posts:      entries,
	}
	if !prev.IsZero() {
		ix.LatestUpdates = prev
	}
	return ix, warnings
}

// parseDate accepts ISO dates with or without a time component.
func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
