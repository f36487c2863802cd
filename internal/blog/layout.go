package blog

import "path"

// Layout describes where the site tree keeps its files, relative to the
// storage root.
type Layout struct {
	// RawDir holds incoming markdown awaiting the generate pipeline.
	RawDir string
	// PostsDir holds published sources as <category>/<id>.md.
	PostsDir string
	// StaticDir holds the published copies served to readers, as
	// <category>/<id>.txt.
	StaticDir string
	// DraftsDir holds unpublished posts as <id>.md.
	DraftsDir string
	// IndexFile is the generated site index.
	IndexFile string
}

// DefaultLayout returns the conventional site tree.
func DefaultLayout() Layout {
	return Layout{
		RawDir:    "raw",
		PostsDir:  "blog",
		StaticDir: "static-blog",
		DraftsDir: "drafts",
		IndexFile: "blog-index.json",
	}
}

// PostPath returns the source path for a published post.
func (l Layout) PostPath(category, id string) string {
	return path.Join(l.PostsDir, category, id+".md")
}

// StaticPath returns the reader-facing copy of a published post. Index
// entries point here.
func (l Layout) StaticPath(category, id string) string {
	return path.Join(l.StaticDir, category, id+".txt")
}

// DraftPath returns the path for an unpublished post.
func (l Layout) DraftPath(id string) string {
	return path.Join(l.DraftsDir, id+".md")
}

// CategoryMarker returns the repository marker file that records a
// category's existence in the remote even before it has posts.
func (l Layout) CategoryMarker(key string) string {
	return path.Join(l.PostsDir, key, "README.md")
}
