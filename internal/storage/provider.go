// Package storage defines the site-tree file abstraction: the local
// directory holding raw, draft, published, and static blog files.
package storage

import "time"

// FileInfo is lightweight metadata for one file in the site tree.
type FileInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Provider is the interface for site-tree file operations. All paths are
// relative to the site root.
type Provider interface {
	// List returns metadata for every file under dir whose name ends
	// with ext (e.g. ".md", ".txt").
	List(dir, ext string) ([]FileInfo, error)
	// ListDirs returns the names of the immediate subdirectories of dir.
	ListDirs(dir string) ([]string, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent
	// directories as needed.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
}
