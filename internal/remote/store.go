// Package remote defines the blog's remote content store and its GitHub
// implementation. The remote repository holds the published site tree;
// every write carries the version token of the revision it replaces so
// concurrent edits surface as conflicts instead of silent overwrites.
package remote

import (
	"context"
	"errors"
)

// ContentKind tells PutFile how to treat the payload bytes.
type ContentKind int

const (
	// ContentText is UTF-8 text such as Markdown or JSON.
	ContentText ContentKind = iota
	// ContentBinary is raw bytes such as images.
	ContentBinary
)

// File is a fetched remote file together with the opaque version token
// that a subsequent PutFile or DeleteFile must present.
type File struct {
	Content      []byte
	VersionToken string
}

// Sentinel errors mapped from remote responses.
var (
	// ErrUnauthorized means the credential was rejected outright.
	ErrUnauthorized = errors.New("remote: unauthorized")
	// ErrForbidden means the credential is valid but lacks repository access.
	ErrForbidden = errors.New("remote: forbidden")
	// ErrNotFound means the requested path does not exist in the repository.
	ErrNotFound = errors.New("remote: file not found")
	// ErrStaleWrite means the presented version token no longer matches
	// the remote revision. Re-fetch and retry.
	ErrStaleWrite = errors.New("remote: stale version token")
)

// Store is the remote content repository. Implementations must return
// the sentinel errors above for the corresponding failure classes so
// callers can map them to user remediation.
type Store interface {
	// GetFile fetches path and its current version token.
	GetFile(ctx context.Context, path string) (*File, error)

	// PutFile creates or updates path. versionToken must be empty for a
	// create and must match the current revision for an update; message
	// becomes the change description.
	PutFile(ctx context.Context, path string, content []byte, kind ContentKind, versionToken, message string) (newToken string, err error)

	// DeleteFile removes path at the given revision.
	DeleteFile(ctx context.Context, path, versionToken, message string) error

	// CheckAccess verifies the credential can write to the repository.
	CheckAccess(ctx context.Context) error
}
