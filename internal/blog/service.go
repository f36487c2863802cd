// Package blog holds the coordinating service that owns the in-memory
// site state: the post set, the category registry, and the latest-updates
// block. All mutation goes through the service, which keeps the on-disk
// tree, the generated index, and the staging queue consistent.
package blog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/category"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/post"
	"github.com/starford/ansuz/internal/remote"
	"github.com/starford/ansuz/internal/staging"
	"github.com/starford/ansuz/internal/storage"
)

// EventFunc receives change notifications after a successful mutation.
// kind is one of "post.created", "post.updated", "post.deleted",
// "category.created", "category.deleted", "index.updated"; id names the
// post or category key involved (empty for index events).
type EventFunc func(kind, id string)

// Service coordinates storage, staging, the registry, and the remote.
type Service struct {
	store  storage.Provider
	staged staging.Store
	remote remote.Store // nil when no remote is configured
	layout Layout
	logger *slog.Logger
	notify EventFunc

	mu       sync.Mutex
	posts    map[string]*post.Post
	registry *category.Registry
	latest   *index.LatestUpdates
	last     *index.Index // index produced by the most recent rebuild
}

// NewService creates a blog service. rem may be nil when the deployment
// has no remote repository configured; sync and verification operations
// then fail with a clear error.
func NewService(store storage.Provider, staged staging.Store, rem remote.Store, layout Layout, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		staged:   staged,
		remote:   rem,
		layout:   layout,
		logger:   logger,
		posts:    make(map[string]*post.Post),
		registry: category.NewRegistry(nil),
		notify:   func(string, string) {},
	}
}

// SetNotify installs the change-event callback. Must be called before
// the service starts handling requests.
func (s *Service) SetNotify(fn EventFunc) {
	if fn != nil {
		s.notify = fn
	}
}

// Load reads the site tree into memory: the persisted index seeds the
// registry and latest-updates block, then every post source under the
// published and draft roots is parsed. Unreadable or invalid documents
// are logged and skipped so one bad file cannot take the service down.
func (s *Service) Load(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make(map[string]category.Category)
	s.latest = nil
	restored := false
	if data, err := s.store.Read(s.layout.IndexFile); err == nil {
		if ix, err := index.Unmarshal(data); err != nil {
			s.logger.Warn("load: index unreadable, reseeding", slog.String("error", err.Error()))
		} else {
			for k, c := range ix.Categories {
				entries[k] = c
			}
			s.latest = ix.LatestUpdates
			restored = true
		}
	}
	// The persisted index is the category source of truth; the default
	// set only seeds a site that has never been indexed. Reseeding it on
	// every reload would resurrect defaults the user removed.
	if !restored {
		for k, c := range category.Defaults {
			entries[k] = c
		}
	}
	s.registry = category.NewRegistry(entries)

	s.posts = make(map[string]*post.Post)
	if err := s.loadDirLocked(s.layout.PostsDir, false); err != nil {
		return err
	}
	if err := s.loadDirLocked(s.layout.DraftsDir, true); err != nil {
		return err
	}

	_, warnings := s.rebuildLocked(false)
	for _, w := range warnings {
		s.logger.Warn("load: index warning",
			slog.String("post", w.PostID),
			slog.String("reason", w.Reason))
	}
	s.logger.Info("site state loaded",
		slog.Int("posts", len(s.posts)),
		slog.Int("categories", s.registry.Len()))
	return nil
}

func (s *Service) loadDirLocked(dir string, draft bool) error {
	infos, err := s.store.List(dir, ".md")
	if err != nil {
		return fmt.Errorf("blog: scan %s: %w", dir, err)
	}
	for _, fi := range infos {
		data, err := s.store.Read(fi.Path)
		if err != nil {
			s.logger.Warn("load: read failed", slog.String("path", fi.Path), slog.String("error", err.Error()))
			continue
		}
		p, err := post.Build(string(data), "")
		if err != nil {
			s.logger.Warn("load: skipping invalid post", slog.String("path", fi.Path), slog.String("error", err.Error()))
			continue
		}
		if draft {
			p.Status = post.StatusDraft
			p.File = s.layout.DraftPath(p.ID)
		} else {
			p.File = s.layout.StaticPath(p.Category, p.ID)
		}
		s.posts[p.ID] = p
	}
	return nil
}

// Posts returns every loaded post sorted by id.
func (s *Service) Posts(_ context.Context) []*post.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*post.Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetPost returns the post with the given id.
func (s *Service) GetPost(_ context.Context, id string) (*post.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return p, nil
}

// SavePost builds a post from a raw markdown document and persists it:
// the canonical encoding is written to the tree, staged for remote sync,
// and the index is rebuilt. Index warnings are returned to the caller;
// they do not fail the save.
func (s *Service) SavePost(_ context.Context, raw string, suppliedID string) (*post.Post, []index.Warning, error) {
	p, err := post.Build(raw, suppliedID)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.posts[p.ID]
	created := existing == nil

	if p.Status == post.StatusDraft {
		p.File = s.layout.DraftPath(p.ID)
	} else {
		p.File = s.layout.StaticPath(p.Category, p.ID)
	}

	// A category or status change relocates the source file. Remove old
	// copies before writing new ones so the tree never holds both.
	if existing != nil {
		s.removeFilesLocked(existing)
	}

	encoded := []byte(p.Encode())
	if err := s.writePostLocked(p, encoded); err != nil {
		return nil, nil, err
	}

	s.registry.Ensure(p.Category)
	s.posts[p.ID] = p
	_, warnings := s.rebuildLocked(true)

	kind := "post.updated"
	if created {
		kind = "post.created"
	}
	s.notify(kind, p.ID)
	return p, warnings, nil
}

// DeletePost removes a post's files, stages the deletions, and rebuilds.
func (s *Service) DeletePost(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return apperr.ErrNotFound
	}
	s.removeFilesLocked(p)
	delete(s.posts, id)
	s.rebuildLocked(true)
	s.notify("post.deleted", id)
	return nil
}

// Publish moves a draft into the published tree: the source relocates to
// the category directory, a reader copy is written, and the status field
// disappears from the encoding (published is the unmarked state).
func (s *Service) Publish(_ context.Context, id string) (*post.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.posts[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if cur.Status == post.StatusPublished {
		return nil, apperr.ErrConflict
	}

	s.removeFilesLocked(cur)
	// Callers may still hold the old pointer, so the state change goes
	// through a fresh copy.
	p := *cur
	p.Status = post.StatusPublished
	p.File = s.layout.StaticPath(p.Category, p.ID)
	if err := s.writePostLocked(&p, []byte(p.Encode())); err != nil {
		return nil, err
	}
	s.posts[id] = &p
	s.rebuildLocked(true)
	s.notify("post.updated", id)
	return &p, nil
}

// Unpublish moves a published post back to the drafts root and removes
// its reader copy.
func (s *Service) Unpublish(_ context.Context, id string) (*post.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.posts[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if cur.Status == post.StatusDraft {
		return nil, apperr.ErrConflict
	}

	s.removeFilesLocked(cur)
	p := *cur
	p.Status = post.StatusDraft
	p.File = s.layout.DraftPath(p.ID)
	if err := s.writePostLocked(&p, []byte(p.Encode())); err != nil {
		return nil, err
	}
	s.posts[id] = &p
	s.rebuildLocked(true)
	s.notify("post.updated", id)
	return &p, nil
}

// writePostLocked writes a post's files for its current status and
// stages them for sync. Published posts get both the source and the
// reader copy.
func (s *Service) writePostLocked(p *post.Post, encoded []byte) error {
	paths := []string{s.sourcePath(p)}
	if p.Status == post.StatusPublished {
		paths = append(paths, s.layout.StaticPath(p.Category, p.ID))
	}
	for _, path := range paths {
		if err := s.store.Write(path, encoded); err != nil {
			return fmt.Errorf("blog: write %s: %w", path, err)
		}
		if err := s.staged.StagePut(path, encoded); err != nil {
			return fmt.Errorf("blog: stage %s: %w", path, err)
		}
	}
	return nil
}

// removeFilesLocked deletes a post's files and stages the deletions.
// Missing files are fine: a draft has no reader copy, and external edits
// may already have removed the source.
func (s *Service) removeFilesLocked(p *post.Post) {
	paths := []string{s.sourcePath(p)}
	if p.Status == post.StatusPublished {
		paths = append(paths, s.layout.StaticPath(p.Category, p.ID))
	}
	for _, path := range paths {
		if err := s.store.Delete(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("remove file failed", slog.String("path", path), slog.String("error", err.Error()))
		}
		if err := s.staged.StageDelete(path); err != nil {
			s.logger.Warn("stage delete failed", slog.String("path", path), slog.String("error", err.Error()))
		}
	}
}

func (s *Service) sourcePath(p *post.Post) string {
	if p.Status == post.StatusDraft {
		return s.layout.DraftPath(p.ID)
	}
	return s.layout.PostPath(p.Category, p.ID)
}

// Categories returns a snapshot of the current key → entry map.
func (s *Service) Categories(_ context.Context) map[string]category.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.All()
}

// AddCategory registers a new category and pushes a best-effort marker
// file so the remote directory exists before the first post lands in it.
// A marker failure is logged, never rolled back: the registry is the
// source of truth and the marker will be retried by the next sync.
func (s *Service) AddCategory(ctx context.Context, name string) (string, category.Category, error) {
	s.mu.Lock()
	key, err := s.registry.Add(name)
	if err != nil {
		s.mu.Unlock()
		return "", category.Category{}, err
	}
	entry, _ := s.registry.Get(key)
	s.rebuildLocked(true)

	marker := s.layout.CategoryMarker(key)
	content := []byte("# " + entry.Name + "\n\n" + entry.Description + "\n")
	if err := s.staged.StagePut(marker, content); err != nil {
		s.logger.Warn("stage category marker failed", slog.String("path", marker), slog.String("error", err.Error()))
	}
	s.mu.Unlock()

	if s.remote != nil {
		if _, err := s.remote.PutFile(ctx, marker, content, remote.ContentText, "", "Add category "+entry.Name); err != nil {
			s.logger.Warn("remote category marker failed",
				slog.String("path", marker),
				slog.String("error", err.Error()))
		} else {
			_ = s.staged.Clear(marker)
		}
	}

	s.notify("category.created", key)
	return key, entry, nil
}

// RemoveCategory deletes an empty category. The post count is computed
// from current state at call time; a category with posts is refused.
func (s *Service) RemoveCategory(ctx context.Context, key string) error {
	s.mu.Lock()
	count := 0
	for _, p := range s.posts {
		if p.Category == key {
			count++
		}
	}
	if err := s.registry.Remove(key, count); err != nil {
		s.mu.Unlock()
		return err
	}
	s.rebuildLocked(true)
	marker := s.layout.CategoryMarker(key)
	_ = s.staged.Clear(marker)
	s.mu.Unlock()

	if s.remote != nil {
		if f, err := s.remote.GetFile(ctx, marker); err == nil {
			if err := s.remote.DeleteFile(ctx, marker, f.VersionToken, "Remove category "+key); err != nil {
				s.logger.Warn("remote marker delete failed", slog.String("path", marker), slog.String("error", err.Error()))
			}
		}
	}

	s.notify("category.deleted", key)
	return nil
}

// LatestUpdates returns the current latest-updates block, or nil.
func (s *Service) LatestUpdates(_ context.Context) *index.LatestUpdates {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// SetLatestUpdates replaces the latest-updates block and persists it
// through an index rebuild.
func (s *Service) SetLatestUpdates(_ context.Context, lu index.LatestUpdates) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = &lu
	s.rebuildLocked(true)
	s.notify("index.updated", "")
}

// Index returns the index produced by the most recent rebuild.
func (s *Service) Index(_ context.Context) *index.Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// RebuildIndex regenerates and persists the index from current state.
func (s *Service) RebuildIndex(_ context.Context) (*index.Index, []index.Warning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ix, warnings := s.rebuildLocked(true)
	return ix, warnings, nil
}

// rebuildLocked regenerates the index from in-memory state. When persist
// is set the result is written to the tree and staged. Callers hold mu.
func (s *Service) rebuildLocked(persist bool) (*index.Index, []index.Warning) {
	posts := make([]post.Post, 0, len(s.posts))
	for _, p := range s.posts {
		posts = append(posts, *p)
	}
	// Deterministic input order keeps the date sort's tie-breaking stable
	// across rebuilds.
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })

	ix, warnings := index.Rebuild(posts, s.registry, s.latest)
	s.last = ix

	if persist {
		data, err := ix.Marshal()
		if err != nil {
			s.logger.Error("index marshal failed", slog.String("error", err.Error()))
			return ix, warnings
		}
		if err := s.store.Write(s.layout.IndexFile, data); err != nil {
			s.logger.Error("index write failed", slog.String("error", err.Error()))
		}
		if err := s.staged.StagePut(s.layout.IndexFile, data); err != nil {
			s.logger.Warn("index stage failed", slog.String("error", err.Error()))
		}
		s.notify("index.updated", "")
	}
	return ix, warnings
}

// UploadAsset stores an image (or other binary) under the site tree and
// stages it for sync. dir is a tree-relative directory such as
// "images-trip-report".
func (s *Service) UploadAsset(_ context.Context, dir, name string, data []byte) (string, error) {
	if strings.Contains(name, "/") || strings.Contains(name, "..") {
		return "", fmt.Errorf("blog: invalid asset name %q", name)
	}
	path := dir + "/" + name
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Write(path, data); err != nil {
		return "", err
	}
	if err := s.staged.StagePut(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// VerifyRemote checks that the configured credential can write to the
// remote repository.
func (s *Service) VerifyRemote(ctx context.Context) error {
	if s.remote == nil {
		return fmt.Errorf("blog: no remote configured")
	}
	return s.remote.CheckAccess(ctx)
}
