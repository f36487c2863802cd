// Package generator implements the site build pipeline: raw markdown is
// normalized into the categorized tree, reader copies are produced for
// published posts, asset directories are moved into place, and the site
// index is regenerated.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/starford/ansuz/internal/blog"
	"github.com/starford/ansuz/internal/category"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/post"
	"github.com/starford/ansuz/internal/storage"
)

// Result summarizes one Generate run.
type Result struct {
	// Generated counts raw documents successfully normalized.
	Generated int
	// Skipped counts raw documents that failed to build.
	Skipped int
	// Indexed counts published posts that made it into the index.
	Indexed int
	// PerCategory maps category keys to indexed post counts.
	PerCategory map[string]int
	// Warnings carries index rebuild diagnostics.
	Warnings []index.Warning
}

// Generator runs the build pipeline over a site tree.
type Generator struct {
	store  storage.Provider
	layout blog.Layout
	logger *slog.Logger
}

// New creates a Generator.
func New(store storage.Provider, layout blog.Layout, logger *slog.Logger) *Generator {
	return &Generator{store: store, layout: layout, logger: logger}
}

// Generate runs the full pipeline. Per-file build failures are logged
// and skipped so one malformed document never blocks the rest; the index
// rebuild itself cannot fail.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	res := &Result{PerCategory: make(map[string]int)}

	if err := g.intake(ctx, res); err != nil {
		return nil, err
	}
	if err := g.moveAssets(); err != nil {
		return nil, err
	}
	if err := g.rebuild(res); err != nil {
		return nil, err
	}

	for key, n := range res.PerCategory {
		g.logger.Info("category summary", slog.String("category", key), slog.Int("posts", n))
	}
	g.logger.Info("generate finished",
		slog.Int("generated", res.Generated),
		slog.Int("skipped", res.Skipped),
		slog.Int("indexed", res.Indexed))
	return res, nil
}

// intake normalizes every raw document into the categorized tree: the
// canonical encoding (with computed readTime) replaces whatever loose
// formatting the author used, and published posts get a reader copy.
func (g *Generator) intake(ctx context.Context, res *Result) error {
	infos, err := g.store.List(g.layout.RawDir, ".md")
	if err != nil {
		return fmt.Errorf("generator: scan raw: %w", err)
	}
	for _, fi := range infos {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := g.store.Read(fi.Path)
		if err != nil {
			g.logger.Warn("intake: read failed", slog.String("path", fi.Path), slog.String("error", err.Error()))
			res.Skipped++
			continue
		}
		p, err := post.Build(string(data), "")
		if err != nil {
			g.logger.Warn("intake: skipping document", slog.String("path", fi.Path), slog.String("error", err.Error()))
			res.Skipped++
			continue
		}

		encoded := []byte(p.Encode())
		dest := g.layout.PostPath(p.Category, p.ID)
		if p.Status == post.StatusDraft {
			dest = g.layout.DraftPath(p.ID)
		}
		if err := g.store.Write(dest, encoded); err != nil {
			return fmt.Errorf("generator: write %s: %w", dest, err)
		}
		if p.Status == post.StatusPublished {
			if err := g.store.Write(g.layout.StaticPath(p.Category, p.ID), encoded); err != nil {
				return fmt.Errorf("generator: write reader copy: %w", err)
			}
		}
		if err := g.store.Delete(fi.Path); err != nil {
			g.logger.Warn("intake: remove raw failed", slog.String("path", fi.Path), slog.String("error", err.Error()))
		}
		g.logger.Info("intake: generated",
			slog.String("id", p.ID),
			slog.String("category", p.Category),
			slog.String("status", string(p.Status)))
		res.Generated++
	}
	return nil
}

// moveAssets relocates images-* directories from the raw intake dir to
// the site root, next to the published tree.
func (g *Generator) moveAssets() error {
	dirs, err := g.store.ListDirs(g.layout.RawDir)
	if err != nil {
		return fmt.Errorf("generator: scan asset dirs: %w", err)
	}
	for _, dir := range dirs {
		if !strings.HasPrefix(dir, "images-") {
			continue
		}
		files, err := g.store.List(path.Join(g.layout.RawDir, dir), "")
		if err != nil {
			return fmt.Errorf("generator: scan %s: %w", dir, err)
		}
		for _, fi := range files {
			dest := strings.TrimPrefix(fi.Path, g.layout.RawDir+"/")
			if err := g.store.Move(fi.Path, dest); err != nil {
				return fmt.Errorf("generator: move asset: %w", err)
			}
		}
		g.logger.Info("assets moved", slog.String("dir", dir), slog.Int("files", len(files)))
	}
	return nil
}

// rebuild scans the published tree and regenerates blog-index.json,
// carrying over categories and the latest-updates block from the
// existing index.
func (g *Generator) rebuild(res *Result) error {
	entries := make(map[string]category.Category)
	var latest *index.LatestUpdates
	if data, err := g.store.Read(g.layout.IndexFile); err == nil {
		if prev, err := index.Unmarshal(data); err == nil {
			for k, c := range prev.Categories {
				entries[k] = c
			}
			latest = prev.LatestUpdates
		}
	}
	// A default entry applies only when its category directory exists on
	// disk; defaults absent from both the tree and the previous index
	// stay removed.
	if dirs, err := g.store.ListDirs(g.layout.PostsDir); err == nil {
		for _, dir := range dirs {
			if _, ok := entries[dir]; ok {
				continue
			}
			if c, ok := category.Defaults[dir]; ok {
				entries[dir] = c
			}
		}
	}
	registry := category.NewRegistry(entries)

	infos, err := g.store.List(g.layout.PostsDir, ".md")
	if err != nil {
		return fmt.Errorf("generator: scan posts: %w", err)
	}
	var posts []post.Post
	for _, fi := range infos {
		data, err := g.store.Read(fi.Path)
		if err != nil {
			g.logger.Warn("rebuild: read failed", slog.String("path", fi.Path), slog.String("error", err.Error()))
			continue
		}
		p, err := post.Build(string(data), "")
		if err != nil {
			g.logger.Warn("rebuild: skipping post", slog.String("path", fi.Path), slog.String("error", err.Error()))
			continue
		}
		p.File = g.layout.StaticPath(p.Category, p.ID)
		posts = append(posts, *p)
	}

	ix, warnings := index.Rebuild(posts, registry, latest)
	res.Warnings = warnings
	for _, w := range warnings {
		g.logger.Warn("rebuild: warning", slog.String("post", w.PostID), slog.String("reason", w.Reason))
	}

	data, err := ix.Marshal()
	if err != nil {
		return fmt.Errorf("generator: marshal index: %w", err)
	}
	if err := g.store.Write(g.layout.IndexFile, data); err != nil {
		return fmt.Errorf("generator: write index: %w", err)
	}

	res.Indexed = len(ix.Posts)
	for _, e := range ix.Posts {
		res.PerCategory[e.Category]++
	}
	return nil
}
