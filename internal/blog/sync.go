package blog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"

	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/remote"
	"github.com/starford/ansuz/internal/staging"
)

// SyncFailure is one staged edit that could not reach the remote.
type SyncFailure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// SyncReport summarizes one sync run. Failed entries stay staged and
// retry on the next run.
type SyncReport struct {
	Synced []string      `json:"synced"`
	Failed []SyncFailure `json:"failed"`
}

// SyncRemote pushes every staged edit to the remote store, one item at a
// time. Each write fetches a fresh version token immediately beforehand,
// and the staged entry is cleared only after the remote confirms the
// write, so an interruption at any point leaves the queue safe to retry.
// Failures are collected per item; one bad path does not stop the rest.
// Cancellation is checked between items, never mid-write.
func (s *Service) SyncRemote(ctx context.Context) (*SyncReport, error) {
	if s.remote == nil {
		return nil, fmt.Errorf("blog: no remote configured")
	}

	edits, err := s.staged.All()
	if err != nil {
		return nil, fmt.Errorf("blog: read staging queue: %w", err)
	}

	report := &SyncReport{Synced: []string{}, Failed: []SyncFailure{}}
	for _, e := range edits {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := s.syncOne(ctx, e); err != nil {
			s.logger.Warn("sync: item failed",
				slog.String("path", e.Path),
				slog.String("op", string(e.Op)),
				slog.String("error", err.Error()))
			report.Failed = append(report.Failed, SyncFailure{Path: e.Path, Reason: err.Error()})
			continue
		}
		if err := s.staged.Clear(e.Path); err != nil {
			s.logger.Warn("sync: clear failed", slog.String("path", e.Path), slog.String("error", err.Error()))
		}
		report.Synced = append(report.Synced, e.Path)
	}

	s.logger.Info("sync finished",
		slog.Int("synced", len(report.Synced)),
		slog.Int("failed", len(report.Failed)))
	return report, nil
}

func (s *Service) syncOne(ctx context.Context, e staging.Edit) error {
	switch e.Op {
	case staging.OpPut:
		token := ""
		f, err := s.remote.GetFile(ctx, e.Path)
		switch {
		case err == nil:
			if checksum.Match(f.Content, e.Checksum) {
				// Remote already holds these bytes; clearing is enough.
				return nil
			}
			token = f.VersionToken
		case errors.Is(err, remote.ErrNotFound):
			// First push of this path: create.
		default:
			return err
		}
		_, err = s.remote.PutFile(ctx, e.Path, e.Content, kindFor(e.Path), token, "Update "+e.Path)
		return err

	case staging.OpDelete:
		f, err := s.remote.GetFile(ctx, e.Path)
		if errors.Is(err, remote.ErrNotFound) {
			// Already gone remotely; nothing to do.
			return nil
		}
		if err != nil {
			return err
		}
		return s.remote.DeleteFile(ctx, e.Path, f.VersionToken, "Delete "+e.Path)

	default:
		return fmt.Errorf("blog: unknown staged op %q", e.Op)
	}
}

// kindFor picks the content kind from the file extension. The site tree
// holds text sources plus image assets.
func kindFor(p string) remote.ContentKind {
	switch path.Ext(p) {
	case ".md", ".txt", ".json", ".yml", ".yaml", ".html", ".css":
		return remote.ContentText
	default:
		return remote.ContentBinary
	}
}
