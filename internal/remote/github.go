package remote

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	gh "github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// Config describes the GitHub repository holding the site content.
type Config struct {
	// Token is a personal access token with contents read/write scope.
	Token string
	// Repo is the "owner/name" slug of the content repository.
	Repo string
	// Branch is the branch all reads and writes target.
	Branch string
	// BaseURL overrides the API endpoint. Used in tests.
	BaseURL string
}

// GitHub implements Store against the GitHub contents API. The blob SHA
// of each file serves as its version token.
type GitHub struct {
	client *gh.Client
	owner  string
	repo   string
	branch string
}

// Verify *GitHub satisfies Store at compile time.
var _ Store = (*GitHub)(nil)

// NewGitHub creates a Store backed by the configured GitHub repository.
func NewGitHub(ctx context.Context, cfg Config) (*GitHub, error) {
	owner, repo, ok := strings.Cut(cfg.Repo, "/")
	if !ok || owner == "" || repo == "" {
		return nil, fmt.Errorf("remote: repo must be owner/name, got %q", cfg.Repo)
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	tc := oauth2.NewClient(ctx, ts)
	client := gh.NewClient(tc)
	if cfg.BaseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(cfg.BaseURL, cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("remote: base url: %w", err)
		}
	}

	return &GitHub{
		client: client,
		owner:  owner,
		repo:   repo,
		branch: cfg.Branch,
	}, nil
}

// GetFile fetches a file from the content branch. The returned version
// token is the blob SHA GitHub expects on the next write.
func (g *GitHub) GetFile(ctx context.Context, path string) (*File, error) {
	fc, _, resp, err := g.client.Repositories.GetContents(ctx, g.owner, g.repo, path,
		&gh.RepositoryContentGetOptions{Ref: g.branch})
	if err != nil {
		return nil, g.mapError(resp, err, false)
	}
	if fc == nil {
		return nil, fmt.Errorf("remote: %s is a directory", path)
	}
	content, err := fc.GetContent()
	if err != nil {
		return nil, fmt.Errorf("remote: decode %s: %w", path, err)
	}
	return &File{
		Content:      []byte(content),
		VersionToken: fc.GetSHA(),
	}, nil
}

// PutFile creates or updates a file. An empty versionToken creates; a
// non-empty one must match the current blob SHA or the write fails with
// ErrStaleWrite. The transport encodes text and binary payloads the same
// way, so kind is accepted for interface symmetry but does not change
// the request.
func (g *GitHub) PutFile(ctx context.Context, path string, content []byte, _ ContentKind, versionToken, message string) (string, error) {
	opts := &gh.RepositoryContentFileOptions{
		Message: gh.String(message),
		Content: content,
		Branch:  gh.String(g.branch),
	}
	if versionToken != "" {
		opts.SHA = gh.String(versionToken)
	}

	res, resp, err := g.client.Repositories.CreateFile(ctx, g.owner, g.repo, path, opts)
	if err != nil {
		return "", g.mapError(resp, err, true)
	}
	return res.Content.GetSHA(), nil
}

// DeleteFile removes a file at the given revision.
func (g *GitHub) DeleteFile(ctx context.Context, path, versionToken, message string) error {
	opts := &gh.RepositoryContentFileOptions{
		Message: gh.String(message),
		SHA:     gh.String(versionToken),
		Branch:  gh.String(g.branch),
	}
	_, resp, err := g.client.Repositories.DeleteFile(ctx, g.owner, g.repo, path, opts)
	if err != nil {
		return g.mapError(resp, err, true)
	}
	return nil
}

// CheckAccess verifies the token can push to the content repository.
// GitHub reports an invisible repository as 404, which for our purposes
// means the token lacks access rather than that the repo is missing.
func (g *GitHub) CheckAccess(ctx context.Context) error {
	repo, resp, err := g.client.Repositories.Get(ctx, g.owner, g.repo)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return ErrForbidden
		}
		return g.mapError(resp, err, false)
	}
	if perms := repo.GetPermissions(); perms != nil && !perms["push"] {
		return ErrForbidden
	}
	return nil
}

// mapError converts GitHub API failures to the package sentinels. On
// writes, a 409 or 422 means the supplied blob SHA no longer matches the
// branch head.
func (g *GitHub) mapError(resp *gh.Response, err error, write bool) error {
	if resp == nil {
		return fmt.Errorf("remote: %w", err)
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict, http.StatusUnprocessableEntity:
		if write {
			return ErrStaleWrite
		}
	}
	return fmt.Errorf("remote: %w", err)
}
