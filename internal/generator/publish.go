package generator

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Publish runs Generate and then commits and pushes the site tree with
// git. root is the checkout directory; message becomes the commit
// message. When the tree is clean after generation there is nothing to
// publish and the push is skipped.
func (g *Generator) Publish(ctx context.Context, root, message string) (*Result, error) {
	res, err := g.Generate(ctx)
	if err != nil {
		return nil, err
	}
	if message == "" {
		message = "Update blog content"
	}

	if _, err := git(ctx, root, "add", "-A"); err != nil {
		return res, fmt.Errorf("generator: git add: %w", err)
	}

	status, err := git(ctx, root, "status", "--porcelain")
	if err != nil {
		return res, fmt.Errorf("generator: git status: %w", err)
	}
	if strings.TrimSpace(status) == "" {
		g.logger.Info("publish: nothing to commit")
		return res, nil
	}

	if _, err := git(ctx, root, "commit", "-m", message); err != nil {
		return res, fmt.Errorf("generator: git commit: %w", err)
	}
	if out, err := git(ctx, root, "push"); err != nil {
		g.logger.Error("publish: push failed, check remote access and pull first if the branch diverged",
			slog.String("output", out))
		return res, fmt.Errorf("generator: git push: %w", err)
	}

	g.logger.Info("publish: pushed", slog.String("message", message))
	return res, nil
}

// git runs one git command in dir and returns its combined output.
func git(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return out.String(), fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(out.String()))
	}
	return out.String(), nil
}
