package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/ansuz/internal"
	"github.com/starford/ansuz/internal/blog"
	"github.com/starford/ansuz/internal/generator"
	"github.com/starford/ansuz/internal/mcpserver"
	"github.com/starford/ansuz/internal/staging"
	"github.com/starford/ansuz/internal/storage"
	pkgconfig "github.com/starford/ansuz/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func generate(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))

	store, err := storage.NewFS(cfg.Site.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	gen := generator.New(store, blog.DefaultLayout(), logger)
	res, err := gen.Generate(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("generated %d posts (%d skipped), indexed %d\n", res.Generated, res.Skipped, res.Indexed)
	return nil
}

func publish(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))

	store, err := storage.NewFS(cfg.Site.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	gen := generator.New(store, blog.DefaultLayout(), logger)
	res, err := gen.Publish(ctx, cfg.Site.Path, cmd.String("message"))
	if err != nil {
		return err
	}

	fmt.Printf("published %d posts (%d skipped)\n", res.Generated, res.Skipped)
	return nil
}

// serveMCP exposes the blog over MCP stdio. Logs go to stderr because
// stdout carries the protocol stream.
func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))

	if err := os.MkdirAll(cfg.Site.Path, 0o755); err != nil {
		return fmt.Errorf("create site dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Site.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	staged, err := staging.Open(cfg.Staging.Path)
	if err != nil {
		return fmt.Errorf("init staging: %w", err)
	}
	defer staged.Close()

	svc := blog.NewService(store, staged, nil, blog.DefaultLayout(), logger)
	if err := svc.Load(ctx); err != nil {
		return fmt.Errorf("load site: %w", err)
	}

	return mcpserver.New(svc).ServeStdio()
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:  "ansuz",
		Usage: "Markdown blog engine with a GitHub-backed publishing pipeline",
		Flags: []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the admin HTTP server",
				Action: serve,
			},
			{
				Name:   "generate",
				Usage:  "Normalize raw posts and rebuild the site index",
				Action: generate,
			},
			{
				Name:   "publish",
				Usage:  "Generate the site and push it with git",
				Action: publish,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "message",
						Aliases: []string{"m"},
						Usage:   "Commit message",
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve the blog over MCP on stdio",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
