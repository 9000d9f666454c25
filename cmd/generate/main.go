package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/DukeRupert/uphill/internal"
	"github.com/DukeRupert/uphill/internal/catalog"
	"github.com/DukeRupert/uphill/internal/handler"
	"github.com/DukeRupert/uphill/internal/sitegen"
	"github.com/DukeRupert/uphill/web"
)

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Flags win over the environment.
	cfg.DataDir = cmd.String("data")
	cfg.AssetsDir = cmd.String("assets")
	cfg.LocalStoragePath = cmd.String("output")
	cfg.StorageProvider = cmd.String("provider")
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := internal.NewLogger(os.Stdout, cfg)

	renderer, err := handler.NewRenderer(handler.RendererConfig{FS: web.Templates(), Logger: logger})
	if err != nil {
		return fmt.Errorf("renderer initialization failed: %w", err)
	}

	files, err := cfg.NewStorage(logger)
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}

	var assets fs.FS
	if cfg.AssetsDir != "" {
		if _, err := os.Stat(cfg.AssetsDir); err == nil {
			assets = os.DirFS(cfg.AssetsDir)
		} else {
			logger.Warn("assets directory not found, publishing pages only", "dir", cfg.AssetsDir)
		}
	}

	gen, err := sitegen.New(sitegen.Config{
		Data:     catalog.Source(cfg.DataDir),
		Assets:   assets,
		Static:   web.Static(),
		Renderer: renderer,
		Files:    files,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	if _, err := gen.Build(ctx); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	if !cmd.Bool("watch") {
		return nil
	}
	if cfg.DataDir == "" {
		return errors.New("--watch needs --data: the embedded datasets never change")
	}
	return gen.Watch(ctx, sitegen.WatchOptions{
		Dirs:  []string{cfg.DataDir},
		Delay: cmd.Duration("delay"),
	})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:   "generate",
		Usage:  "Render the uphill site to static files",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Directory holding resorts.json and trailmaps.yaml (embedded copies when empty)",
				Sources: cli.EnvVars("DATA_DIR"),
			},
			&cli.StringFlag{
				Name:    "assets",
				Aliases: []string{"a"},
				Usage:   "Directory holding images/ and trailmaps/",
				Value:   "./assets",
				Sources: cli.EnvVars("ASSETS_DIR"),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory for the local provider",
				Value:   "./dist",
				Sources: cli.EnvVars("OUTPUT_DIR"),
			},
			&cli.StringFlag{
				Name:    "provider",
				Usage:   "Storage provider: local or r2",
				Value:   "local",
				Sources: cli.EnvVars("STORAGE_PROVIDER"),
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Rebuild when the data files change",
			},
			&cli.DurationFlag{
				Name:  "delay",
				Usage: "Quiet period before a watched change triggers a rebuild",
				Value: sitegen.DefaultWatchDelay,
			},
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		slog.Error("generate failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
