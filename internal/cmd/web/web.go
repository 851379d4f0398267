// Package web parses asset server flags and launches the server.
package web

import (
	"context"
	"flag"
	"fmt"

	"github.com/velo-events/site/internal/platform/assets/manifest"
	entrypoint "github.com/velo-events/site/internal/platform/cmd"
	"github.com/velo-events/site/internal/services/web"
)

// Config holds the web command configuration.
type Config struct {
	HTTPAddr     string `env:"WEB_HTTP_ADDR" envDefault:"localhost:8080"`
	PublicDir    string `env:"PUBLIC_DIR" envDefault:"public"`
	ManifestPath string `env:"MANIFEST_PATH" envDefault:"data/image-manifest.json"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.PublicDir, "public-dir", cfg.PublicDir, "Root of the public asset tree")
	fs.StringVar(&cfg.ManifestPath, "manifest", cfg.ManifestPath, "Image manifest artifact path")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run loads the manifest and serves the public tree until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceWeb, func(ctx context.Context) error {
		m, err := manifest.LoadFile(cfg.ManifestPath)
		if err != nil {
			return fmt.Errorf("load image manifest: %w", err)
		}
		server, err := web.NewServer(web.Config{
			HTTPAddr:  cfg.HTTPAddr,
			PublicDir: cfg.PublicDir,
			Manifest:  m,
		})
		if err != nil {
			return fmt.Errorf("init web server: %w", err)
		}
		defer server.Close()

		if err := server.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve web: %w", err)
		}
		return nil
	})
}
