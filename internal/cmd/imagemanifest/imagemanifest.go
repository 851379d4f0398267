// Package imagemanifest parses builder flags and writes the image manifest.
package imagemanifest

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/velo-events/site/internal/platform/assets/manifest"
	entrypoint "github.com/velo-events/site/internal/platform/cmd"
)

// Config holds the manifest builder configuration.
type Config struct {
	PublicDir    string `env:"PUBLIC_DIR" envDefault:"public"`
	ManifestPath string `env:"MANIFEST_PATH" envDefault:"data/image-manifest.json"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.PublicDir, "public-dir", cfg.PublicDir, "Root of the public asset tree")
	fs.StringVar(&cfg.ManifestPath, "out", cfg.ManifestPath, "Manifest artifact path")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run scans the public tree and replaces the manifest artifact.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceImageManifest, func(ctx context.Context) error {
		result, err := manifest.Build(ctx, cfg.PublicDir)
		if err != nil {
			return fmt.Errorf("build manifest: %w", err)
		}
		if err := manifest.WriteFile(cfg.ManifestPath, result.Manifest); err != nil {
			return fmt.Errorf("write manifest: %w", err)
		}
		fmt.Fprintf(out, "Wrote %d manifest entries (%d files) to %s\n", result.Manifest.Len(), result.Files, cfg.ManifestPath)
		if warnings := result.Warnings(); len(warnings) > 0 {
			fmt.Fprintf(out, "%d keys were claimed by more than one file; the last file scanned won\n", len(warnings))
		}
		for _, canonical := range result.Unreachable() {
			fmt.Fprintf(out, "%s has no keys left and cannot be resolved\n", canonical)
		}
		return nil
	})
}
