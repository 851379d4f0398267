// Package assetcheck audits rendered HTML for image references the manifest
// cannot certify and, optionally, for images without a blur placeholder.
package assetcheck

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/velo-events/site/internal/platform/assets/imagemeta"
	"github.com/velo-events/site/internal/platform/assets/manifest"
	"github.com/velo-events/site/internal/platform/assets/resolve"
	entrypoint "github.com/velo-events/site/internal/platform/cmd"
)

// ErrUnresolved is returned in strict mode when any reference is unresolved.
var ErrUnresolved = errors.New("unresolved asset references")

// Config holds the audit configuration.
type Config struct {
	DocsDir      string `env:"DOCS_DIR" envDefault:"out"`
	ManifestPath string `env:"MANIFEST_PATH" envDefault:"data/image-manifest.json"`
	MetaBaseURL  string `env:"META_BASE_URL"`
	Strict       bool   `env:"ASSETCHECK_STRICT"`
}

// Problem classifies a finding.
type Problem string

const (
	ProblemUnresolved    Problem = "unresolved"
	ProblemNoPlaceholder Problem = "no-placeholder"
)

// Reference is one asset URL found in a document.
type Reference struct {
	Document string
	Tag      string
	Attr     string
	URL      string
}

// Finding is a reference that failed a check.
type Finding struct {
	Reference
	Problem  Problem
	Resolved string
}

// Report summarizes an audit.
type Report struct {
	Documents  int
	References int
	Findings   []Finding
}

// Count returns the number of findings with problem p.
func (r Report) Count(p Problem) int {
	n := 0
	for _, f := range r.Findings {
		if f.Problem == p {
			n++
		}
	}
	return n
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DocsDir, "docs", cfg.DocsDir, "Directory of rendered HTML documents")
	fs.StringVar(&cfg.ManifestPath, "manifest", cfg.ManifestPath, "Image manifest artifact path")
	fs.StringVar(&cfg.MetaBaseURL, "meta-base-url", cfg.MetaBaseURL, "Site origin used to fetch metadata sidecars (empty skips the placeholder check)")
	fs.BoolVar(&cfg.Strict, "strict", cfg.Strict, "Fail when any reference is unresolved")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run loads the manifest, audits the documents and prints the findings.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceAssetCheck, func(ctx context.Context) error {
		m, err := manifest.LoadFile(cfg.ManifestPath)
		if err != nil {
			return err
		}
		var cache *imagemeta.Cache
		if strings.TrimSpace(cfg.MetaBaseURL) != "" {
			cache = imagemeta.NewCache(imagemeta.HTTPFetcher{}, cfg.MetaBaseURL)
		}
		report, err := Check(ctx, cfg.DocsDir, resolve.New(m), cache)
		if err != nil {
			return err
		}
		for _, f := range report.Findings {
			fmt.Fprintf(out, "%s\t%s\t<%s %s>\t%s\n", f.Problem, f.Document, f.Tag, f.Attr, f.URL)
		}
		unresolved := report.Count(ProblemUnresolved)
		fmt.Fprintf(out, "Checked %d references in %d documents: %d unresolved, %d missing placeholders\n",
			report.References, report.Documents, unresolved, report.Count(ProblemNoPlaceholder))
		if cfg.Strict && unresolved > 0 {
			return fmt.Errorf("%w: %d", ErrUnresolved, unresolved)
		}
		return nil
	})
}

// Check audits every .html/.htm document under docsDir. A nil cache skips
// the placeholder check. Each image base path is checked for a placeholder
// once.
func Check(ctx context.Context, docsDir string, resolver *resolve.Resolver, cache *imagemeta.Cache) (Report, error) {
	var report Report
	checkedBases := make(map[string]bool)
	err := filepath.WalkDir(docsDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p != docsDir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isDocument(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(docsDir, p)
		if err != nil {
			return err
		}
		doc := filepath.ToSlash(rel)
		refs, err := readReferences(p)
		if err != nil {
			return fmt.Errorf("parse %s: %w", doc, err)
		}
		report.Documents++

		for _, ref := range refs {
			if resolve.IsPassthrough(ref.URL) {
				continue
			}
			ref.Document = doc
			report.References++

			resolved, ok := resolver.Lookup(siteRelative(doc, ref.URL))
			if !ok {
				report.Findings = append(report.Findings, Finding{Reference: ref, Problem: ProblemUnresolved})
				continue
			}
			if cache == nil {
				continue
			}
			canonical := stripSuffix(resolved)
			if !isImage(canonical) {
				continue
			}
			base := imagemeta.BasePath(canonical)
			if checkedBases[base] {
				continue
			}
			checkedBases[base] = true
			if cache.Get(ctx, base).Placeholder == "" {
				report.Findings = append(report.Findings, Finding{Reference: ref, Problem: ProblemNoPlaceholder, Resolved: canonical})
			}
		}
		return nil
	})
	if err != nil {
		return Report{}, fmt.Errorf("scan documents: %w", err)
	}
	return report, nil
}

func readReferences(p string) ([]Reference, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ExtractReferences(f)
}

// siteRelative turns a document-relative reference into a site-root one.
func siteRelative(doc, ref string) string {
	trimmed := strings.TrimSpace(ref)
	if strings.HasPrefix(trimmed, "/") {
		return ref
	}
	return path.Join("/", path.Dir(doc), trimmed)
}

func stripSuffix(p string) string {
	if idx := strings.IndexAny(p, "?#"); idx >= 0 {
		return p[:idx]
	}
	return p
}

func isDocument(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return true
	}
	return false
}

func isImage(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	for _, candidate := range resolve.CandidateExtensions {
		if ext == candidate {
			return true
		}
	}
	return false
}
