package manifest

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/velo-events/site/internal/platform/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("internal/platform/assets/manifest")

// ExcludedNames are operating-system artifacts that are never registered.
// Every other file, dotfiles included, is part of the asset tree.
var ExcludedNames = []string{".DS_Store", "Thumbs.db", "desktop.ini", ".git"}

// Collision records a key that was registered by two different files. The
// later file in walk order wins.
type Collision struct {
	Key  string
	Kind KeyKind
	// PreviousKind is how the overwritten file held the key.
	PreviousKind KeyKind
	Previous     string
	Winner       string
}

// Result is the outcome of one asset tree scan.
type Result struct {
	Manifest   Manifest
	Files      int
	Collisions []Collision
}

// Warnings returns the collisions that make a file harder or impossible to
// reach: either side held the key as an exact key, or the overwritten file
// was left with no key at all. Collisions between two logical keys are
// expected, since every width variant and every format of one image shares
// the same extension-less key.
func (r Result) Warnings() []Collision {
	live := r.reachable()
	var out []Collision
	for _, c := range r.Collisions {
		_, reachable := live[c.Previous]
		if c.Kind == KeyExact || c.PreviousKind == KeyExact || !reachable {
			out = append(out, c)
		}
	}
	return out
}

// Unreachable returns the files that lost every key to later files, in walk
// order.
func (r Result) Unreachable() []string {
	live := r.reachable()
	var out []string
	seen := make(map[string]struct{})
	for _, c := range r.Collisions {
		if _, ok := live[c.Previous]; ok {
			continue
		}
		if _, ok := seen[c.Previous]; ok {
			continue
		}
		seen[c.Previous] = struct{}{}
		out = append(out, c.Previous)
	}
	return out
}

// reachable returns the canonical paths that still own at least one key.
func (r Result) reachable() map[string]struct{} {
	live := make(map[string]struct{}, len(r.Manifest))
	for _, canonical := range r.Manifest {
		live[canonical] = struct{}{}
	}
	return live
}

// Builder scans an asset tree into a Manifest.
type Builder struct {
	// Logf receives collision warnings. Defaults to log.Printf.
	Logf func(format string, args ...any)
}

// Build scans root with the default Builder.
func Build(ctx context.Context, root string) (Result, error) {
	return Builder{}.Build(ctx, root)
}

// Build walks root in lexical order and registers every key variant of every
// file. Entries named in ExcludedNames are skipped. Any walk error aborts the
// build; no partial result is returned.
func (b Builder) Build(ctx context.Context, root string) (result Result, err error) {
	ctx, span := tracer.Start(ctx, "manifest.build")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	root = strings.TrimSpace(root)
	if root == "" {
		return Result{}, ErrRootRequired
	}
	info, err := os.Stat(root)
	if err != nil {
		return Result{}, fmt.Errorf("stat asset root: %w", err)
	}
	if !info.IsDir() {
		return Result{}, fmt.Errorf("%w: %s", ErrRootNotDir, root)
	}
	span.SetAttributes(attribute.String("asset.root", root))

	m := make(Manifest)
	kinds := make(map[string]KeyKind)
	var collisions []Collision
	files := 0
	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p != root && excluded(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isFileEntry(d) {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		canonical := "/" + filepath.ToSlash(rel)
		for _, key := range Keys(canonical) {
			if previous, ok := m[key.Value]; ok && previous != canonical {
				collisions = append(collisions, Collision{
					Key:          key.Value,
					Kind:         key.Kind,
					PreviousKind: kinds[key.Value],
					Previous:     previous,
					Winner:       canonical,
				})
			}
			m[key.Value] = canonical
			kinds[key.Value] = key.Kind
		}
		files++
		return nil
	})
	if walkErr != nil {
		return Result{}, fmt.Errorf("scan asset root %s: %w", root, walkErr)
	}

	result = Result{Manifest: m, Files: files, Collisions: collisions}
	logf := b.Logf
	if logf == nil {
		logf = log.Printf
	}
	for _, c := range result.Warnings() {
		logf("manifest: key %q now maps to %q (was %q)", c.Key, c.Winner, c.Previous)
	}
	for _, canonical := range result.Unreachable() {
		logf("manifest: %q has no keys left", canonical)
	}
	span.SetAttributes(
		attribute.Int("asset.files", files),
		attribute.Int("manifest.keys", len(m)),
		attribute.Int("manifest.collisions", len(collisions)),
	)
	return result, nil
}

func excluded(name string) bool {
	return slices.Contains(ExcludedNames, name)
}

// isFileEntry reports whether d is a regular file or a symlink.
func isFileEntry(d fs.DirEntry) bool {
	mode := d.Type()
	return mode.IsRegular() || mode&fs.ModeSymlink != 0
}
