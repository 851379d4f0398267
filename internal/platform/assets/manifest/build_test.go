package manifest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, name := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", name, err)
		}
		if err := os.WriteFile(full, []byte(name), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestBuild_RegistersEveryFile(t *testing.T) {
	root := t.TempDir()
	files := []string{
		"Velo Gallery/Hero-640w.webp",
		"Velo Gallery/Hero-1280w.webp",
		"logo.svg",
		"menus/Spring Menu.pdf",
		".well-known/apple-app-site-association",
		"img/.hero.png",
	}
	writeTree(t, root, files...)
	writeTree(t, root, ".DS_Store", "img/Thumbs.db", ".git/HEAD")

	result, err := Builder{Logf: func(string, ...any) {}}.Build(context.Background(), root)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if result.Files != len(files) {
		t.Fatalf("Files = %d, want %d", result.Files, len(files))
	}

	canonicals := map[string]bool{}
	for _, canonical := range result.Manifest.Canonicals() {
		canonicals[canonical] = true
	}
	for _, name := range files {
		if !canonicals["/"+name] {
			t.Fatalf("expected canonical /%s in %v", name, result.Manifest.Canonicals())
		}
		if got, ok := result.Manifest.Lookup("/" + name); !ok || got != "/"+name {
			t.Fatalf("Lookup(/%s) = (%q, %t), want identity", name, got, ok)
		}
	}
	for _, junk := range []string{"/.DS_Store", "/img/Thumbs.db", "/.git/HEAD"} {
		if canonicals[junk] {
			t.Fatalf("excluded entry %s was registered", junk)
		}
	}
}

func TestBuild_CollisionWarnings(t *testing.T) {
	tests := []struct {
		name        string
		files       []string
		key         string
		want        string
		warnings    int
		unreachable []string
	}{
		{
			name:     "width variants share a logical key",
			files:    []string{"img/hero-1280w.webp", "img/hero-640w.webp"},
			key:      "/img/hero",
			want:     "/img/hero-640w.webp",
			warnings: 0,
		},
		{
			name:        "logical key takes the only key of an extension-less file",
			files:       []string{"img/hero", "img/hero-640w.webp"},
			key:         "/img/hero",
			want:        "/img/hero-640w.webp",
			warnings:    1,
			unreachable: []string{"/img/hero"},
		},
		{
			name:     "exact key replaces a logical key",
			files:    []string{"a/Hero.png", "a/hero"},
			key:      "/a/hero",
			want:     "/a/hero",
			warnings: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeTree(t, root, tt.files...)

			var logged []string
			result, err := Builder{Logf: func(format string, args ...any) {
				logged = append(logged, fmt.Sprintf(format, args...))
			}}.Build(context.Background(), root)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if result.Files != len(tt.files) {
				t.Fatalf("Files = %d, want %d", result.Files, len(tt.files))
			}
			if got, _ := result.Manifest.Lookup(tt.key); got != tt.want {
				t.Fatalf("Lookup(%q) = %q, want %q", tt.key, got, tt.want)
			}
			if got := len(result.Warnings()); got != tt.warnings {
				t.Fatalf("Warnings() = %d, want %d (%+v)", got, tt.warnings, result.Collisions)
			}
			unreachable := result.Unreachable()
			if len(unreachable) != len(tt.unreachable) {
				t.Fatalf("Unreachable() = %v, want %v", unreachable, tt.unreachable)
			}
			for i := range tt.unreachable {
				if unreachable[i] != tt.unreachable[i] {
					t.Fatalf("Unreachable() = %v, want %v", unreachable, tt.unreachable)
				}
			}
			if want := tt.warnings + len(tt.unreachable); len(logged) != want {
				t.Fatalf("logged %d lines, want %d: %v", len(logged), want, logged)
			}
		})
	}
}

func TestBuild_WidthVariantsShareLogicalKey(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "Velo Gallery/Hero-640w.webp", "Velo Gallery/Hero-1280w.webp")

	var warnings []string
	result, err := Builder{Logf: func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}}.Build(context.Background(), root)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	// Lexical walk order visits "Hero-1280w" before "Hero-640w".
	got, ok := result.Manifest.Lookup("/Velo Gallery/Hero")
	if !ok || got != "/Velo Gallery/Hero-640w.webp" {
		t.Fatalf("Lookup(base) = (%q, %t), want last written width variant", got, ok)
	}
	if len(result.Collisions) == 0 {
		t.Fatal("expected logical collisions between width variants")
	}
	for _, c := range result.Collisions {
		if c.Kind != KeyLogical {
			t.Fatalf("unexpected %s collision on %q", c.Kind, c.Key)
		}
	}
	if len(result.Warnings()) != 0 || len(warnings) != 0 {
		t.Fatalf("expected no warnings for width variants, got %v", warnings)
	}
}

func TestBuild_WarnsOnCaseOnlyCollision(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "Photo.jpg", "photo.jpg")
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) < 2 {
		t.Skip("file system is case-insensitive")
	}

	var warnings []string
	result, err := Builder{Logf: func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}}.Build(context.Background(), root)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(result.Warnings()) == 0 || len(warnings) == 0 {
		t.Fatal("expected a collision warning")
	}
	if got, _ := result.Manifest.Lookup("/photo.jpg"); got != "/photo.jpg" {
		t.Fatalf("Lookup(/photo.jpg) = %q, want /photo.jpg", got)
	}
	if got, _ := result.Manifest.Lookup("/Photo.jpg"); got != "/Photo.jpg" {
		t.Fatalf("Lookup(/Photo.jpg) = %q, want /Photo.jpg", got)
	}
}

func TestBuild_EmptyTree(t *testing.T) {
	result, err := Build(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if result.Files != 0 || result.Manifest.Len() != 0 {
		t.Fatalf("expected empty result, got %d files, %d keys", result.Files, result.Manifest.Len())
	}
}

func TestBuild_IsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a/B.png", "a/b-320w.jpg", "c d/e.svg")

	first, err := Build(context.Background(), root)
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	second, err := Build(context.Background(), root)
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	a, err := Marshal(first.Manifest)
	if err != nil {
		t.Fatalf("marshal first: %v", err)
	}
	b, err := Marshal(second.Manifest)
	if err != nil {
		t.Fatalf("marshal second: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("expected identical artifacts for an unchanged tree")
	}
}

func TestBuild_RejectsBadRoot(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if _, err := Build(context.Background(), ""); !errors.Is(err, ErrRootRequired) {
		t.Fatalf("Build(\"\") error = %v, want %v", err, ErrRootRequired)
	}
	if _, err := Build(context.Background(), filepath.Join(dir, "missing")); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Build(missing) error = %v, want not exist", err)
	}
	if _, err := Build(context.Background(), file); !errors.Is(err, ErrRootNotDir) {
		t.Fatalf("Build(file) error = %v, want %v", err, ErrRootNotDir)
	}
}

func TestBuild_StopsOnCancelledContext(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.png")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Build(ctx, root); !errors.Is(err, context.Canceled) {
		t.Fatalf("Build() error = %v, want %v", err, context.Canceled)
	}
}
