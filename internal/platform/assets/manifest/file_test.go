package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFile_DeterministicAndLoadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "nested", "image-manifest.json")
	m := Manifest{
		"/b & c.png": "/B & C.png",
		"/a.png":     "/A.png",
	}

	if err := WriteFile(path, m); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	want := "{\n  \"/a.png\": \"/A.png\",\n  \"/b & c.png\": \"/B & C.png\"\n}\n"
	if string(data) != want {
		t.Fatalf("artifact = %q, want %q", string(data), want)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if loaded.Len() != 2 || loaded["/b & c.png"] != "/B & C.png" {
		t.Fatalf("LoadFile() = %v", loaded)
	}
}

func TestWriteFile_OverwritesAndLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "image-manifest.json")
	if err := WriteFile(path, Manifest{"/old": "/old.png"}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteFile(path, Manifest{"/new": "/new.png"}); err != nil {
		t.Fatalf("second write: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if _, ok := loaded.Lookup("/old"); ok {
		t.Fatal("expected previous entries to be replaced")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the artifact in %s, got %d entries", dir, len(entries))
	}
}

func TestWriteFile_RequiresPath(t *testing.T) {
	if err := WriteFile(" ", Manifest{}); err != ErrPathRequired {
		t.Fatalf("WriteFile() error = %v, want %v", err, ErrPathRequired)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(strings.NewReader("{not json")); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected open error")
	}
	if _, err := LoadFile(""); err != ErrPathRequired {
		t.Fatalf("LoadFile(\"\") error = %v, want %v", err, ErrPathRequired)
	}
}

func TestLoad_NullIsEmpty(t *testing.T) {
	m, err := Load(strings.NewReader("null"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m == nil || m.Len() != 0 {
		t.Fatalf("Load(null) = %v, want empty manifest", m)
	}
}

func TestCanonicals_SortedAndDistinct(t *testing.T) {
	m := Manifest{"/b": "/B.png", "/b.png": "/B.png", "/a": "/A.png"}
	got := m.Canonicals()
	if len(got) != 2 || got[0] != "/A.png" || got[1] != "/B.png" {
		t.Fatalf("Canonicals() = %v", got)
	}
}
