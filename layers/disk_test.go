package layers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"github.com/hexbound/contentfs"
)

// writeTree materializes canonical path -> content pairs under a fresh
// temporary directory.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()

	base := t.TempDir()
	for path, content := range files {
		real := filepath.Join(base, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(real), 0o755); err != nil {
			t.Fatalf("MkdirAll failed: %v", err)
		}
		if err := os.WriteFile(real, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}

	return base
}

func TestDisk_ReadDir(t *testing.T) {
	ctx := context.Background()
	base := writeTree(t, map[string]string{
		"config.json":     "{}",
		"assets/a.png":    "png",
		"assets/b.png":    "png",
		"assets/sub/x.rn": "script",
	})
	d := NewDisk(base)

	entries, err := d.ReadDir(ctx, "assets")
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	sort.Strings(entries)

	want := []string{"assets/a.png", "assets/b.png", "assets/sub"}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("Expected %v, got %v", want, entries)
	}

	if _, err := d.ReadDir(ctx, "missing"); !errors.Is(err, contentfs.ErrNotExist) {
		t.Errorf("Expected ErrNotExist, got %v", err)
	}
}

func TestDisk_ReadFile(t *testing.T) {
	ctx := context.Background()
	base := writeTree(t, map[string]string{"scripts/main.rn": "pub fn main() {}"})
	d := NewDisk(base)

	body, err := d.ReadFile(ctx, "/scripts/main.rn")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(body) != "pub fn main() {}" {
		t.Errorf("Unexpected contents: %q", body)
	}

	if _, err := d.ReadFile(ctx, "scripts/other.rn"); !errors.Is(err, contentfs.ErrNotExist) {
		t.Errorf("Expected ErrNotExist, got %v", err)
	}
}

func TestDisk_StatAndExists(t *testing.T) {
	ctx := context.Background()
	base := writeTree(t, map[string]string{"data/file.bin": "12345"})
	d := NewDisk(base)

	meta, err := d.Stat(ctx, "data/file.bin")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if meta.IsDir || meta.Size != 5 {
		t.Errorf("Unexpected metadata: %+v", meta)
	}

	meta, err = d.Stat(ctx, "data")
	if err != nil {
		t.Fatalf("Stat dir failed: %v", err)
	}
	if !meta.IsDir {
		t.Error("Expected directory metadata")
	}

	if !d.Exists(ctx, "data/file.bin") || !d.Exists(ctx, "") {
		t.Error("Existing paths should report true")
	}
	if d.Exists(ctx, "data/nope.bin") {
		t.Error("Missing path should report false")
	}
}

func TestDisk_EscapeAttemptStaysInsideBase(t *testing.T) {
	ctx := context.Background()
	base := writeTree(t, map[string]string{"inner.txt": "inside"})

	// A sibling file outside the base directory must stay unreachable.
	outside := filepath.Join(filepath.Dir(base), "outside.txt")
	if err := os.WriteFile(outside, []byte("outside"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	d := NewDisk(base)
	if d.Exists(ctx, "../outside.txt") {
		t.Error("Parent segments must not escape the base directory")
	}
	if !d.Exists(ctx, "../inner.txt") {
		t.Error("Pop-at-root should leave the path at the base directory")
	}
}
