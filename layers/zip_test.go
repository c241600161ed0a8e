package layers

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/hexbound/contentfs"
)

// buildZip assembles an in-memory archive from name -> content pairs, in
// the given order. Names ending in "/" become explicit directory records.
func buildZip(t *testing.T, names []string, contents map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	for _, name := range names {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("Create %s failed: %v", name, err)
		}
		if body, ok := contents[name]; ok {
			if _, err := f.Write([]byte(body)); err != nil {
				t.Fatalf("Write %s failed: %v", name, err)
			}
		}
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close archive failed: %v", err)
	}

	return buf.Bytes()
}

func TestZip_RootPrefixStripped(t *testing.T) {
	ctx := context.Background()
	buf := buildZip(t,
		[]string{"mygame/", "mygame/game.json", "mygame/assets/a.png"},
		map[string]string{"mygame/game.json": `{"identifier":"demo"}`},
	)

	z, err := NewZip(buf)
	if err != nil {
		t.Fatalf("NewZip failed: %v", err)
	}

	body, err := z.ReadFile(ctx, "game.json")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(body) != `{"identifier":"demo"}` {
		t.Errorf("Unexpected contents: %q", body)
	}

	if z.Exists(ctx, "mygame/game.json") {
		t.Error("Wrapper segment should not be addressable")
	}

	meta, err := z.Stat(ctx, "assets/a.png")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if meta.IsDir {
		t.Error("assets/a.png should not be a directory")
	}
}

func TestZip_PartialRootPrefixNotStripped(t *testing.T) {
	ctx := context.Background()

	// A loose root-level file next to a nested folder disables stripping.
	buf := buildZip(t,
		[]string{"mygame/game.json", "readme.txt"},
		map[string]string{"readme.txt": "hi"},
	)

	z, err := NewZip(buf)
	if err != nil {
		t.Fatalf("NewZip failed: %v", err)
	}

	if !z.Exists(ctx, "mygame/game.json") {
		t.Error("Nested path should keep its first segment")
	}
	if !z.Exists(ctx, "readme.txt") {
		t.Error("Root-level file should exist")
	}
	if z.Exists(ctx, "game.json") {
		t.Error("No stripping should have happened")
	}
}

func TestZip_SyntheticDirectories(t *testing.T) {
	ctx := context.Background()

	// No explicit record for "a" or "a/b".
	buf := buildZip(t,
		[]string{"a/b/c.txt"},
		map[string]string{"a/b/c.txt": "deep"},
	)

	z, err := NewZip(buf)
	if err != nil {
		t.Fatalf("NewZip failed: %v", err)
	}

	for _, dir := range []string{"a", "a/b"} {
		if !z.Exists(ctx, dir) {
			t.Errorf("Expected synthesized directory %q to exist", dir)
		}

		meta, err := z.Stat(ctx, dir)
		if err != nil {
			t.Fatalf("Stat %q failed: %v", dir, err)
		}
		if !meta.IsDir {
			t.Errorf("Expected %q to be a directory", dir)
		}
		if meta.Size != 0 {
			t.Errorf("Expected zero size for %q, got %d", dir, meta.Size)
		}
	}

	entries, err := z.ReadDir(ctx, "a")
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if !reflect.DeepEqual(entries, []string{"a/b"}) {
		t.Errorf("Expected [a/b], got %v", entries)
	}
}

func TestZip_ReadDir(t *testing.T) {
	ctx := context.Background()
	buf := buildZip(t,
		[]string{"g/", "g/b.txt", "g/a.txt", "g/sub/", "g/sub/x.txt"},
		map[string]string{"g/b.txt": "b", "g/a.txt": "a", "g/sub/x.txt": "x"},
	)

	z, err := NewZip(buf)
	if err != nil {
		t.Fatalf("NewZip failed: %v", err)
	}

	entries, err := z.ReadDir(ctx, "/")
	if err != nil {
		t.Fatalf("ReadDir root failed: %v", err)
	}

	want := []string{"a.txt", "b.txt", "sub"}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("Expected %v, got %v", want, entries)
	}

	if _, err := z.ReadDir(ctx, "missing"); !errors.Is(err, contentfs.ErrNotExist) {
		t.Errorf("Expected ErrNotExist, got %v", err)
	}
}

func TestZip_ReadFileFailures(t *testing.T) {
	ctx := context.Background()
	buf := buildZip(t,
		[]string{"g/", "g/dir/", "g/dir/f.txt"},
		map[string]string{"g/dir/f.txt": "data"},
	)

	z, err := NewZip(buf)
	if err != nil {
		t.Fatalf("NewZip failed: %v", err)
	}

	if _, err := z.ReadFile(ctx, "dir"); !errors.Is(err, contentfs.ErrNotExist) {
		t.Errorf("Reading a directory should fail with ErrNotExist, got %v", err)
	}
	if _, err := z.ReadFile(ctx, "dir/missing.txt"); !errors.Is(err, contentfs.ErrNotExist) {
		t.Errorf("Expected ErrNotExist, got %v", err)
	}
	if _, err := z.ReadFile(ctx, "../dir/../dir/f.txt"); err != nil {
		t.Errorf("Normalized read should succeed, got %v", err)
	}
}

func TestZip_Corrupt(t *testing.T) {
	if _, err := NewZip([]byte("this is not a zip archive")); err == nil {
		t.Error("Expected construction to fail on garbage input")
	}
}
