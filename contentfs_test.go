package contentfs_test

import (
	"context"
	"errors"
	"testing"

	contentfs "github.com/hexbound/contentfs"
)

// byteStore serves fixed byte slices keyed by canonical path.
type byteStore map[string][]byte

func (bs byteStore) ReadDir(ctx context.Context, path string) ([]string, error) {
	return nil, contentfs.ErrNotExist
}

func (bs byteStore) ReadFile(ctx context.Context, path string) ([]byte, error) {
	buf, ok := bs[contentfs.Normalize(path)]
	if !ok {
		return nil, contentfs.ErrNotExist
	}
	return buf, nil
}

func (bs byteStore) Stat(ctx context.Context, path string) (contentfs.FileMetadata, error) {
	buf, ok := bs[contentfs.Normalize(path)]
	if !ok {
		return contentfs.FileMetadata{}, contentfs.ErrNotExist
	}
	return contentfs.FileMetadata{Size: int64(len(buf))}, nil
}

func (bs byteStore) Exists(ctx context.Context, path string) bool {
	_, ok := bs[contentfs.Normalize(path)]
	return ok
}

func TestReadText(t *testing.T) {
	ctx := context.Background()
	store := byteStore{
		"hello.txt":  []byte("hello world"),
		"broken.bin": {0xff, 0xfe, 0x00, 0x80},
	}

	t.Run("valid-utf8", func(tst *testing.T) {
		text, err := contentfs.ReadText(ctx, store, "/hello.txt")
		if err != nil {
			tst.Fatalf("ReadText failed: %v", err)
		}
		if text != "hello world" {
			tst.Errorf("Expected %q, got %q", "hello world", text)
		}
	})

	t.Run("invalid-utf8", func(tst *testing.T) {
		_, err := contentfs.ReadText(ctx, store, "broken.bin")
		if !errors.Is(err, contentfs.ErrRead) {
			tst.Errorf("Expected ErrRead, got %v", err)
		}
	})

	t.Run("missing", func(tst *testing.T) {
		_, err := contentfs.ReadText(ctx, store, "nope.txt")
		if !errors.Is(err, contentfs.ErrNotExist) {
			tst.Errorf("Expected ErrNotExist, got %v", err)
		}
	})
}
