package layers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hexbound/contentfs"
)

// Resolve turns a physical path supplied at startup into the matching
// store: a path with a zip extension is buffered fully into memory and
// indexed, anything else must be an existing directory. Errors here are
// meant to be fatal at startup, not deferred to the first read.
func Resolve(path string) (contentfs.FileSystem, error) {
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		buf, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("contentfs: read archive layer %q: %w", path, err)
		}

		return NewZip(buf)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("contentfs: resolve layer %q: %w", path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("contentfs: layer %q is neither a directory nor a zip archive", path)
	}

	return NewDisk(path), nil
}

// ResolveStack resolves each layer path earliest-first and combines them
// into a single overlay. The last path given ends up topmost.
func ResolveStack(paths ...string) (*Overlay, error) {
	stack := make([]contentfs.FileSystem, 0, len(paths))

	for _, path := range paths {
		layer, err := Resolve(path)
		if err != nil {
			return nil, err
		}
		stack = append(stack, layer)
	}

	return NewOverlay(stack...), nil
}
