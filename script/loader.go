// Package script resolves and loads script sources off a content
// filesystem. It owns only the lookup policy — probing `<path>/mod.<ext>`
// before `<path>.<ext>` — and a source cache; compiling and running the
// sources is the host's business.
package script

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hexbound/contentfs"
)

// DefaultExtension is the script file extension used when none is given.
const DefaultExtension = "rn"

// Loader resolves logical module paths against a content filesystem and
// caches loaded sources by their resolved path.
type Loader struct {
	fs  contentfs.FileSystem
	ext string

	mu    sync.RWMutex
	cache map[string]string
}

// NewLoader creates a loader over fsys. ext is the script file extension
// without the dot; empty means DefaultExtension.
func NewLoader(fsys contentfs.FileSystem, ext string) *Loader {
	if ext == "" {
		ext = DefaultExtension
	}

	return &Loader{
		fs:    fsys,
		ext:   ext,
		cache: make(map[string]string),
	}
}

// Resolve maps a logical item to the file that provides it. root is the
// importing script's path; its file name is popped off and each item
// segment appended, then `<dir>/mod.<ext>` is probed before `<dir>.<ext>`.
// Whichever exists first wins.
func (l *Loader) Resolve(ctx context.Context, root string, segments ...string) (string, error) {
	base := contentfs.Normalize(root)
	if base == "" {
		return "", fmt.Errorf("script: invalid module root %q", root)
	}

	// Pop the importing file's name; the remainder is the search base.
	dir := ""
	if pos := strings.LastIndexByte(base, '/'); pos >= 0 {
		dir = base[:pos]
	}

	for _, segment := range segments {
		dir = contentfs.Join(dir, contentfs.Normalize(segment))
	}

	modCandidate := contentfs.Join(dir, "mod."+l.ext)
	fileCandidate := dir + "." + l.ext

	switch {
	case l.fs.Exists(ctx, modCandidate):
		return modCandidate, nil
	case dir != "" && l.fs.Exists(ctx, fileCandidate):
		return fileCandidate, nil
	default:
		return "", fmt.Errorf("script: module not found: tried %q, %q", modCandidate, fileCandidate)
	}
}

// Load resolves a logical item and returns the resolved path together with
// the file's text. Sources are cached by resolved path, so repeated imports
// of one module read the filesystem once.
func (l *Loader) Load(ctx context.Context, root string, segments ...string) (string, string, error) {
	path, err := l.Resolve(ctx, root, segments...)
	if err != nil {
		return "", "", err
	}

	l.mu.RLock()
	source, ok := l.cache[path]
	l.mu.RUnlock()
	if ok {
		return path, source, nil
	}

	source, err = contentfs.ReadText(ctx, l.fs, path)
	if err != nil {
		return "", "", fmt.Errorf("script: load module %q: %w", path, err)
	}

	l.mu.Lock()
	l.cache[path] = source
	l.mu.Unlock()

	return path, source, nil
}
