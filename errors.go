package contentfs

import (
	"errors"
	"fmt"
)

// Standard errors returned by FileSystem implementations.
var (
	// ErrNotExist is returned when a path is absent in a given store.
	ErrNotExist = errors.New("contentfs: file or directory does not exist")

	// ErrRead is returned when content exists but cannot be interpreted
	// as requested, e.g. non-UTF-8 bytes read as text.
	ErrRead = errors.New("contentfs: error reading file")
)

// WrapIO ties an underlying I/O failure to the path it occurred on while
// keeping the original error reachable through errors.Is and errors.As.
func WrapIO(err error, path string) error {
	return fmt.Errorf("contentfs: i/o error at %q: %w", path, err)
}
