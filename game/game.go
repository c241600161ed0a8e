// Package game assembles a runnable content stack at startup: the base
// game path plus zero or more mod layers become one overlay filesystem,
// game.json becomes the read-only configuration store, and per-game flags
// persist in a local sqlite database.
package game

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hexbound/contentfs"
	"github.com/hexbound/contentfs/kv"
	"github.com/hexbound/contentfs/layers"
	"github.com/hexbound/contentfs/log"
)

// configFile is the document every game ships at its content root.
const configFile = "game.json"

// identifierKey is the one required configuration value.
var identifierKey = kv.Key{"identifier"}

// Options describes the startup inputs.
type Options struct {
	// Game is the base content path, a directory or zip archive.
	Game string

	// Layers are additional mod paths, earliest first; later ones take
	// precedence when reading, and all are unioned when listing.
	Layers []string

	// FlagsDir overrides the per-user location of the flags database.
	// Empty means <UserConfigDir>/<identifier>.
	FlagsDir string

	LogLevel log.Level
	LogFile  string
}

// Game holds the shared read-only handles every subsystem works against.
type Game struct {
	// FS is the unified content tree. Read-only, safe for concurrent use.
	FS contentfs.FileSystem

	// Config is the game.json document, flattened and immutable.
	Config kv.Store

	// Flags is the mutable, persisted key-value store.
	Flags kv.Store

	Identifier string
	Log        *log.Logger

	flags *kv.SQLite
}

// New resolves the layer stack and loads the game's configuration. Any
// failure here is fatal to startup by design: a missing layer path or a
// corrupt archive must not be deferred to the first asset read.
func New(ctx context.Context, opts Options) (*Game, error) {
	if opts.Game == "" {
		return nil, errors.New("game: no game content path supplied")
	}

	logger := log.NewLogger("game", opts.LogLevel, opts.LogFile, false)

	paths := append([]string{opts.Game}, opts.Layers...)
	for _, path := range paths {
		logger.Debug("resolving content layer %q", path)
	}

	fsys, err := layers.ResolveStack(paths...)
	if err != nil {
		return nil, err
	}

	text, err := contentfs.ReadText(ctx, fsys, configFile)
	if err != nil {
		return nil, fmt.Errorf("game: read %s: %w", configFile, err)
	}

	config, err := kv.FromJSON([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("game: parse %s: %w", configFile, err)
	}

	identifier, ok, err := kv.GetString(ctx, config, identifierKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("game: %s is missing the identifier key", configFile)
	}

	flags, err := openFlags(opts.FlagsDir, identifier)
	if err != nil {
		return nil, err
	}

	logger.Info("assembled %q from %d content layer(s)", identifier, len(paths))

	return &Game{
		FS:         fsys,
		Config:     kv.NewReadOnly(config),
		Flags:      flags,
		Identifier: identifier,
		Log:        logger,
		flags:      flags,
	}, nil
}

// openFlags opens the persisted flags database for a game identifier,
// creating its directory if needed.
func openFlags(dir, identifier string) (*kv.SQLite, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("game: locate user config dir: %w", err)
		}
		dir = filepath.Join(base, identifier)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("game: create flags dir: %w", err)
	}

	return kv.OpenSQLite(filepath.Join(dir, "flags.db"))
}

// ReadTextFile reads a UTF-8 file off the assembled content tree.
func (g *Game) ReadTextFile(ctx context.Context, path string) (string, error) {
	return contentfs.ReadText(ctx, g.FS, path)
}

// Close releases the flags database. The content tree itself holds no
// resources beyond memory.
func (g *Game) Close() error {
	return g.flags.Close()
}
