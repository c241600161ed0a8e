// Command contentfs inspects an assembled game content stack: the base
// game path plus any number of mod layers, exactly as the engine would
// mount them at startup.
//
// Usage:
//
//	contentfs -game PATH [-layer PATH]... info
//	contentfs -game PATH [-layer PATH]... ls [DIR]
//	contentfs -game PATH [-layer PATH]... cat FILE
//	contentfs -game PATH [-layer PATH]... stat PATH
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/hexbound/contentfs/game"
	"github.com/hexbound/contentfs/log"
)

// pathList collects repeatable -layer flags in the order given.
type pathList []string

func (p *pathList) String() string {
	return fmt.Sprint(*p)
}

func (p *pathList) Set(value string) error {
	*p = append(*p, value)
	return nil
}

type config struct {
	game     string
	layers   pathList
	logLevel string
	logFile  string
}

func (cfg *config) parseArgs(args []string) ([]string, error) {
	fs := flag.NewFlagSet("contentfs [flags...] command [path]", flag.ContinueOnError)

	fs.StringVar(
		&cfg.game,
		"game",
		"",
		"base game path (zip or directory)",
	)

	fs.Var(
		&cfg.layers,
		"layer",
		"additional mod layer to stack on top; repeatable, later layers win",
	)

	fs.StringVar(
		&cfg.logLevel,
		"log-level",
		"info",
		"log level (debug, info, warn, error)",
	)

	fs.StringVar(
		&cfg.logFile,
		"log-file",
		"",
		"optional log file with rotation",
	)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return fs.Args(), nil
}

func run(args []string) error {
	var cfg config

	rest, err := cfg.parseArgs(args)
	if err != nil {
		return err
	}
	if len(rest) == 0 {
		return fmt.Errorf("no command given (info, ls, cat, stat)")
	}

	level, err := log.ParseLevel(cfg.logLevel)
	if err != nil {
		return err
	}

	ctx := context.Background()
	g, err := game.New(ctx, game.Options{
		Game:     cfg.game,
		Layers:   cfg.layers,
		LogLevel: level,
		LogFile:  cfg.logFile,
	})
	if err != nil {
		return err
	}
	defer g.Close()

	command, path := rest[0], ""
	if len(rest) > 1 {
		path = rest[1]
	}

	switch command {
	case "info":
		fmt.Printf("identifier: %s\n", g.Identifier)
		fmt.Printf("layers:     %d\n", 1+len(cfg.layers))
		keys, err := g.Config.Keys(ctx)
		if err != nil {
			return err
		}
		for _, key := range keys {
			value, _, _ := g.Config.Get(ctx, key)
			fmt.Printf("config:     %s = %v\n", key, value)
		}
		return nil

	case "ls":
		entries, err := g.FS.ReadDir(ctx, path)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if meta, err := g.FS.Stat(ctx, entry); err == nil && meta.IsDir {
				entry += "/"
			}
			fmt.Println(entry)
		}
		return nil

	case "cat":
		if path == "" {
			return fmt.Errorf("cat needs a file path")
		}
		buf, err := g.FS.ReadFile(ctx, path)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(buf)
		return err

	case "stat":
		meta, err := g.FS.Stat(ctx, path)
		if err != nil {
			return err
		}
		kind := "file"
		if meta.IsDir {
			kind = "directory"
		}
		fmt.Printf("%s\t%d\t%s\n", kind, meta.Size, path)
		return nil

	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "contentfs: error: %v\n", err)
		os.Exit(1)
	}
}
