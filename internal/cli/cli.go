// Package cli implements the hierkit command-line interface.
//
// This package provides commands for converting hierarchies between the
// HiDeF, DDOT, and CX2/HCX formats, annotating them for web visualization,
// scoring node robustness against alternative hierarchies, rendering
// diagrams, and serving the conversion engines over HTTP. The CLI is built
// using cobra and supports verbose logging via the charmbracelet/log
// library.
//
// # Commands
//
// The main commands are:
//   - convert: Translate a hierarchy or interactome between formats
//   - annotate: Add HCX annotations for hierarchy viewers
//   - robustness: Score nodes against alternative hierarchies
//   - diff: Pairwise comparison of two hierarchies
//   - render: Generate DOT or SVG diagrams
//   - fetch: Download a network from an NDEx server
//   - serve: Run the HTTP conversion service
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cellmaps/hierkit/pkg/cache"
	"github.com/cellmaps/hierkit/pkg/codec"
	"github.com/cellmaps/hierkit/pkg/codec/ddot"
	"github.com/cellmaps/hierkit/pkg/codec/hidef"
	"github.com/cellmaps/hierkit/pkg/hcx"
	"github.com/cellmaps/hierkit/pkg/interactome"
)

// appName is the application name used for directories and display.
const appName = "hierkit"

// hierarchyCodec picks the codec for a hierarchy file by its name.
// The optional network resolves gene-level members during HiDeF loads.
func hierarchyCodec(path string, net *interactome.Network) (codec.Codec, error) {
	return codec.Detect(path,
		&hidef.Codec{Network: net},
		&ddot.Codec{},
		&hcx.Codec{},
	)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/hierkit/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// newKeyer returns the cache key scheme. Keys in a shared Redis backend
// get namespaced under the application name so hierkit never collides
// with other tenants.
func newKeyer(cfg Config) cache.Keyer {
	if cfg.Cache.RedisAddr != "" {
		return cache.NewScopedKeyer(nil, appName+":")
	}
	return cache.NewDefaultKeyer()
}

// newByteCache builds the byte cache for network fetches: Redis when
// configured, a file cache otherwise. Cache trouble never fails a command;
// it degrades to the null cache.
func newByteCache(ctx context.Context, cfg Config) cache.Cache {
	if cfg.Cache.Disabled {
		return cache.NewNullCache()
	}
	if cfg.Cache.RedisAddr != "" {
		c, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: cfg.Cache.RedisAddr})
		if err != nil {
			return cache.NewNullCache()
		}
		return c
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache()
		}
		dir = d
	}
	c, err := cache.NewFileCache(dir)
	if err != nil {
		return cache.NewNullCache()
	}
	return c
}
