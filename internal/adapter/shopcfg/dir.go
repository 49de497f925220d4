// Package shopcfg resolves shop tokens to profiles loaded from a directory
// of YAML files, with an in-process ristretto cache in front of the disk
// reads.
package shopcfg

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"gopkg.in/yaml.v3"

	"github.com/tillworks/tillcast/internal/domain/shop"
)

// Dir looks up shop profiles at <dir>/<token>.yaml. A missing file and a
// malformed file both resolve to absent; callers must not be able to tell
// the difference.
type Dir struct {
	dir   string
	ttl   time.Duration
	cache *ristretto.Cache[string, shop.Config]
	log   *slog.Logger
}

// New creates a Dir backed by the given directory. maxEntries bounds the
// cache; ttl bounds how stale a cached profile may get after its file
// changes on disk.
func New(dir string, maxEntries int64, ttl time.Duration, log *slog.Logger) (*Dir, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, shop.Config]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Dir{dir: dir, ttl: ttl, cache: cache, log: log}, nil
}

// Lookup resolves token to its shop profile. It is pure from the caller's
// perspective: no side effects beyond cache population.
func (d *Dir) Lookup(_ context.Context, token string) (shop.Config, bool) {
	if !validToken(token) {
		return shop.Config{}, false
	}

	if cfg, ok := d.cache.Get(token); ok {
		return cfg, true
	}

	data, err := os.ReadFile(filepath.Join(d.dir, token+".yaml"))
	if err != nil {
		return shop.Config{}, false
	}

	var cfg shop.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		d.log.Warn("malformed shop profile", "token", token, "error", err)
		return shop.Config{}, false
	}

	d.cache.SetWithTTL(token, cfg, 1, d.ttl)
	return cfg, true
}

// Close shuts down the cache and releases resources.
func (d *Dir) Close() {
	d.cache.Close()
}

// validToken rejects tokens that could escape the profile directory. The
// token is opaque but it becomes a file name, so path characters are out.
func validToken(token string) bool {
	if token == "" || len(token) > 128 {
		return false
	}
	if strings.ContainsAny(token, `/\`) || strings.Contains(token, "..") {
		return false
	}
	return token[0] != '.'
}
