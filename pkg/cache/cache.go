// Package cache stores rendered province artifacts.
//
// A [Cache] is a byte store with per-entry TTL. Three backends exist:
// [FileCache] for the CLI, [RedisCache] for servers sharing a cache, and
// [NullCache] when caching is disabled. Keys are produced by a [Keyer] from
// the dataset content hash and the render options, so a changed dataset
// never serves stale artifacts.
package cache

import (
	"context"
	"time"
)

// TTLArtifact is the default lifetime of a rendered artifact.
const TTLArtifact = 24 * time.Hour

// Cache is a key-value store for rendered output.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Clear empties c if it supports clearing and reports whether it did.
func Clear(ctx context.Context, c Cache) (bool, error) {
	cl, ok := c.(Clearer)
	if !ok {
		return false, nil
	}
	return true, cl.Clear(ctx)
}

// ArtifactKeyOpts identifies one rendered output of a province.
type ArtifactKeyOpts struct {
	Province string `json:"province"`
	Format   string `json:"format"`
	Policy   string `json:"policy"`

	// Render is a hash of the format-specific options (view, style, detail).
	Render string `json:"render,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	ArtifactKey(datasetHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces "kind:sha256" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(datasetHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", datasetHash, opts)
}
