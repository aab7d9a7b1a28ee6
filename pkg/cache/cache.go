// Package cache stores rendered avatar artifacts.
//
// Composites are pure functions of their collaborators and size, so a
// rendered artifact can be reused for as long as its inputs hash the same.
// The [Runner] in pkg/pipeline keys artifacts by composite hash, format and
// render options through a [Keyer].
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: shared cache for the HTTP server
//   - [NullCache]: caching disabled
//
// [Runner]: github.com/matzehuels/facepile/pkg/pipeline.Runner
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long artifacts stay cached unless configured otherwise.
const DefaultTTL = 24 * time.Hour

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the stored bytes and true on a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// ArtifactKeyOpts are the render options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Scale  float64 `json:"scale,omitempty"`
	Wash   bool    `json:"wash"`
	Title  string  `json:"title,omitempty"`
	Font   string  `json:"font,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey returns the key for a rendered artifact of a composite.
	ArtifactKey(compositeHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey returns "artifact:<sha256>" over the composite hash and options.
func (DefaultKeyer) ArtifactKey(compositeHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", compositeHash, opts)
}
