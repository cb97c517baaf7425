// Package cache stores computed layouts and fetched image metrics.
//
// The [Cache] interface is implemented by a file cache for CLI use, a Redis
// cache for shared deployments and a null cache that disables caching.
// Keys are produced by a [Keyer] so that every backend sees the same
// namespaced, hashed key layout.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values per entry type.
const (
	// TTLLayout keeps computed layouts for a week. Layouts are keyed by the
	// hash of every input, so a stale entry can only be served for identical
	// inputs.
	TTLLayout = 7 * 24 * time.Hour

	// TTLMetrics keeps remote image dimensions for a day.
	TTLMetrics = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A miss is reported as (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// LayoutKeyOpts are the settings that change a layout besides its inputs.
type LayoutKeyOpts struct {
	ConfigHash string `json:"config_hash"`
	Measurer   string `json:"measurer"`
	Images     string `json:"images"`
	Collection string `json:"collection"`
	Precision  int    `json:"precision"`
}

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey returns the key for a layout computed from inputs hashing to
	// inputHash.
	LayoutKey(inputHash string, opts LayoutKeyOpts) string

	// MetricsKey returns the key for the dimensions of an image fetched
	// from source.
	MetricsKey(source, name string) string
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements [Keyer].
func (DefaultKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", inputHash, opts)
}

// MetricsKey implements [Keyer].
func (DefaultKeyer) MetricsKey(source, name string) string {
	return "metrics:" + source + ":" + name
}
