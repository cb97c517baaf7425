package cache

import (
	"context"
	"time"
)

// NullCache stores nothing. It stands in wherever caching is off: the
// "none" backend, --no-cache runs and remote image metrics built without a
// store. The layout runner in pkg/pipeline recognises it and skips encoding
// entries.
type NullCache struct{}

// NewNullCache returns a cache that never hits.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

// Clear reports that there was nothing to remove.
func (NullCache) Clear(context.Context) (int, error) { return 0, nil }

var (
	_ Cache   = NullCache{}
	_ Clearer = NullCache{}
)
