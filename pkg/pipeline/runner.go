package pipeline

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/labelmap/pkg/cache"
	"github.com/matzehuels/labelmap/pkg/measure"
	"github.com/matzehuels/labelmap/pkg/observability"
	"github.com/matzehuels/labelmap/pkg/placement"
	"github.com/matzehuels/labelmap/pkg/topology"
)

// Runner executes runs with caching. It holds no per-run state, so one
// Runner may serve several goroutines.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching and a nil keyer
// selects [cache.DefaultKeyer].
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// cachedLayout is the cache entry for a run. Sizes records every image size
// the run measured; an entry whose images have since changed size is stale.
type cachedLayout struct {
	Artifact  json.RawMessage         `json:"artifact"`
	Discarded []placement.Discard     `json:"discarded,omitempty"`
	Images    int                     `json:"images"`
	Labels    int                     `json:"labels"`
	Sizes     map[string]measure.Size `json:"sizes,omitempty"`
}

// sizeRecorder remembers the sizes reported by the wrapped metrics.
type sizeRecorder struct {
	measure.ImageMetrics
	mu    sync.Mutex
	sizes map[string]measure.Size
}

func (s *sizeRecorder) ImageSize(ctx context.Context, name string) (measure.Size, error) {
	size, err := s.ImageMetrics.ImageSize(ctx, name)
	if err == nil {
		s.mu.Lock()
		s.sizes[name] = size
		s.mu.Unlock()
	}
	return size, err
}

// Execute returns the artifact for in, from the cache when possible.
func (r *Runner) Execute(ctx context.Context, in Inputs, opts Options) (*Result, error) {
	opts.SetDefaults()
	if _, err := opts.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := r.Logger.With("run", runID[:8])
	key := r.Keyer.LayoutKey(in.Hash(), opts.keyOpts())

	_, uncached := r.Cache.(cache.NullCache)
	if !opts.Refresh && !uncached {
		if res, ok := r.lookup(ctx, key, opts); ok {
			res.RunID = runID
			logger.Info("layout cache hit",
				"objects", res.Artifact.Len(),
				"discarded", res.Stats.Discarded)
			return res, nil
		}
	}

	start := time.Now()
	rec := &sizeRecorder{ImageMetrics: opts.Images, sizes: make(map[string]measure.Size)}
	opts.Images = rec
	art, placed, err := Compute(ctx, in, opts, placement.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(art)
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID:     runID,
		Artifact:  art,
		Data:      data,
		Discarded: placed.Discarded,
		Stats: Stats{
			Images:     placed.Images,
			Labels:     placed.Labels,
			Discarded:  len(placed.Discarded),
			LayoutTime: time.Since(start),
		},
	}

	if uncached {
		return res, nil
	}

	// Distances of labels discarded without a candidate are infinite and
	// cannot be encoded, in which case the run is simply not cached.
	entry, err := json.Marshal(cachedLayout{
		Artifact:  data,
		Discarded: placed.Discarded,
		Images:    placed.Images,
		Labels:    placed.Labels,
		Sizes:     rec.sizes,
	})
	if err == nil {
		if err := r.Cache.Set(ctx, key, entry, cache.TTLLayout); err != nil {
			logger.Warn("cache store failed", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, key, len(entry))
		}
	}
	return res, nil
}

func (r *Runner) lookup(ctx context.Context, key string, opts Options) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache lookup failed", "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, key)
		return nil, false
	}

	var entry cachedLayout
	if err := json.Unmarshal(data, &entry); err != nil {
		observability.Cache().OnCacheMiss(ctx, key)
		return nil, false
	}
	art, err := topology.Decode(entry.Artifact, opts.Layout.Collection)
	if err != nil {
		observability.Cache().OnCacheMiss(ctx, key)
		return nil, false
	}
	if name, ok := r.imagesChanged(ctx, opts.Images, entry.Sizes); ok {
		r.Logger.Debug("cached layout is stale", "image", name)
		observability.Cache().OnCacheMiss(ctx, key)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, key)
	return &Result{
		Artifact:  art,
		Data:      entry.Artifact,
		Discarded: entry.Discarded,
		Stats: Stats{
			Images:    entry.Images,
			Labels:    entry.Labels,
			Discarded: len(entry.Discarded),
		},
		CacheHit: true,
	}, true
}

// imagesChanged re-measures the images a cached layout was computed with and
// reports the first one whose size differs or can no longer be measured.
func (r *Runner) imagesChanged(ctx context.Context, images measure.ImageMetrics, sizes map[string]measure.Size) (string, bool) {
	for name, want := range sizes {
		got, err := images.ImageSize(ctx, name)
		if err != nil || got != want {
			return name, true
		}
	}
	return "", false
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
