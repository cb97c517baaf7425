package placement

import (
	"math"

	"github.com/matzehuels/labelmap/pkg/errors"
	"github.com/matzehuels/labelmap/pkg/geom"
	"github.com/matzehuels/labelmap/pkg/scale"
)

// DistanceMeasure selects how far a chosen label position is considered to
// be from its ideal position when deciding whether to discard it.
type DistanceMeasure string

const (
	// DistanceCenter measures between the centers of the two rectangles.
	DistanceCenter DistanceMeasure = "center"
	// DistanceGap measures between the closest points of the two rectangles.
	DistanceGap DistanceMeasure = "gap"
)

// Defaults.
const (
	DefaultImgScale                 = 0.1
	DefaultSpacingFactor            = 0.1
	DefaultDistanceDiscardThreshold = 1
	DefaultDiscardFromTier          = 0
	DefaultEpsilon                  = 0.01
)

// Config holds every tunable of a placement run.
type Config struct {
	// Scale resolves label heights; see package scale.
	Scale scale.Options

	// ImgScale multiplies the natural size of every image.
	ImgScale float64

	// SpacingFactor sets the padding reserved around placed items as a
	// fraction of their height. Horizontal padding is twice the vertical.
	SpacingFactor float64

	// DistanceDiscardThreshold is the largest distance an optional label may
	// be moved from its ideal position before it is discarded.
	DistanceDiscardThreshold float64

	// Tiers orders labels by category.
	Tiers Tiers

	// DiscardFromTier is the first tier whose labels are optional. Zero
	// makes every tier below the top optional; otherwise it must be greater
	// than the top tier.
	DiscardFromTier int

	// DistanceMeasure selects the discard distance. Empty means center.
	DistanceMeasure DistanceMeasure

	// Epsilon shrinks candidates on every edge before collision queries so
	// that rectangles touching along an edge do not collide.
	Epsilon float64
}

// DefaultConfig returns a configuration with default values and the given
// scale options.
func DefaultConfig(opts scale.Options) Config {
	return Config{
		Scale:                    opts,
		ImgScale:                 DefaultImgScale,
		SpacingFactor:            DefaultSpacingFactor,
		DistanceDiscardThreshold: DefaultDistanceDiscardThreshold,
		Tiers:                    DefaultTiers(),
		DiscardFromTier:          DefaultDiscardFromTier,
		DistanceMeasure:          DistanceCenter,
		Epsilon:                  DefaultEpsilon,
	}
}

// Validate reports the first invalid setting as INVALID_CONFIGURATION.
func (c Config) Validate() error {
	if err := c.Scale.Validate(); err != nil {
		return err
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"imgScale", c.ImgScale},
		{"spacingFactor", c.SpacingFactor},
		{"distanceDiscardThreshold", c.DistanceDiscardThreshold},
		{"epsilon", c.Epsilon},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return errors.InvalidConfiguration("%s is not a finite number: %v", f.name, f.v)
		}
		if f.v < 0 {
			return errors.InvalidConfiguration("%s must not be negative: %v", f.name, f.v)
		}
	}
	if c.ImgScale == 0 {
		return errors.InvalidConfiguration("imgScale must be positive")
	}
	if c.DiscardFromTier != 0 && c.DiscardFromTier <= c.Tiers.Top() {
		return errors.InvalidConfiguration("discardFromTier %d must be greater than the top tier %d",
			c.DiscardFromTier, c.Tiers.Top())
	}
	switch c.DistanceMeasure {
	case "", DistanceCenter, DistanceGap:
	default:
		return errors.InvalidConfiguration("unknown distance measure %q", c.DistanceMeasure)
	}
	return nil
}

// optionalFrom returns the first tier whose labels may be discarded.
func (c Config) optionalFrom() int {
	if c.DiscardFromTier == 0 {
		return c.Tiers.Top() + 1
	}
	return c.DiscardFromTier
}

func (c Config) discardable(r Request) bool {
	return !r.IsTop && c.Tiers.Of(r.Category()) >= c.optionalFrom()
}

func (c Config) discardDistance(ideal, chosen geom.Rect) float64 {
	if c.DistanceMeasure == DistanceGap {
		return ideal.Gap(chosen)
	}
	return ideal.Distance(chosen)
}
