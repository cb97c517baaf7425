// Package config loads labelmap settings from TOML or YAML files, the
// environment and command-line overrides.
//
// Precedence, lowest first: built-in defaults, the config file, LABELMAP_*
// environment variables (optionally read from a .env file), then --set
// overrides.
//
// A TOML file looks like:
//
//	[layout]
//	imgScale = 0.1
//	spacingFactor = 0.1
//	distanceDiscardThreshold = 1
//
//	[layout.scale]
//	b = 1
//	m = 2
//	q = 0.25
//	bCity = 2
//	"m-NY" = 1.5
//
//	[layout.priorityTiers]
//	City = 1
//	Wiki = 3
//
//	[cache]
//	backend = "redis"
//	redisAddr = "localhost:6379"
package config

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/labelmap/pkg/errors"
	"github.com/matzehuels/labelmap/pkg/placement"
	"github.com/matzehuels/labelmap/pkg/scale"
)

// Config is the complete labelmap configuration.
type Config struct {
	Layout Layout `toml:"layout" yaml:"layout" json:"layout"`
	Images Images `toml:"images" yaml:"images" json:"images"`
	Cache  Cache  `toml:"cache" yaml:"cache" json:"cache"`
	Log    Log    `toml:"log" yaml:"log" json:"log"`
}

// Layout holds every setting that changes placement output.
type Layout struct {
	// Scale options are kept loosely typed until [Config.Placement] so that
	// a non-numeric value is reported as INVALID_CONFIGURATION.
	Scale map[string]any `toml:"scale" yaml:"scale" json:"scale"`

	ImgScale                 float64        `toml:"imgScale" yaml:"imgScale" json:"imgScale"`
	SpacingFactor            float64        `toml:"spacingFactor" yaml:"spacingFactor" json:"spacingFactor"`
	DistanceDiscardThreshold float64        `toml:"distanceDiscardThreshold" yaml:"distanceDiscardThreshold" json:"distanceDiscardThreshold"`
	DistanceMeasure          string         `toml:"distanceMeasure" yaml:"distanceMeasure" json:"distanceMeasure"`
	DiscardFromTier          int            `toml:"discardFromTier" yaml:"discardFromTier" json:"discardFromTier"`
	PriorityTiers            map[string]int `toml:"priorityTiers" yaml:"priorityTiers" json:"priorityTiers"`
	DefaultTier              int            `toml:"defaultTier" yaml:"defaultTier" json:"defaultTier"`
	Epsilon                  float64        `toml:"epsilon" yaml:"epsilon" json:"epsilon"`

	// Collection names the object collection added to the base map.
	Collection string `toml:"collection" yaml:"collection" json:"collection"`
	// Precision is the number of decimals kept in the artifact.
	Precision int `toml:"precision" yaml:"precision" json:"precision"`
}

// Images selects where image sizes are read from. Dir wins over URL.
type Images struct {
	Dir string `toml:"dir" yaml:"dir" json:"dir,omitempty"`
	URL string `toml:"url" yaml:"url" json:"url,omitempty"`
	// Font is a TrueType or OpenType file used to measure label text. The
	// built-in fixed-width face is used when empty.
	Font string `toml:"font" yaml:"font" json:"font,omitempty"`
}

// Cache configures the layout and image metrics cache.
type Cache struct {
	Backend       string `toml:"backend" yaml:"backend" json:"backend"`
	Dir           string `toml:"dir" yaml:"dir" json:"dir,omitempty"`
	RedisAddr     string `toml:"redisAddr" yaml:"redisAddr" json:"redisAddr,omitempty"`
	RedisPassword string `toml:"redisPassword" yaml:"redisPassword" json:"-"`
	RedisDB       int    `toml:"redisDB" yaml:"redisDB" json:"redisDB,omitempty"`
	Prefix        string `toml:"prefix" yaml:"prefix" json:"prefix,omitempty"`
}

// Log configures logging.
type Log struct {
	Level string `toml:"level" yaml:"level" json:"level"`
	// File additionally writes logs to a rotating file.
	File string `toml:"file" yaml:"file" json:"file,omitempty"`
}

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Default returns the built-in configuration.
func Default() Config {
	tiers := placement.DefaultTiers()
	return Config{
		Layout: Layout{
			Scale:                    map[string]any{"b": 1.0, "m": 2.0, "q": 0.25},
			ImgScale:                 placement.DefaultImgScale,
			SpacingFactor:            placement.DefaultSpacingFactor,
			DistanceDiscardThreshold: placement.DefaultDistanceDiscardThreshold,
			DistanceMeasure:          string(placement.DistanceCenter),
			DiscardFromTier:          placement.DefaultDiscardFromTier,
			PriorityTiers:            tiers.Names(),
			DefaultTier:              tiers.Default,
			Epsilon:                  placement.DefaultEpsilon,
			Collection:               "objs",
			Precision:                3,
		},
		Cache: Cache{Backend: BackendFile, Prefix: "labelmap:"},
		Log:   Log{Level: "info"},
	}
}

// Load reads the config file at path on top of the defaults. The format is
// chosen by extension: .toml, .yaml, .yml or .json. An empty path returns
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := Decode(&cfg, data, filepath.Ext(path)); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses data in the format named by ext onto cfg. Maps in the file
// are merged key by key with the maps already in cfg.
func Decode(cfg *Config, data []byte, ext string) error {
	scaleDefaults, tierDefaults := cfg.Layout.Scale, cfg.Layout.PriorityTiers
	cfg.Layout.Scale, cfg.Layout.PriorityTiers = nil, nil

	var err error
	switch strings.ToLower(ext) {
	case ".toml":
		_, err = toml.Decode(string(data), cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".json":
		err = json.Unmarshal(data, cfg)
	default:
		err = errors.New(errors.ErrCodeUnsupported, "unsupported config format %q", ext)
	}

	cfg.Layout.Scale = mergeMaps(scaleDefaults, cfg.Layout.Scale)
	tiers, terr := canonicalTiers(cfg.Layout.PriorityTiers)
	cfg.Layout.PriorityTiers = mergeMaps(tierDefaults, tiers)
	if err == nil {
		err = terr
	}
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errors.ErrCodeUnsupported), errors.Is(err, errors.ErrCodeInvalidConfiguration):
		return err
	default:
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "decode")
	}
}

func mergeMaps[V any](base, over map[string]V) map[string]V {
	out := maps.Clone(base)
	if out == nil {
		out = make(map[string]V, len(over))
	}
	maps.Copy(out, over)
	return out
}

// tierKey returns the canonical spelling of a category name. Unknown names
// are returned unchanged so that validation can report them.
func tierKey(name string) string {
	cat := placement.CategoryFromName(name)
	if cat == placement.CategoryOther && !strings.EqualFold(name, placement.CategoryOther.String()) {
		return name
	}
	return cat.String()
}

// canonicalTiers rekeys m by canonical category name. Two names that fold to
// the same category are rejected.
func canonicalTiers(m map[string]int) (map[string]int, error) {
	out := make(map[string]int, len(m))
	seen := make(map[string]string, len(m))
	for name, tier := range m {
		key := tierKey(name)
		if prev, ok := seen[key]; ok {
			return nil, errors.InvalidConfiguration("priorityTiers %q and %q name the same category",
				min(prev, name), max(prev, name))
		}
		seen[key] = name
		out[key] = tier
	}
	return out, nil
}

// Placement converts the layout settings into an engine configuration and
// validates it. Every failure is INVALID_CONFIGURATION.
func (c Config) Placement() (placement.Config, error) {
	opts, err := scale.ParseOptions(c.Layout.Scale)
	if err != nil {
		return placement.Config{}, err
	}

	names, err := canonicalTiers(c.Layout.PriorityTiers)
	if err != nil {
		return placement.Config{}, err
	}
	tiers := placement.Tiers{ByCategory: make(map[placement.Category]int), Default: c.Layout.DefaultTier}
	for name, tier := range names {
		cat := placement.CategoryFromName(name)
		if cat == placement.CategoryOther && !strings.EqualFold(name, placement.CategoryOther.String()) {
			return placement.Config{}, errors.InvalidConfiguration("unknown category %q in priorityTiers", name)
		}
		tiers.ByCategory[cat] = tier
	}

	pc := placement.Config{
		Scale:                    opts,
		ImgScale:                 c.Layout.ImgScale,
		SpacingFactor:            c.Layout.SpacingFactor,
		DistanceDiscardThreshold: c.Layout.DistanceDiscardThreshold,
		Tiers:                    tiers,
		DiscardFromTier:          c.Layout.DiscardFromTier,
		DistanceMeasure:          placement.DistanceMeasure(c.Layout.DistanceMeasure),
		Epsilon:                  c.Layout.Epsilon,
	}
	if err := pc.Validate(); err != nil {
		return placement.Config{}, err
	}
	return pc, nil
}

// Validate checks the whole configuration.
func (c Config) Validate() error {
	if _, err := c.Placement(); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case BackendFile, BackendNone, "":
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return errors.InvalidConfiguration("cache backend redis needs redisAddr")
		}
	default:
		return errors.InvalidConfiguration("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Layout.Precision > 15 {
		return errors.InvalidConfiguration("precision %d is too large", c.Layout.Precision)
	}
	return nil
}
