package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/labelmap/pkg/errors"
	"github.com/matzehuels/labelmap/pkg/placement"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	pc, err := cfg.Placement()
	if err != nil {
		t.Fatal(err)
	}
	if pc.Tiers.Of(placement.CategoryCity) != 1 || pc.Tiers.Of(placement.CategoryWiki) != 3 || pc.Tiers.Of(placement.CategoryState) != 2 {
		t.Errorf("tiers = %+v", pc.Tiers)
	}
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"toml", "labelmap.toml", `
[layout]
imgScale = 0.5
precision = 2

[layout.scale]
b = 3
"m-NY" = 1.5

[layout.priorityTiers]
State = 4

[cache]
backend = "none"
`},
		{"yaml", "labelmap.yaml", `
layout:
  imgScale: 0.5
  precision: 2
  scale:
    b: 3
    m-NY: "1.5"
  priorityTiers:
    State: 4
cache:
  backend: none
`},
		{"json", "labelmap.json", `{
  "layout": {"imgScale": 0.5, "precision": 2, "scale": {"b": 3, "m-NY": 1.5}, "priorityTiers": {"State": 4}},
  "cache": {"backend": "none"}
}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, tt.file, tt.content))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.Layout.ImgScale != 0.5 || cfg.Layout.Precision != 2 || cfg.Cache.Backend != BackendNone {
				t.Errorf("scalar settings not applied: %+v", cfg)
			}
			// Untouched settings keep their defaults.
			if cfg.Layout.SpacingFactor != placement.DefaultSpacingFactor {
				t.Errorf("spacingFactor = %v, want default", cfg.Layout.SpacingFactor)
			}

			pc, err := cfg.Placement()
			if err != nil {
				t.Fatalf("Placement: %v", err)
			}
			if pc.Scale["b"] != 3 || pc.Scale["m"] != 2 || pc.Scale["m-NY"] != 1.5 {
				t.Errorf("scale = %v, want b=3 merged over defaults", pc.Scale)
			}
			if pc.Tiers.Of(placement.CategoryState) != 4 || pc.Tiers.Of(placement.CategoryCity) != 1 {
				t.Errorf("tiers = %+v, want State=4 merged over defaults", pc.Tiers)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: err = %v, want FILE_NOT_FOUND", err)
	}
	if _, err := Load(writeFile(t, "c.ini", "x=1")); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("ini file: err = %v, want UNSUPPORTED", err)
	}
	if _, err := Load(writeFile(t, "c.toml", "[layout\n")); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Errorf("broken toml: err = %v, want INVALID_CONFIGURATION", err)
	}
}

func TestPlacementRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		sets []string
	}{
		{"non-numeric scale", []string{"q=fast"}},
		{"infinite scale", []string{"b=Inf"}},
		{"nan threshold", []string{"distanceDiscardThreshold=NaN"}},
		{"unknown category", []string{"tier.Village=2"}},
		{"discard everything", []string{"discardFromTier=1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			if err := cfg.ApplyOverrides(tt.sets); err != nil {
				t.Fatalf("ApplyOverrides: %v", err)
			}
			if _, err := cfg.Placement(); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
				t.Errorf("err = %v, want INVALID_CONFIGURATION", err)
			}
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyOverrides([]string{
		"imgScale=1",
		"precision = 0",
		"distanceMeasure=gap",
		"tier.Congress=1",
		"bCity=4",
		"collection=things",
	})
	if err != nil {
		t.Fatalf("ApplyOverrides: %v", err)
	}
	pc, err := cfg.Placement()
	if err != nil {
		t.Fatalf("Placement: %v", err)
	}
	if pc.ImgScale != 1 || pc.DistanceMeasure != placement.DistanceGap || pc.Scale["bCity"] != 4 {
		t.Errorf("placement config = %+v", pc)
	}
	if pc.Tiers.Of(placement.CategoryCongress) != 1 {
		t.Errorf("congress tier = %d, want 1", pc.Tiers.Of(placement.CategoryCongress))
	}
	if cfg.Layout.Precision != 0 || cfg.Layout.Collection != "things" {
		t.Errorf("layout = %+v", cfg.Layout)
	}

	for _, bad := range []string{"novalue", "=3", "precision=high", "imgScale=big"} {
		if err := cfg.ApplyOverrides([]string{bad}); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
			t.Errorf("ApplyOverrides(%q) err = %v, want INVALID_CONFIGURATION", bad, err)
		}
	}
}

func TestTierNamesFoldCase(t *testing.T) {
	for i := 0; i < 50; i++ {
		cfg := Default()
		if err := cfg.ApplyOverrides([]string{"tier.wiki=2"}); err != nil {
			t.Fatalf("ApplyOverrides: %v", err)
		}
		pc, err := cfg.Placement()
		if err != nil {
			t.Fatalf("Placement: %v", err)
		}
		if got := pc.Tiers.Of(placement.CategoryWiki); got != 2 {
			t.Fatalf("run %d: wiki tier = %d, want 2", i, got)
		}
		if _, ok := cfg.Layout.PriorityTiers["wiki"]; ok {
			t.Fatalf("override kept its own spelling: %v", cfg.Layout.PriorityTiers)
		}
	}

	cfg, err := Load(writeFile(t, "c.yaml", "layout:\n  priorityTiers:\n    city: 2\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Layout.PriorityTiers["City"] != 2 || len(cfg.Layout.PriorityTiers) != len(Default().Layout.PriorityTiers) {
		t.Errorf("priorityTiers = %v", cfg.Layout.PriorityTiers)
	}

	_, err = Load(writeFile(t, "c.toml", "[layout.priorityTiers]\nWiki = 2\nwiki = 3\n"))
	if !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Errorf("duplicate spellings: err = %v, want INVALID_CONFIGURATION", err)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"LABELMAP_CACHE_BACKEND": "redis",
		"LABELMAP_REDIS_ADDR":    "cache:6379",
		"LABELMAP_REDIS_DB":      "2",
		"LABELMAP_LOG_LEVEL":     "debug",
		"LABELMAP_IMAGE_URL":     "https://maps.example/",
	}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	cfg := Default()
	if err := applyEnv(&cfg, lookup); err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	if cfg.Cache.Backend != BackendRedis || cfg.Cache.RedisAddr != "cache:6379" || cfg.Cache.RedisDB != 2 {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Log.Level != "debug" || cfg.Images.URL != "https://maps.example/" {
		t.Errorf("log=%+v images=%+v", cfg.Log, cfg.Images)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	env["LABELMAP_REDIS_DB"] = "zero"
	if err := applyEnv(&cfg, lookup); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Errorf("bad REDIS_DB: err = %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, "test.env", "LABELMAP_TEST_DOTENV=loaded\n")
	t.Setenv("LABELMAP_TEST_DOTENV", "")
	os.Unsetenv("LABELMAP_TEST_DOTENV")

	if err := LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("LABELMAP_TEST_DOTENV"); got != "loaded" {
		t.Errorf("LABELMAP_TEST_DOTENV = %q, want loaded", got)
	}

	broken := writeFile(t, "broken.env", "LABELMAP-CACHE-DIR=/tmp\n")
	if err := LoadDotEnv(broken); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Errorf("malformed .env: err = %v, want INVALID_CONFIGURATION", err)
	}
}

func TestValidateCache(t *testing.T) {
	cfg := Default()
	cfg.Cache.Backend = BackendRedis
	if err := cfg.Validate(); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Errorf("redis without address: err = %v", err)
	}
	cfg.Cache.Backend = "memcached"
	if err := cfg.Validate(); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Errorf("unknown backend: err = %v", err)
	}
}
