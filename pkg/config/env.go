package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/matzehuels/labelmap/pkg/errors"
)

// EnvPrefix prefixes every environment variable read by [ApplyEnv].
const EnvPrefix = "LABELMAP_"

// LoadDotEnv loads variables from the given .env files, or ./.env when none
// are given. Missing files are skipped and existing variables are never
// overwritten. A file that cannot be parsed is INVALID_CONFIGURATION.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "load %s", f)
		}
	}
	return nil
}

// ApplyEnv overrides cfg with LABELMAP_* variables from the process
// environment.
func ApplyEnv(cfg *Config) error {
	return applyEnv(cfg, os.LookupEnv)
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"CACHE_BACKEND":  &cfg.Cache.Backend,
		"CACHE_DIR":      &cfg.Cache.Dir,
		"CACHE_PREFIX":   &cfg.Cache.Prefix,
		"REDIS_ADDR":     &cfg.Cache.RedisAddr,
		"REDIS_PASSWORD": &cfg.Cache.RedisPassword,
		"LOG_LEVEL":      &cfg.Log.Level,
		"LOG_FILE":       &cfg.Log.File,
		"IMAGE_DIR":      &cfg.Images.Dir,
		"IMAGE_URL":      &cfg.Images.URL,
		"FONT":           &cfg.Images.Font,
	}
	for name, dst := range strs {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	if v, ok := lookup(EnvPrefix + "REDIS_DB"); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return errors.InvalidConfiguration("%sREDIS_DB is not an integer: %q", EnvPrefix, v)
		}
		cfg.Cache.RedisDB = db
	}
	return nil
}
