package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/labelmap/pkg/buildinfo"
	"github.com/matzehuels/labelmap/pkg/cache"
	"github.com/matzehuels/labelmap/pkg/config"
	"github.com/matzehuels/labelmap/pkg/errors"
	"github.com/matzehuels/labelmap/pkg/observability"
)

const appName = "labelmap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	out        io.Writer
	logFile    io.Closer
	configPath string
	logPath    string
}

// New creates a CLI that logs to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		out:    w,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// EnableHooks logs pipeline, cache and HTTP events at debug level.
func (c *CLI) EnableHooks() {
	observability.NewLogHooks(c.Logger).Register()
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "labelmap places labels and images on a map without overlaps",
		Long: `labelmap places text labels and images around their anchor points on a
TopoJSON base map so that nothing overlaps, then writes the map back with the
placed objects added as a new collection.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.logPath != "" {
				c.attachLogFile(c.logPath)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.Close()
		},
	}
	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (.toml, .yaml or .json)")
	root.PersistentFlags().StringVar(&c.logPath, "log-file", "", "also write logs to this file, rotated at 10 MB")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.hitCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// Close releases the log file, if one is open.
func (c *CLI) Close() error {
	if c.logFile == nil {
		return nil
	}
	err := c.logFile.Close()
	c.logFile = nil
	return err
}

// loadConfig resolves the effective configuration: defaults, the config
// file, the environment (including .env) and finally --set overrides.
func (c *CLI) loadConfig(sets []string) (config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return config.Default(), err
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.ApplyOverrides(sets); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	if cfg.Log.File != "" && c.logFile == nil {
		c.attachLogFile(cfg.Log.File)
	}
	// --verbose wins over the configured level.
	if cfg.Log.Level != "" && c.Logger.GetLevel() != log.DebugLevel {
		level, err := log.ParseLevel(cfg.Log.Level)
		if err != nil {
			return cfg, errors.InvalidConfiguration("log level %q", cfg.Log.Level)
		}
		c.SetLogLevel(level)
	}
	return cfg, nil
}

// newCache opens the cache backend named in cfg.
func newCache(ctx context.Context, cfg config.Cache, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		c, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("open redis cache: %w", err)
		}
		return c, nil
	}

	dir := cfg.Dir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/labelmap/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
