package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/labelmap/pkg/config"
)

// configCommand creates the config command.
func (c *CLI) configCommand() *cobra.Command {
	var (
		sets   []string
		format string
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration layout would run with after applying the config
file, LABELMAP_* environment variables (and .env) and --set overrides.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(sets)
			if err != nil {
				return err
			}
			return writeConfig(cmd.OutOrStdout(), cfg, format)
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "override a layout setting (repeatable)")
	cmd.Flags().StringVarP(&format, "format", "f", "toml", "output format: toml, yaml or json")

	return cmd
}

func writeConfig(w io.Writer, cfg config.Config, format string) error {
	if cfg.Cache.RedisPassword != "" {
		cfg.Cache.RedisPassword = "********"
	}
	switch format {
	case "toml":
		return toml.NewEncoder(w).Encode(cfg)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cfg)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}
	return fmt.Errorf("unknown format %q (must be toml, yaml or json)", format)
}
