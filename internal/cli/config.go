package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
	Long: `Inspect claimpacket configuration.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (CLAIMPACKET_*, e.g. CLAIMPACKET_STORE_DSN)
3. Config file (./claimpacket.yaml or --config)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if cfg.Source != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Configuration file: %s\n", cfg.Source)
		} else {
			fmt.Fprintln(cmd.ErrOrStderr(), "No configuration file found (using defaults and environment)")
		}

		if cfg.Server.JWTSecret != "" {
			cfg.Server.JWTSecret = "********"
		}
		if cfg.Cache.Redis.Password != "" {
			cfg.Cache.Redis.Password = "********"
		}

		out, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}
		_, err = w.Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}
