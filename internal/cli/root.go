// Package cli implements the shellguard command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/pkarlsen/shellguard/internal/config"
	"github.com/pkarlsen/shellguard/internal/logging"
)

// Version is set at build time via ldflags.
var Version = "dev"

// configPath is the --config flag value; empty means the default
// location under the user's home directory.
var configPath string

var rootCmd = &cobra.Command{
	Use:   "shellguard",
	Short: "Natural-language Linux assistant with a command safety gate",
	Long: `Shellguard turns natural-language requests into shell commands and
executes them behind a safety gate: a block list vetoes destructive
commands outright, confirmation patterns require explicit approval,
and interactive programs get a real terminal attachment.`,
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("shellguard version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default ~/.shellguard/config.yaml)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig loads the configuration and applies the configured log
// level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logging.SetLevel(logging.ParseLevel(cfg.Logging.Level))
	return cfg, nil
}
