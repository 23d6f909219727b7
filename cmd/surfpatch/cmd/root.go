/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/surfpatch/pkg/config"
	"github.com/ssargent/surfpatch/pkg/di"
	"github.com/ssargent/surfpatch/pkg/logging"
	"github.com/ssargent/surfpatch/pkg/patcher"
)

var (
	container *di.Container
	logCloser io.Closer
)

// SetContainer injects the dependency container
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "surfpatch",
	Short: "surfpatch - patch Metaplex accounts on a local surfnet",
	Long: `surfpatch reads Metaplex Core assets and collections, programmable NFT
token records and SPL token accounts from a local surfnet validator, and
rewrites them in place for debugging.

Every write is preceded by a snapshot of the account, so it can be undone
with 'surfpatch snapshot restore'.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if container == nil {
			return fmt.Errorf("dependency container not initialized")
		}
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}

		logger, closer, err := logging.Setup(logging.Options{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			File:      cfg.Logging.File,
			MaxSizeMB: cfg.Logging.MaxSizeMB,
			Output:    cmd.ErrOrStderr(),
		})
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}
		logCloser = closer
		container.Configure(cfg, logger)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		err := container.Close()
		if logCloser != nil {
			_ = logCloser.Close()
			logCloser = nil
		}
		return err
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/surfpatch/config.yaml)")
	rootCmd.PersistentFlags().String("rpc-url", "", "Surfnet JSON-RPC endpoint (overrides config and "+config.EnvRPCURL+")")
	rootCmd.PersistentFlags().StringP("data-dir", "d", "", "Data directory for snapshots")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("json", false, "Print results as JSON")
}

// resolveConfig loads the config file and applies environment and flag
// overrides, in that order. A missing default config file yields defaults;
// a missing explicit one is an error.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	explicit := configPath != ""
	if !explicit {
		configPath = config.GetDefaultConfigPath()
	}

	cfg := config.DefaultConfig()
	switch {
	case cmd.Name() == "init":
		// init writes the file
	case config.ConfigExists(configPath):
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	case explicit:
		return nil, fmt.Errorf("config file does not exist: %s (run 'surfpatch init')", configPath)
	}

	cfg.ApplyEnv()
	if cmd.Flags().Changed("rpc-url") {
		cfg.RPCURL, _ = cmd.Flags().GetString("rpc-url")
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir, _ = cmd.Flags().GetString("data-dir")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level, _ = cmd.Flags().GetString("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getPatcher() (*patcher.Patcher, error) {
	return container.GetPatcher()
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}
