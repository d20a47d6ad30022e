package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sudankdk/cee/internal/config"
	"github.com/sudankdk/cee/internal/logger"
)

// Version is set at build time with -ldflags.
var Version = "dev"

var (
	configFlag   string
	logLevelFlag string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "cee",
	Short: "CEE - sandboxed code execution engine",
	Long: `CEE runs untrusted code in short-lived, network-isolated Docker containers.

Ten languages are supported, each with a pre-built image that must already
exist on the Docker daemon. Executions are recorded in a local SQLite history.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configFlag)
		if err != nil {
			return err
		}
		if logLevelFlag != "" {
			c.Log.Level = logLevelFlag
		}
		if err := logger.Init(c.Log); err != nil {
			return err
		}
		cfg = c
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file (default ./cee.yaml or $HOME/.cee/cee.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.Version = Version
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
