package main

import (
	"fmt"
	"os"

	"github.com/ryhazerus/likes/internal/config"
	"github.com/ryhazerus/likes/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configFile string

	cfg *config.Config
	log *zap.Logger

	rootCmd = &cobra.Command{
		Use:   "likesd",
		Short: "Like counters for blog posts",
		Long: `likesd keeps per-post like counters, capped per visitor, behind a small
JSON API.

Settings come from likes.toml (or the file given with --config) and
LIKES_* environment variables, e.g. LIKES_SESSION_SALT or LIKES_STORE_DSN.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "help", "completion":
				return nil
			}

			var err error
			cfg, err = config.Load(config.New(), configFile)
			if err != nil {
				return err
			}
			log, err = logger.New(cfg.Log.Mode, cfg.Log.Level)
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if log != nil {
				_ = log.Sync()
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default ./likes.{toml,yaml,json})")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
