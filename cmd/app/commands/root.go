// Package commands implements the doombot command line.
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/yingtu35/doombot/internal/config"
	"github.com/yingtu35/doombot/internal/logger"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// debug switches the logger to development mode at debug level.
	debug bool

	// cfg and log are set by the root command before any subcommand runs.
	cfg *config.Config
	log logger.Logger = logger.NewNop()

	rootCmd = &cobra.Command{
		Use:   "doombot",
		Short: "Weekly website review: broken links, dropdowns and grammar",
		Long: `doombot checks a list of pages for broken links, dropdown and accordion
problems, browser console errors and spelling or grammar mistakes, then
posts the report to Slack, Google Docs, email and local files.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = log.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command until it finishes or the process receives
// SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $CONFIG_PATH or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(
		newRunCmd(),
		newScheduleCmd(),
		newPreflightCmd(),
	)
}

// setup loads the configuration and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = config.GetConfigPath(config.DefaultPath)
	}

	c, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if debug {
		c.Logging.Level = "debug"
		c.Logging.Development = true
	}

	l, err := logger.New(c.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	cfg, log = c, l
	log.Debug("configuration loaded", logger.String("path", path), logger.Strings("urls", cfg.URLs))
	return nil
}
