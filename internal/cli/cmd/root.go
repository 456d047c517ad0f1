// Package cmd provides Cobra CLI commands for panetree.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/panetree/internal/cli"
	"github.com/bnema/panetree/internal/domain/build"
)

var (
	app       *cli.App
	buildInfo build.Info
	rootOpts  cli.Options
	rootCmd   = &cobra.Command{
		Use:   "panetree",
		Short: "Build, edit and store split-pane window layouts",
		Long: `panetree manages tiling layouts: a tree of panes split horizontally or
vertically whose leaves hold ordered windows.

Layouts are stored by name (SQLite or plain files). Every edit command
restores the layout, applies the operation, prunes panes left empty, and
saves it back.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip initialization for commands that don't need app context
			switch cmd.Name() {
			case "help", "completion", "version", "schema":
				return nil
			}

			var err error
			app, err = cli.NewApp(rootOpts)
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			app.BuildInfo = buildInfo
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if app != nil {
				_ = app.Close()
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&rootOpts.ConfigPath, "config", "", "config file (default $XDG_CONFIG_HOME/panetree/config.toml)")
	rootCmd.PersistentFlags().StringVar(&rootOpts.LogLevel, "log-level", "", "override the configured log level")
	rootCmd.PersistentFlags().StringVar(&rootOpts.Storage, "storage", "", "override the storage backend (sqlite, disk)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GetApp returns the initialized app (for use by subcommands).
func GetApp() *cli.App {
	return app
}

// SetBuildInfo sets the build information (called from main.go before Execute).
func SetBuildInfo(info build.Info) {
	buildInfo = info
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and build information",
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "panetree %s\n", buildInfo.Version)
		fmt.Fprintf(out, "  commit: %s\n", buildInfo.Commit)
		fmt.Fprintf(out, "  built:  %s\n", buildInfo.BuildDate)
		fmt.Fprintf(out, "  go:     %s\n", buildInfo.GoVersion)
		fmt.Fprintf(out, "  %s\n", build.RepoURL())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
