// Package main provides the semmerge CLI entry point.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/c360studio/semmerge/config"
)

const (
	// Version is the semmerge version.
	Version = "0.1.0"
	// BuildTime is set at build time.
	BuildTime = "dev"
	appName   = "semmerge"
)

func main() {
	// Panic recovery to ensure graceful failure with stack trace
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, debug.Stack())
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Merge RDF documents against a shape schema",
		Long: `Semmerge merges several RDF documents into one graph.

Blank nodes that share a key are unified across documents, every subject
is matched against the schema's shapes, and only instances whose
constraints hold survive. Values are ranked and capped per property and
the result is serialized as N-Triples, Turtle or JSON-LD.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to configuration file")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(runCmd(flags))
	cmd.AddCommand(watchCmd(flags))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

// loadConfig resolves layered configuration and installs the logger.
func loadConfig(cmd *cobra.Command, flags *globalFlags) (*config.Config, *slog.Logger, error) {
	// Config loading logs before the configured level is known
	bootstrap := newLogger(cmd.ErrOrStderr(), flags.logLevel)

	cfg, err := config.NewLoader(bootstrap).Load(flags.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.Log.Level)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	logLevel := slog.LevelInfo
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	}))
}
