package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/c360studio/semmerge/config"
	"github.com/c360studio/semmerge/dataset"
)

func watchCmd(global *globalFlags) *cobra.Command {
	flags := &inputFlags{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Merge documents and re-run whenever an input changes",
		Long: `Watch runs a merge, then watches the schema and every document under the
input root. Changes are debounced and each batch triggers one new run.
A failing run is logged and watching continues.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd, global)
			if err != nil {
				return err
			}
			if err := flags.apply(cfg); err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return watch(ctx, cfg, newPipeline(cfg, logger, cmd.OutOrStdout()), logger)
		},
	}
	flags.register(cmd)

	return cmd
}

// watch runs p once, then again after every batch of input changes until
// ctx is done. Runs never overlap.
func watch(ctx context.Context, cfg *config.Config, p *pipeline, logger *slog.Logger) error {
	wcfg := dataset.DefaultWatchConfig(cfg.Input.Root)
	wcfg.Debounce = cfg.Watch.Debounce
	wcfg.Patterns = watchPatterns(cfg, logger)

	w, err := dataset.NewWatcher(wcfg, logger)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Stop()

	rerun := func(reason string) {
		if _, err := p.Run(ctx); err != nil {
			logger.Error("Merge failed", "reason", reason, "error", err)
		}
	}
	rerun("startup")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Watch stopped")
			return nil
		case event, ok := <-w.Events():
			if !ok {
				return nil
			}
			logger.Info("Input changed", "path", event.Path, "operation", event.Operation)
			// Collapse events that arrived with the same batch
			for drained := false; !drained; {
				select {
				case next, ok := <-w.Events():
					if !ok {
						return nil
					}
					logger.Debug("Input changed", "path", next.Path, "operation", next.Operation)
				default:
					drained = true
				}
			}
			rerun(event.Path)
		}
	}
}

// watchPatterns maps the schema path and the document patterns onto
// patterns relative to the input root. Inputs outside the root are not
// watched.
func watchPatterns(cfg *config.Config, logger *slog.Logger) []string {
	root := cfg.Input.Root
	inputs := append([]string{cfg.Input.Schema}, cfg.Input.Documents...)

	patterns := make([]string, 0, len(inputs))
	for _, in := range inputs {
		if in == "" {
			continue
		}
		if !filepath.IsAbs(in) {
			patterns = append(patterns, filepath.ToSlash(in))
			continue
		}
		rel, err := filepath.Rel(root, in)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			logger.Warn("Input outside root is not watched", "path", in, "root", root)
			continue
		}
		patterns = append(patterns, filepath.ToSlash(rel))
	}
	return patterns
}
