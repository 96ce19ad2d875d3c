package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/c360studio/semmerge/config"
	"github.com/c360studio/semmerge/dataset"
	"github.com/c360studio/semmerge/export"
	"github.com/c360studio/semmerge/materialize"
	"github.com/c360studio/semmerge/metrics"
	"github.com/c360studio/semmerge/schema"
)

// inputFlags override the input and output sections of the config.
type inputFlags struct {
	schema string
	docs   []string
	format string
	out    string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.schema, "schema", "s", "", "Path to the shape schema")
	cmd.Flags().StringArrayVarP(&f.docs, "docs", "d", nil, "Document glob pattern, in merge order (repeatable)")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "Output format (ntriples, turtle, jsonld)")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Output file (default: stdout)")
}

// apply overrides cfg with explicitly set flags. Flag paths are relative
// to the working directory, not the config root.
func (f *inputFlags) apply(cfg *config.Config) error {
	if f.schema != "" {
		abs, err := filepath.Abs(f.schema)
		if err != nil {
			return err
		}
		cfg.Input.Schema = abs
	}
	if len(f.docs) > 0 {
		patterns := make([]string, 0, len(f.docs))
		for _, p := range f.docs {
			abs, err := filepath.Abs(p)
			if err != nil {
				return err
			}
			patterns = append(patterns, abs)
		}
		cfg.Input.Documents = patterns
	}
	if f.out != "" {
		abs, err := filepath.Abs(f.out)
		if err != nil {
			return err
		}
		cfg.Output.Path = abs
		if f.format == "" {
			if format, ok := export.FormatForPath(abs); ok {
				cfg.Output.Format = string(format)
			}
		}
	}
	if f.format != "" {
		format, err := export.ParseFormat(f.format)
		if err != nil {
			return err
		}
		cfg.Output.Format = string(format)
	}
	return nil
}

func runCmd(global *globalFlags) *cobra.Command {
	flags := &inputFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Merge documents once and write the result",
		Example: `  semmerge run --schema shapes.yaml --docs 'data/a.yaml' --docs 'data/extra/**/*.yaml'
  semmerge run -c semmerge.yaml --out merged.ttl`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd, global)
			if err != nil {
				return err
			}
			if err := flags.apply(cfg); err != nil {
				return err
			}

			_, err = newPipeline(cfg, logger, cmd.OutOrStdout()).Run(cmd.Context())
			return err
		},
	}
	flags.register(cmd)

	return cmd
}

// pipeline loads the inputs, materializes them and writes the output.
type pipeline struct {
	cfg    *config.Config
	logger *slog.Logger
	stdout io.Writer
}

func newPipeline(cfg *config.Config, logger *slog.Logger, stdout io.Writer) *pipeline {
	return &pipeline{cfg: cfg, logger: logger, stdout: stdout}
}

// Run executes one merge.
func (p *pipeline) Run(ctx context.Context) (*materialize.Result, error) {
	if p.cfg.Input.Schema == "" {
		return nil, errors.New("no schema configured (use --schema or input.schema)")
	}
	if len(p.cfg.Input.Documents) == 0 {
		return nil, errors.New("no documents configured (use --docs or input.documents)")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s, err := schema.LoadFile(p.cfg.ResolvePath(p.cfg.Input.Schema))
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	docs, _, err := dataset.NewLoader(p.logger).Load(p.cfg.Input.Root, p.cfg.Input.Documents)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}

	var (
		observers []materialize.Diagnostics
		registry  *prometheus.Registry
		observer  *metrics.Observer
	)
	if p.cfg.Engine.Diagnostics {
		observers = append(observers, materialize.LogDiagnostics(p.logger))
	}
	if p.cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		observer = metrics.NewObserver(registry)
		observers = append(observers, observer)
	}

	res := materialize.Run(s, docs,
		materialize.WithLogger(p.logger),
		materialize.WithSortCacheSize(p.cfg.Engine.SortCacheSize),
		materialize.WithDiagnostics(materialize.MultiDiagnostics(observers...)),
	)

	if observer != nil {
		observer.ObserveResult(res)
		if err := metrics.Log(p.logger, registry); err != nil {
			p.logger.Warn("Failed to gather metrics", "error", err)
		}
	}

	if err := p.write(res); err != nil {
		return nil, err
	}
	return res, nil
}

func (p *pipeline) write(res *materialize.Result) error {
	format, err := export.ParseFormat(p.cfg.Output.Format)
	if err != nil {
		return err
	}
	exporter := export.NewExporter()

	if p.cfg.Output.Path == "" {
		return exporter.Write(p.stdout, format, res.Triples)
	}

	path := p.cfg.ResolvePath(p.cfg.Output.Path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := exporter.Write(f, format, res.Triples); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	p.logger.Info("Wrote merged graph", "path", path, "format", format, "triples", len(res.Triples))
	return nil
}
