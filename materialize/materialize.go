package materialize

import (
	"log/slog"
	"time"

	"github.com/c360studio/semmerge/pushout"
	"github.com/c360studio/semmerge/rdf"
	"github.com/c360studio/semmerge/schema"
)

// Option configures a run.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	diag      Diagnostics
	cacheSize int
}

// WithLogger sets the logger for run summaries. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithDiagnostics attaches an observer for merges, rejections and deletions.
func WithDiagnostics(d Diagnostics) Option {
	return func(o *options) { o.diag = d }
}

// WithSortCacheSize bounds the decoded sort-key cache.
func WithSortCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// Result is the output of a run with its statistics.
type Result struct {
	Triples []rdf.Triple
	Pushout pushout.Stats
	// Instances counts surviving instances per shape id.
	Instances map[string]int
	Rejected  int
	Deleted   int
	Duration  time.Duration
}

type engine struct {
	schema   *schema.Schema
	po       *pushout.Result
	tables   *Tables
	order    *orderer
	diag     Diagnostics
	rejected int
}

func newEngine(s *schema.Schema, po *pushout.Result, o *options) *engine {
	return &engine{
		schema: s,
		po:     po,
		tables: NewTables(s, o.diag),
		order:  newOrderer(o.cacheSize),
		diag:   o.diag,
	}
}

func buildOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.diag == nil {
		o.diag = NopDiagnostics{}
	}
	return o
}

// Materialize merges documents under s and returns the canonical triples.
// Subjects and referenced values that cannot satisfy the schema are left
// out; nothing is reported unless a Diagnostics option is given.
func Materialize(s *schema.Schema, documents [][]rdf.Triple, opts ...Option) []rdf.Triple {
	return Run(s, documents, opts...).Triples
}

// Run is Materialize returning statistics alongside the triples.
func Run(s *schema.Schema, documents [][]rdf.Triple, opts ...Option) *Result {
	o := buildOptions(opts)
	start := time.Now()

	po := pushout.Build(s, documents)
	o.diag.OnMerge(po.Stats())

	e := newEngine(s, po, o)
	e.buildTables()
	triples := e.emit()

	res := &Result{
		Triples:   triples,
		Pushout:   po.Stats(),
		Instances: make(map[string]int, s.Len()),
		Rejected:  e.rejected,
		Deleted:   e.tables.Deleted(),
		Duration:  time.Since(start),
	}
	for _, shape := range s.Shapes() {
		res.Instances[shape.ID] = e.tables.Len(shape.ID)
	}

	o.logger.Info("Materialized documents",
		"documents", len(documents),
		"classes", res.Pushout.Classes,
		"merged", res.Pushout.Merged,
		"rejected", res.Rejected,
		"deleted", res.Deleted,
		"triples", len(res.Triples),
		"duration", res.Duration)
	return res
}

// BuildTables runs the pushout and both table passes to the fixpoint and
// returns the tables without collecting or emitting.
func BuildTables(s *schema.Schema, documents [][]rdf.Triple, opts ...Option) *Tables {
	o := buildOptions(opts)
	po := pushout.Build(s, documents)
	o.diag.OnMerge(po.Stats())
	e := newEngine(s, po, o)
	e.buildTables()
	return e.tables
}
