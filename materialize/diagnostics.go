package materialize

import (
	"log/slog"

	"github.com/c360studio/semmerge/pushout"
	"github.com/c360studio/semmerge/rdf"
)

// Rejection describes a candidate subject that never became an instance
// because a property had too few acceptable values.
type Rejection struct {
	Shape     string
	Subject   rdf.Term
	Predicate string
	Count     int
	Min       int
}

// Diagnostics observes the otherwise silent decisions of a run.
// Implementations are called synchronously from the run's goroutine.
type Diagnostics interface {
	OnMerge(stats pushout.Stats)
	OnReject(r Rejection)
	OnDelete(d Deletion)
}

// NopDiagnostics ignores every event.
type NopDiagnostics struct{}

// OnMerge implements Diagnostics.
func (NopDiagnostics) OnMerge(pushout.Stats) {}

// OnReject implements Diagnostics.
func (NopDiagnostics) OnReject(Rejection) {}

// OnDelete implements Diagnostics.
func (NopDiagnostics) OnDelete(Deletion) {}

// multiDiagnostics fans events out to several observers.
type multiDiagnostics []Diagnostics

// MultiDiagnostics combines observers; nil entries are skipped.
func MultiDiagnostics(observers ...Diagnostics) Diagnostics {
	var m multiDiagnostics
	for _, o := range observers {
		if o != nil {
			m = append(m, o)
		}
	}
	if len(m) == 1 {
		return m[0]
	}
	return m
}

func (m multiDiagnostics) OnMerge(stats pushout.Stats) {
	for _, o := range m {
		o.OnMerge(stats)
	}
}

func (m multiDiagnostics) OnReject(r Rejection) {
	for _, o := range m {
		o.OnReject(r)
	}
}

func (m multiDiagnostics) OnDelete(d Deletion) {
	for _, o := range m {
		o.OnDelete(d)
	}
}

// logDiagnostics reports events at debug level.
type logDiagnostics struct {
	logger *slog.Logger
}

// LogDiagnostics returns an observer that logs every event at debug level.
func LogDiagnostics(logger *slog.Logger) Diagnostics {
	if logger == nil {
		logger = slog.Default()
	}
	return logDiagnostics{logger: logger}
}

func (l logDiagnostics) OnMerge(stats pushout.Stats) {
	l.logger.Debug("Computed pushout",
		"documents", stats.Documents,
		"triples", stats.Triples,
		"blank_nodes", stats.BlankNodes,
		"classes", stats.Classes,
		"merged", stats.Merged,
		"rounds", stats.Rounds)
}

func (l logDiagnostics) OnReject(r Rejection) {
	l.logger.Debug("Rejected candidate",
		"shape", r.Shape,
		"subject", r.Subject.String(),
		"predicate", r.Predicate,
		"count", r.Count,
		"min", r.Min)
}

func (l logDiagnostics) OnDelete(d Deletion) {
	attrs := []any{
		"shape", d.Shape,
		"subject", d.Subject.String(),
		"cause", d.Cause.String(),
	}
	if d.Predicate != "" {
		attrs = append(attrs, "predicate", d.Predicate, "count", d.Count, "min", d.Min)
	}
	if d.Trigger != nil {
		attrs = append(attrs, "trigger_shape", d.Trigger.Shape, "trigger_subject", d.Trigger.Subject.String())
	}
	l.logger.Debug("Deleted instance", attrs...)
}
