// Package metrics exposes materialization diagnostics as Prometheus
// counters.
package metrics

import (
	"log/slog"
	"strings"

	"github.com/c360studio/semmerge/materialize"
	"github.com/c360studio/semmerge/pushout"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric name.
const Namespace = "semmerge"

// Observer counts merges, rejections, deletions and emitted triples. It
// implements materialize.Diagnostics.
type Observer struct {
	runs       prometheus.Counter
	blankNodes prometheus.Counter
	merged     prometheus.Counter
	classes    prometheus.Gauge
	rounds     prometheus.Histogram
	rejections *prometheus.CounterVec
	deletions  *prometheus.CounterVec
	instances  *prometheus.GaugeVec
	triples    prometheus.Counter
	duration   prometheus.Histogram
}

var _ materialize.Diagnostics = (*Observer)(nil)

// NewObserver registers the collectors on reg. A nil reg creates
// unregistered collectors.
func NewObserver(reg prometheus.Registerer) *Observer {
	f := promauto.With(reg)
	return &Observer{
		runs: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "runs_total",
			Help:      "Materialization runs",
		}),
		blankNodes: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "blank_nodes_total",
			Help:      "Document-tagged blank nodes seen by the pushout",
		}),
		merged: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "merged_blank_nodes_total",
			Help:      "Blank nodes that joined a class with other members",
		}),
		classes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "classes",
			Help:      "Equivalence classes in the last pushout",
		}),
		rounds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "key_match_rounds",
			Help:      "Key matching passes needed to reach a fixpoint",
			Buckets:   []float64{1, 2, 3, 5, 8, 13},
		}),
		rejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "rejections_total",
			Help:      "Candidate subjects rejected by the matcher",
		}, []string{"shape", "predicate"}),
		deletions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "deletions_total",
			Help:      "Instances removed from the tables",
		}, []string{"shape", "cause"}),
		instances: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "instances",
			Help:      "Surviving instances per shape in the last run",
		}, []string{"shape"}),
		triples: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "emitted_triples_total",
			Help:      "Triples written by the emitter",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "run_duration_seconds",
			Help:      "Materialization run duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
	}
}

// OnMerge records pushout statistics.
func (o *Observer) OnMerge(stats pushout.Stats) {
	o.runs.Inc()
	o.blankNodes.Add(float64(stats.BlankNodes))
	o.merged.Add(float64(stats.Merged))
	o.classes.Set(float64(stats.Classes))
	o.rounds.Observe(float64(stats.Rounds))
}

// OnReject counts a rejected candidate.
func (o *Observer) OnReject(r materialize.Rejection) {
	o.rejections.WithLabelValues(r.Shape, r.Predicate).Inc()
}

// OnDelete counts a deleted instance by cause.
func (o *Observer) OnDelete(d materialize.Deletion) {
	o.deletions.WithLabelValues(d.Shape, d.Cause.String()).Inc()
}

// ObserveResult records the outcome of a completed run.
func (o *Observer) ObserveResult(res *materialize.Result) {
	o.triples.Add(float64(len(res.Triples)))
	o.duration.Observe(res.Duration.Seconds())
	for shape, n := range res.Instances {
		o.instances.WithLabelValues(shape).Set(float64(n))
	}
}

// Log writes every gathered sample at info level, one record per series.
func Log(logger *slog.Logger, g prometheus.Gatherer) error {
	if logger == nil {
		logger = slog.Default()
	}
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), Namespace+"_") {
			continue
		}
		for _, m := range mf.GetMetric() {
			attrs := []any{"metric", mf.GetName()}
			for _, lp := range m.GetLabel() {
				attrs = append(attrs, lp.GetName(), lp.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				attrs = append(attrs, "value", m.GetCounter().GetValue())
			case m.GetGauge() != nil:
				attrs = append(attrs, "value", m.GetGauge().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				attrs = append(attrs, "count", h.GetSampleCount(), "sum", h.GetSampleSum())
			}
			logger.Info("Metric", attrs...)
		}
	}
	return nil
}
