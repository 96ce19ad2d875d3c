package metrics

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/c360studio/semmerge/materialize"
	"github.com/c360studio/semmerge/rdf"
	"github.com/c360studio/semmerge/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ex = "http://ex.org/"

func testSchema() *schema.Schema {
	anyValue := schema.Constrain(schema.AnyValue{})
	return schema.MustNew(
		&schema.Shape{
			ID:         "person",
			TargetType: ex + "Person",
			Key:        ex + "email",
			Properties: []schema.PropertyExpr{
				schema.Property(ex+"email", anyValue),
				schema.Property(ex+"address", schema.Ref("address")),
			},
		},
		&schema.Shape{
			ID:         "address",
			TargetType: ex + "Address",
			Properties: []schema.PropertyExpr{schema.Property(ex+"city", anyValue)},
		},
	)
}

func testDocs() [][]rdf.Triple {
	p, q, a, b := rdf.BlankNode("p"), rdf.BlankNode("q"), rdf.BlankNode("a"), rdf.BlankNode("b")
	typ := func(s rdf.Term, class string) rdf.Triple { return rdf.NewTriple(s, rdf.Type, rdf.NamedNode(ex+class)) }
	prop := func(s rdf.Term, pred string, o rdf.Term) rdf.Triple { return rdf.NewTriple(s, ex+pred, o) }
	return [][]rdf.Triple{
		{
			typ(p, "Person"), prop(p, "email", rdf.Literal("p@x.com", "")), prop(p, "address", a),
			typ(a, "Address"), prop(a, "city", rdf.Literal("Oslo", "")),
			typ(q, "Person"), prop(q, "email", rdf.Literal("q@x.com", "")), prop(q, "address", b),
			typ(b, "Address"),
		},
		{
			typ(p, "Person"), prop(p, "email", rdf.Literal("p@x.com", "")),
		},
	}
}

func TestObserverCountsRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := NewObserver(reg)

	res := materialize.Run(testSchema(), testDocs(), materialize.WithDiagnostics(obs))
	obs.ObserveResult(res)

	assert.Equal(t, 1.0, testutil.ToFloat64(obs.runs))
	assert.Equal(t, 2.0, testutil.ToFloat64(obs.merged))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.rejections.WithLabelValues("address", ex+"city")))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.deletions.WithLabelValues("person", "unresolved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.instances.WithLabelValues("person")))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.instances.WithLabelValues("address")))
	assert.Equal(t, float64(len(res.Triples)), testutil.ToFloat64(obs.triples))

	count, err := testutil.GatherAndCount(reg, "semmerge_run_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewObserverNilRegisterer(t *testing.T) {
	obs := NewObserver(nil)
	obs.OnDelete(materialize.Deletion{Shape: "person", Cause: materialize.CauseSweep})
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.deletions.WithLabelValues("person", "sweep")))
}

func TestNewObserverDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewObserver(reg)
	assert.Panics(t, func() { NewObserver(reg) })
}

func TestLog(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := NewObserver(reg)
	obs.OnReject(materialize.Rejection{Shape: "address", Predicate: ex + "city"})

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	require.NoError(t, Log(logger, reg))

	out := buf.String()
	assert.Contains(t, out, "metric=semmerge_rejections_total")
	assert.Contains(t, out, "shape=address")
	assert.Contains(t, out, "metric=semmerge_runs_total")
}
