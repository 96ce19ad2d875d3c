package materialize

import (
	"testing"

	"github.com/c360studio/semmerge/rdf"
	"github.com/c360studio/semmerge/schema"
	"github.com/c360studio/semmerge/vocabulary/xsd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anyValue() schema.ValueExpr { return schema.Constrain(schema.AnyValue{}) }

func personShape(props ...schema.PropertyExpr) *schema.Shape {
	return &schema.Shape{
		ID:         "person",
		TargetType: ex + "Person",
		Key:        ex + "email",
		Properties: append([]schema.PropertyExpr{
			schema.Property(ex+"email", anyValue()),
		}, props...),
	}
}

func TestMaterializeMergesAndCapsValues(t *testing.T) {
	s := schema.MustNew(personShape(
		schema.Property(ex+"name", anyValue()).Cardinality(1, 2),
	))
	p := rdf.BlankNode("p")
	docs := [][]rdf.Triple{
		{typed(p, "Person"), prop(p, "email", lit("a@x.com")), prop(p, "name", lit("Countess")), prop(p, "name", lit("Ada"))},
		{typed(p, "Person"), prop(p, "email", lit("a@x.com")), prop(p, "name", lit("Augusta"))},
	}

	rec := &recorder{}
	res := Run(s, docs, WithDiagnostics(rec))

	people := subjectsOf(res.Triples, "Person")
	require.Len(t, people, 1)
	assert.True(t, people[0].IsBlankNode())
	assert.Equal(t, []rdf.Term{lit("a@x.com")}, objects(res.Triples, people[0], "email"))
	assert.Equal(t, []rdf.Term{lit("Ada"), lit("Augusta")}, objects(res.Triples, people[0], "name"))

	require.Len(t, rec.merges, 1)
	assert.Equal(t, 2, rec.merges[0].Merged)
	assert.Equal(t, 1, res.Instances["person"])
	assert.Equal(t, 0, res.Deleted)
	assert.Len(t, res.Triples, 4)
}

func TestMaterializeDropsUnresolvedReference(t *testing.T) {
	s := schema.MustNew(
		personShape(schema.Property(ex+"address", schema.Ref("address"))),
		&schema.Shape{
			ID:         "address",
			TargetType: ex + "Address",
			Properties: []schema.PropertyExpr{schema.Property(ex+"city", anyValue())},
		},
	)
	p, a := rdf.BlankNode("p"), rdf.BlankNode("a")
	docs := [][]rdf.Triple{{
		typed(p, "Person"), prop(p, "email", lit("a@x.com")), prop(p, "address", a),
		typed(a, "Address"),
	}}

	rec := &recorder{}
	res := Run(s, docs, WithDiagnostics(rec))

	assert.Empty(t, res.Triples)
	require.Len(t, rec.rejections, 1)
	assert.Equal(t, "address", rec.rejections[0].Shape)
	assert.Equal(t, ex+"city", rec.rejections[0].Predicate)

	require.Len(t, rec.deletions, 1)
	d := rec.deletions[0]
	assert.Equal(t, "person", d.Shape)
	assert.Equal(t, CauseUnresolved, d.Cause)
	assert.Equal(t, ex+"address", d.Predicate)
	assert.Equal(t, 0, d.Count)
	assert.Equal(t, 1, d.Min)
}

func TestMaterializeNamedReferenceIsDropped(t *testing.T) {
	s := schema.MustNew(
		personShape(schema.Property(ex+"knows", schema.Ref("person")).Cardinality(0, schema.Unbounded)),
	)
	p := rdf.BlankNode("p")
	docs := [][]rdf.Triple{{
		typed(p, "Person"), prop(p, "email", lit("a@x.com")), prop(p, "knows", iri("bob")),
	}}

	out := Materialize(s, docs)
	people := subjectsOf(out, "Person")
	require.Len(t, people, 1)
	assert.Empty(t, objects(out, people[0], "knows"))
}

func chainSchema() *schema.Schema {
	link := func(id, pred, target string) *schema.Shape {
		return &schema.Shape{
			ID:         id,
			TargetType: ex + id,
			Properties: []schema.PropertyExpr{
				schema.Property(ex+"name", anyValue()),
				schema.Property(ex+pred, schema.Ref(target)),
			},
		}
	}
	return schema.MustNew(
		link("A", "b", "B"),
		link("B", "c", "C"),
		link("C", "d", "D"),
		&schema.Shape{
			ID:         "D",
			TargetType: ex + "D",
			Properties: []schema.PropertyExpr{schema.Property(ex+"val", anyValue())},
		},
	)
}

func chainDocs(dVal bool) [][]rdf.Triple {
	a, b, c, d := rdf.BlankNode("a"), rdf.BlankNode("b"), rdf.BlankNode("c"), rdf.BlankNode("d")
	doc := []rdf.Triple{
		typed(a, "A"), prop(a, "name", lit("a")), prop(a, "b", b),
		typed(b, "B"), prop(b, "name", lit("b")), prop(b, "c", c),
		typed(c, "C"), prop(c, "name", lit("c")), prop(c, "d", d),
		typed(d, "D"),
	}
	if dVal {
		doc = append(doc, prop(d, "val", lit("d")))
	}
	return [][]rdf.Triple{doc}
}

func TestMaterializeChainCascade(t *testing.T) {
	rec := &recorder{}
	res := Run(chainSchema(), chainDocs(false), WithDiagnostics(rec))

	assert.Empty(t, res.Triples)
	assert.Equal(t, 3, res.Deleted)
	require.Len(t, rec.deletions, 3)
	assert.Equal(t, "C", rec.deletions[0].Shape)
	assert.Equal(t, CauseUnresolved, rec.deletions[0].Cause)
	for i, shape := range []string{"B", "A"} {
		d := rec.deletions[i+1]
		assert.Equal(t, shape, d.Shape)
		assert.Equal(t, CauseCascade, d.Cause)
		require.NotNil(t, d.Trigger)
	}
	assert.Equal(t, "C", rec.deletions[1].Trigger.Shape)
	assert.Equal(t, "B", rec.deletions[2].Trigger.Shape)
}

func TestMaterializeChainEmitsOnce(t *testing.T) {
	out := Materialize(chainSchema(), chainDocs(true))

	assert.Len(t, subjectsOf(out, "A"), 1)
	assert.Len(t, subjectsOf(out, "D"), 1)
	assertNoDuplicates(t, out)
	// 4 type triples, 3 names, 3 links, 1 val
	assert.Len(t, out, 11)
}

func TestMaterializeSharedReferenceEmittedOnce(t *testing.T) {
	s := schema.MustNew(
		personShape(schema.Property(ex+"address", schema.Ref("address"))),
		&schema.Shape{
			ID:         "address",
			TargetType: ex + "Address",
			Properties: []schema.PropertyExpr{schema.Property(ex+"city", anyValue())},
		},
	)
	p, q, a := rdf.BlankNode("p"), rdf.BlankNode("q"), rdf.BlankNode("a")
	docs := [][]rdf.Triple{{
		typed(p, "Person"), prop(p, "email", lit("p@x.com")), prop(p, "address", a),
		typed(q, "Person"), prop(q, "email", lit("q@x.com")), prop(q, "address", a),
		typed(a, "Address"), prop(a, "city", lit("Paris")),
	}}

	out := Materialize(s, docs)

	assert.Len(t, subjectsOf(out, "Person"), 2)
	assert.Len(t, subjectsOf(out, "Address"), 1)
	assertNoDuplicates(t, out)
}

func TestMaterializeSortedProperties(t *testing.T) {
	tests := []struct {
		name   string
		sort   schema.Sort
		values []rdf.Term
		want   rdf.Term
	}{
		{
			name:   "numeric descending",
			sort:   schema.Sort{Kind: schema.SortNumeric, Direction: schema.Descending},
			values: []rdf.Term{rdf.Literal("5", xsd.Integer), rdf.Literal("9", xsd.Integer)},
			want:   rdf.Literal("9", xsd.Integer),
		},
		{
			name:   "temporal ascending",
			sort:   schema.Sort{Kind: schema.SortTemporal},
			values: []rdf.Term{rdf.Literal("2024-01-01", xsd.Date), rdf.Literal("2020-06-01", xsd.Date)},
			want:   rdf.Literal("2020-06-01", xsd.Date),
		},
		{
			name:   "boolean and",
			sort:   schema.Sort{Kind: schema.SortBooleanAnd},
			values: []rdf.Term{rdf.Literal("true", xsd.Boolean), rdf.Literal("false", xsd.Boolean)},
			want:   rdf.Literal("false", xsd.Boolean),
		},
		{
			name:   "boolean or",
			sort:   schema.Sort{Kind: schema.SortBooleanOr},
			values: []rdf.Term{rdf.Literal("false", xsd.Boolean), rdf.Literal("true", xsd.Boolean)},
			want:   rdf.Literal("true", xsd.Boolean),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := schema.MustNew(personShape(
				schema.Property(ex+"value", anyValue()).Annotate(schema.SortedBy(tt.sort)),
			))
			p := rdf.BlankNode("p")
			var docs [][]rdf.Triple
			for _, v := range tt.values {
				docs = append(docs, []rdf.Triple{
					typed(p, "Person"), prop(p, "email", lit("a@x.com")), prop(p, "value", v),
				})
			}

			out := Materialize(s, docs)
			people := subjectsOf(out, "Person")
			require.Len(t, people, 1)
			assert.Equal(t, []rdf.Term{tt.want}, objects(out, people[0], "value"))
		})
	}
}

func TestMaterializeWithReference(t *testing.T) {
	temporalDesc := schema.Sort{Kind: schema.SortTemporal, Direction: schema.Descending}
	s := schema.MustNew(personShape(
		schema.Property(ex+"modified", schema.Constrain(schema.Datatype{IRI: xsd.DateTime})).
			Cardinality(0, schema.Unbounded).
			Annotate(schema.SortedBy(temporalDesc)),
		schema.Property(ex+"name", anyValue()).
			Annotate(schema.WithRef(ex+"modified", temporalDesc)),
	))
	p := rdf.BlankNode("p")
	docs := [][]rdf.Triple{
		{
			typed(p, "Person"), prop(p, "email", lit("a@x.com")),
			prop(p, "modified", rdf.Literal("2020-01-01T00:00:00Z", xsd.DateTime)), prop(p, "name", lit("Old")),
		},
		{
			typed(p, "Person"), prop(p, "email", lit("a@x.com")),
			prop(p, "modified", rdf.Literal("2024-01-01T00:00:00Z", xsd.DateTime)), prop(p, "name", lit("New")),
		},
	}

	out := Materialize(s, docs)
	people := subjectsOf(out, "Person")
	require.Len(t, people, 1)
	assert.Equal(t, []rdf.Term{lit("New")}, objects(out, people[0], "name"))
	assert.Equal(t, []rdf.Term{
		rdf.Literal("2024-01-01T00:00:00Z", xsd.DateTime),
		rdf.Literal("2020-01-01T00:00:00Z", xsd.DateTime),
	}, objects(out, people[0], "modified"))
}

func TestMaterializeWithReferenceFollowsResolvedSiblings(t *testing.T) {
	via := schema.Property(ex+"via", schema.Ref("agent")).Cardinality(1, schema.Unbounded)
	name := schema.Property(ex+"name", anyValue()).
		Cardinality(1, schema.Unbounded).
		Annotate(schema.WithRef(ex+"via", schema.DefaultSort))
	agent := &schema.Shape{
		ID:         "agent",
		TargetType: ex + "Agent",
		Properties: []schema.PropertyExpr{schema.Property(ex+"label", anyValue())},
	}

	p, a := rdf.BlankNode("p"), rdf.BlankNode("a")
	docs := [][]rdf.Triple{
		{
			typed(p, "Person"), prop(p, "email", lit("a@x.com")), prop(p, "via", a), prop(p, "name", lit("Old")),
			typed(a, "Agent"), prop(a, "label", lit("trusted")),
		},
		{
			typed(p, "Person"), prop(p, "email", lit("a@x.com")), prop(p, "via", a), prop(p, "name", lit("New")),
			typed(a, "Agent"),
		},
	}

	orders := map[string][]schema.PropertyExpr{
		"reference first": {via, name},
		"reference last":  {name, via},
	}
	for label, props := range orders {
		t.Run(label, func(t *testing.T) {
			s := schema.MustNew(personShape(props...), agent)
			out := Materialize(s, docs)
			people := subjectsOf(out, "Person")
			require.Len(t, people, 1)
			assert.Equal(t, []rdf.Term{lit("Old")}, objects(out, people[0], "name"))
			assert.Len(t, objects(out, people[0], "via"), 1)
		})
	}
}

func metaSchema() *schema.Schema {
	return schema.MustNew(
		personShape(
			schema.Property(ex+"name", anyValue()).
				Cardinality(1, 1).
				Annotate(schema.MetaRef(ex+"modified",
					schema.Sort{Kind: schema.SortTemporal, Direction: schema.Descending}, "source")),
		),
		&schema.Shape{
			ID:         "source",
			TargetType: ex + "Source",
			Properties: []schema.PropertyExpr{
				schema.Property(ex+"modified", schema.Constrain(schema.Datatype{IRI: xsd.DateTime})),
			},
		},
	)
}

func metaDocs(describeSecond bool) [][]rdf.Triple {
	p := rdf.BlankNode("p")
	g0, g1 := iri("g0"), iri("g1")
	doc0 := append(
		inGraph(g0, typed(p, "Person"), prop(p, "email", lit("a@x.com")), prop(p, "name", lit("Old"))),
		typed(g0, "Source"), prop(g0, "modified", rdf.Literal("2020-01-01T00:00:00Z", xsd.DateTime)),
	)
	doc1 := append(
		inGraph(g1, typed(p, "Person"), prop(p, "email", lit("a@x.com")), prop(p, "name", lit("New"))),
		typed(g1, "Source"),
	)
	if describeSecond {
		doc1 = append(doc1, prop(g1, "modified", rdf.Literal("2024-01-01T00:00:00Z", xsd.DateTime)))
	}
	return [][]rdf.Triple{doc0, doc1}
}

func TestMaterializeMetaReference(t *testing.T) {
	tests := []struct {
		name           string
		describeSecond bool
		want           rdf.Term
	}{
		{"newest graph wins", true, lit("New")},
		{"undescribed graph is ignored", false, lit("Old")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Materialize(metaSchema(), metaDocs(tt.describeSecond))
			people := subjectsOf(out, "Person")
			require.Len(t, people, 1)
			assert.Equal(t, []rdf.Term{tt.want}, objects(out, people[0], "name"))
		})
	}
}

func TestMaterializeDeterministic(t *testing.T) {
	s := metaSchema()
	docs := metaDocs(true)
	first := Materialize(s, docs)
	for range 5 {
		assert.Equal(t, first, Materialize(s, docs))
	}
}

func TestMaterializeRespectsCardinality(t *testing.T) {
	s := schema.MustNew(personShape(
		schema.Property(ex+"name", anyValue()).Cardinality(1, 2),
		schema.Property(ex+"tag", anyValue()).Cardinality(0, 3),
	))
	p := rdf.BlankNode("p")
	var docs [][]rdf.Triple
	for _, n := range []string{"a", "b", "c", "d", "e"} {
		docs = append(docs, []rdf.Triple{
			typed(p, "Person"), prop(p, "email", lit("x@x.com")),
			prop(p, "name", lit(n)), prop(p, "tag", lit("t"+n)),
		})
	}

	out := Materialize(s, docs)
	people := subjectsOf(out, "Person")
	require.Len(t, people, 1)
	assert.Len(t, objects(out, people[0], "email"), 1)
	assert.Len(t, objects(out, people[0], "name"), 2)
	assert.Len(t, objects(out, people[0], "tag"), 3)
}

func assertNoDuplicates(t *testing.T, triples []rdf.Triple) {
	t.Helper()
	seen := make(map[rdf.Triple]struct{}, len(triples))
	for _, tr := range triples {
		_, dup := seen[tr]
		assert.False(t, dup, "duplicate triple %s", tr)
		seen[tr] = struct{}{}
	}
}
