package materialize

import (
	"testing"

	"github.com/c360studio/semmerge/rdf"
	"github.com/c360studio/semmerge/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// subjectNamed finds the live subject of shapeID whose ex:name is name.
func subjectNamed(t *testing.T, tables *Tables, shapeID, name string) rdf.Term {
	t.Helper()
	for _, s := range tables.Subjects(shapeID) {
		inst, _ := tables.Lookup(shapeID, s)
		i := inst.Shape.PropertyIndex(ex + "name")
		if i >= 0 && inst.Props[i].Has(lit(name)) {
			return s
		}
	}
	require.Failf(t, "subject not found", "%s named %q", shapeID, name)
	return rdf.Term{}
}

// assertIntegrity checks that every live instance meets its minimums and
// that every reference it holds resolves to a live instance.
func assertIntegrity(t *testing.T, tables *Tables) {
	t.Helper()
	for _, k := range tables.Survivors() {
		inst, ok := tables.Lookup(k.Shape, k.Subject)
		require.True(t, ok)
		for _, pv := range inst.Props {
			assert.True(t, pv.Satisfied(), "%s %s below minimum on %s", k.Shape, k.Subject, pv.Expr.Predicate)
			for _, v := range pv.Values() {
				if pv.Expr.Value.IsShapeRef() {
					assert.True(t, tables.Contains(pv.Expr.Value.Shape, v), "%s %s dangling %s", k.Shape, k.Subject, v)
				}
				if pv.Expr.Annotation.Kind == schema.MetaReference {
					for _, g := range pv.Support(v) {
						assert.True(t, tables.Contains(pv.Expr.Annotation.GraphShape, g))
					}
				}
			}
		}
	}
}

func TestDeleteCascadesAlongChain(t *testing.T) {
	tables := BuildTables(chainSchema(), chainDocs(true))
	require.Len(t, tables.Survivors(), 4)

	c := subjectNamed(t, tables, "C", "c")
	assert.Equal(t, 3, tables.Delete("C", c))
	assert.Equal(t, 0, tables.Len("A"))
	assert.Equal(t, 0, tables.Len("B"))
	assert.Equal(t, 0, tables.Len("C"))
	assert.Equal(t, 1, tables.Len("D"))
	assertIntegrity(t, tables)
}

func TestDeleteIsIdempotent(t *testing.T) {
	tables := BuildTables(chainSchema(), chainDocs(true))
	c := subjectNamed(t, tables, "C", "c")

	require.Equal(t, 3, tables.Delete("C", c))
	assert.Equal(t, 0, tables.Delete("C", c))
	assert.Equal(t, 0, tables.Delete("C", rdf.BlankNode("missing")))
	assert.Equal(t, 0, tables.Delete("nope", c))
	assert.Equal(t, 3, tables.Deleted())
}

// diamondSchema has hubs needing two spokes and spokes needing a leaf.
func diamondSchema() *schema.Schema {
	named := func(id string, props ...schema.PropertyExpr) *schema.Shape {
		return &schema.Shape{
			ID:         id,
			TargetType: ex + id,
			Properties: append([]schema.PropertyExpr{schema.Property(ex+"name", anyValue())}, props...),
		}
	}
	return schema.MustNew(
		named("hub", schema.Property(ex+"spoke", schema.Ref("spoke")).Cardinality(2, schema.Unbounded)),
		named("spoke", schema.Property(ex+"leaf", schema.Ref("leaf"))),
		named("leaf"),
	)
}

func diamondDocs() [][]rdf.Triple {
	n := rdf.BlankNode
	node := func(class, name string, links ...rdf.Triple) []rdf.Triple {
		s := n(name)
		return append([]rdf.Triple{typed(s, class), prop(s, "name", lit(name))}, links...)
	}
	var doc []rdf.Triple
	doc = append(doc, node("hub", "a1", prop(n("a1"), "spoke", n("b1")), prop(n("a1"), "spoke", n("b2")), prop(n("a1"), "spoke", n("b3")))...)
	doc = append(doc, node("hub", "a2", prop(n("a2"), "spoke", n("b1")), prop(n("a2"), "spoke", n("b2")))...)
	doc = append(doc, node("spoke", "b1", prop(n("b1"), "leaf", n("c1")))...)
	doc = append(doc, node("spoke", "b2", prop(n("b2"), "leaf", n("c2")))...)
	doc = append(doc, node("spoke", "b3", prop(n("b3"), "leaf", n("c2")))...)
	doc = append(doc, node("leaf", "c1")...)
	doc = append(doc, node("leaf", "c2")...)
	return [][]rdf.Triple{doc}
}

func TestDeleteOrderIndependent(t *testing.T) {
	type target struct{ shape, name string }
	orders := [][]target{
		{{"leaf", "c1"}, {"spoke", "b3"}},
		{{"spoke", "b3"}, {"leaf", "c1"}},
	}

	var results [][]Key
	for _, order := range orders {
		tables := BuildTables(diamondSchema(), diamondDocs())
		subjects := make([]rdf.Term, len(order))
		for i, tg := range order {
			subjects[i] = subjectNamed(t, tables, tg.shape, tg.name)
		}
		for i, tg := range order {
			tables.Delete(tg.shape, subjects[i])
		}
		assertIntegrity(t, tables)
		results = append(results, tables.Survivors())
	}

	assert.Equal(t, results[0], results[1])
	require.Len(t, results[0], 2)
	assert.Equal(t, "spoke", results[0][0].Shape)
	assert.Equal(t, "leaf", results[0][1].Shape)
}

func TestDeleteReportsCascadeCause(t *testing.T) {
	rec := &recorder{}
	tables := BuildTables(diamondSchema(), diamondDocs(), WithDiagnostics(rec))
	c1 := subjectNamed(t, tables, "leaf", "c1")

	assert.Equal(t, 3, tables.Delete("leaf", c1))
	require.Len(t, rec.deletions, 3)
	assert.Equal(t, CauseDirect, rec.deletions[0].Cause)
	assert.Nil(t, rec.deletions[0].Trigger)

	b1 := rec.deletions[1]
	assert.Equal(t, "spoke", b1.Shape)
	assert.Equal(t, CauseCascade, b1.Cause)
	assert.Equal(t, ex+"leaf", b1.Predicate)

	a2 := rec.deletions[2]
	assert.Equal(t, "hub", a2.Shape)
	assert.Equal(t, 1, a2.Count)
	assert.Equal(t, 2, a2.Min)
	assert.Equal(t, 1, tables.Len("hub"))
}

func TestDeleteGraphTrimsMetaValues(t *testing.T) {
	tables := BuildTables(metaSchema(), metaDocs(true))
	require.Equal(t, 1, tables.Len("person"))
	person := tables.Subjects("person")[0]
	inst, _ := tables.Lookup("person", person)
	name := inst.Props[inst.Shape.PropertyIndex(ex+"name")]
	require.ElementsMatch(t, []rdf.Term{lit("Old"), lit("New")}, name.Values())
	assert.Equal(t, []rdf.Term{iri("g1")}, name.Support(lit("New")))

	assert.Equal(t, 1, tables.Delete("source", iri("g1")))
	assert.Equal(t, []rdf.Term{lit("Old")}, name.Values())
	assertIntegrity(t, tables)

	assert.Equal(t, 2, tables.Delete("source", iri("g0")))
	assert.False(t, tables.Contains("person", person))
	assertIntegrity(t, tables)
}

func TestDeletedKeysStayDeleted(t *testing.T) {
	tables := BuildTables(chainSchema(), chainDocs(true))
	d := tables.Subjects("D")[0]
	inst, _ := tables.Lookup("D", d)

	require.Equal(t, 4, tables.Delete("D", d))
	assert.False(t, tables.insert(inst))
	assert.False(t, tables.Contains("D", d))
}
