package rdf

import (
	"testing"

	"github.com/c360studio/semmerge/vocabulary/xsd"
	"github.com/stretchr/testify/assert"
)

func TestTermString(t *testing.T) {
	tests := []struct {
		name string
		term Term
		want string
	}{
		{"iri", NamedNode("http://ex.org/a"), "<http://ex.org/a>"},
		{"blank", BlankNode("b0"), "_:b0"},
		{"plain literal", Literal("hello", ""), `"hello"`},
		{"typed literal", Literal("5", xsd.Integer), `"5"^^<http://www.w3.org/2001/XMLSchema#integer>`},
		{"lang literal", LangLiteral("hallo", "DE"), `"hallo"@de`},
		{"escaped literal", Literal("a \"b\"\n", ""), `"a \"b\"\n"`},
		{"default graph", DefaultGraph(), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.term.String())
		})
	}
}

func TestTermIsComparable(t *testing.T) {
	seen := map[Term]int{}
	seen[Literal("x", "")]++
	seen[Literal("x", xsd.String)]++
	seen[BlankNode("x")]++

	assert.Len(t, seen, 2)
	assert.Equal(t, 2, seen[Literal("x", "")])
}

func TestCompare(t *testing.T) {
	assert.Negative(t, Compare(NamedNode("a"), BlankNode("a")))
	assert.Negative(t, Compare(Literal("a", ""), Literal("b", "")))
	assert.Zero(t, Compare(Literal("a", ""), Literal("a", xsd.String)))
	assert.Positive(t, Compare(Literal("1", xsd.Integer), Literal("1", xsd.Decimal)))
}

func TestTripleString(t *testing.T) {
	tr := NewTriple(BlankNode("p"), "http://ex.org/name", Literal("Ada", ""))
	assert.Equal(t, `_:p <http://ex.org/name> "Ada" .`, tr.String())

	tr.Graph = NamedNode("http://ex.org/g")
	assert.Equal(t, `_:p <http://ex.org/name> "Ada" <http://ex.org/g> .`, tr.String())
}
