package rdf

import "strings"

// Triple is a subject/predicate/object statement asserted in a graph.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
	Graph     Term
}

// NewTriple builds a default-graph triple from IRI subject and predicate strings.
func NewTriple(subject Term, predicate string, object Term) Triple {
	return Triple{Subject: subject, Predicate: NamedNode(predicate), Object: object}
}

// String renders the triple as an N-Quads line without the trailing newline.
// Default-graph triples render as N-Triples.
func (t Triple) String() string {
	var sb strings.Builder
	sb.WriteString(t.Subject.String())
	sb.WriteByte(' ')
	sb.WriteString(t.Predicate.String())
	sb.WriteByte(' ')
	sb.WriteString(t.Object.String())
	if !t.Graph.IsDefaultGraph() {
		sb.WriteByte(' ')
		sb.WriteString(t.Graph.String())
	}
	sb.WriteString(" .")
	return sb.String()
}
