// Package rdf provides the term and triple model shared by the pushout and
// materialization stages.
//
// A Term is a small comparable value, so it can be used directly as a map
// key. The zero Term is the default graph. Blank-node identifiers are only
// meaningful inside the document that produced them until the pushout stage
// relabels them.
//
//	s := rdf.BlankNode("p1")
//	t := rdf.Triple{
//	    Subject:   s,
//	    Predicate: rdf.NamedNode("http://schema.org/email"),
//	    Object:    rdf.Literal("a@x.com", ""),
//	}
package rdf
