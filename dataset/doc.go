// Package dataset reads document files into triple lists and watches them
// for changes.
//
// A document file is YAML (JSON is accepted as a subset) holding optional
// CURIE prefixes, an optional graph for every triple, and a list of triples:
//
//	prefixes:
//	  ex: http://ex.org/
//	triples:
//	  - [_:p, a, ex:Person]
//	  - [_:p, ex:name, Ada]
//	  - {s: _:p, p: ex:born, o: {value: "1815-12-10", datatype: xsd:date}}
//	  - [_:p, ex:age, 36, ex:graph1]
//
// Subjects, predicates and graphs are blank nodes (_:x), IRIs in angle
// brackets, absolute IRIs, or CURIEs. Objects are read the same way when
// they are bracketed, scheme-qualified (http://...) or use a declared
// prefix; other strings are plain literals. Use {value: ...} for a literal
// that looks like an IRI.
// Unquoted YAML numbers, booleans and timestamps become typed literals.
// The mapping forms {iri: ...}, {blank: ...} and {value: ..., datatype: ...,
// lang: ...} are always unambiguous.
package dataset
