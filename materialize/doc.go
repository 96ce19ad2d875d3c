// Package materialize turns a set of documents into one canonical,
// schema-valid graph.
//
// A run proceeds in stages over state owned by that run alone:
//
//	pushout     merge equivalent blank nodes across documents
//	pass 1      table every shape from its non-deferred properties
//	pass 2      resolve shape references and deferred annotations,
//	            cascading deletions as properties fall below their minimum
//	sweep       delete anything still below a minimum (fixpoint)
//	collect     rank and bound each property's values
//	emit        write one triple per surviving (predicate, value)
//
// Data that cannot satisfy the schema is dropped silently. Attach a
// Diagnostics implementation to see what was rejected or deleted and why.
//
//	out := materialize.Materialize(s, docs,
//	    materialize.WithDiagnostics(materialize.LogDiagnostics(logger)))
package materialize
