// Package schema models a validated set of shapes: the target type of each
// shape, its ordered property expressions, an optional key predicate and the
// per-property annotations that drive ordering and reference resolution.
//
// Schemas are validated elsewhere. This package only resolves shape
// references so the materializer can look them up by id; it does not check
// sort/type agreement or key-link cycles.
//
// # Annotations
//
// Each property carries exactly one annotation variant, resolved once when
// the schema is built:
//
//	Plain          values ordered lexicographically ascending
//	Sorted         values ordered by an explicit sort
//	WithReference  values drawn through a sibling reference property
//	MetaReference  values ranked by metadata about their source graphs
//
// WithReference and MetaReference are deferred: the materializer resolves
// them in its second pass, once the tables they depend on are complete.
package schema
