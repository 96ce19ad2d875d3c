package materialize

import (
	"github.com/c360studio/semmerge/rdf"
	"github.com/c360studio/semmerge/schema"
)

// accepts applies a property's value expression to one object. Shape
// references are only provisionally accepted here: the target table is
// consulted once it is complete.
func accepts(expr *schema.PropertyExpr, o rdf.Term) bool {
	if expr.Value.IsShapeRef() {
		return o.IsBlankNode()
	}
	return expr.Value.Constraint == nil || expr.Value.Constraint.Satisfies(o)
}

// match evaluates the non-deferred properties of shape for subject and
// rejects the subject as soon as one of them has too few values.
func (e *engine) match(shape *schema.Shape, subject rdf.Term) (*Instance, bool) {
	inst := newInstance(shape, subject)
	for _, pv := range inst.Props {
		expr := pv.Expr
		if expr.Annotation.Deferred() {
			continue
		}
		pred := rdf.NamedNode(expr.Predicate)
		for _, o := range e.po.Quotient.Objects(subject, pred) {
			if !accepts(expr, o) {
				continue
			}
			pv.add(o, e.provenance(subject, pred, o)...)
		}
		if !pv.Satisfied() {
			e.rejected++
			e.diag.OnReject(Rejection{
				Shape:     shape.ID,
				Subject:   subject,
				Predicate: expr.Predicate,
				Count:     pv.Len(),
				Min:       expr.Min,
			})
			return nil, false
		}
	}
	return inst, true
}

// provenance re-queries the disjoint union for every pre-merge form of
// (subject, pred, object) and returns the canonical graphs asserting it.
func (e *engine) provenance(subject, pred, object rdf.Term) []rdf.Term {
	graphs := make(map[rdf.Term]struct{})
	for _, s := range e.po.Preimage(subject) {
		for _, o := range e.po.Preimage(object) {
			for _, g := range e.po.Union.Graphs(s, pred, o) {
				graphs[e.po.Canonical(g)] = struct{}{}
			}
		}
	}
	return sortedTerms(graphs)
}

// resolveWithReference fills a with-reference property: for each accepted
// value of the sibling reference property, the pre-merge subjects of this
// entity that asserted it contribute their own objects for the property.
// Each resulting value is supported by the reference values behind it.
func (e *engine) resolveWithReference(inst *Instance, i int) {
	pv := inst.Props[i]
	expr := pv.Expr
	pred := rdf.NamedNode(expr.Predicate)
	refPred := rdf.NamedNode(expr.Annotation.Predicate)

	var refs []rdf.Term
	if j := inst.Shape.PropertyIndex(expr.Annotation.Predicate); j >= 0 && j != i {
		refs = inst.Props[j].Values()
	} else {
		refs = e.po.Quotient.Objects(inst.Subject, refPred)
	}

	for _, rv := range refs {
		for _, x := range e.po.Preimage(inst.Subject) {
			for _, rvp := range e.po.Preimage(rv) {
				if !e.po.Union.Has(x, refPred, rvp) {
					continue
				}
				for _, o := range e.po.Union.Objects(x, pred) {
					o = e.po.Canonical(o)
					if !e.acceptsResolved(expr, o) {
						continue
					}
					pv.add(o, rv)
				}
			}
		}
	}
	for _, v := range pv.values {
		e.tables.linkValue(inst, i, v)
	}
}

// resolveMetaReference fills a meta-reference property. A value survives
// only through graphs that are instances of the graph shape; those graphs
// become its support.
func (e *engine) resolveMetaReference(inst *Instance, i int) {
	pv := inst.Props[i]
	expr := pv.Expr
	pred := rdf.NamedNode(expr.Predicate)
	graphShape := expr.Annotation.GraphShape

	for _, o := range e.po.Quotient.Objects(inst.Subject, pred) {
		if !e.acceptsResolved(expr, o) {
			continue
		}
		var live []rdf.Term
		for _, g := range e.provenance(inst.Subject, pred, o) {
			if e.tables.Contains(graphShape, g) {
				live = append(live, g)
			}
		}
		if len(live) == 0 {
			continue
		}
		pv.add(o, live...)
	}
	for _, v := range pv.values {
		e.tables.linkValue(inst, i, v)
	}
}

// acceptsResolved is accepts with shape references checked against the
// current target table.
func (e *engine) acceptsResolved(expr *schema.PropertyExpr, o rdf.Term) bool {
	if !accepts(expr, o) {
		return false
	}
	return !expr.Value.IsShapeRef() || e.tables.Contains(expr.Value.Shape, o)
}
