package materialize

import (
	"github.com/c360studio/semmerge/rdf"
	"github.com/c360studio/semmerge/schema"
)

// emission accumulates output. Each instance is written once and identical
// triples are written once, however many paths reach them.
type emission struct {
	seen    map[Key]struct{}
	written map[rdf.Triple]struct{}
	out     []rdf.Triple
}

func (em *emission) add(t rdf.Triple) {
	if _, ok := em.written[t]; ok {
		return
	}
	em.written[t] = struct{}{}
	em.out = append(em.out, t)
}

// emit walks the surviving instances in schema order and writes their
// collected values, descending into referenced instances as they appear.
func (e *engine) emit() []rdf.Triple {
	em := &emission{
		seen:    make(map[Key]struct{}),
		written: make(map[rdf.Triple]struct{}),
	}
	for _, shape := range e.schema.Shapes() {
		for _, subject := range e.tables.Subjects(shape.ID) {
			e.emitInstance(Key{Shape: shape.ID, Subject: subject}, em)
		}
	}
	return em.out
}

func (e *engine) emitInstance(k Key, em *emission) {
	if _, ok := em.seen[k]; ok {
		return
	}
	em.seen[k] = struct{}{}
	inst, ok := e.tables.Lookup(k.Shape, k.Subject)
	if !ok {
		return
	}

	em.add(rdf.NewTriple(inst.Subject, rdf.Type, rdf.NamedNode(inst.Shape.TargetType)))
	for i, pv := range inst.Props {
		pred := rdf.NamedNode(pv.Expr.Predicate)
		for _, v := range e.collect(inst, i) {
			em.add(rdf.Triple{Subject: inst.Subject, Predicate: pred, Object: v})
			if pv.Expr.Value.IsShapeRef() {
				e.emitInstance(Key{Shape: pv.Expr.Value.Shape, Subject: v}, em)
			}
		}
	}
}

// collect ranks the values of property i and keeps at most its maximum.
func (e *engine) collect(inst *Instance, i int) []rdf.Term {
	pv := inst.Props[i]
	s := pv.Expr.Annotation.Sort
	c := NewCollector(pv.Expr.Max, func(a, b candidate) bool {
		return e.order.outranksCandidate(s, a, b)
	})
	for _, v := range pv.values {
		c.Add(e.candidate(inst, i, v))
	}

	out := make([]rdf.Term, 0, c.Len())
	for _, cand := range c.Items() {
		out = append(out, cand.value)
	}
	return out
}

// candidate picks the term a value is ranked by: the value itself, the best
// reference value behind it, or the best meta value of its graphs.
func (e *engine) candidate(inst *Instance, i int, v rdf.Term) candidate {
	pv := inst.Props[i]
	ann := pv.Expr.Annotation

	var pool []rdf.Term
	switch ann.Kind {
	case schema.WithReference:
		pool = pv.Support(v)
	case schema.MetaReference:
		for _, g := range pv.Support(v) {
			gi, ok := e.tables.Lookup(ann.GraphShape, g)
			if !ok {
				continue
			}
			if k := gi.Shape.PropertyIndex(ann.Predicate); k >= 0 {
				pool = append(pool, gi.Props[k].values...)
			}
		}
	default:
		return candidate{value: v, rank: v, ranked: true}
	}

	rank, ok := e.order.best(ann.Sort, pool)
	return candidate{value: v, rank: rank, ranked: ok}
}
