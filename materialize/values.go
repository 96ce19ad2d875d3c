package materialize

import (
	"github.com/c360studio/semmerge/rdf"
	"github.com/c360studio/semmerge/schema"
)

// PropertyValue holds the accepted values of one property of an instance.
// Each value carries a support set: the graphs asserting it, or for
// with-reference properties the reference values that justified it.
type PropertyValue struct {
	Expr *schema.PropertyExpr

	values  []rdf.Term
	support map[rdf.Term]map[rdf.Term]struct{}
}

func newPropertyValue(expr *schema.PropertyExpr) *PropertyValue {
	return &PropertyValue{
		Expr:    expr,
		support: make(map[rdf.Term]map[rdf.Term]struct{}),
	}
}

// Len returns the number of distinct values.
func (pv *PropertyValue) Len() int { return len(pv.values) }

// Values returns the values in first-accepted order.
func (pv *PropertyValue) Values() []rdf.Term {
	out := make([]rdf.Term, len(pv.values))
	copy(out, pv.values)
	return out
}

// Has reports whether v is a current value.
func (pv *PropertyValue) Has(v rdf.Term) bool {
	_, ok := pv.support[v]
	return ok
}

// Support returns the support set of v, sorted.
func (pv *PropertyValue) Support(v rdf.Term) []rdf.Term {
	return sortedTerms(pv.support[v])
}

// Satisfied reports whether the property meets its minimum.
func (pv *PropertyValue) Satisfied() bool { return len(pv.values) >= pv.Expr.Min }

func (pv *PropertyValue) add(v rdf.Term, support ...rdf.Term) {
	set, ok := pv.support[v]
	if !ok {
		set = make(map[rdf.Term]struct{}, len(support))
		pv.support[v] = set
		pv.values = append(pv.values, v)
	}
	for _, s := range support {
		set[s] = struct{}{}
	}
}

func (pv *PropertyValue) remove(v rdf.Term) bool {
	if _, ok := pv.support[v]; !ok {
		return false
	}
	delete(pv.support, v)
	for i, x := range pv.values {
		if x == v {
			pv.values = append(pv.values[:i], pv.values[i+1:]...)
			break
		}
	}
	return true
}

// removeSupport drops s from the support of v and reports whether the
// support set is now empty.
func (pv *PropertyValue) removeSupport(v, s rdf.Term) bool {
	set, ok := pv.support[v]
	if !ok {
		return false
	}
	delete(set, s)
	return len(set) == 0
}

// Instance is one shape's accepted record for one subject.
type Instance struct {
	Shape   *schema.Shape
	Subject rdf.Term
	Props   []*PropertyValue
}

func newInstance(shape *schema.Shape, subject rdf.Term) *Instance {
	inst := &Instance{
		Shape:   shape,
		Subject: subject,
		Props:   make([]*PropertyValue, len(shape.Properties)),
	}
	for i := range shape.Properties {
		inst.Props[i] = newPropertyValue(&shape.Properties[i])
	}
	return inst
}

// Key identifies the instance.
func (inst *Instance) Key() Key { return Key{Shape: inst.Shape.ID, Subject: inst.Subject} }

// Key identifies an instance by shape id and canonical subject.
type Key struct {
	Shape   string
	Subject rdf.Term
}

func compareKeys(a, b Key) int {
	if a.Shape != b.Shape {
		if a.Shape < b.Shape {
			return -1
		}
		return 1
	}
	return rdf.Compare(a.Subject, b.Subject)
}
