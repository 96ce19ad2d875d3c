package materialize

import (
	"maps"
	"slices"

	"github.com/c360studio/semmerge/rdf"
	"github.com/c360studio/semmerge/schema"
)

// backRef records that property Prop of instance From holds Value because
// of the keyed instance. Meta entries mean the keyed instance is one of the
// graphs supporting Value rather than Value itself.
type backRef struct {
	From  Key
	Prop  int
	Value rdf.Term
	Meta  bool
}

func compareBackRefs(a, b backRef) int {
	if c := compareKeys(a.From, b.From); c != 0 {
		return c
	}
	if a.Prop != b.Prop {
		return a.Prop - b.Prop
	}
	if c := rdf.Compare(a.Value, b.Value); c != 0 {
		return c
	}
	switch {
	case a.Meta == b.Meta:
		return 0
	case a.Meta:
		return 1
	default:
		return -1
	}
}

// Tables is the mutable per-run store of instances and the reverse
// reference index. Instances only shrink once built and a deleted key is
// never re-inserted.
type Tables struct {
	schema  *schema.Schema
	shapes  map[string]map[rdf.Term]*Instance
	reverse map[Key]map[backRef]struct{}
	deleted map[Key]struct{}
	diag    Diagnostics
}

// NewTables creates an empty store for s. A nil Diagnostics is allowed.
func NewTables(s *schema.Schema, diag Diagnostics) *Tables {
	if diag == nil {
		diag = NopDiagnostics{}
	}
	t := &Tables{
		schema:  s,
		shapes:  make(map[string]map[rdf.Term]*Instance, s.Len()),
		reverse: make(map[Key]map[backRef]struct{}),
		deleted: make(map[Key]struct{}),
		diag:    diag,
	}
	for _, shape := range s.Shapes() {
		t.shapes[shape.ID] = make(map[rdf.Term]*Instance)
	}
	return t
}

// Lookup returns the live instance for (shapeID, subject).
func (t *Tables) Lookup(shapeID string, subject rdf.Term) (*Instance, bool) {
	inst, ok := t.shapes[shapeID][subject]
	return inst, ok
}

// Contains reports whether (shapeID, subject) is live.
func (t *Tables) Contains(shapeID string, subject rdf.Term) bool {
	_, ok := t.shapes[shapeID][subject]
	return ok
}

// Len returns the number of live instances of a shape.
func (t *Tables) Len(shapeID string) int { return len(t.shapes[shapeID]) }

// Subjects returns the live subjects of a shape in canonical order.
func (t *Tables) Subjects(shapeID string) []rdf.Term {
	subjects := slices.Collect(maps.Keys(t.shapes[shapeID]))
	slices.SortFunc(subjects, rdf.Compare)
	return subjects
}

// Survivors returns every live key in canonical order.
func (t *Tables) Survivors() []Key {
	var out []Key
	for _, shape := range t.schema.Shapes() {
		for _, s := range t.Subjects(shape.ID) {
			out = append(out, Key{Shape: shape.ID, Subject: s})
		}
	}
	return out
}

// Deleted returns the number of instances removed by cascade.
func (t *Tables) Deleted() int { return len(t.deleted) }

// insert adds a freshly matched instance. Keys that were deleted stay dead.
func (t *Tables) insert(inst *Instance) bool {
	k := inst.Key()
	if _, dead := t.deleted[k]; dead {
		return false
	}
	t.shapes[k.Shape][k.Subject] = inst
	return true
}

func (t *Tables) link(target Key, ref backRef) {
	set, ok := t.reverse[target]
	if !ok {
		set = make(map[backRef]struct{})
		t.reverse[target] = set
	}
	set[ref] = struct{}{}
}

func (t *Tables) unlink(target Key, ref backRef) {
	set, ok := t.reverse[target]
	if !ok {
		return
	}
	delete(set, ref)
	if len(set) == 0 {
		delete(t.reverse, target)
	}
}

// referrers returns the reverse entries for k in canonical order.
func (t *Tables) referrers(k Key) []backRef {
	refs := slices.Collect(maps.Keys(t.reverse[k]))
	slices.SortFunc(refs, compareBackRefs)
	return refs
}

// linkValue registers the reverse entries implied by value v of property i.
func (t *Tables) linkValue(inst *Instance, i int, v rdf.Term) {
	expr := inst.Props[i].Expr
	from := inst.Key()
	if expr.Value.IsShapeRef() {
		t.link(Key{Shape: expr.Value.Shape, Subject: v}, backRef{From: from, Prop: i, Value: v})
	}
	if expr.Annotation.Kind == schema.MetaReference {
		for _, g := range inst.Props[i].Support(v) {
			t.link(Key{Shape: expr.Annotation.GraphShape, Subject: g}, backRef{From: from, Prop: i, Value: v, Meta: true})
		}
	}
}

func (t *Tables) unlinkValue(inst *Instance, i int, v rdf.Term) {
	expr := inst.Props[i].Expr
	from := inst.Key()
	if expr.Value.IsShapeRef() {
		t.unlink(Key{Shape: expr.Value.Shape, Subject: v}, backRef{From: from, Prop: i, Value: v})
	}
	if expr.Annotation.Kind == schema.MetaReference {
		for _, g := range inst.Props[i].Support(v) {
			t.unlink(Key{Shape: expr.Annotation.GraphShape, Subject: g}, backRef{From: from, Prop: i, Value: v, Meta: true})
		}
	}
}

func sortedTerms(set map[rdf.Term]struct{}) []rdf.Term {
	out := slices.Collect(maps.Keys(set))
	slices.SortFunc(out, rdf.Compare)
	return out
}
