package materialize

import (
	"github.com/c360studio/semmerge/rdf"
	"github.com/c360studio/semmerge/schema"
)

// DeleteCause says why an instance was removed.
type DeleteCause uint8

const (
	// CauseDirect is a deletion requested through Tables.Delete.
	CauseDirect DeleteCause = iota
	// CauseUnresolved is a property that fell below its minimum while its
	// references were being resolved.
	CauseUnresolved
	// CauseCascade is a property that fell below its minimum because an
	// instance it referenced was deleted.
	CauseCascade
	// CauseSweep is a minimum violation found by the final fixpoint check.
	CauseSweep
)

// String returns the cause name.
func (c DeleteCause) String() string {
	switch c {
	case CauseUnresolved:
		return "unresolved"
	case CauseCascade:
		return "cascade"
	case CauseSweep:
		return "sweep"
	default:
		return "direct"
	}
}

// Deletion describes one removed instance.
type Deletion struct {
	Shape   string
	Subject rdf.Term
	Cause   DeleteCause
	// Predicate, Count and Min describe the property that fell below its
	// minimum. Empty for direct deletions.
	Predicate string
	Count     int
	Min       int
	// Trigger is the deleted instance whose removal caused this one.
	Trigger *Key
}

// Delete removes (shapeID, subject) and every instance that can no longer
// meet a minimum as a consequence. It returns the number of instances
// removed; deleting an absent key is a no-op returning 0.
func (t *Tables) Delete(shapeID string, subject rdf.Term) int {
	k := Key{Shape: shapeID, Subject: subject}
	return t.cascade([]Deletion{{Shape: k.Shape, Subject: k.Subject, Cause: CauseDirect}})
}

// cascade drains a worklist of deletions. Each key is removed at most once,
// so the loop is bounded by the number of instances.
func (t *Tables) cascade(queue []Deletion) int {
	n := 0
	for len(queue) > 0 {
		d := queue[0]
		queue = queue[1:]
		if t.handleDelete(d, &queue) {
			n++
		}
	}
	return n
}

func (t *Tables) handleDelete(d Deletion, queue *[]Deletion) bool {
	k := Key{Shape: d.Shape, Subject: d.Subject}
	inst, ok := t.Lookup(k.Shape, k.Subject)
	if !ok {
		return false
	}
	delete(t.shapes[k.Shape], k.Subject)
	t.deleted[k] = struct{}{}
	t.diag.OnDelete(d)

	for i, pv := range inst.Props {
		for _, v := range pv.values {
			t.unlinkValue(inst, i, v)
		}
	}

	for _, ref := range t.referrers(k) {
		t.unlink(k, ref)
		from, ok := t.Lookup(ref.From.Shape, ref.From.Subject)
		if !ok {
			continue
		}
		if ref.Meta && !from.Props[ref.Prop].removeSupport(ref.Value, k.Subject) {
			continue
		}
		t.removeValue(from, ref.Prop, ref.Value, CauseCascade, &k, queue)
	}
	delete(t.reverse, k)
	return true
}

// removeValue drops v from property i, keeps the reverse index and any
// with-reference siblings in step, and queues the instance when the
// property falls below its minimum.
func (t *Tables) removeValue(inst *Instance, i int, v rdf.Term, cause DeleteCause, trigger *Key, queue *[]Deletion) {
	pv := inst.Props[i]
	if !pv.Has(v) {
		return
	}
	t.unlinkValue(inst, i, v)
	pv.remove(v)
	t.propagateReference(inst, i, v, cause, trigger, queue)

	if !pv.Satisfied() {
		*queue = append(*queue, Deletion{
			Shape:     inst.Shape.ID,
			Subject:   inst.Subject,
			Cause:     cause,
			Predicate: pv.Expr.Predicate,
			Count:     pv.Len(),
			Min:       pv.Expr.Min,
			Trigger:   trigger,
		})
	}
}

// propagateReference withdraws v from the support of values drawn through
// property i by with-reference siblings.
func (t *Tables) propagateReference(inst *Instance, i int, v rdf.Term, cause DeleteCause, trigger *Key, queue *[]Deletion) {
	pred := inst.Props[i].Expr.Predicate
	for j, q := range inst.Props {
		ann := q.Expr.Annotation
		if j == i || ann.Kind != schema.WithReference || ann.Predicate != pred {
			continue
		}
		for _, u := range q.Values() {
			if _, ok := q.support[u][v]; !ok {
				continue
			}
			if q.removeSupport(u, v) {
				t.removeValue(inst, j, u, cause, trigger, queue)
			}
		}
	}
}
