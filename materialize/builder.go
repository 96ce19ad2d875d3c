package materialize

import (
	"github.com/c360studio/semmerge/schema"
)

// buildTables runs both table passes and the final sweep.
func (e *engine) buildTables() {
	e.tablePass()
	e.referencePass()
	e.sweep()
}

// tablePass tables every shape from its non-deferred properties. Shapes do
// not depend on each other here: shape-valued objects are kept
// provisionally and indexed for the cascade.
func (e *engine) tablePass() {
	for _, shape := range e.schema.Shapes() {
		for _, subject := range e.po.Quotient.SubjectsOfType(shape.TargetType) {
			inst, ok := e.match(shape, subject)
			if !ok {
				continue
			}
			e.tables.insert(inst)
			for i, pv := range inst.Props {
				if !pv.Expr.Value.IsShapeRef() {
					continue
				}
				for _, v := range pv.values {
					e.tables.linkValue(inst, i, v)
				}
			}
		}
	}
}

// referencePass resolves shape references and deferred annotations shape
// by shape, property by property, cascading as soon as a property falls
// below its minimum.
func (e *engine) referencePass() {
	for _, shape := range e.schema.Shapes() {
		for i := range shape.Properties {
			expr := &shape.Properties[i]
			if !expr.Value.IsShapeRef() && !expr.Annotation.Deferred() {
				continue
			}
			for _, subject := range e.tables.Subjects(shape.ID) {
				inst, ok := e.tables.Lookup(shape.ID, subject)
				if !ok {
					continue
				}
				e.resolve(inst, i)
			}
		}
	}
}

func (e *engine) resolve(inst *Instance, i int) {
	pv := inst.Props[i]
	expr := pv.Expr

	var queue []Deletion
	switch expr.Annotation.Kind {
	case schema.WithReference:
		e.resolveWithReference(inst, i)
	case schema.MetaReference:
		e.resolveMetaReference(inst, i)
	default:
		for _, v := range pv.Values() {
			if !e.tables.Contains(expr.Value.Shape, v) {
				e.tables.removeValue(inst, i, v, CauseUnresolved, nil, &queue)
			}
		}
	}

	if len(queue) == 0 && !pv.Satisfied() {
		queue = append(queue, Deletion{
			Shape:     inst.Shape.ID,
			Subject:   inst.Subject,
			Cause:     CauseUnresolved,
			Predicate: expr.Predicate,
			Count:     pv.Len(),
			Min:       expr.Min,
		})
	}
	if len(queue) > 0 {
		e.tables.cascade(queue)
	}
}

// sweep deletes any instance still below a minimum until none remains.
func (e *engine) sweep() {
	for {
		var queue []Deletion
		for _, k := range e.tables.Survivors() {
			inst, _ := e.tables.Lookup(k.Shape, k.Subject)
			for _, pv := range inst.Props {
				if pv.Satisfied() {
					continue
				}
				queue = append(queue, Deletion{
					Shape:     k.Shape,
					Subject:   k.Subject,
					Cause:     CauseSweep,
					Predicate: pv.Expr.Predicate,
					Count:     pv.Len(),
					Min:       pv.Expr.Min,
				})
				break
			}
		}
		if len(queue) == 0 {
			return
		}
		e.tables.cascade(queue)
	}
}
