package schema

import "fmt"

// Unbounded is the sentinel for a property without a maximum cardinality.
const Unbounded = -1

// ValueExpr is either a node constraint or a reference to another shape.
type ValueExpr struct {
	Constraint NodeConstraint
	Shape      string
}

// IsShapeRef reports whether values must be instances of another shape.
func (v ValueExpr) IsShapeRef() bool { return v.Shape != "" }

// Constrain returns a ValueExpr over a node constraint.
func Constrain(c NodeConstraint) ValueExpr {
	if c == nil {
		c = AnyValue{}
	}
	return ValueExpr{Constraint: c}
}

// Ref returns a ValueExpr referencing shape id.
func Ref(shapeID string) ValueExpr { return ValueExpr{Shape: shapeID} }

// PropertyExpr constrains the values of one predicate.
type PropertyExpr struct {
	Predicate  string
	Value      ValueExpr
	Min        int
	Max        int
	Annotation Annotation
}

// Property returns a PropertyExpr with the default cardinality (1, 1) and a
// Plain annotation.
func Property(predicate string, value ValueExpr) PropertyExpr {
	return PropertyExpr{
		Predicate:  predicate,
		Value:      value,
		Min:        1,
		Max:        1,
		Annotation: PlainAnnotation(),
	}
}

// Cardinality returns a copy with the given bounds.
func (p PropertyExpr) Cardinality(minCount, maxCount int) PropertyExpr {
	p.Min = minCount
	p.Max = maxCount
	return p
}

// Annotate returns a copy with the given annotation.
func (p PropertyExpr) Annotate(a Annotation) PropertyExpr {
	p.Annotation = a
	return p
}

// Shape is a schema-declared type with ordered property constraints.
type Shape struct {
	ID         string
	TargetType string
	Properties []PropertyExpr
	// Key is the predicate whose values identify equal blank nodes. Empty
	// means subjects of this shape never merge.
	Key string
}

// Keyed reports whether the shape declares a key predicate.
func (s *Shape) Keyed() bool { return s.Key != "" }

// PropertyIndex returns the index of the first property with the given
// predicate, or -1.
func (s *Shape) PropertyIndex(predicate string) int {
	for i, p := range s.Properties {
		if p.Predicate == predicate {
			return i
		}
	}
	return -1
}

// Schema is an ordered set of shapes with resolved references.
type Schema struct {
	shapes []*Shape
	byID   map[string]*Shape
}

// New builds a schema, checking that shape ids are unique and that every
// shape reference resolves.
func New(shapes ...*Shape) (*Schema, error) {
	s := &Schema{
		shapes: make([]*Shape, 0, len(shapes)),
		byID:   make(map[string]*Shape, len(shapes)),
	}
	for _, shape := range shapes {
		if _, ok := s.byID[shape.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateShape, shape.ID)
		}
		s.byID[shape.ID] = shape
		s.shapes = append(s.shapes, shape)
	}

	for _, shape := range s.shapes {
		for _, p := range shape.Properties {
			if p.Value.IsShapeRef() {
				if _, ok := s.byID[p.Value.Shape]; !ok {
					return nil, fmt.Errorf("%w: %s referenced by %s <%s>", ErrUnknownShape, p.Value.Shape, shape.ID, p.Predicate)
				}
			}
			if p.Annotation.Kind == MetaReference {
				if _, ok := s.byID[p.Annotation.GraphShape]; !ok {
					return nil, fmt.Errorf("%w: graph shape %s referenced by %s <%s>", ErrUnknownShape, p.Annotation.GraphShape, shape.ID, p.Predicate)
				}
			}
		}
	}
	return s, nil
}

// MustNew is like New but panics on error. Intended for tests and static
// schemas.
func MustNew(shapes ...*Shape) *Schema {
	s, err := New(shapes...)
	if err != nil {
		panic(err)
	}
	return s
}

// Shapes returns the shapes in declaration order.
func (s *Schema) Shapes() []*Shape { return s.shapes }

// Shape looks up a shape by id.
func (s *Schema) Shape(id string) (*Shape, bool) {
	shape, ok := s.byID[id]
	return shape, ok
}

// Len returns the number of shapes.
func (s *Schema) Len() int { return len(s.shapes) }
