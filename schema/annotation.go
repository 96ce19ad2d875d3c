package schema

import (
	"fmt"
	"strings"
)

// SortKind selects how values are compared.
type SortKind uint8

const (
	// SortLexicographic compares lexical forms by code point.
	SortLexicographic SortKind = iota
	// SortNumeric decodes numeric literals and compares their values.
	SortNumeric
	// SortTemporal parses date and time literals to instants.
	SortTemporal
	// SortBooleanAnd ranks false above true, so the best value of a set is
	// the conjunction of its members.
	SortBooleanAnd
	// SortBooleanOr ranks true above false, so the best value of a set is
	// the disjunction of its members.
	SortBooleanOr
)

var sortKindNames = map[SortKind]string{
	SortLexicographic: "lexicographic",
	SortNumeric:       "numeric",
	SortTemporal:      "temporal",
	SortBooleanAnd:    "and",
	SortBooleanOr:     "or",
}

// String returns the kind name used in schema files.
func (k SortKind) String() string {
	if name, ok := sortKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("SortKind(%d)", k)
}

// ParseSortKind parses a sort kind name.
func ParseSortKind(s string) (SortKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lexicographic", "lexical", "string":
		return SortLexicographic, nil
	case "numeric", "number":
		return SortNumeric, nil
	case "temporal", "time", "datetime":
		return SortTemporal, nil
	case "and":
		return SortBooleanAnd, nil
	case "or":
		return SortBooleanOr, nil
	default:
		return 0, fmt.Errorf("%w: kind %q", ErrInvalidSort, s)
	}
}

// Direction orders a sort ascending or descending.
type Direction uint8

const (
	// Ascending ranks smaller values first.
	Ascending Direction = iota
	// Descending ranks larger values first.
	Descending
)

// String returns the direction name used in schema files.
func (d Direction) String() string {
	if d == Descending {
		return "descending"
	}
	return "ascending"
}

// ParseDirection parses a direction name.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	default:
		return 0, fmt.Errorf("%w: direction %q", ErrInvalidSort, s)
	}
}

// Sort is a sort kind with a direction. Direction is ignored by the boolean
// kinds, whose preference is fixed.
type Sort struct {
	Kind      SortKind
	Direction Direction
}

// DefaultSort is lexicographic ascending.
var DefaultSort = Sort{Kind: SortLexicographic, Direction: Ascending}

// AnnotationKind discriminates the Annotation variants.
type AnnotationKind uint8

const (
	// Plain properties have no annotation.
	Plain AnnotationKind = iota
	// Sorted properties order their values by Sort.
	Sorted
	// WithReference properties take values from the pre-merge subjects that
	// asserted a value of the sibling property named by Predicate.
	WithReference
	// MetaReference properties rank values by the GraphShape instance of the
	// graph that asserted them.
	MetaReference
)

// String returns the variant name.
func (k AnnotationKind) String() string {
	switch k {
	case Sorted:
		return "sorted"
	case WithReference:
		return "withReference"
	case MetaReference:
		return "metaReference"
	default:
		return "plain"
	}
}

// Annotation is the tagged annotation variant of a property expression.
type Annotation struct {
	Kind AnnotationKind
	Sort Sort
	// Predicate is the reference predicate (WithReference) or the meta
	// property predicate of the graph shape (MetaReference).
	Predicate string
	// GraphShape is the shape describing graphs (MetaReference only).
	GraphShape string
}

// PlainAnnotation returns the Plain variant.
func PlainAnnotation() Annotation {
	return Annotation{Kind: Plain, Sort: DefaultSort}
}

// SortedBy returns the Sorted variant.
func SortedBy(s Sort) Annotation {
	return Annotation{Kind: Sorted, Sort: s}
}

// WithRef returns the WithReference variant.
func WithRef(predicate string, s Sort) Annotation {
	return Annotation{Kind: WithReference, Sort: s, Predicate: predicate}
}

// MetaRef returns the MetaReference variant.
func MetaRef(predicate string, s Sort, graphShape string) Annotation {
	return Annotation{Kind: MetaReference, Sort: s, Predicate: predicate, GraphShape: graphShape}
}

// Deferred reports whether the property is resolved in the second pass.
func (a Annotation) Deferred() bool {
	return a.Kind == WithReference || a.Kind == MetaReference
}
