package schema

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/c360studio/semmerge/rdf"
	"github.com/c360studio/semmerge/vocabulary/xsd"
	"gopkg.in/yaml.v3"
)

// File is the YAML encoding of a validated schema.
type File struct {
	// Prefixes maps CURIE prefixes to namespace IRIs. rdf and xsd are
	// always available.
	Prefixes map[string]string `yaml:"prefixes,omitempty"`
	Shapes   []ShapeSpec       `yaml:"shapes"`
}

// ShapeSpec is the YAML encoding of a Shape.
type ShapeSpec struct {
	ID         string         `yaml:"id"`
	Target     string         `yaml:"target"`
	Key        string         `yaml:"key,omitempty"`
	Properties []PropertySpec `yaml:"properties"`
}

// PropertySpec is the YAML encoding of a PropertyExpr. Shape and the node
// constraint fields are mutually exclusive.
type PropertySpec struct {
	Predicate string   `yaml:"predicate"`
	Shape     string   `yaml:"shape,omitempty"`
	Kind      string   `yaml:"kind,omitempty"`
	Datatype  string   `yaml:"datatype,omitempty"`
	In        []string `yaml:"in,omitempty"`
	Pattern   string   `yaml:"pattern,omitempty"`
	Language  []string `yaml:"language,omitempty"`
	Min       *int     `yaml:"min,omitempty"`
	Max       *Bound   `yaml:"max,omitempty"`

	Sort      *SortSpec      `yaml:"sort,omitempty"`
	Reference *ReferenceSpec `yaml:"reference,omitempty"`
	Meta      *MetaSpec      `yaml:"meta,omitempty"`
}

// SortSpec is the YAML encoding of a Sort.
type SortSpec struct {
	Kind      string `yaml:"kind"`
	Direction string `yaml:"direction,omitempty"`
}

// ReferenceSpec is the YAML encoding of a WithReference annotation.
type ReferenceSpec struct {
	Predicate string    `yaml:"predicate"`
	Sort      *SortSpec `yaml:"sort,omitempty"`
}

// MetaSpec is the YAML encoding of a MetaReference annotation.
type MetaSpec struct {
	Predicate string    `yaml:"predicate"`
	Graph     string    `yaml:"graph"`
	Sort      *SortSpec `yaml:"sort,omitempty"`
}

// Bound is a maximum cardinality; "*" or "unbounded" decode to Unbounded.
type Bound int

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *Bound) UnmarshalYAML(node *yaml.Node) error {
	v := strings.TrimSpace(node.Value)
	switch strings.ToLower(v) {
	case "*", "unbounded", "inf", "infinity":
		*b = Bound(Unbounded)
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fmt.Errorf("%w: %q at line %d", ErrInvalidBound, v, node.Line)
	}
	*b = Bound(n)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (b Bound) MarshalYAML() (any, error) {
	if int(b) == Unbounded {
		return "*", nil
	}
	return int(b), nil
}

// LoadFile reads and decodes a YAML schema file.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	s, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	return s, nil
}

// Decode parses a YAML schema document.
func Decode(data []byte) (*Schema, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	return f.Build()
}

// Build converts the decoded file into a Schema.
func (f *File) Build() (*Schema, error) {
	prefixes := map[string]string{
		"rdf": rdf.Namespace,
		"xsd": xsd.Namespace,
	}
	for k, v := range f.Prefixes {
		prefixes[k] = v
	}
	expand := func(s string) string { return ExpandCURIE(prefixes, s) }

	shapes := make([]*Shape, 0, len(f.Shapes))
	for _, spec := range f.Shapes {
		shape := &Shape{
			ID:         spec.ID,
			TargetType: expand(spec.Target),
			Key:        expand(spec.Key),
			Properties: make([]PropertyExpr, 0, len(spec.Properties)),
		}
		for _, ps := range spec.Properties {
			p, err := ps.build(expand)
			if err != nil {
				return nil, fmt.Errorf("shape %s property %s: %w", spec.ID, ps.Predicate, err)
			}
			shape.Properties = append(shape.Properties, p)
		}
		shapes = append(shapes, shape)
	}
	return New(shapes...)
}

func (ps PropertySpec) build(expand func(string) string) (PropertyExpr, error) {
	var value ValueExpr
	if ps.Shape != "" {
		value = Ref(ps.Shape)
	} else {
		c, err := ps.constraint(expand)
		if err != nil {
			return PropertyExpr{}, err
		}
		value = Constrain(c)
	}

	p := Property(expand(ps.Predicate), value)
	if ps.Min != nil {
		p.Min = *ps.Min
	}
	if ps.Max != nil {
		p.Max = int(*ps.Max)
	}

	switch {
	case ps.Meta != nil:
		s, err := ps.Meta.Sort.build()
		if err != nil {
			return PropertyExpr{}, err
		}
		p.Annotation = MetaRef(expand(ps.Meta.Predicate), s, ps.Meta.Graph)
	case ps.Reference != nil:
		s, err := ps.Reference.Sort.build()
		if err != nil {
			return PropertyExpr{}, err
		}
		p.Annotation = WithRef(expand(ps.Reference.Predicate), s)
	case ps.Sort != nil:
		s, err := ps.Sort.build()
		if err != nil {
			return PropertyExpr{}, err
		}
		p.Annotation = SortedBy(s)
	}
	return p, nil
}

func (ps PropertySpec) constraint(expand func(string) string) (NodeConstraint, error) {
	var all AllOf

	kind := rdf.KindLiteral
	switch strings.ToLower(ps.Kind) {
	case "":
		if ps.Datatype == "" && ps.Language == nil {
			kind = rdf.KindDefaultGraph
		}
	case "iri":
		kind = rdf.KindNamedNode
	case "blank", "bnode":
		kind = rdf.KindBlankNode
	case "literal":
	default:
		return nil, fmt.Errorf("unknown node kind %q", ps.Kind)
	}
	if kind != rdf.KindDefaultGraph {
		all = append(all, NodeKind{Kind: kind})
	}

	datatype := expand(ps.Datatype)
	if datatype != "" {
		all = append(all, Datatype{IRI: datatype})
	}
	if len(ps.Language) > 0 {
		all = append(all, Language{Tags: ps.Language})
	}
	if ps.Pattern != "" {
		pat, err := NewPattern(ps.Pattern)
		if err != nil {
			return nil, err
		}
		all = append(all, pat)
	}
	if len(ps.In) > 0 {
		values := make([]rdf.Term, 0, len(ps.In))
		for _, v := range ps.In {
			if kind == rdf.KindNamedNode {
				values = append(values, rdf.NamedNode(expand(v)))
			} else {
				values = append(values, rdf.Literal(v, datatype))
			}
		}
		all = append(all, ValueIn{Values: values})
	}

	switch len(all) {
	case 0:
		return AnyValue{}, nil
	case 1:
		return all[0], nil
	default:
		return all, nil
	}
}

func (s *SortSpec) build() (Sort, error) {
	if s == nil {
		return DefaultSort, nil
	}
	kind, err := ParseSortKind(s.Kind)
	if err != nil {
		return Sort{}, err
	}
	dir, err := ParseDirection(s.Direction)
	if err != nil {
		return Sort{}, err
	}
	return Sort{Kind: kind, Direction: dir}, nil
}

// ExpandCURIE expands prefix:local using the prefix map. Absolute IRIs and
// unknown prefixes are returned unchanged.
func ExpandCURIE(prefixes map[string]string, s string) string {
	if s == "" || strings.Contains(s, "://") {
		return s
	}
	prefix, local, ok := strings.Cut(s, ":")
	if !ok {
		return s
	}
	if ns, found := prefixes[prefix]; found {
		return ns + local
	}
	return s
}
