package dataset

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/c360studio/semmerge/rdf"
	"github.com/c360studio/semmerge/schema"
	"github.com/c360studio/semmerge/vocabulary/xsd"
	"gopkg.in/yaml.v3"
)

// ErrInvalidTerm is returned for a term the document encoding cannot read.
var ErrInvalidTerm = errors.New("invalid term")

// File is the YAML encoding of one document.
type File struct {
	Prefixes map[string]string `yaml:"prefixes,omitempty"`
	// Graph names the graph of every triple that does not give its own.
	Graph   string      `yaml:"graph,omitempty"`
	Triples []yaml.Node `yaml:"triples"`
}

// tripleSpec is the mapping form of one triple.
type tripleSpec struct {
	S yaml.Node `yaml:"s"`
	P yaml.Node `yaml:"p"`
	O yaml.Node `yaml:"o"`
	G yaml.Node `yaml:"g"`
}

// literalSpec is the mapping form of an object term.
type literalSpec struct {
	IRI      string  `yaml:"iri,omitempty"`
	Blank    string  `yaml:"blank,omitempty"`
	Value    *string `yaml:"value,omitempty"`
	Datatype string  `yaml:"datatype,omitempty"`
	Lang     string  `yaml:"lang,omitempty"`
}

// Decode parses a document file.
func Decode(data []byte) ([]rdf.Triple, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return f.Resolve()
}

// Resolve reads the encoded triples against the file's prefixes.
func (f *File) Resolve() ([]rdf.Triple, error) {
	d := decoder{prefixes: map[string]string{
		"rdf": rdf.Namespace,
		"xsd": xsd.Namespace,
	}}
	maps.Copy(d.prefixes, f.Prefixes)

	graph := rdf.DefaultGraph()
	if f.Graph != "" {
		g, err := d.resource(f.Graph)
		if err != nil {
			return nil, fmt.Errorf("graph: %w", err)
		}
		graph = g
	}

	out := make([]rdf.Triple, 0, len(f.Triples))
	for i := range f.Triples {
		t, err := d.triple(&f.Triples[i], graph)
		if err != nil {
			return nil, fmt.Errorf("triple %d (line %d): %w", i, f.Triples[i].Line, err)
		}
		out = append(out, t)
	}
	return out, nil
}

type decoder struct {
	prefixes map[string]string
}

func (d decoder) triple(n *yaml.Node, graph rdf.Term) (rdf.Triple, error) {
	var s, p, o, g *yaml.Node
	switch n.Kind {
	case yaml.SequenceNode:
		if len(n.Content) != 3 && len(n.Content) != 4 {
			return rdf.Triple{}, fmt.Errorf("want 3 or 4 terms, got %d", len(n.Content))
		}
		s, p, o = n.Content[0], n.Content[1], n.Content[2]
		if len(n.Content) == 4 {
			g = n.Content[3]
		}
	case yaml.MappingNode:
		var spec tripleSpec
		if err := n.Decode(&spec); err != nil {
			return rdf.Triple{}, err
		}
		if spec.S.IsZero() || spec.P.IsZero() || spec.O.IsZero() {
			return rdf.Triple{}, errors.New("s, p and o are required")
		}
		s, p, o = &spec.S, &spec.P, &spec.O
		if !spec.G.IsZero() {
			g = &spec.G
		}
	default:
		return rdf.Triple{}, errors.New("triple must be a sequence or a mapping")
	}

	var t rdf.Triple
	var err error
	if t.Subject, err = d.scalarResource(s); err != nil {
		return t, fmt.Errorf("subject: %w", err)
	}
	if t.Predicate, err = d.predicate(p); err != nil {
		return t, fmt.Errorf("predicate: %w", err)
	}
	if t.Object, err = d.object(o); err != nil {
		return t, fmt.Errorf("object: %w", err)
	}
	t.Graph = graph
	if g != nil {
		if t.Graph, err = d.scalarResource(g); err != nil {
			return t, fmt.Errorf("graph: %w", err)
		}
	}
	return t, nil
}

func (d decoder) predicate(n *yaml.Node) (rdf.Term, error) {
	if n.Kind == yaml.ScalarNode && n.Value == "a" {
		return rdf.NamedNode(rdf.Type), nil
	}
	t, err := d.scalarResource(n)
	if err != nil {
		return t, err
	}
	if !t.IsNamedNode() {
		return t, fmt.Errorf("%w: predicate %q is not an IRI", ErrInvalidTerm, n.Value)
	}
	return t, nil
}

func (d decoder) scalarResource(n *yaml.Node) (rdf.Term, error) {
	if n.Kind != yaml.ScalarNode {
		return rdf.Term{}, fmt.Errorf("%w: expected a string", ErrInvalidTerm)
	}
	return d.resource(n.Value)
}

// resource reads a blank node, bracketed IRI, CURIE or absolute IRI.
func (d decoder) resource(s string) (rdf.Term, error) {
	switch {
	case s == "":
		return rdf.Term{}, fmt.Errorf("%w: empty", ErrInvalidTerm)
	case strings.HasPrefix(s, "_:"):
		if len(s) == 2 {
			return rdf.Term{}, fmt.Errorf("%w: empty blank node label", ErrInvalidTerm)
		}
		return rdf.BlankNode(s[2:]), nil
	case strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">"):
		return rdf.NamedNode(s[1 : len(s)-1]), nil
	}
	iri := schema.ExpandCURIE(d.prefixes, s)
	if !strings.Contains(iri, ":") {
		return rdf.Term{}, fmt.Errorf("%w: %q is not an IRI", ErrInvalidTerm, s)
	}
	return rdf.NamedNode(iri), nil
}

// declared reports whether s is a CURIE over a declared prefix.
func (d decoder) declared(s string) bool {
	prefix, _, ok := strings.Cut(s, ":")
	if !ok {
		return false
	}
	_, found := d.prefixes[prefix]
	return found
}

// absoluteIRI reports whether s is a scheme-qualified IRI such as
// http://ex.org/bob.
func absoluteIRI(s string) bool {
	scheme, rest, ok := strings.Cut(s, "://")
	if !ok || scheme == "" || rest == "" || strings.ContainsAny(s, " \t\n<>\"") {
		return false
	}
	for i, r := range scheme {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}

func (d decoder) object(n *yaml.Node) (rdf.Term, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return d.scalarObject(n)
	case yaml.MappingNode:
		var spec literalSpec
		if err := n.Decode(&spec); err != nil {
			return rdf.Term{}, err
		}
		switch {
		case spec.IRI != "":
			return d.resource(spec.IRI)
		case spec.Blank != "":
			return rdf.BlankNode(strings.TrimPrefix(spec.Blank, "_:")), nil
		case spec.Value == nil:
			return rdf.Term{}, fmt.Errorf("%w: mapping needs iri, blank or value", ErrInvalidTerm)
		case spec.Lang != "":
			return rdf.LangLiteral(*spec.Value, spec.Lang), nil
		case spec.Datatype == "":
			return rdf.Literal(*spec.Value, ""), nil
		default:
			dt, err := d.resource(spec.Datatype)
			if err != nil || !dt.IsNamedNode() {
				return rdf.Term{}, fmt.Errorf("%w: datatype %q", ErrInvalidTerm, spec.Datatype)
			}
			return rdf.Literal(*spec.Value, dt.Value), nil
		}
	default:
		return rdf.Term{}, fmt.Errorf("%w: unsupported node", ErrInvalidTerm)
	}
}

func (d decoder) scalarObject(n *yaml.Node) (rdf.Term, error) {
	switch n.ShortTag() {
	case "!!int":
		return rdf.Literal(n.Value, xsd.Integer), nil
	case "!!float":
		return rdf.Literal(n.Value, xsd.Double), nil
	case "!!bool":
		return rdf.Literal(strings.ToLower(n.Value), xsd.Boolean), nil
	case "!!timestamp":
		if strings.ContainsAny(n.Value, "Tt ") {
			return rdf.Literal(n.Value, xsd.DateTime), nil
		}
		return rdf.Literal(n.Value, xsd.Date), nil
	case "!!null":
		return rdf.Term{}, fmt.Errorf("%w: null", ErrInvalidTerm)
	}

	s := n.Value
	switch {
	case strings.HasPrefix(s, "_:"), strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">"), d.declared(s), absoluteIRI(s):
		return d.resource(s)
	default:
		return rdf.Literal(s, ""), nil
	}
}

// Encode writes triples in the mapping form Decode reads. Literals are
// always written as mappings so they read back unchanged.
func Encode(triples []rdf.Triple, prefixes map[string]string) ([]byte, error) {
	type encoded struct {
		S string `yaml:"s"`
		P string `yaml:"p"`
		O any    `yaml:"o"`
		G string `yaml:"g,omitempty"`
	}
	doc := struct {
		Prefixes map[string]string `yaml:"prefixes,omitempty"`
		Triples  []encoded         `yaml:"triples"`
	}{Prefixes: prefixes, Triples: make([]encoded, 0, len(triples))}

	for _, t := range triples {
		e := encoded{S: encodeResource(t.Subject), P: encodeResource(t.Predicate)}
		if !t.Graph.IsDefaultGraph() {
			e.G = encodeResource(t.Graph)
		}
		if t.Object.IsLiteral() {
			lit := literalSpec{Value: &t.Object.Value}
			if t.Object.Language != "" {
				lit.Lang = t.Object.Language
			} else {
				lit.Datatype = "<" + t.Object.Datatype + ">"
			}
			e.O = lit
		} else if t.Object.IsBlankNode() {
			e.O = literalSpec{Blank: t.Object.Value}
		} else {
			e.O = literalSpec{IRI: encodeResource(t.Object)}
		}
		doc.Triples = append(doc.Triples, e)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

func encodeResource(t rdf.Term) string {
	if t.IsBlankNode() {
		return "_:" + t.Value
	}
	return "<" + t.Value + ">"
}
