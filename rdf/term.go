package rdf

import (
	"strings"

	"github.com/c360studio/semmerge/vocabulary/xsd"
)

// Namespace is the RDF syntax namespace.
const Namespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"

// Well-known RDF IRIs.
const (
	Type       = Namespace + "type"
	LangString = Namespace + "langString"
)

// TermKind discriminates the Term variants.
type TermKind uint8

const (
	// KindDefaultGraph is the zero kind and denotes the default graph.
	KindDefaultGraph TermKind = iota
	// KindNamedNode is an IRI.
	KindNamedNode
	// KindBlankNode is a document-scoped unnamed node.
	KindBlankNode
	// KindLiteral is a lexical form with a datatype and optional language.
	KindLiteral
)

// String returns the kind name.
func (k TermKind) String() string {
	switch k {
	case KindNamedNode:
		return "iri"
	case KindBlankNode:
		return "blank"
	case KindLiteral:
		return "literal"
	default:
		return "default-graph"
	}
}

// Term is an RDF term. Value holds the IRI, blank-node label or lexical form.
type Term struct {
	Kind     TermKind
	Value    string
	Datatype string
	Language string
}

// NamedNode returns an IRI term.
func NamedNode(iri string) Term {
	return Term{Kind: KindNamedNode, Value: iri}
}

// BlankNode returns a blank-node term with the given local label.
func BlankNode(id string) Term {
	return Term{Kind: KindBlankNode, Value: id}
}

// Literal returns a typed literal. An empty datatype means xsd:string.
func Literal(lexical, datatype string) Term {
	if datatype == "" {
		datatype = xsd.String
	}
	return Term{Kind: KindLiteral, Value: lexical, Datatype: datatype}
}

// LangLiteral returns a language-tagged string literal.
func LangLiteral(lexical, lang string) Term {
	return Term{Kind: KindLiteral, Value: lexical, Datatype: LangString, Language: strings.ToLower(lang)}
}

// DefaultGraph returns the default graph term.
func DefaultGraph() Term {
	return Term{}
}

// IsNamedNode reports whether t is an IRI.
func (t Term) IsNamedNode() bool { return t.Kind == KindNamedNode }

// IsBlankNode reports whether t is a blank node.
func (t Term) IsBlankNode() bool { return t.Kind == KindBlankNode }

// IsLiteral reports whether t is a literal.
func (t Term) IsLiteral() bool { return t.Kind == KindLiteral }

// IsDefaultGraph reports whether t is the default graph.
func (t Term) IsDefaultGraph() bool { return t.Kind == KindDefaultGraph }

// String renders the term in N-Triples syntax. The default graph renders
// as the empty string.
func (t Term) String() string {
	switch t.Kind {
	case KindNamedNode:
		return "<" + t.Value + ">"
	case KindBlankNode:
		return "_:" + t.Value
	case KindLiteral:
		lex := `"` + EscapeLiteral(t.Value) + `"`
		if t.Language != "" {
			return lex + "@" + t.Language
		}
		if t.Datatype == "" || t.Datatype == xsd.String {
			return lex
		}
		return lex + "^^<" + t.Datatype + ">"
	default:
		return ""
	}
}

// Compare orders terms by kind, then value, datatype and language.
func Compare(a, b Term) int {
	if a.Kind != b.Kind {
		if a.Kind < b.Kind {
			return -1
		}
		return 1
	}
	if c := strings.Compare(a.Value, b.Value); c != 0 {
		return c
	}
	if c := strings.Compare(a.Datatype, b.Datatype); c != 0 {
		return c
	}
	return strings.Compare(a.Language, b.Language)
}

// EscapeLiteral escapes a lexical form for N-Triples output.
func EscapeLiteral(s string) string {
	if !strings.ContainsAny(s, "\\\"\n\r\t") {
		return s
	}
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}
