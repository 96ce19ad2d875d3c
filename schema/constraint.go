package schema

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/c360studio/semmerge/rdf"
)

// NodeConstraint decides whether a term is an acceptable property value.
type NodeConstraint interface {
	Satisfies(t rdf.Term) bool
}

// AnyValue accepts every term.
type AnyValue struct{}

// Satisfies implements NodeConstraint.
func (AnyValue) Satisfies(rdf.Term) bool { return true }

// NodeKind accepts terms of one kind.
type NodeKind struct {
	Kind rdf.TermKind
}

// Satisfies implements NodeConstraint.
func (c NodeKind) Satisfies(t rdf.Term) bool { return t.Kind == c.Kind }

// Datatype accepts literals with the given datatype IRI.
type Datatype struct {
	IRI string
}

// Satisfies implements NodeConstraint.
func (c Datatype) Satisfies(t rdf.Term) bool {
	return t.IsLiteral() && t.Datatype == c.IRI
}

// ValueIn accepts the listed terms only.
type ValueIn struct {
	Values []rdf.Term
}

// Satisfies implements NodeConstraint.
func (c ValueIn) Satisfies(t rdf.Term) bool {
	return slices.Contains(c.Values, t)
}

// Pattern accepts literals and IRIs whose lexical form matches a regular
// expression.
type Pattern struct {
	re *regexp.Regexp
}

// NewPattern compiles a lexical pattern constraint.
func NewPattern(expr string) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("compile pattern: %w", err)
	}
	return Pattern{re: re}, nil
}

// Satisfies implements NodeConstraint.
func (c Pattern) Satisfies(t rdf.Term) bool {
	if t.IsBlankNode() || c.re == nil {
		return false
	}
	return c.re.MatchString(t.Value)
}

// Language accepts literals tagged with one of the listed languages.
type Language struct {
	Tags []string
}

// Satisfies implements NodeConstraint.
func (c Language) Satisfies(t rdf.Term) bool {
	if !t.IsLiteral() || t.Language == "" {
		return false
	}
	for _, tag := range c.Tags {
		if strings.EqualFold(tag, t.Language) {
			return true
		}
	}
	return false
}

// AllOf accepts terms satisfying every member constraint.
type AllOf []NodeConstraint

// Satisfies implements NodeConstraint.
func (c AllOf) Satisfies(t rdf.Term) bool {
	for _, sub := range c {
		if !sub.Satisfies(t) {
			return false
		}
	}
	return true
}
