// Package export serializes materialized triples to RDF text formats.
package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/c360studio/semmerge/rdf"
	"github.com/c360studio/semmerge/vocabulary/xsd"
)

// Format specifies the output serialization format.
type Format string

const (
	// FormatTurtle produces Turtle (.ttl) output.
	FormatTurtle Format = "turtle"

	// FormatNTriples produces N-Triples (.nt) output.
	FormatNTriples Format = "ntriples"

	// FormatJSONLD produces flattened JSON-LD (.jsonld) output.
	FormatJSONLD Format = "jsonld"
)

// Exporter serializes triple lists with a set of namespace prefixes.
// Prefixes only affect Turtle and JSON-LD output.
type Exporter struct {
	prefixes map[string]string
}

// NewExporter creates an exporter with the default prefixes.
func NewExporter() *Exporter {
	return &Exporter{prefixes: defaultPrefixes()}
}

// defaultPrefixes returns the standard namespace prefixes for RDF export.
func defaultPrefixes() map[string]string {
	return map[string]string{
		"rdf":  rdf.Namespace,
		"rdfs": "http://www.w3.org/2000/01/rdf-schema#",
		"xsd":  xsd.Namespace,
	}
}

// SetPrefix sets a namespace prefix.
func (e *Exporter) SetPrefix(prefix, iri string) {
	e.prefixes[prefix] = iri
}

// Prefixes returns a copy of the prefix map.
func (e *Exporter) Prefixes() map[string]string {
	out := make(map[string]string, len(e.prefixes))
	for k, v := range e.prefixes {
		out[k] = v
	}
	return out
}

// Export serializes triples to the specified format.
func (e *Exporter) Export(format Format, triples []rdf.Triple) (string, error) {
	var sb strings.Builder
	if err := e.Write(&sb, format, triples); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Write serializes triples to w in the specified format.
func (e *Exporter) Write(w io.Writer, format Format, triples []rdf.Triple) error {
	var out string
	switch format {
	case FormatTurtle:
		out = e.toTurtle(triples)
	case FormatNTriples:
		out = toNTriples(triples)
	case FormatJSONLD:
		s, err := e.toJSONLD(triples)
		if err != nil {
			return err
		}
		out = s
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	if _, err := io.WriteString(w, out); err != nil {
		return fmt.Errorf("write %s: %w", format, err)
	}
	return nil
}

// subjectGroup is the run of triples sharing a subject, in first-seen order.
type subjectGroup struct {
	subject rdf.Term
	triples []rdf.Triple
}

func groupBySubject(triples []rdf.Triple) []subjectGroup {
	index := make(map[rdf.Term]int)
	var groups []subjectGroup
	for _, t := range triples {
		i, ok := index[t.Subject]
		if !ok {
			i = len(groups)
			index[t.Subject] = i
			groups = append(groups, subjectGroup{subject: t.Subject})
		}
		groups[i].triples = append(groups[i].triples, t)
	}
	return groups
}

// toTurtle serializes to Turtle format, one block per subject.
func (e *Exporter) toTurtle(triples []rdf.Triple) string {
	w := NewTurtleWriter(e.prefixes)
	w.WritePrefixes()

	for i, g := range groupBySubject(triples) {
		if i > 0 {
			w.WriteBlank()
		}
		w.WriteSubject(g.subject)
		for j, t := range g.triples {
			w.WritePredicate(t.Predicate, t.Object, j == len(g.triples)-1)
		}
	}
	return w.String()
}

// toNTriples serializes to N-Triples format. Graph terms are dropped.
func toNTriples(triples []rdf.Triple) string {
	w := NewNTriplesWriter()
	for _, t := range triples {
		w.WriteTriple(t)
	}
	return w.String()
}

// toJSONLD serializes to flattened JSON-LD, one node per subject.
func (e *Exporter) toJSONLD(triples []rdf.Triple) (string, error) {
	w := NewJSONLDWriter()
	w.SetContext(e.prefixes)
	for _, g := range groupBySubject(triples) {
		var types []string
		props := make(map[string]any)
		for _, t := range g.triples {
			if t.Predicate.Value == rdf.Type && t.Object.IsNamedNode() {
				types = append(types, t.Object.Value)
				continue
			}
			key := t.Predicate.Value
			if existing, ok := props[key].([]any); ok {
				props[key] = append(existing, jsonLDObject(t.Object))
			} else {
				props[key] = []any{jsonLDObject(t.Object)}
			}
		}
		w.AddNode(jsonLDID(g.subject), types, props)
	}
	return w.Marshal()
}

// compactIRI abbreviates iri with the longest matching prefix whose local
// part is a valid Turtle name. It reports false when no prefix applies.
func compactIRI(prefixes map[string]string, iri string) (string, bool) {
	keys := make([]string, 0, len(prefixes))
	for k := range prefixes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(prefixes[keys[i]]) != len(prefixes[keys[j]]) {
			return len(prefixes[keys[i]]) > len(prefixes[keys[j]])
		}
		return keys[i] < keys[j]
	})

	for _, prefix := range keys {
		ns := prefixes[prefix]
		if ns == "" || !strings.HasPrefix(iri, ns) {
			continue
		}
		local := iri[len(ns):]
		if validLocalName(local) {
			return prefix + ":" + local, true
		}
	}
	return "", false
}

func validLocalName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9', r == '-':
			if i == 0 && r == '-' {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// escapeString escapes special characters in strings for RDF serialization.
func escapeString(s string) string {
	return rdf.EscapeLiteral(s)
}
