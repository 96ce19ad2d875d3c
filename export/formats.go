package export

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/c360studio/semmerge/rdf"
	"github.com/c360studio/semmerge/vocabulary/xsd"
)

// FormatInfo provides metadata about an export format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is the standard MIME type.
	MIMEType string

	// Extension is the file extension (with dot).
	Extension string

	// Description describes the format.
	Description string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatTurtle: {
		Name:        FormatTurtle,
		MIMEType:    "text/turtle",
		Extension:   ".ttl",
		Description: "Turtle - Terse RDF Triple Language",
	},
	FormatNTriples: {
		Name:        FormatNTriples,
		MIMEType:    "application/n-triples",
		Extension:   ".nt",
		Description: "N-Triples - Line-based RDF format",
	},
	FormatJSONLD: {
		Name:        FormatJSONLD,
		MIMEType:    "application/ld+json",
		Extension:   ".jsonld",
		Description: "JSON-LD - JSON for Linked Data",
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// ParseFormat resolves a format name or file extension.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if _, ok := FormatRegistry[Format(s)]; ok {
		return Format(s), nil
	}
	switch s {
	case "nt", "n-triples":
		return FormatNTriples, nil
	case "ttl":
		return FormatTurtle, nil
	case "json-ld":
		return FormatJSONLD, nil
	}
	for _, info := range FormatRegistry {
		if s == info.Extension || "."+s == info.Extension {
			return info.Name, nil
		}
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// FormatForPath picks the format registered for the path's extension.
func FormatForPath(path string) (Format, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, info := range FormatRegistry {
		if info.Extension == ext {
			return info.Name, true
		}
	}
	return "", false
}

// TurtleWriter writes RDF in Turtle format.
type TurtleWriter struct {
	prefixes map[string]string
	sb       strings.Builder
}

// NewTurtleWriter creates a Turtle writer. A nil map uses the default
// prefixes.
func NewTurtleWriter(prefixes map[string]string) *TurtleWriter {
	if prefixes == nil {
		prefixes = defaultPrefixes()
	}
	return &TurtleWriter{prefixes: prefixes}
}

// SetPrefix sets a namespace prefix.
func (w *TurtleWriter) SetPrefix(prefix, iri string) {
	w.prefixes[prefix] = iri
}

// WritePrefixes writes prefix declarations.
func (w *TurtleWriter) WritePrefixes() {
	// Sort prefixes for consistent output
	keys := make([]string, 0, len(w.prefixes))
	for k := range w.prefixes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, prefix := range keys {
		w.sb.WriteString(fmt.Sprintf("@prefix %s: <%s> .\n", prefix, w.prefixes[prefix]))
	}
	w.sb.WriteString("\n")
}

// WriteSubject starts a new subject block.
func (w *TurtleWriter) WriteSubject(subject rdf.Term) {
	w.sb.WriteString(w.term(subject))
	w.sb.WriteString("\n")
}

// WritePredicate writes a predicate-object pair.
func (w *TurtleWriter) WritePredicate(predicate, object rdf.Term, last bool) {
	terminator := " ;"
	if last {
		terminator = " ."
	}
	pred := w.term(predicate)
	if predicate.Value == rdf.Type {
		pred = "a"
	}
	w.sb.WriteString(fmt.Sprintf("    %s %s%s\n", pred, w.term(object), terminator))
}

// WriteBlank writes a blank line for readability.
func (w *TurtleWriter) WriteBlank() {
	w.sb.WriteString("\n")
}

// String returns the accumulated Turtle output.
func (w *TurtleWriter) String() string {
	return w.sb.String()
}

// term renders t with prefixed names where possible.
func (w *TurtleWriter) term(t rdf.Term) string {
	switch t.Kind {
	case rdf.KindNamedNode:
		if name, ok := compactIRI(w.prefixes, t.Value); ok {
			return name
		}
		return "<" + t.Value + ">"
	case rdf.KindLiteral:
		quoted := "\"" + escapeString(t.Value) + "\""
		switch {
		case t.Language != "":
			return quoted + "@" + t.Language
		case t.Datatype == "" || t.Datatype == xsd.String:
			return quoted
		default:
			return quoted + "^^" + w.term(rdf.NamedNode(t.Datatype))
		}
	default:
		return t.String()
	}
}

// NTriplesWriter writes RDF in N-Triples format.
type NTriplesWriter struct {
	sb strings.Builder
}

// NewNTriplesWriter creates a new N-Triples writer.
func NewNTriplesWriter() *NTriplesWriter {
	return &NTriplesWriter{}
}

// WriteTriple writes a single triple, ignoring its graph.
func (w *NTriplesWriter) WriteTriple(t rdf.Triple) {
	t.Graph = rdf.DefaultGraph()
	w.sb.WriteString(t.String())
	w.sb.WriteString("\n")
}

// String returns the accumulated N-Triples output.
func (w *NTriplesWriter) String() string {
	return w.sb.String()
}

// JSONLDDocument represents a JSON-LD document structure.
type JSONLDDocument struct {
	Context map[string]any `json:"@context"`
	Graph   []JSONLDNode   `json:"@graph"`
}

// JSONLDNode represents a node in a JSON-LD graph.
type JSONLDNode struct {
	ID         string         `json:"@id"`
	Type       []string       `json:"@type,omitempty"`
	Properties map[string]any `json:"-"`
}

// MarshalJSON implements custom JSON marshaling for JSONLDNode.
func (n JSONLDNode) MarshalJSON() ([]byte, error) {
	// Create a map with all fields
	m := make(map[string]any)
	m["@id"] = n.ID
	if len(n.Type) > 0 {
		m["@type"] = n.Type
	}
	for k, v := range n.Properties {
		m[k] = v
	}
	return json.Marshal(m)
}

// JSONLDWriter writes RDF in JSON-LD format.
type JSONLDWriter struct {
	doc JSONLDDocument
}

// NewJSONLDWriter creates a new JSON-LD writer.
func NewJSONLDWriter() *JSONLDWriter {
	return &JSONLDWriter{
		doc: JSONLDDocument{
			Context: make(map[string]any),
			Graph:   make([]JSONLDNode, 0),
		},
	}
}

// SetContext sets the @context with prefixes.
func (w *JSONLDWriter) SetContext(prefixes map[string]string) {
	for k, v := range prefixes {
		w.doc.Context[k] = v
	}
}

// AddNode adds a node to the graph.
func (w *JSONLDWriter) AddNode(id string, types []string, properties map[string]any) {
	w.doc.Graph = append(w.doc.Graph, JSONLDNode{
		ID:         id,
		Type:       types,
		Properties: properties,
	})
}

// Marshal returns the indented JSON-LD document.
func (w *JSONLDWriter) Marshal() (string, error) {
	data, err := json.MarshalIndent(w.doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal json-ld: %w", err)
	}
	return string(data) + "\n", nil
}

func jsonLDID(t rdf.Term) string {
	if t.IsBlankNode() {
		return "_:" + t.Value
	}
	return t.Value
}

func jsonLDObject(t rdf.Term) map[string]any {
	switch t.Kind {
	case rdf.KindLiteral:
		m := map[string]any{"@value": t.Value}
		switch {
		case t.Language != "":
			m["@language"] = t.Language
		case t.Datatype != "" && t.Datatype != xsd.String:
			m["@type"] = t.Datatype
		}
		return m
	default:
		return map[string]any{"@id": jsonLDID(t)}
	}
}
