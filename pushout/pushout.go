package pushout

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/c360studio/semmerge/graph"
	"github.com/c360studio/semmerge/rdf"
	"github.com/c360studio/semmerge/schema"
	"github.com/google/uuid"
)

// documentNamespace seeds the name-based UUIDs of synthetic document graphs.
var documentNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://semmerge.dev/document"))

// DocumentGraph returns the synthetic graph id standing in for the default
// graph of document i.
func DocumentGraph(i int) rdf.Term {
	id := uuid.NewSHA1(documentNamespace, []byte(strconv.Itoa(i)))
	return rdf.NamedNode("urn:uuid:" + id.String())
}

// Stats summarises a pushout.
type Stats struct {
	Documents  int
	Triples    int
	BlankNodes int
	Classes    int
	// Merged counts blank nodes that ended up in a non-singleton class.
	Merged int
	// Rounds is the number of key-matching passes until no union happened.
	Rounds int
}

// Class is one equivalence class of blank nodes.
type Class struct {
	ID      rdf.Term
	Members []rdf.Term
}

// Result is the quotient graph together with the class maps.
type Result struct {
	// Union is the disjoint union with document-tagged blank nodes.
	Union *graph.Store
	// Quotient is Union with every blank node replaced by its class id.
	Quotient *graph.Store

	components map[rdf.Term]rdf.Term
	inverse    map[rdf.Term][]rdf.Term
	classes    []Class
	stats      Stats
}

// Canonical maps a document-tagged blank node to its class id. Other terms
// are returned unchanged.
func (r *Result) Canonical(t rdf.Term) rdf.Term {
	if c, ok := r.components[t]; ok {
		return c
	}
	return t
}

// Preimage returns the document-tagged blank nodes merged into class id t.
// Any other term is its own preimage.
func (r *Result) Preimage(t rdf.Term) []rdf.Term {
	if members, ok := r.inverse[t]; ok {
		return members
	}
	return []rdf.Term{t}
}

// Classes returns every equivalence class in canonical order.
func (r *Result) Classes() []Class { return r.classes }

// Stats returns pushout statistics.
func (r *Result) Stats() Stats { return r.stats }

// builder holds the arena of blank nodes seen in the disjoint union.
type builder struct {
	ids   map[rdf.Term]int
	terms []rdf.Term
	uf    *unionFind
}

func (b *builder) index(t rdf.Term) int {
	if i, ok := b.ids[t]; ok {
		return i
	}
	i := b.uf.add()
	b.ids[t] = i
	b.terms = append(b.terms, t)
	return i
}

// Build computes the pushout of documents under the key predicates of s.
func Build(s *schema.Schema, documents [][]rdf.Triple) *Result {
	total := 0
	for _, doc := range documents {
		total += len(doc)
	}

	b := &builder{ids: make(map[rdf.Term]int), uf: newUnionFind(0)}
	union := graph.NewStore(total)
	for i, doc := range documents {
		for _, t := range doc {
			t = tagTriple(i, t)
			for _, term := range []rdf.Term{t.Subject, t.Object, t.Graph} {
				if term.IsBlankNode() {
					b.index(term)
				}
			}
			union.Add(t)
		}
	}

	rounds := b.matchKeys(s, union)

	r := &Result{
		Union:      union,
		components: make(map[rdf.Term]rdf.Term, len(b.terms)),
		inverse:    make(map[rdf.Term][]rdf.Term),
	}
	r.assignClasses(b)

	quotient := union.Triples()
	for i, t := range quotient {
		t.Subject = r.Canonical(t.Subject)
		t.Object = r.Canonical(t.Object)
		t.Graph = r.Canonical(t.Graph)
		quotient[i] = t
	}
	r.Quotient = graph.FromTriples(quotient)

	r.stats = Stats{
		Documents:  len(documents),
		Triples:    union.Len(),
		BlankNodes: len(b.terms),
		Classes:    len(r.classes),
		Rounds:     rounds,
	}
	for _, c := range r.classes {
		if len(c.Members) > 1 {
			r.stats.Merged += len(c.Members)
		}
	}
	return r
}

// matchKeys unions typed blank subjects sharing a key value, repeating
// until a full pass over the keyed shapes performs no union.
func (b *builder) matchKeys(s *schema.Schema, union *graph.Store) int {
	rounds := 0
	for {
		rounds++
		changed := false
		for _, shape := range s.Shapes() {
			if !shape.Keyed() {
				continue
			}
			key := rdf.NamedNode(shape.Key)
			groups := make(map[rdf.Term]int)
			for _, subject := range union.SubjectsOfType(shape.TargetType) {
				if !subject.IsBlankNode() {
					continue
				}
				si := b.ids[subject]
				for _, value := range union.Objects(subject, key) {
					value = b.keyValue(value)
					if first, ok := groups[value]; ok {
						if b.uf.union(first, si) {
							changed = true
						}
						continue
					}
					groups[value] = si
				}
			}
		}
		if !changed {
			return rounds
		}
	}
}

// keyValue maps blank-node key values to a term naming their current class
// root, so values merged in earlier rounds compare equal.
func (b *builder) keyValue(t rdf.Term) rdf.Term {
	if !t.IsBlankNode() {
		return t
	}
	root := b.uf.find(b.ids[t])
	return rdf.BlankNode("#" + strconv.Itoa(root))
}

// assignClasses numbers classes in order of their first member in the arena.
func (r *Result) assignClasses(b *builder) {
	ordinal := make(map[int]int)
	for i, term := range b.terms {
		root := b.uf.find(i)
		n, ok := ordinal[root]
		if !ok {
			n = len(r.classes)
			ordinal[root] = n
			r.classes = append(r.classes, Class{ID: rdf.BlankNode("c" + strconv.Itoa(n))})
		}
		r.classes[n].Members = append(r.classes[n].Members, term)
		r.components[term] = r.classes[n].ID
	}
	for _, c := range r.classes {
		r.inverse[c.ID] = slices.Clip(c.Members)
	}
}

// tagTriple relabels blank nodes with their document index and replaces the
// default graph with the document's synthetic graph id.
func tagTriple(doc int, t rdf.Triple) rdf.Triple {
	t.Subject = tagTerm(doc, t.Subject)
	t.Object = tagTerm(doc, t.Object)
	if t.Graph.IsDefaultGraph() {
		t.Graph = DocumentGraph(doc)
	} else {
		t.Graph = tagTerm(doc, t.Graph)
	}
	return t
}

func tagTerm(doc int, t rdf.Term) rdf.Term {
	if !t.IsBlankNode() {
		return t
	}
	return rdf.BlankNode(fmt.Sprintf("d%d.%s", doc, t.Value))
}
