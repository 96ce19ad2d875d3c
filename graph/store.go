// Package graph provides an in-memory indexed triple store used as the
// working graph of a single materialization.
package graph

import "github.com/c360studio/semmerge/rdf"

type spKey struct{ s, p rdf.Term }

type poKey struct{ p, o rdf.Term }

// Store is an indexed triple multiset. Duplicate statements are kept, so a
// triple asserted by two documents is visible twice with its two graphs.
//
// Store is not safe for concurrent mutation; it is built once and then read.
type Store struct {
	triples   []rdf.Triple
	bySubject map[rdf.Term][]int
	bySP      map[spKey][]int
	byPO      map[poKey][]int
	byPred    map[rdf.Term][]int
}

// Pattern selects triples. A nil position matches any term.
type Pattern struct {
	Subject   *rdf.Term
	Predicate *rdf.Term
	Object    *rdf.Term
	Graph     *rdf.Term
}

// NewStore creates an empty store sized for n triples.
func NewStore(n int) *Store {
	return &Store{
		triples:   make([]rdf.Triple, 0, n),
		bySubject: make(map[rdf.Term][]int),
		bySP:      make(map[spKey][]int),
		byPO:      make(map[poKey][]int),
		byPred:    make(map[rdf.Term][]int),
	}
}

// FromTriples builds a store holding the given triples.
func FromTriples(triples []rdf.Triple) *Store {
	s := NewStore(len(triples))
	for _, t := range triples {
		s.Add(t)
	}
	return s
}

// Add appends a triple and indexes it.
func (s *Store) Add(t rdf.Triple) {
	i := len(s.triples)
	s.triples = append(s.triples, t)
	s.bySubject[t.Subject] = append(s.bySubject[t.Subject], i)
	s.bySP[spKey{t.Subject, t.Predicate}] = append(s.bySP[spKey{t.Subject, t.Predicate}], i)
	s.byPO[poKey{t.Predicate, t.Object}] = append(s.byPO[poKey{t.Predicate, t.Object}], i)
	s.byPred[t.Predicate] = append(s.byPred[t.Predicate], i)
}

// Len returns the number of stored statements, duplicates included.
func (s *Store) Len() int { return len(s.triples) }

// Triples returns a copy of all statements in insertion order.
func (s *Store) Triples() []rdf.Triple {
	out := make([]rdf.Triple, len(s.triples))
	copy(out, s.triples)
	return out
}

// Match returns every statement matching the pattern, in insertion order.
func (s *Store) Match(p Pattern) []rdf.Triple {
	var out []rdf.Triple
	for _, i := range s.candidates(p) {
		t := s.triples[i]
		if matches(p, t) {
			out = append(out, t)
		}
	}
	return out
}

// candidates picks the narrowest index for the bound positions.
func (s *Store) candidates(p Pattern) []int {
	switch {
	case p.Subject != nil && p.Predicate != nil:
		return s.bySP[spKey{*p.Subject, *p.Predicate}]
	case p.Predicate != nil && p.Object != nil:
		return s.byPO[poKey{*p.Predicate, *p.Object}]
	case p.Subject != nil:
		return s.bySubject[*p.Subject]
	case p.Predicate != nil:
		return s.byPred[*p.Predicate]
	default:
		all := make([]int, len(s.triples))
		for i := range all {
			all[i] = i
		}
		return all
	}
}

func matches(p Pattern, t rdf.Triple) bool {
	if p.Subject != nil && *p.Subject != t.Subject {
		return false
	}
	if p.Predicate != nil && *p.Predicate != t.Predicate {
		return false
	}
	if p.Object != nil && *p.Object != t.Object {
		return false
	}
	if p.Graph != nil && *p.Graph != t.Graph {
		return false
	}
	return true
}

// Objects returns the distinct objects of (subject, predicate) in first-seen order.
func (s *Store) Objects(subject, predicate rdf.Term) []rdf.Term {
	return s.distinct(s.bySP[spKey{subject, predicate}], func(t rdf.Triple) rdf.Term { return t.Object })
}

// Subjects returns the distinct subjects of (predicate, object) in first-seen order.
func (s *Store) Subjects(predicate, object rdf.Term) []rdf.Term {
	return s.distinct(s.byPO[poKey{predicate, object}], func(t rdf.Triple) rdf.Term { return t.Subject })
}

// Graphs returns the distinct graphs asserting (subject, predicate, object).
func (s *Store) Graphs(subject, predicate, object rdf.Term) []rdf.Term {
	var idx []int
	for _, i := range s.bySP[spKey{subject, predicate}] {
		if s.triples[i].Object == object {
			idx = append(idx, i)
		}
	}
	return s.distinct(idx, func(t rdf.Triple) rdf.Term { return t.Graph })
}

// Has reports whether (subject, predicate, object) is asserted in any graph.
func (s *Store) Has(subject, predicate, object rdf.Term) bool {
	for _, i := range s.bySP[spKey{subject, predicate}] {
		if s.triples[i].Object == object {
			return true
		}
	}
	return false
}

// SubjectsOfType returns the distinct subjects typed with the given class IRI.
func (s *Store) SubjectsOfType(class string) []rdf.Term {
	return s.Subjects(rdf.NamedNode(rdf.Type), rdf.NamedNode(class))
}

func (s *Store) distinct(idx []int, pick func(rdf.Triple) rdf.Term) []rdf.Term {
	if len(idx) == 0 {
		return nil
	}
	seen := make(map[rdf.Term]struct{}, len(idx))
	out := make([]rdf.Term, 0, len(idx))
	for _, i := range idx {
		term := pick(s.triples[i])
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}
	return out
}
