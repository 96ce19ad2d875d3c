package materialize

import (
	"sync"

	"github.com/c360studio/semmerge/pushout"
	"github.com/c360studio/semmerge/rdf"
)

const ex = "http://ex.org/"

func iri(local string) rdf.Term { return rdf.NamedNode(ex + local) }

func lit(s string) rdf.Term { return rdf.Literal(s, "") }

func typed(s rdf.Term, class string) rdf.Triple {
	return rdf.NewTriple(s, rdf.Type, iri(class))
}

func prop(s rdf.Term, p string, o rdf.Term) rdf.Triple {
	return rdf.NewTriple(s, ex+p, o)
}

func inGraph(g rdf.Term, ts ...rdf.Triple) []rdf.Triple {
	out := make([]rdf.Triple, len(ts))
	for i, t := range ts {
		t.Graph = g
		out[i] = t
	}
	return out
}

// objects returns the objects of (s, ex:p) in output order.
func objects(triples []rdf.Triple, s rdf.Term, p string) []rdf.Term {
	var out []rdf.Term
	for _, t := range triples {
		if t.Subject == s && t.Predicate == iri(p) {
			out = append(out, t.Object)
		}
	}
	return out
}

// subjectsOf returns the subjects typed ex:class in the output.
func subjectsOf(triples []rdf.Triple, class string) []rdf.Term {
	var out []rdf.Term
	for _, t := range triples {
		if t.Predicate == rdf.NamedNode(rdf.Type) && t.Object == iri(class) {
			out = append(out, t.Subject)
		}
	}
	return out
}

type recorder struct {
	mu         sync.Mutex
	merges     []pushout.Stats
	rejections []Rejection
	deletions  []Deletion
}

func (r *recorder) OnMerge(s pushout.Stats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.merges = append(r.merges, s)
}

func (r *recorder) OnReject(x Rejection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejections = append(r.rejections, x)
}

func (r *recorder) OnDelete(d Deletion) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletions = append(r.deletions, d)
}
