package materialize

import (
	"slices"
	"sort"

	"github.com/c360studio/semmerge/rdf"
	"github.com/c360studio/semmerge/schema"
)

// Collector keeps the top limit items of a stream, ranked by outranks.
// Each item is inserted at its sorted position and the lowest-ranked tail
// is discarded once the length exceeds the limit. Items the order cannot tell
// apart keep their insertion order.
type Collector[T any] struct {
	limit    int
	outranks func(a, b T) bool
	items    []T
}

// NewCollector returns a collector bounded by limit; schema.Unbounded keeps
// every item.
func NewCollector[T any](limit int, outranks func(a, b T) bool) *Collector[T] {
	return &Collector[T]{limit: limit, outranks: outranks}
}

// Add offers one item.
func (c *Collector[T]) Add(x T) {
	if c.limit == 0 {
		return
	}
	i := sort.Search(len(c.items), func(i int) bool { return c.outranks(x, c.items[i]) })
	if c.limit != schema.Unbounded && i >= c.limit {
		return
	}
	c.items = slices.Insert(c.items, i, x)
	if c.limit != schema.Unbounded && len(c.items) > c.limit {
		c.items = c.items[:c.limit]
	}
}

// Items returns the collected items, best first.
func (c *Collector[T]) Items() []T { return c.items }

// Len returns the number of collected items.
func (c *Collector[T]) Len() int { return len(c.items) }

// Collect ranks terms under s and keeps the top limit.
func Collect(s schema.Sort, limit int, terms []rdf.Term) []rdf.Term {
	order := NewOrder(s)
	c := NewCollector(limit, order.Outranks)
	for _, t := range terms {
		c.Add(t)
	}
	return c.Items()
}

// candidate is a property value with the term its rank is taken from.
type candidate struct {
	value  rdf.Term
	rank   rdf.Term
	ranked bool
}

func (o *orderer) outranksCandidate(s schema.Sort, a, b candidate) bool {
	switch {
	case a.ranked && !b.ranked:
		return true
	case !a.ranked && b.ranked:
		return false
	case a.ranked && b.ranked:
		if c := o.compare(s, a.rank, b.rank); c != 0 {
			return c < 0
		}
	}
	return rdf.Compare(a.value, b.value) < 0
}
