package materialize

import (
	"cmp"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/c360studio/semmerge/rdf"
	"github.com/c360studio/semmerge/schema"
	"github.com/c360studio/semmerge/vocabulary/xsd"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSortCacheSize bounds the number of decoded sort keys kept per run.
const DefaultSortCacheSize = 4096

// temporalLayouts covers the XSD date and time lexical forms.
var temporalLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02Z07:00",
	"2006-01-02",
	"15:04:05.999999999Z07:00",
	"15:04:05.999999999",
	"2006-01Z07:00",
	"2006-01",
	"2006Z07:00",
	"2006",
}

type decodeKey struct {
	kind schema.SortKind
	term rdf.Term
}

// decoded is a literal's value in the domain of one sort kind.
type decoded struct {
	num  float64
	at   time.Time
	flag bool
	ok   bool
}

// orderer compares terms under a sort, memoising decoded literals.
type orderer struct {
	cache *lru.Cache[decodeKey, decoded]
}

func newOrderer(size int) *orderer {
	if size <= 0 {
		size = DefaultSortCacheSize
	}
	cache, err := lru.New[decodeKey, decoded](size)
	if err != nil {
		panic(err)
	}
	return &orderer{cache: cache}
}

// compare returns a negative number when a outranks b under s, positive when
// b outranks a, and zero when the sort cannot tell them apart. Values that
// do not decode under the sort kind rank after every value that does.
func (o *orderer) compare(s schema.Sort, a, b rdf.Term) int {
	if s.Kind == schema.SortLexicographic {
		return directed(strings.Compare(a.Value, b.Value), s.Direction)
	}

	da, db := o.decode(s.Kind, a), o.decode(s.Kind, b)
	switch {
	case !da.ok && !db.ok:
		return 0
	case !db.ok:
		return -1
	case !da.ok:
		return 1
	}

	switch s.Kind {
	case schema.SortNumeric:
		return directed(cmp.Compare(da.num, db.num), s.Direction)
	case schema.SortTemporal:
		return directed(da.at.Compare(db.at), s.Direction)
	case schema.SortBooleanAnd:
		return compareBool(da.flag, db.flag)
	case schema.SortBooleanOr:
		return -compareBool(da.flag, db.flag)
	default:
		return 0
	}
}

// outranks is compare refined by term order, making every sort total.
func (o *orderer) outranks(s schema.Sort, a, b rdf.Term) bool {
	if c := o.compare(s, a, b); c != 0 {
		return c < 0
	}
	return rdf.Compare(a, b) < 0
}

// best returns the top-ranked term under s.
func (o *orderer) best(s schema.Sort, terms []rdf.Term) (rdf.Term, bool) {
	if len(terms) == 0 {
		return rdf.Term{}, false
	}
	top := terms[0]
	for _, t := range terms[1:] {
		if o.outranks(s, t, top) {
			top = t
		}
	}
	return top, true
}

func (o *orderer) decode(kind schema.SortKind, t rdf.Term) decoded {
	k := decodeKey{kind: kind, term: t}
	if d, ok := o.cache.Get(k); ok {
		return d
	}
	var d decoded
	switch kind {
	case schema.SortNumeric:
		if t.IsLiteral() && xsd.IsNumeric(t.Datatype) {
			d.num, d.ok = decodeNumber(t.Value)
		}
	case schema.SortTemporal:
		d.at, d.ok = decodeTime(t.Value)
	case schema.SortBooleanAnd, schema.SortBooleanOr:
		d.flag, d.ok = decodeBool(t.Value)
	}
	o.cache.Add(k, d)
	return d
}

func decodeNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func decodeTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range temporalLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	t, err := dateparse.ParseStrict(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func decodeBool(s string) (bool, bool) {
	switch strings.TrimSpace(s) {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	default:
		return false, false
	}
}

func directed(c int, d schema.Direction) int {
	if d == schema.Descending {
		return -c
	}
	return c
}

// compareBool orders false before true.
func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// Order ranks terms under one sort. It is a total order: values the sort
// cannot distinguish fall back to term order.
type Order struct {
	sort schema.Sort
	o    *orderer
}

// NewOrder returns the order for s.
func NewOrder(s schema.Sort) Order {
	return Order{sort: s, o: newOrderer(0)}
}

// Outranks reports whether a ranks above b.
func (o Order) Outranks(a, b rdf.Term) bool {
	return o.o.outranks(o.sort, a, b)
}
