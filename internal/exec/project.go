package exec

import (
	"ssddb/internal/fnv1a"
	"ssddb/internal/storage"
)

// distinctBuckets is the fixed bucket count of the DISTINCT hash set.
const distinctBuckets = 256

// distinctSet deduplicates projected attribute tuples by content hash. It
// owns deep copies of every row it has accepted so borrowed page memory
// can safely go away between calls.
type distinctSet struct {
	buckets [distinctBuckets][][]storage.AttrValue
}

func newDistinctSet() *distinctSet {
	return &distinctSet{}
}

func (d *distinctSet) bucket(hash uint64) int {
	return int(hash % distinctBuckets)
}

func (d *distinctSet) contains(attrs []storage.AttrValue, hash uint64) bool {
	for _, entry := range d.buckets[d.bucket(hash)] {
		if attrsEqual(entry, attrs) {
			return true
		}
	}
	return false
}

func (d *distinctSet) insert(attrs []storage.AttrValue, hash uint64) {
	cp := make([]storage.AttrValue, len(attrs))
	for i, a := range attrs {
		cp[i] = a.Clone()
	}
	idx := d.bucket(hash)
	d.buckets[idx] = append(d.buckets[idx], cp)
}

// reset empties every bucket's chain without freeing the bucket array
// itself, matching Project.Reset's "clear, don't rebuild" semantics.
func (d *distinctSet) reset() {
	for i := range d.buckets {
		d.buckets[i] = nil
	}
}

func attrsEqual(a, b []storage.AttrValue) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// projectedHash folds each attribute's type tag and canonical bytes into
// a single FNV-1a 64-bit hash, used as the DISTINCT set's key.
func projectedHash(attrs []storage.AttrValue) uint64 {
	var buf []byte
	for _, a := range attrs {
		buf = append(buf, byte(a.Type))
		buf = append(buf, storage.CanonicalBytes(a)...)
	}
	return fnv1a.Hash(buf)
}

// Project subsets a tuple's attributes by index, optionally deduplicating
// the stream (DISTINCT) via a content hash set.
type Project struct {
	child         Operator
	columnIndices []int
	distinct      bool

	attrs []storage.AttrValue
	out   storage.TupleView
	seen  *distinctSet
}

// NewProject projects columnIndices (into the child's attribute array)
// from every tuple the child produces.
func NewProject(child Operator, columnIndices []int, distinct bool) *Project {
	return &Project{
		child:         child,
		columnIndices: columnIndices,
		distinct:      distinct,
		attrs:         make([]storage.AttrValue, len(columnIndices)),
	}
}

func (p *Project) Open() error {
	if err := p.child.Open(); err != nil {
		return err
	}
	if p.distinct {
		p.seen = newDistinctSet()
	}
	return nil
}

func (p *Project) Next() (*storage.TupleView, error) {
	for {
		tuple, err := p.child.Next()
		if err != nil || tuple == nil {
			return nil, err
		}

		for i, idx := range p.columnIndices {
			p.attrs[i] = tuple.Attrs[idx]
		}
		p.out.ID = tuple.ID
		p.out.IsNull = tuple.IsNull
		p.out.Attrs = p.attrs

		if !p.distinct {
			return &p.out, nil
		}

		hash := projectedHash(p.attrs)
		if p.seen.contains(p.attrs, hash) {
			continue
		}
		p.seen.insert(p.attrs, hash)
		return &p.out, nil
	}
}

func (p *Project) Close() error { return p.child.Close() }

func (p *Project) Reset() error {
	if err := p.child.Reset(); err != nil {
		return err
	}
	if p.distinct {
		p.seen.reset()
	}
	return nil
}
