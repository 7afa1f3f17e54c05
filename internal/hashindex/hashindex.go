// Package hashindex implements a lazy-split linear hash secondary index
// over one attribute of a table: a chained hash map from a 64-bit
// attribute hash to the tuple ids sharing it, whose bucket array grows
// one bucket at a time instead of doubling all at once.
package hashindex

import (
	"ssddb/internal/fnv1a"
	"ssddb/internal/storage"
	"ssddb/pkg/types"
)

const (
	initialBucketCount = 128

	// loadFactorNumerator/Denominator is the 3/4 global load that
	// triggers a split candidacy check.
	loadFactorNumerator   = 3
	loadFactorDenominator = 4

	// panicLoadNumerator/Denominator (200%) forces a split even when the
	// split-candidate bucket's chain is still short, so load can never
	// run away indefinitely between lazy splits.
	panicLoadNumerator   = 2
	panicLoadDenominator = 1

	// lazySplitThreshold is the local chain length, at the current
	// split candidate, that triggers a split under normal (non-panic)
	// load.
	lazySplitThreshold = 3
)

type bucketNode struct {
	key  uint64
	tid  types.TupleID
	next *bucketNode
}

// Index is a lazy-split linear hash table keyed by a 64-bit attribute
// hash, mapping to the tuple ids sharing that key.
type Index struct {
	buckets            []*bucketNode
	capacity           int
	bucketCount        int
	initialBucketCount int
	numRecords         int
	level              int
	nextSplit          int
}

// New creates an empty index with the fixed initial bucket count.
func New() *Index {
	capacity := initialBucketCount * 2
	return &Index{
		buckets:            make([]*bucketNode, capacity),
		capacity:           capacity,
		bucketCount:        initialBucketCount,
		initialBucketCount: initialBucketCount,
	}
}

// HashAttribute returns the 64-bit FNV-1a hash of v's canonical bytes,
// the key space this index is addressed by.
func HashAttribute(v storage.AttrValue) uint64 {
	return fnv1a.Hash(storage.CanonicalBytes(v))
}

// NumRecords is the number of (key, tuple id) entries currently indexed.
func (idx *Index) NumRecords() int { return idx.numRecords }

// BucketCount is the current logical bucket count (2^level * N0 + next_split).
func (idx *Index) BucketCount() int { return idx.bucketCount }

func chainLength(head *bucketNode) int {
	n := 0
	for ; head != nil; head = head.next {
		n++
	}
	return n
}

// address computes H_L(key), falling through to H_{L+1} for any address
// that has already been split past (the "linear" part of linear hashing).
func (idx *Index) address(key uint64) int {
	multiplier := uint64(1) << uint(idx.level)
	mask := multiplier*uint64(idx.initialBucketCount) - 1
	addr := key & mask
	if int(addr) < idx.nextSplit {
		nextMask := (multiplier<<1)*uint64(idx.initialBucketCount) - 1
		addr = key & nextMask
	}
	return int(addr)
}

func (idx *Index) ensureCapacity(need int) {
	if need < idx.capacity {
		return
	}
	newCap := idx.capacity * 2
	for newCap <= need {
		newCap *= 2
	}
	grown := make([]*bucketNode, newCap)
	copy(grown, idx.buckets)
	idx.buckets = grown
	idx.capacity = newCap
}

// split redistributes the chain at the current split pointer across it
// and the newly appended bucket, then advances the split pointer (and
// the level, once a full round of buckets has been split).
func (idx *Index) split() {
	splitIdx := idx.nextSplit
	multiplier := uint64(1) << uint(idx.level)
	newBucketIdx := splitIdx + int(multiplier)*idx.initialBucketCount
	idx.ensureCapacity(newBucketIdx + 1)

	current := idx.buckets[splitIdx]
	idx.buckets[splitIdx] = nil
	idx.buckets[newBucketIdx] = nil

	nextMask := (multiplier<<1)*uint64(idx.initialBucketCount) - 1
	for current != nil {
		next := current.next
		addr := current.key & nextMask
		current.next = idx.buckets[addr]
		idx.buckets[addr] = current
		current = next
	}

	idx.nextSplit++
	idx.bucketCount++
	if idx.nextSplit >= int(multiplier)*idx.initialBucketCount {
		idx.nextSplit = 0
		idx.level++
	}
}

// Insert adds (key, tid) at the head of its bucket's chain, then splits
// if global load exceeds 3/4 and either the split-candidate bucket has
// overflowed locally or the panic load (200%) safety valve has tripped.
func (idx *Index) Insert(key uint64, tid types.TupleID) {
	bucket := idx.address(key)
	idx.buckets[bucket] = &bucketNode{key: key, tid: tid, next: idx.buckets[bucket]}
	idx.numRecords++

	highLoad := idx.numRecords*loadFactorDenominator > idx.bucketCount*loadFactorNumerator
	if !highLoad {
		return
	}
	panicLoad := idx.numRecords*panicLoadDenominator > idx.bucketCount*panicLoadNumerator
	if panicLoad || chainLength(idx.buckets[idx.nextSplit]) >= lazySplitThreshold {
		idx.split()
	}
}

// Delete removes the entry matching both key and tid exactly (tuple id
// disambiguates entries that share a key), reporting whether it was
// found.
func (idx *Index) Delete(key uint64, tid types.TupleID) bool {
	bucket := idx.address(key)
	var prev *bucketNode
	for curr := idx.buckets[bucket]; curr != nil; curr = curr.next {
		if curr.key == key && curr.tid == tid {
			if prev == nil {
				idx.buckets[bucket] = curr.next
			} else {
				prev.next = curr.next
			}
			idx.numRecords--
			return true
		}
		prev = curr
	}
	return false
}

// Lookup returns every tuple id indexed under key.
func (idx *Index) Lookup(key uint64) []types.TupleID {
	bucket := idx.address(key)
	var out []types.TupleID
	for curr := idx.buckets[bucket]; curr != nil; curr = curr.next {
		if curr.key == key {
			out = append(out, curr.tid)
		}
	}
	return out
}

// Build scans every live tuple in bp's table and indexes attrIndex.
func Build(bp *storage.BufferPool, attrIndex int) (*Index, error) {
	idx := New()
	n := bp.PageCountOnDisk()
	for pid := types.PageID(1); uint64(pid) <= n; pid++ {
		frame, err := bp.GetBufferPage(pid)
		if err != nil {
			return nil, err
		}
		for i := range frame.TupleViews {
			view := &frame.TupleViews[i]
			if view.IsNull {
				continue
			}
			idx.Insert(HashAttribute(view.Attrs[attrIndex]), view.ID)
		}
	}
	return idx, nil
}
