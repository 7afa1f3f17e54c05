// Package chainhash implements an open-chained hash table mapping uint64
// keys to uint64 values. The buffer pool uses one instance as its
// page-id-to-frame-index lookup.
package chainhash

import "ssddb/internal/fnv1a"

type node struct {
	key   uint64
	value uint64
	next  *node
}

// Table is an open-chained hash table from uint64 to uint64. Each bucket
// holds a singly-linked chain kept sorted by key, matching the C original's
// representation so a miss terminates as soon as a larger key is seen.
type Table struct {
	buckets     []*node
	bucketCount int
}

// New creates a table whose bucket count is the next power of two at or
// above bucketCount (minimum 1).
func New(bucketCount int) *Table {
	if bucketCount <= 0 {
		bucketCount = 1
	}
	n := 1
	for n < bucketCount {
		n <<= 1
	}
	return &Table{
		buckets:     make([]*node, n),
		bucketCount: n,
	}
}

// BucketCount returns the table's power-of-two bucket count.
func (t *Table) BucketCount() int {
	return t.bucketCount
}

func (t *Table) index(key uint64) int {
	return int(fnv1a.HashUint64(key)) & (t.bucketCount - 1)
}

// Insert adds or overwrites key's value.
func (t *Table) Insert(key, value uint64) {
	idx := t.index(key)
	var prev *node
	cur := t.buckets[idx]
	for cur != nil && cur.key < key {
		prev = cur
		cur = cur.next
	}
	if cur != nil && cur.key == key {
		cur.value = value
		return
	}
	n := &node{key: key, value: value, next: cur}
	if prev == nil {
		t.buckets[idx] = n
	} else {
		prev.next = n
	}
}

// Get returns the value for key and whether it was found.
func (t *Table) Get(key uint64) (uint64, bool) {
	idx := t.index(key)
	cur := t.buckets[idx]
	for cur != nil && cur.key < key {
		cur = cur.next
	}
	if cur != nil && cur.key == key {
		return cur.value, true
	}
	return 0, false
}

// Delete removes key, reporting whether it was present.
func (t *Table) Delete(key uint64) bool {
	idx := t.index(key)
	var prev *node
	cur := t.buckets[idx]
	for cur != nil && cur.key < key {
		prev = cur
		cur = cur.next
	}
	if cur == nil || cur.key != key {
		return false
	}
	if prev == nil {
		t.buckets[idx] = cur.next
	} else {
		prev.next = cur.next
	}
	return true
}
