// Package storage implements the on-disk slotted page format, the tuple
// free list threaded through it, and the pinning buffer pool that mediates
// every access to it.
package storage

import (
	"errors"
	"fmt"

	"ssddb/internal/catalog"
	"ssddb/internal/le"
	"ssddb/pkg/types"
)

// PageHeaderSize is the fixed 32-byte header at the front of every page:
// next_page, prev_page, free_space_head and tuples_per_page, each an
// 8-byte little-endian field.
const PageHeaderSize = 32

// fullSentinel is the free_space_head value meaning "no free slot", chosen
// to be an offset no slot can ever occupy: one past the last data byte.
const fullSentinel = uint64(catalog.PageSize)

var (
	// ErrPageFull is returned by AllocSlot when a page's free list is empty.
	ErrPageFull = errors.New("storage: page has no free slot")
	// ErrSlotAlreadyFree is returned by FreeSlot on a slot that is not occupied.
	ErrSlotAlreadyFree = errors.New("storage: slot is already free")
	// ErrSlotOutOfRange is returned when a slot index exceeds tuples_per_page.
	ErrSlotOutOfRange = errors.New("storage: slot index out of range")
)

// Page is one fixed 8192-byte on-disk page, held entirely in memory while
// pinned. Bytes [0:PageHeaderSize) are the header; the remainder is a flat
// array of fixed-size tuple slots threaded into a singly-linked free list.
type Page struct {
	ID   types.PageID
	Data [catalog.PageSize]byte
}

func (p *Page) NextPage() types.PageID {
	return types.PageID(le.Uint64(p.Data[0:8]))
}

func (p *Page) SetNextPage(v types.PageID) {
	le.PutUint64(p.Data[0:8], uint64(v))
}

func (p *Page) PrevPage() types.PageID {
	return types.PageID(le.Uint64(p.Data[8:16]))
}

func (p *Page) SetPrevPage(v types.PageID) {
	le.PutUint64(p.Data[8:16], uint64(v))
}

func (p *Page) FreeSpaceHead() uint64 {
	return le.Uint64(p.Data[16:24])
}

func (p *Page) SetFreeSpaceHead(v uint64) {
	le.PutUint64(p.Data[16:24], v)
}

func (p *Page) TuplesPerPage() uint64 {
	return le.Uint64(p.Data[24:32])
}

func (p *Page) setTuplesPerPage(v uint64) {
	le.PutUint64(p.Data[24:32], v)
}

// HasFreeSlot reports whether the page's free list is non-empty.
func (p *Page) HasFreeSlot() bool {
	return p.FreeSpaceHead() != fullSentinel
}

func (p *Page) slotBase(tupleSize int, slot types.SlotID) int {
	return PageHeaderSize + int(slot)*tupleSize
}

// SlotOccupied reports whether slot currently holds a live tuple, per the
// null byte at offset 0 of the slot.
func (p *Page) SlotOccupied(tupleSize int, slot types.SlotID) bool {
	return p.Data[p.slotBase(tupleSize, slot)] != 0
}

func (p *Page) nextFreeOffset(tupleSize int, slot types.SlotID) uint64 {
	base := p.slotBase(tupleSize, slot)
	return le.Uint64(p.Data[base+8 : base+16])
}

func (p *Page) setNextFreeOffset(tupleSize int, slot types.SlotID, v uint64) {
	base := p.slotBase(tupleSize, slot)
	le.PutUint64(p.Data[base+8:base+16], v)
}

// SlotBytes returns the raw tupleSize-byte window for slot, suitable for
// reading or writing attribute payloads. The first byte is the occupancy
// marker; bytes [8:16) double as the free-list link while the slot is free.
func (p *Page) SlotBytes(tupleSize int, slot types.SlotID) []byte {
	base := p.slotBase(tupleSize, slot)
	return p.Data[base : base+tupleSize]
}

// Init zeroes the page and threads every slot into the free list in slot
// order, matching the layout cat implies.
func (p *Page) Init(cat *catalog.Catalog) {
	for i := range p.Data {
		p.Data[i] = 0
	}
	n := int(cat.TuplesPerPage())
	p.setTuplesPerPage(uint64(n))
	ts := cat.TupleSize
	for i := 0; i < n; i++ {
		slot := types.SlotID(i)
		var next uint64
		if i < n-1 {
			next = uint64((i + 1) * ts)
		} else {
			next = fullSentinel
		}
		p.setNextFreeOffset(ts, slot, next)
	}
	if n > 0 {
		p.SetFreeSpaceHead(0)
	} else {
		p.SetFreeSpaceHead(fullSentinel)
	}
}

// AllocSlot pops the head of the free list, marks it occupied and zeroes
// its payload bytes, returning the slot it assigned.
func (p *Page) AllocSlot(tupleSize int) (types.SlotID, error) {
	head := p.FreeSpaceHead()
	if head == fullSentinel {
		return 0, ErrPageFull
	}
	slot := types.SlotID(head) / types.SlotID(tupleSize)
	next := p.nextFreeOffset(tupleSize, slot)
	p.SetFreeSpaceHead(next)

	base := p.slotBase(tupleSize, slot)
	for i := 0; i < tupleSize; i++ {
		p.Data[base+i] = 0
	}
	p.Data[base] = 1
	return slot, nil
}

// FreeSlot zeroes slot's bytes, threads it back onto the head of the free
// list, and advances free_space_head to point at it.
func (p *Page) FreeSlot(tupleSize int, slot types.SlotID) error {
	n := p.TuplesPerPage()
	if uint64(slot) >= n {
		return ErrSlotOutOfRange
	}
	if !p.SlotOccupied(tupleSize, slot) {
		return ErrSlotAlreadyFree
	}
	head := p.FreeSpaceHead()
	base := p.slotBase(tupleSize, slot)
	for i := 0; i < tupleSize; i++ {
		p.Data[base+i] = 0
	}
	p.setNextFreeOffset(tupleSize, slot, head)
	p.SetFreeSpaceHead(uint64(int(slot) * tupleSize))
	return nil
}

// FreeListSlots walks the free list and returns the slots on it, in
// traversal order. It errors on a cycle or an out-of-range link, which
// would otherwise spin forever.
func (p *Page) FreeListSlots(tupleSize int) ([]types.SlotID, error) {
	n := p.TuplesPerPage()
	var out []types.SlotID
	seen := make(map[uint64]bool)
	cur := p.FreeSpaceHead()
	for cur != fullSentinel {
		if seen[cur] {
			return nil, fmt.Errorf("storage: cyclic free list at offset %d", cur)
		}
		seen[cur] = true
		slot := types.SlotID(cur) / types.SlotID(tupleSize)
		if uint64(slot) >= n {
			return nil, fmt.Errorf("storage: free list offset %d out of range", cur)
		}
		out = append(out, slot)
		cur = p.nextFreeOffset(tupleSize, slot)
	}
	return out, nil
}
