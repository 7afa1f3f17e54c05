package storage

import (
	"testing"

	"ssddb/internal/catalog"
	"ssddb/pkg/types"
)

func personCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]catalog.AttributeRecord{
		{Name: "id", Size: 4, Type: types.AttrInt},
		{Name: "name", Size: 50, Type: types.AttrString},
		{Name: "salary", Size: 4, Type: types.AttrFloat},
		{Name: "department", Size: 30, Type: types.AttrString},
		{Name: "is_active", Size: 1, Type: types.AttrBool},
	})
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}
	return c
}

func TestPageInitThreadsFreeList(t *testing.T) {
	cat := personCatalog(t)
	if cat.TupleSize != 96 {
		t.Fatalf("TupleSize = %d, want 96", cat.TupleSize)
	}
	if cat.TuplesPerPage() != 85 {
		t.Fatalf("TuplesPerPage() = %d, want 85", cat.TuplesPerPage())
	}

	var p Page
	p.Init(cat)

	if !p.HasFreeSlot() {
		t.Fatalf("freshly initialized page should have a free slot")
	}
	if p.TuplesPerPage() != 85 {
		t.Errorf("Page.TuplesPerPage() = %d, want 85", p.TuplesPerPage())
	}

	slots, err := p.FreeListSlots(cat.TupleSize)
	if err != nil {
		t.Fatalf("FreeListSlots() error = %v", err)
	}
	if len(slots) != 85 {
		t.Fatalf("len(slots) = %d, want 85", len(slots))
	}
	for i, s := range slots {
		if s != types.SlotID(i) {
			t.Errorf("slots[%d] = %d, want %d", i, s, i)
		}
	}
}

func TestAllocAndFreeSlotRoundTrip(t *testing.T) {
	cat := personCatalog(t)
	var p Page
	p.Init(cat)
	ts := cat.TupleSize

	slot, err := p.AllocSlot(ts)
	if err != nil {
		t.Fatalf("AllocSlot() error = %v", err)
	}
	if slot != types.SlotID(0) {
		t.Fatalf("AllocSlot() = %d, want 0", slot)
	}
	if !p.SlotOccupied(ts, slot) {
		t.Errorf("allocated slot should be occupied")
	}

	free, err := p.FreeListSlots(ts)
	if err != nil {
		t.Fatalf("FreeListSlots() error = %v", err)
	}
	if len(free) != 84 {
		t.Fatalf("len(free) = %d, want 84", len(free))
	}

	if err := p.FreeSlot(ts, slot); err != nil {
		t.Fatalf("FreeSlot() error = %v", err)
	}
	if p.SlotOccupied(ts, slot) {
		t.Errorf("freed slot should not be occupied")
	}

	free, err = p.FreeListSlots(ts)
	if err != nil {
		t.Fatalf("FreeListSlots() error = %v", err)
	}
	if len(free) != 85 {
		t.Fatalf("len(free) = %d, want 85", len(free))
	}
	if free[0] != slot {
		t.Errorf("freed slot should be pushed to the head of the free list, got %d, want %d", free[0], slot)
	}
}

func TestFreeSlotAlreadyFreeFails(t *testing.T) {
	cat := personCatalog(t)
	var p Page
	p.Init(cat)
	err := p.FreeSlot(cat.TupleSize, 0)
	if err != ErrSlotAlreadyFree {
		t.Errorf("FreeSlot() on an already-free slot error = %v, want %v", err, ErrSlotAlreadyFree)
	}
}

func TestPageFillsSentinel(t *testing.T) {
	cat := personCatalog(t)
	var p Page
	p.Init(cat)
	ts := cat.TupleSize
	n := cat.TuplesPerPage()

	for i := 0; i < n; i++ {
		if _, err := p.AllocSlot(ts); err != nil {
			t.Fatalf("AllocSlot() %d error = %v", i, err)
		}
	}
	if p.HasFreeSlot() {
		t.Errorf("fully allocated page should report no free slot")
	}

	if _, err := p.AllocSlot(ts); err != ErrPageFull {
		t.Errorf("AllocSlot() on a full page error = %v, want %v", err, ErrPageFull)
	}
}

func TestFreeListSlotCountInvariant(t *testing.T) {
	cat := personCatalog(t)
	var p Page
	p.Init(cat)
	ts := cat.TupleSize
	n := int(cat.TuplesPerPage())

	for i := 0; i < 10; i++ {
		if _, err := p.AllocSlot(ts); err != nil {
			t.Fatalf("AllocSlot() %d error = %v", i, err)
		}
	}
	if err := p.FreeSlot(ts, 3); err != nil {
		t.Fatalf("FreeSlot() error = %v", err)
	}

	occupied := 0
	for i := 0; i < n; i++ {
		if p.SlotOccupied(ts, types.SlotID(i)) {
			occupied++
		}
	}
	free, err := p.FreeListSlots(ts)
	if err != nil {
		t.Fatalf("FreeListSlots() error = %v", err)
	}
	if occupied+len(free) != n {
		t.Errorf("occupied(%d) + free(%d) = %d, want %d", occupied, len(free), occupied+len(free), n)
	}
}
