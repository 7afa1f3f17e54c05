package storage

import (
	"path/filepath"
	"testing"

	"ssddb/internal/catalog"
	"ssddb/internal/diskio"
	"ssddb/pkg/types"
)

func openEmptyTable(t *testing.T, cat *catalog.Catalog) *diskio.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "table.dat")
	f, err := diskio.Open(path, true)
	if err != nil {
		t.Fatalf("diskio.Open() error = %v", err)
	}
	if err := f.WriteCatalog(cat); err != nil {
		t.Fatalf("WriteCatalog() error = %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestInsertGetRoundTrip(t *testing.T) {
	cat := personCatalog(t)
	f := openEmptyTable(t, cat)
	bp := NewBufferPool(f, cat, 0)

	attrs := []AttrValue{
		{Type: types.AttrInt, Int: 1},
		{Type: types.AttrString, Str: []byte("John Doe")},
		{Type: types.AttrFloat, Float: 55000.0},
		{Type: types.AttrString, Str: []byte("Engineering")},
		{Type: types.AttrBool, Bool: true},
	}
	view, err := bp.Insert(attrs)
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if view.ID != (types.TupleID{PageID: 1, SlotID: 0}) {
		t.Fatalf("Insert() ID = %+v, want {1 0}", view.ID)
	}
	if view.IsNull {
		t.Fatalf("freshly inserted view should not be null")
	}

	frame, err := bp.GetBufferPage(1)
	if err != nil {
		t.Fatalf("GetBufferPage() error = %v", err)
	}
	if !frame.IsDirty {
		t.Errorf("frame should be dirty after Insert")
	}

	if err := bp.FlushBufferPool(); err != nil {
		t.Fatalf("FlushBufferPool() error = %v", err)
	}
	frame, err = bp.GetBufferPage(1)
	if err != nil {
		t.Fatalf("GetBufferPage() after flush error = %v", err)
	}
	if frame.IsDirty {
		t.Errorf("frame should not be dirty after flush")
	}

	got, err := bp.Get(types.TupleID{PageID: 1, SlotID: 0})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.IsNull {
		t.Fatalf("Get() returned a null view for a live tuple")
	}
	if got.Attrs[0].Int != 1 {
		t.Errorf("Attrs[0].Int = %d, want 1", got.Attrs[0].Int)
	}
	if got.Attrs[2].Float != 55000.0 {
		t.Errorf("Attrs[2].Float = %v, want 55000.0", got.Attrs[2].Float)
	}
	if !got.Attrs[4].Bool {
		t.Errorf("Attrs[4].Bool = false, want true")
	}
}

func TestPageFillAllocatesNextPage(t *testing.T) {
	cat := personCatalog(t)
	f := openEmptyTable(t, cat)
	bp := NewBufferPool(f, cat, 0)
	n := cat.TuplesPerPage()

	attrs := func(id int32) []AttrValue {
		return []AttrValue{
			{Type: types.AttrInt, Int: id},
			{Type: types.AttrString, Str: []byte("x")},
			{Type: types.AttrFloat, Float: 1},
			{Type: types.AttrString, Str: []byte("y")},
			{Type: types.AttrBool, Bool: false},
		}
	}

	for i := 0; i < n; i++ {
		view, err := bp.Insert(attrs(int32(i)))
		if err != nil {
			t.Fatalf("Insert() %d error = %v", i, err)
		}
		if view.ID.PageID != 1 {
			t.Fatalf("Insert() %d landed on page %d, want 1", i, view.ID.PageID)
		}
	}
	if bp.PageCountOnDisk() != 1 {
		t.Fatalf("PageCountOnDisk() = %d, want 1", bp.PageCountOnDisk())
	}

	frame1, err := bp.GetBufferPage(1)
	if err != nil {
		t.Fatalf("GetBufferPage() error = %v", err)
	}
	if frame1.Page.HasFreeSlot() {
		t.Errorf("page 1 should be full")
	}

	view, err := bp.Insert(attrs(99))
	if err != nil {
		t.Fatalf("Insert() overflow error = %v", err)
	}
	if view.ID.PageID != 2 {
		t.Errorf("overflow Insert() landed on page %d, want 2", view.ID.PageID)
	}
	if bp.PageCountOnDisk() != 2 {
		t.Errorf("PageCountOnDisk() = %d, want 2", bp.PageCountOnDisk())
	}
}

func TestPinPreventsEviction(t *testing.T) {
	cat := personCatalog(t)
	f := openEmptyTable(t, cat)
	bp := NewBufferPool(f, cat, 0)

	// Seed 5 data pages on disk by inserting one tuple per page.
	for i := 0; i < 5; i++ {
		frame, err := bp.allocateNewPage()
		if err != nil {
			t.Fatalf("allocateNewPage() %d error = %v", i, err)
		}
		if _, err := frame.Page.AllocSlot(cat.TupleSize); err != nil {
			t.Fatalf("AllocSlot() %d error = %v", i, err)
		}
		frame.IsDirty = true
	}
	if err := bp.FlushBufferPool(); err != nil {
		t.Fatalf("FlushBufferPool() error = %v", err)
	}
	if bp.PageCountOnDisk() != 5 {
		t.Fatalf("PageCountOnDisk() = %d, want 5", bp.PageCountOnDisk())
	}

	pinned, err := bp.PinPage(1)
	if err != nil {
		t.Fatalf("PinPage(1) error = %v", err)
	}
	if pinned.PinCount != 1 {
		t.Fatalf("PinCount = %d, want 1", pinned.PinCount)
	}

	if _, err := bp.GetBufferPage(2); err != nil {
		t.Fatalf("GetBufferPage(2) error = %v", err)
	}
	if _, err := bp.GetBufferPage(3); err != nil {
		t.Fatalf("GetBufferPage(3) error = %v", err)
	}
	if _, err := bp.GetBufferPage(4); err != nil {
		t.Fatalf("GetBufferPage(4) error = %v", err)
	}
	if _, err := bp.GetBufferPage(5); err != nil {
		t.Fatalf("GetBufferPage(5) error = %v", err)
	}

	frame1, err := bp.GetBufferPage(1)
	if err != nil {
		t.Fatalf("GetBufferPage(1) after pressure error = %v", err)
	}
	if frame1.PageID != 1 {
		t.Fatalf("pinned page 1 was evicted, frame now holds page %d", frame1.PageID)
	}
	if frame1.PinCount != 1 {
		t.Errorf("PinCount = %d, want 1", frame1.PinCount)
	}
}

func TestEvictionFailsWhenAllPinned(t *testing.T) {
	cat := personCatalog(t)
	f := openEmptyTable(t, cat)
	bp := NewBufferPool(f, cat, 0)

	for i := 0; i < 5; i++ {
		if _, err := bp.allocateNewPage(); err != nil {
			t.Fatalf("allocateNewPage() %d error = %v", i, err)
		}
	}
	if err := bp.FlushBufferPool(); err != nil {
		t.Fatalf("FlushBufferPool() error = %v", err)
	}

	for pid := types.PageID(1); pid <= 4; pid++ {
		if _, err := bp.PinPage(pid); err != nil {
			t.Fatalf("PinPage(%d) error = %v", pid, err)
		}
	}

	if _, err := bp.GetBufferPage(5); err != ErrNoVictim {
		t.Errorf("GetBufferPage(5) with all frames pinned error = %v, want %v", err, ErrNoVictim)
	}
}

func TestDeleteNullsSlotAndDoubleDeleteFails(t *testing.T) {
	cat := personCatalog(t)
	f := openEmptyTable(t, cat)
	bp := NewBufferPool(f, cat, 0)

	attrs := []AttrValue{
		{Type: types.AttrInt, Int: 1},
		{Type: types.AttrString, Str: []byte("a")},
		{Type: types.AttrFloat, Float: 1},
		{Type: types.AttrString, Str: []byte("b")},
		{Type: types.AttrBool, Bool: false},
	}
	view, err := bp.Insert(attrs)
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	tid := view.ID

	if err := bp.Delete(tid); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	got, err := bp.Get(tid)
	if err != nil {
		t.Fatalf("Get() after delete error = %v", err)
	}
	if got != nil {
		t.Errorf("Get() after delete = %+v, want nil", got)
	}

	if err := bp.Delete(tid); err == nil {
		t.Errorf("second Delete() should error")
	}
}

func TestUpdateOverwritesInPlace(t *testing.T) {
	cat := personCatalog(t)
	f := openEmptyTable(t, cat)
	bp := NewBufferPool(f, cat, 0)

	attrs := []AttrValue{
		{Type: types.AttrInt, Int: 1},
		{Type: types.AttrString, Str: []byte("a")},
		{Type: types.AttrFloat, Float: 1},
		{Type: types.AttrString, Str: []byte("b")},
		{Type: types.AttrBool, Bool: false},
	}
	view, err := bp.Insert(attrs)
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	tid := view.ID

	updated := []AttrValue{
		{Type: types.AttrInt, Int: 2},
		{Type: types.AttrString, Str: []byte("c")},
		{Type: types.AttrFloat, Float: 2},
		{Type: types.AttrString, Str: []byte("d")},
		{Type: types.AttrBool, Bool: true},
	}
	if err := bp.Update(tid, updated); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := bp.Get(tid)
	if err != nil {
		t.Fatalf("Get() after update error = %v", err)
	}
	if got.ID != tid {
		t.Errorf("Get().ID = %+v, want %+v", got.ID, tid)
	}
	if got.Attrs[0].Int != 2 {
		t.Errorf("Attrs[0].Int = %d, want 2", got.Attrs[0].Int)
	}
	if !got.Attrs[4].Bool {
		t.Errorf("Attrs[4].Bool = false, want true")
	}
}
