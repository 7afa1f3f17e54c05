package storage

import (
	"errors"

	"ssddb/internal/catalog"
	"ssddb/internal/chainhash"
	"ssddb/internal/diskio"
	"ssddb/pkg/types"
)

// PoolSize is the fixed frame count of every buffer pool.
const PoolSize = 4

// ErrNoVictim is returned when every frame is occupied and pinned, so no
// page can be evicted to satisfy a load.
var ErrNoVictim = errors.New("storage: no unpinned frame available for eviction")

// TupleView is the in-memory, borrowed view of one slot: its id, whether
// it currently holds a live tuple, and its decoded attribute values. It is
// valid only while the owning frame remains pinned.
type TupleView struct {
	ID     types.TupleID
	IsNull bool
	Attrs  []AttrValue
}

// Frame is one buffer-pool slot: a page's bytes plus the bookkeeping the
// pool needs to pin, evict and flush it.
type Frame struct {
	IsFree      bool
	IsDirty     bool
	PinCount    int
	LastUpdated uint64
	PageID      types.PageID
	Page        *Page
	TupleViews  []TupleView
}

// BufferPool is a fixed-capacity cache of pinned pages, backed by a
// page-id-to-frame-index chained hash table.
type BufferPool struct {
	file *diskio.File
	cat  *catalog.Catalog

	frames    [PoolSize]Frame
	pageTable *chainhash.Table

	updateCtr       uint64
	pageCountOnDisk uint64
}

// NewBufferPool constructs an empty pool (every frame free) over file,
// whose on-disk table already has pageCountOnDisk data pages.
func NewBufferPool(file *diskio.File, cat *catalog.Catalog, pageCountOnDisk uint64) *BufferPool {
	bp := &BufferPool{
		file:            file,
		cat:             cat,
		pageTable:       chainhash.New(PoolSize * 2),
		pageCountOnDisk: pageCountOnDisk,
	}
	for i := range bp.frames {
		bp.frames[i].IsFree = true
	}
	return bp
}

// PageCountOnDisk returns the number of data pages (excluding the catalog
// page) currently known to exist on disk.
func (bp *BufferPool) PageCountOnDisk() uint64 {
	return bp.pageCountOnDisk
}

func (bp *BufferPool) nextUpdateCtr() uint64 {
	v := bp.updateCtr
	bp.updateCtr++
	return v
}

// GetBufferPage returns the frame holding pageID, loading it from disk and
// choosing a victim if it is not already resident. It never returns a
// frame whose PageID differs from the one requested.
func (bp *BufferPool) GetBufferPage(pageID types.PageID) (*Frame, error) {
	if idx, ok := bp.pageTable.Get(uint64(pageID)); ok {
		return &bp.frames[idx], nil
	}

	idx, err := bp.evictVictim()
	if err != nil {
		return nil, err
	}
	frame := &bp.frames[idx]

	page := &Page{ID: pageID}
	if err := bp.file.ReadPage(pageID, &page.Data); err != nil {
		frame.IsFree = true
		return nil, err
	}

	frame.Page = page
	frame.PageID = pageID
	frame.IsFree = false
	frame.IsDirty = false
	frame.PinCount = 0
	frame.LastUpdated = bp.nextUpdateCtr()
	bp.rebuildTupleViews(frame)
	bp.pageTable.Insert(uint64(pageID), uint64(idx))
	return frame, nil
}

// rebuildTupleViews decodes every slot of frame's page into its tuple-view
// array, matching the page bytes exactly: a null slot carries IsNull and
// no decoded attributes, an occupied one is decoded attribute by
// attribute through the catalog.
func (bp *BufferPool) rebuildTupleViews(frame *Frame) {
	n := int(frame.Page.TuplesPerPage())
	if cap(frame.TupleViews) < n {
		frame.TupleViews = make([]TupleView, n)
	} else {
		frame.TupleViews = frame.TupleViews[:n]
	}
	ts := bp.cat.TupleSize
	numUsed := bp.cat.NumUsed()
	for i := 0; i < n; i++ {
		slot := types.SlotID(i)
		view := &frame.TupleViews[i]
		view.ID = types.TupleID{PageID: frame.PageID, SlotID: slot}
		occupied := frame.Page.SlotOccupied(ts, slot)
		view.IsNull = !occupied
		if cap(view.Attrs) < numUsed {
			view.Attrs = make([]AttrValue, numUsed)
		} else {
			view.Attrs = view.Attrs[:numUsed]
		}
		if !occupied {
			continue
		}
		buf := frame.Page.SlotBytes(ts, slot)
		for a := 0; a < numUsed; a++ {
			v, err := ReadAttribute(bp.cat, a, buf)
			if err != nil {
				continue
			}
			view.Attrs[a] = v
		}
	}
}

// evictVictim selects a frame index to reuse: a free frame if one exists,
// else the unpinned occupied frame with the smallest last_updated, ties
// broken by lowest index. A dirty victim is flushed (non-durably) before
// its slot is handed back.
func (bp *BufferPool) evictVictim() (int, error) {
	for i := range bp.frames {
		if bp.frames[i].IsFree {
			return i, nil
		}
	}

	best := -1
	for i := range bp.frames {
		if bp.frames[i].PinCount > 0 {
			continue
		}
		if best == -1 || bp.frames[i].LastUpdated < bp.frames[best].LastUpdated {
			best = i
		}
	}
	if best == -1 {
		return -1, ErrNoVictim
	}

	f := &bp.frames[best]
	if f.IsDirty {
		if err := bp.flushFrameBytes(f, false); err != nil {
			return -1, err
		}
	}
	bp.pageTable.Delete(uint64(f.PageID))
	f.IsFree = true
	f.IsDirty = false
	return best, nil
}

func (bp *BufferPool) flushFrameBytes(f *Frame, durable bool) error {
	if err := bp.file.WritePage(f.PageID, &f.Page.Data); err != nil {
		return err
	}
	if durable {
		return bp.file.Flush()
	}
	return nil
}

// PinPage loads (if needed) and pins pageID, returning its frame.
func (bp *BufferPool) PinPage(pageID types.PageID) (*Frame, error) {
	frame, err := bp.GetBufferPage(pageID)
	if err != nil {
		return nil, err
	}
	frame.PinCount++
	return frame, nil
}

// UnpinPage decrements frame's pin count. Unpinning an already-unpinned
// frame is a no-op.
func (bp *BufferPool) UnpinPage(frame *Frame) {
	if frame.PinCount > 0 {
		frame.PinCount--
	}
}

// FlushBufferPage writes frame's page back to disk if it is dirty and
// occupied, optionally issuing a durability barrier, then marks the frame
// free regardless, dropping its page-table entry.
func (bp *BufferPool) FlushBufferPage(frame *Frame, durable bool) error {
	if frame.IsDirty && !frame.IsFree {
		if err := bp.flushFrameBytes(frame, durable); err != nil {
			return err
		}
	}
	bp.pageTable.Delete(uint64(frame.PageID))
	frame.IsFree = true
	frame.IsDirty = false
	return nil
}

// FlushBufferPool durably flushes every occupied frame.
func (bp *BufferPool) FlushBufferPool() error {
	for i := range bp.frames {
		f := &bp.frames[i]
		if f.IsFree {
			continue
		}
		if err := bp.FlushBufferPage(f, true); err != nil {
			return err
		}
	}
	return nil
}

// Evict durably flushes the frame holding pageID, if it is resident. It is
// a no-op if the page is not currently in the pool.
func (bp *BufferPool) Evict(pageID types.PageID) error {
	idx, ok := bp.pageTable.Get(uint64(pageID))
	if !ok {
		return nil
	}
	return bp.FlushBufferPage(&bp.frames[idx], true)
}

// FindPageWithFreeSpace returns a frame with room for another tuple:
// preferring a resident frame (in frame-index order), then an on-disk page
// not yet resident, and finally a newly allocated page.
func (bp *BufferPool) FindPageWithFreeSpace() (*Frame, error) {
	for i := range bp.frames {
		f := &bp.frames[i]
		if !f.IsFree && f.Page.HasFreeSlot() {
			return f, nil
		}
	}

	for pid := types.PageID(1); uint64(pid) <= bp.pageCountOnDisk; pid++ {
		if _, resident := bp.pageTable.Get(uint64(pid)); resident {
			continue
		}
		frame, err := bp.GetBufferPage(pid)
		if err != nil {
			return nil, err
		}
		if frame.Page.HasFreeSlot() {
			return frame, nil
		}
	}

	return bp.allocateNewPage()
}

func (bp *BufferPool) allocateNewPage() (*Frame, error) {
	idx, err := bp.evictVictim()
	if err != nil {
		return nil, err
	}
	frame := &bp.frames[idx]

	newID := types.PageID(bp.pageCountOnDisk + 1)
	page := &Page{ID: newID}
	page.Init(bp.cat)

	frame.Page = page
	frame.PageID = newID
	frame.IsFree = false
	frame.IsDirty = true
	frame.PinCount = 0
	frame.LastUpdated = bp.nextUpdateCtr()
	bp.rebuildTupleViews(frame)
	bp.pageTable.Insert(uint64(newID), uint64(idx))
	bp.pageCountOnDisk++
	return frame, nil
}
