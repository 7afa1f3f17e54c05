package storage

import (
	"errors"
	"fmt"

	"ssddb/pkg/types"
)

// ErrAttributeCountMismatch is returned when Insert or Update is given a
// number of attribute values other than the catalog's num_used.
var ErrAttributeCountMismatch = errors.New("storage: attribute count does not match catalog")

// ErrTupleNotOccupied is returned by Update when the target slot holds no
// live tuple.
var ErrTupleNotOccupied = errors.New("storage: tuple slot is not occupied")

// Insert acquires a page with free space, pops a slot off its free list,
// writes attrs into it, refreshes the frame's decoded tuple view, and
// returns that view.
func (bp *BufferPool) Insert(attrs []AttrValue) (*TupleView, error) {
	numUsed := bp.cat.NumUsed()
	if len(attrs) != numUsed {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrAttributeCountMismatch, numUsed, len(attrs))
	}

	frame, err := bp.FindPageWithFreeSpace()
	if err != nil {
		return nil, err
	}

	ts := bp.cat.TupleSize
	slot, err := frame.Page.AllocSlot(ts)
	if err != nil {
		return nil, err
	}

	buf := frame.Page.SlotBytes(ts, slot)
	for i, v := range attrs {
		if err := WriteAttribute(bp.cat, i, buf, v); err != nil {
			return nil, err
		}
	}

	frame.IsDirty = true
	frame.LastUpdated = bp.nextUpdateCtr()
	return bp.refreshView(frame, slot)
}

// Delete frees tid's slot, threading it back onto the page's free list,
// and marks its tuple view null. It fails if the slot is already free or
// out of range.
func (bp *BufferPool) Delete(tid types.TupleID) error {
	frame, err := bp.GetBufferPage(tid.PageID)
	if err != nil {
		return err
	}
	ts := bp.cat.TupleSize
	if err := frame.Page.FreeSlot(ts, tid.SlotID); err != nil {
		return err
	}

	frame.IsDirty = true
	frame.LastUpdated = bp.nextUpdateCtr()
	frame.TupleViews[int(tid.SlotID)].IsNull = true
	return nil
}

// Update overwrites an occupied slot's payload in place, exactly as
// Insert would, without touching the free list or changing tid.
func (bp *BufferPool) Update(tid types.TupleID, attrs []AttrValue) error {
	numUsed := bp.cat.NumUsed()
	if len(attrs) != numUsed {
		return fmt.Errorf("%w: want %d, got %d", ErrAttributeCountMismatch, numUsed, len(attrs))
	}

	frame, err := bp.GetBufferPage(tid.PageID)
	if err != nil {
		return err
	}
	ts := bp.cat.TupleSize
	n := frame.Page.TuplesPerPage()
	if uint64(tid.SlotID) >= n {
		return ErrSlotOutOfRange
	}
	if !frame.Page.SlotOccupied(ts, tid.SlotID) {
		return ErrTupleNotOccupied
	}

	buf := frame.Page.SlotBytes(ts, tid.SlotID)
	for i := 1; i < ts; i++ {
		buf[i] = 0
	}
	for i, v := range attrs {
		if err := WriteAttribute(bp.cat, i, buf, v); err != nil {
			return err
		}
	}

	frame.IsDirty = true
	frame.LastUpdated = bp.nextUpdateCtr()
	_, err = bp.refreshView(frame, tid.SlotID)
	return err
}

// Get returns tid's tuple view, or nil if the slot holds no live tuple.
func (bp *BufferPool) Get(tid types.TupleID) (*TupleView, error) {
	frame, err := bp.GetBufferPage(tid.PageID)
	if err != nil {
		return nil, err
	}
	n := frame.Page.TuplesPerPage()
	if uint64(tid.SlotID) >= n {
		return nil, ErrSlotOutOfRange
	}
	view := &frame.TupleViews[int(tid.SlotID)]
	if view.IsNull {
		return nil, nil
	}
	return view, nil
}

// Copy deep-copies a tuple view so it survives past its frame's pin,
// heap-duplicating any STRING attribute bytes.
func Copy(view *TupleView) *TupleView {
	cp := &TupleView{ID: view.ID, IsNull: view.IsNull, Attrs: make([]AttrValue, len(view.Attrs))}
	for i, a := range view.Attrs {
		cp.Attrs[i] = a.Clone()
	}
	return cp
}

func (bp *BufferPool) refreshView(frame *Frame, slot types.SlotID) (*TupleView, error) {
	ts := bp.cat.TupleSize
	numUsed := bp.cat.NumUsed()
	buf := frame.Page.SlotBytes(ts, slot)

	view := &frame.TupleViews[int(slot)]
	view.ID = types.TupleID{PageID: frame.PageID, SlotID: slot}
	view.IsNull = false
	if cap(view.Attrs) < numUsed {
		view.Attrs = make([]AttrValue, numUsed)
	} else {
		view.Attrs = view.Attrs[:numUsed]
	}
	for i := 0; i < numUsed; i++ {
		v, err := ReadAttribute(bp.cat, i, buf)
		if err != nil {
			return nil, err
		}
		view.Attrs[i] = v
	}
	return view, nil
}
