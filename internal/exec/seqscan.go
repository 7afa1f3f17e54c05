package exec

import (
	"ssddb/internal/storage"
	"ssddb/pkg/types"
)

// SeqScan iterates every live tuple of a table, one page resident at a
// time (pin-scan-unpin), so the rest of the buffer pool stays available
// to sibling operators in the same plan.
type SeqScan struct {
	bp *storage.BufferPool

	currentPageID types.PageID
	currentSlotID types.SlotID
	frame         *storage.Frame
}

// NewSeqScan creates a scan over every data page of bp's table.
func NewSeqScan(bp *storage.BufferPool) *SeqScan {
	return &SeqScan{bp: bp}
}

func (s *SeqScan) Open() error {
	s.currentPageID = 1
	s.currentSlotID = 0
	s.frame = nil
	if s.bp.PageCountOnDisk() < 1 {
		return nil
	}
	frame, err := s.bp.PinPage(s.currentPageID)
	if err != nil {
		return err
	}
	s.frame = frame
	return nil
}

func (s *SeqScan) Next() (*storage.TupleView, error) {
	for s.frame != nil {
		n := types.SlotID(s.frame.Page.TuplesPerPage())
		for s.currentSlotID < n {
			view := &s.frame.TupleViews[int(s.currentSlotID)]
			s.currentSlotID++
			if !view.IsNull {
				return view, nil
			}
		}

		s.bp.UnpinPage(s.frame)
		s.frame = nil
		s.currentSlotID = 0
		s.currentPageID++

		if uint64(s.currentPageID) > s.bp.PageCountOnDisk() {
			break
		}
		frame, err := s.bp.PinPage(s.currentPageID)
		if err != nil {
			return nil, err
		}
		s.frame = frame
	}
	return nil, nil
}

func (s *SeqScan) Close() error {
	if s.frame != nil {
		s.bp.UnpinPage(s.frame)
		s.frame = nil
	}
	s.currentPageID = 0
	s.currentSlotID = 0
	return nil
}

// Reset has no child to rescan, but a nested-loop join's inner scan needs
// to start back over at page 1; re-running Open gets it there cleanly.
func (s *SeqScan) Reset() error {
	if err := s.Close(); err != nil {
		return err
	}
	return s.Open()
}
