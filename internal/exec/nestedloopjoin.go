package exec

import "ssddb/internal/storage"

// NestedLoopJoin emits the cross-product of its outer and inner children.
// Since intermediate relations carry no catalog, the outer/inner
// attribute counts are supplied explicitly at construction. A genuine
// equi-join is obtained by wrapping this operator's output in a Filter
// testing the join columns.
type NestedLoopJoin struct {
	outer, inner Operator

	outerTuple     *storage.TupleView
	outerExhausted bool

	outerAttrCount int
	innerAttrCount int
	combinedAttrs  []storage.AttrValue
	combined       storage.TupleView
}

// NewNestedLoopJoin joins outer and inner, with outerAttrCount/
// innerAttrCount attributes taken from each side's tuples respectively.
func NewNestedLoopJoin(outer, inner Operator, outerAttrCount, innerAttrCount int) *NestedLoopJoin {
	return &NestedLoopJoin{
		outer:          outer,
		inner:          inner,
		outerAttrCount: outerAttrCount,
		innerAttrCount: innerAttrCount,
		combinedAttrs:  make([]storage.AttrValue, outerAttrCount+innerAttrCount),
	}
}

func (n *NestedLoopJoin) Open() error {
	if err := n.outer.Open(); err != nil {
		return err
	}
	if err := n.inner.Open(); err != nil {
		return err
	}
	return n.pullFirstOuter()
}

func (n *NestedLoopJoin) pullFirstOuter() error {
	n.outerExhausted = false
	tuple, err := n.outer.Next()
	if err != nil {
		return err
	}
	n.outerTuple = tuple
	if tuple == nil {
		n.outerExhausted = true
	}
	return nil
}

func (n *NestedLoopJoin) Next() (*storage.TupleView, error) {
	if n.outerExhausted || n.outerTuple == nil {
		return nil, nil
	}

	for {
		innerTuple, err := n.inner.Next()
		if err != nil {
			return nil, err
		}
		if innerTuple != nil {
			copy(n.combinedAttrs[:n.outerAttrCount], n.outerTuple.Attrs[:n.outerAttrCount])
			copy(n.combinedAttrs[n.outerAttrCount:], innerTuple.Attrs[:n.innerAttrCount])
			n.combined.ID = n.outerTuple.ID
			n.combined.IsNull = false
			n.combined.Attrs = n.combinedAttrs
			return &n.combined, nil
		}

		if err := n.inner.Reset(); err != nil {
			return nil, err
		}
		next, err := n.outer.Next()
		if err != nil {
			return nil, err
		}
		n.outerTuple = next
		if n.outerTuple == nil {
			n.outerExhausted = true
			return nil, nil
		}
	}
}

func (n *NestedLoopJoin) Close() error {
	if err := n.outer.Close(); err != nil {
		return err
	}
	if err := n.inner.Close(); err != nil {
		return err
	}
	n.outerTuple = nil
	n.outerExhausted = false
	return nil
}

func (n *NestedLoopJoin) Reset() error {
	if err := n.outer.Reset(); err != nil {
		return err
	}
	if err := n.inner.Reset(); err != nil {
		return err
	}
	return n.pullFirstOuter()
}
