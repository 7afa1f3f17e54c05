package exec

import (
	"bytes"

	"ssddb/internal/storage"
	"ssddb/pkg/types"
)

// CompareOp is a predicate comparison operator.
type CompareOp int

const (
	OpEqual CompareOp = iota + 1
	OpNotEqual
	OpLessThan
	OpLessEqual
	OpGreaterThan
	OpGreaterEqual
)

// Proposition is one (attribute, operator, literal) predicate term.
type Proposition struct {
	AttrIndex int
	Op        CompareOp
	Value     storage.AttrValue
}

// Filter passes through tuples satisfying a conjunction of propositions.
// A nil or empty criteria list passes every tuple.
type Filter struct {
	child    Operator
	criteria []Proposition
}

// NewFilter wraps child with a conjunctive predicate.
func NewFilter(child Operator, criteria []Proposition) *Filter {
	return &Filter{child: child, criteria: criteria}
}

func (f *Filter) Open() error { return f.child.Open() }

func (f *Filter) Next() (*storage.TupleView, error) {
	for {
		tuple, err := f.child.Next()
		if err != nil || tuple == nil {
			return nil, err
		}
		if len(f.criteria) == 0 || evaluateCriteria(tuple, f.criteria) {
			return tuple, nil
		}
	}
}

func (f *Filter) Close() error { return f.child.Close() }
func (f *Filter) Reset() error { return f.child.Reset() }

func evaluateCriteria(tuple *storage.TupleView, criteria []Proposition) bool {
	for _, prop := range criteria {
		if prop.AttrIndex >= len(tuple.Attrs) {
			return false
		}
		if !evaluateProposition(tuple.Attrs[prop.AttrIndex], prop) {
			return false
		}
	}
	return true
}

// evaluateProposition evaluates one term. A type mismatch between the
// attribute and the literal is false, not an error; ordering operators on
// BOOL are unsupported and also evaluate to false.
func evaluateProposition(attr storage.AttrValue, prop Proposition) bool {
	if attr.Type != prop.Value.Type {
		return false
	}
	switch prop.Op {
	case OpEqual:
		return attr.Equal(prop.Value)
	case OpNotEqual:
		return !attr.Equal(prop.Value)
	case OpLessThan, OpLessEqual, OpGreaterThan, OpGreaterEqual:
		if attr.Type == types.AttrBool {
			return false
		}
		cmp, ok := compareOrdered(attr, prop.Value)
		if !ok {
			return false
		}
		switch prop.Op {
		case OpLessThan:
			return cmp < 0
		case OpLessEqual:
			return cmp <= 0
		case OpGreaterThan:
			return cmp > 0
		case OpGreaterEqual:
			return cmp >= 0
		}
	}
	return false
}

// compareOrdered returns -1/0/1 for INT, FLOAT and STRING (length-bounded
// byte comparison); BOOL has no ordering.
func compareOrdered(a, b storage.AttrValue) (int, bool) {
	switch a.Type {
	case types.AttrInt:
		switch {
		case a.Int < b.Int:
			return -1, true
		case a.Int > b.Int:
			return 1, true
		default:
			return 0, true
		}
	case types.AttrFloat:
		switch {
		case a.Float < b.Float:
			return -1, true
		case a.Float > b.Float:
			return 1, true
		default:
			return 0, true
		}
	case types.AttrString:
		return bytes.Compare(a.Str, b.Str), true
	default:
		return 0, false
	}
}
