package storage

import (
	"bytes"
	"fmt"

	"ssddb/internal/catalog"
	"ssddb/internal/fnv1a"
	"ssddb/internal/le"
	"ssddb/pkg/types"
)

// AttrValue is a tagged in-memory attribute value. A STRING value's bytes
// may be a window directly into a pinned page's memory (Owned == false) or
// a private copy (Owned == true); callers that retain a value past the
// page's pin must call Clone first.
type AttrValue struct {
	Type types.AttributeType

	Int   int32
	Float float32
	Bool  bool
	Str   []byte

	Owned bool
}

// Clone returns a value safe to retain after the backing page is unpinned.
// Scalar types are already copies; only STRING carries borrowed memory.
func (v AttrValue) Clone() AttrValue {
	if v.Type != types.AttrString {
		return v
	}
	cp := make([]byte, len(v.Str))
	copy(cp, v.Str)
	return AttrValue{Type: v.Type, Str: cp, Owned: true}
}

// Equal compares two values of the same attribute type. STRING comparison
// is over the full, zero-padded attribute width: Insert zero-fills a
// slot's payload before writing a value into it, so two equal strings
// always agree past their content up to the declared attribute size.
func (v AttrValue) Equal(o AttrValue) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case types.AttrInt:
		return v.Int == o.Int
	case types.AttrFloat:
		return v.Float == o.Float
	case types.AttrBool:
		return v.Bool == o.Bool
	case types.AttrString:
		return bytes.Equal(v.Str, o.Str)
	default:
		return false
	}
}

// CanonicalBytes returns the fixed byte encoding hashed for v: 4 LE bytes
// for INT, 4 LE bytes of IEEE-754 bits for FLOAT, 1 byte for BOOL, and for
// STRING the bytes up to a terminating NUL (or the full slice, if none is
// present). Exported so callers combining several attributes into one
// hash (the project operator's DISTINCT set) can reuse the same encoding.
func CanonicalBytes(v AttrValue) []byte {
	return canonicalBytes(v)
}

func canonicalBytes(v AttrValue) []byte {
	switch v.Type {
	case types.AttrInt:
		var b [4]byte
		le.PutInt32(b[:], v.Int)
		return b[:]
	case types.AttrFloat:
		var b [4]byte
		le.PutFloat32(b[:], v.Float)
		return b[:]
	case types.AttrBool:
		var b [1]byte
		le.PutBool(b[:], v.Bool)
		return b[:]
	case types.AttrString:
		if i := bytes.IndexByte(v.Str, 0); i >= 0 {
			return v.Str[:i]
		}
		return v.Str
	default:
		return nil
	}
}

// Hash returns the FNV-1a 64-bit hash of the value's type tag followed by
// its canonical bytes. The linear-hash index hashes the canonical bytes
// alone (no type tag), and the project operator's DISTINCT set folds the
// tags and canonical bytes of all projected attributes into one hash.
func Hash(v AttrValue) uint64 {
	h := fnv1a.Hash([]byte{byte(v.Type)})
	data := canonicalBytes(v)
	if len(data) == 0 {
		return h
	}
	// Fold the type-tag hash in as a running FNV-1a state rather than
	// hashing two slices independently and XORing, so the combination
	// still walks one FNV-1a chain.
	combined := make([]byte, 0, 1+len(data))
	combined = append(combined, byte(v.Type))
	combined = append(combined, data...)
	return fnv1a.Hash(combined)
}

// ReadAttribute decodes the record-th attribute of cat out of a tupleSize
// slot buffer (as returned by Page.SlotBytes). STRING values borrow
// directly from buf.
func ReadAttribute(cat *catalog.Catalog, record int, buf []byte) (AttrValue, error) {
	rec, ok := cat.GetRecord(record)
	if !ok {
		return AttrValue{}, fmt.Errorf("storage: attribute %d out of range", record)
	}
	off := cat.AttributeOffset(record)
	size := int(rec.Size)
	field := buf[off : off+size]
	switch rec.Type {
	case types.AttrInt:
		return AttrValue{Type: types.AttrInt, Int: le.Int32(field)}, nil
	case types.AttrFloat:
		return AttrValue{Type: types.AttrFloat, Float: le.Float32(field)}, nil
	case types.AttrBool:
		return AttrValue{Type: types.AttrBool, Bool: le.Bool(field)}, nil
	case types.AttrString:
		return AttrValue{Type: types.AttrString, Str: field}, nil
	default:
		return AttrValue{}, fmt.Errorf("storage: attribute %q has unreadable type %v", rec.Name, rec.Type)
	}
}

// WriteAttribute encodes v into the record-th attribute slot of buf. A
// STRING value longer than the declared attribute size is truncated, and
// a shorter one is zero-padded to that size.
func WriteAttribute(cat *catalog.Catalog, record int, buf []byte, v AttrValue) error {
	rec, ok := cat.GetRecord(record)
	if !ok {
		return fmt.Errorf("storage: attribute %d out of range", record)
	}
	if rec.Type != v.Type {
		return fmt.Errorf("storage: attribute %q expects type %v, got %v", rec.Name, rec.Type, v.Type)
	}
	off := cat.AttributeOffset(record)
	size := int(rec.Size)
	field := buf[off : off+size]
	switch rec.Type {
	case types.AttrInt:
		le.PutInt32(field, v.Int)
	case types.AttrFloat:
		le.PutFloat32(field, v.Float)
	case types.AttrBool:
		le.PutBool(field, v.Bool)
	case types.AttrString:
		n := copy(field, v.Str)
		for i := n; i < size; i++ {
			field[i] = 0
		}
	default:
		return fmt.Errorf("storage: attribute %q has unwritable type %v", rec.Name, rec.Type)
	}
	return nil
}
