package catalog

import (
	"testing"

	"ssddb/pkg/types"
)

func personAttrs() []AttributeRecord {
	return []AttributeRecord{
		{Name: "id", Size: 4, Type: types.AttrInt},
		{Name: "name", Size: 50, Type: types.AttrString},
		{Name: "salary", Size: 4, Type: types.AttrFloat},
		{Name: "department", Size: 30, Type: types.AttrString},
		{Name: "is_active", Size: 1, Type: types.AttrBool},
	}
}

func TestNewSchemaAlignment(t *testing.T) {
	c, err := New(personAttrs())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if c.TupleSize != 96 {
		t.Errorf("TupleSize = %d, want 96", c.TupleSize)
	}
	if got := c.TuplesPerPage(); got != 85 {
		t.Errorf("TuplesPerPage() = %d, want 85", got)
	}
	if c.NumUsed() != 5 {
		t.Errorf("NumUsed() = %d, want 5", c.NumUsed())
	}

	if len(c.Records) != 6 {
		t.Fatalf("len(Records) = %d, want 6", len(c.Records))
	}
	last := c.Records[5]
	if last.Name != types.PaddingAttributeName {
		t.Errorf("padding record Name = %q, want %q", last.Name, types.PaddingAttributeName)
	}
	if last.Type != types.AttrUnused {
		t.Errorf("padding record Type = %v, want AttrUnused", last.Type)
	}
	if last.Size != 6 {
		t.Errorf("padding record Size = %d, want 6", last.Size)
	}
}

func TestNewPadsToSixteenByteMinimum(t *testing.T) {
	// 1 (null) + 7*1 = 8, already a multiple of 8 but below the 16-byte floor.
	attrs := []AttributeRecord{{Name: "flags", Size: 7, Type: types.AttrString}}
	c, err := New(attrs)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if c.TupleSize != 16 {
		t.Errorf("TupleSize = %d, want 16", c.TupleSize)
	}
	if len(c.Records) != 2 {
		t.Errorf("len(Records) = %d, want 2", len(c.Records))
	}
}

func TestAttributeOffset(t *testing.T) {
	c, err := New(personAttrs())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	cases := []struct {
		idx  int
		want int
	}{
		{0, 1},
		{1, 5},   // after id(4)
		{2, 55},  // after name(50)
		{3, 59},  // after salary(4)
	}
	for _, c2 := range cases {
		if got := c.AttributeOffset(c2.idx); got != c2.want {
			t.Errorf("AttributeOffset(%d) = %d, want %d", c2.idx, got, c2.want)
		}
	}
}

func TestGetRecordByName(t *testing.T) {
	c, err := New(personAttrs())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	r, pos, ok := c.GetRecordByName("salary")
	if !ok || pos != 2 || r.Type != types.AttrFloat {
		t.Fatalf("GetRecordByName(salary) = %+v, %d, %v; want pos 2, AttrFloat, true", r, pos, ok)
	}

	if _, _, ok := c.GetRecordByName("nonexistent"); ok {
		t.Errorf("GetRecordByName(nonexistent) should miss")
	}
}

func TestNewRejectsZeroSizeOrEmptyName(t *testing.T) {
	if _, err := New([]AttributeRecord{{Name: "x", Size: 0, Type: types.AttrInt}}); err == nil {
		t.Errorf("New() with zero size should error")
	}

	if _, err := New([]AttributeRecord{{Name: "", Size: 4, Type: types.AttrInt}}); err == nil {
		t.Errorf("New() with empty name should error")
	}
}

func TestEncodeDecodeRecordRoundTrip(t *testing.T) {
	r := AttributeRecord{Name: "department", Size: 30, Type: types.AttrString, Order: 3}
	buf, err := EncodeRecord(r)
	if err != nil {
		t.Fatalf("EncodeRecord() error = %v", err)
	}
	if len(buf) != RecordSize {
		t.Fatalf("len(buf) = %d, want %d", len(buf), RecordSize)
	}

	got := DecodeRecord(buf[:])
	if got != r {
		t.Errorf("DecodeRecord() = %+v, want %+v", got, r)
	}
}

func TestEncodeRecordNameTooLong(t *testing.T) {
	longName := make([]byte, nameSize+1)
	for i := range longName {
		longName[i] = 'a'
	}
	if _, err := EncodeRecord(AttributeRecord{Name: string(longName), Size: 1, Type: types.AttrInt}); err == nil {
		t.Errorf("EncodeRecord() with overlong name should error")
	}
}
