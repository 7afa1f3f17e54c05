// Package catalog describes a table's schema: an ordered list of typed,
// fixed-size attributes, and the tuple and page geometry derived from them.
// It also owns the physical page-size constants, since every other storage
// component sizes itself off the catalog's derived tuple layout.
package catalog

import (
	"bytes"
	"fmt"

	"ssddb/pkg/types"
)

// Physical page geometry. The whole stack (disk I/O, pages, buffer pool)
// is built around this single fixed page size.
const (
	PageSize       = 8192
	PageHeaderSize = 32
	DataSize       = PageSize - PageHeaderSize // 8160

	// RecordSize is the on-disk size of one catalog record.
	RecordSize = 64
	// nameSize is the NUL-padded attribute name field width: 64 - size(1) -
	// type(1) - order(1).
	nameSize = RecordSize - 3
)

// AttributeRecord is one column definition, exactly as it is laid out on
// the catalog page.
type AttributeRecord struct {
	Name  string
	Size  uint8
	Type  types.AttributeType
	Order uint8
}

// Catalog is a table's schema: its attributes in on-disk order, plus the
// tuple size derived from them.
type Catalog struct {
	Records   []AttributeRecord
	TupleSize int
}

// New builds a catalog from a set of user-declared attributes, synthesizing
// a trailing PADDING/UNUSED attribute so the tuple size is a multiple of 8
// and at least 16 bytes (the null byte plus at least 15 bytes of payload).
func New(attrs []AttributeRecord) (*Catalog, error) {
	if len(attrs) == 0 {
		return nil, fmt.Errorf("catalog: at least one attribute is required")
	}

	records := make([]AttributeRecord, len(attrs))
	sum := 0
	for i, a := range attrs {
		if a.Size == 0 {
			return nil, fmt.Errorf("catalog: attribute %q has zero size", a.Name)
		}
		if a.Name == "" {
			return nil, fmt.Errorf("catalog: attribute at position %d has empty name", i)
		}
		a.Order = uint8(i)
		records[i] = a
		sum += int(a.Size)
	}

	base := 1 + sum // null byte + payload
	pad := (8 - base%8) % 8
	if base+pad < 16 {
		pad += 16 - (base + pad)
	}
	if pad > 0 {
		records = append(records, AttributeRecord{
			Name:  types.PaddingAttributeName,
			Size:  uint8(pad),
			Type:  types.AttrUnused,
			Order: uint8(len(records)),
		})
	}

	c := &Catalog{Records: records, TupleSize: base + pad}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// FromRecords reconstructs a catalog from records already read off disk
// (already sorted by Order, with TupleSize derived).
func FromRecords(records []AttributeRecord) (*Catalog, error) {
	sum := 0
	for _, r := range records {
		sum += int(r.Size)
	}
	c := &Catalog{Records: records, TupleSize: 1 + sum}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) validate() error {
	if c.TupleSize%8 != 0 {
		return fmt.Errorf("catalog: tuple size %d is not a multiple of 8", c.TupleSize)
	}
	if c.TupleSize < 16 {
		return fmt.Errorf("catalog: tuple size %d is smaller than the 16-byte minimum", c.TupleSize)
	}
	unused := 0
	for i, r := range c.Records {
		if r.Type == types.AttrUnused {
			unused++
			if i != len(c.Records)-1 {
				return fmt.Errorf("catalog: UNUSED attribute %q is not the trailing record", r.Name)
			}
		}
	}
	if unused > 1 {
		return fmt.Errorf("catalog: more than one trailing UNUSED attribute")
	}
	if c.TuplesPerPage() < 1 {
		return fmt.Errorf("catalog: tuple size %d leaves no room for a single tuple per page", c.TupleSize)
	}
	return nil
}

// GetRecord returns the record at pos.
func (c *Catalog) GetRecord(pos int) (AttributeRecord, bool) {
	if pos < 0 || pos >= len(c.Records) {
		return AttributeRecord{}, false
	}
	return c.Records[pos], true
}

// GetRecordByName finds a record by its attribute name.
func (c *Catalog) GetRecordByName(name string) (AttributeRecord, int, bool) {
	for i, r := range c.Records {
		if r.Name == name {
			return r, i, true
		}
	}
	return AttributeRecord{}, -1, false
}

// AttributeOffset returns the byte offset, within a tuple's slot, of the
// attribute at pos: 1 (the null byte) plus the sizes of all prior
// attributes.
func (c *Catalog) AttributeOffset(pos int) int {
	off := 1
	for i := 0; i < pos && i < len(c.Records); i++ {
		off += int(c.Records[i].Size)
	}
	return off
}

// NumUsed returns the number of attributes excluding a trailing
// UNUSED/PADDING record.
func (c *Catalog) NumUsed() int {
	n := len(c.Records)
	if n > 0 && c.Records[n-1].Type == types.AttrUnused {
		return n - 1
	}
	return n
}

// TuplesPerPage returns how many fixed-size tuple slots fit in a page's
// data area.
func (c *Catalog) TuplesPerPage() int {
	if c.TupleSize == 0 {
		return 0
	}
	return DataSize / c.TupleSize
}

// EncodeRecord serializes a record into its 64-byte on-disk form.
func EncodeRecord(r AttributeRecord) ([RecordSize]byte, error) {
	var buf [RecordSize]byte
	name := []byte(r.Name)
	if len(name) > nameSize {
		return buf, fmt.Errorf("catalog: attribute name %q exceeds %d bytes", r.Name, nameSize)
	}
	copy(buf[0:nameSize], name)
	buf[nameSize] = r.Size
	buf[nameSize+1] = byte(r.Type)
	buf[nameSize+2] = r.Order
	return buf, nil
}

// DecodeRecord parses a 64-byte on-disk record.
func DecodeRecord(buf []byte) AttributeRecord {
	name := buf[0:nameSize]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	return AttributeRecord{
		Name:  string(name),
		Size:  buf[nameSize],
		Type:  types.AttributeType(buf[nameSize+1]),
		Order: buf[nameSize+2],
	}
}
