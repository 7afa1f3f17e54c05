// Package diskio performs fixed-size random I/O at page granularity. It
// opens a table file with OS-level direct-I/O hints, reads and writes whole
// pages at their page-aligned offsets, and serializes the single-page
// catalog. The OS hints are advisory: a platform that can't apply them
// still gets a correct, just not an SSD-optimized, file.
package diskio

import (
	"fmt"
	"os"
	"sort"

	"ssddb/internal/catalog"
	"ssddb/pkg/types"
)

// File is an open table file.
type File struct {
	f    *os.File
	path string
}

// Open opens path for read/write, creating it (and truncating) when create
// is true. It applies platform direct-I/O hints on a best-effort basis;
// a platform or filesystem that rejects them still gets a working file.
func Open(path string, create bool) (*File, error) {
	// os.OpenFile already opens the descriptor close-on-exec.
	flags := os.O_RDWR
	if create {
		flags |= os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("diskio: open %s: %w", path, err)
	}
	applyOpenHints(f)
	return &File{f: f, path: path}, nil
}

// Close closes the underlying file descriptor.
func (d *File) Close() error {
	if err := d.f.Close(); err != nil {
		return fmt.Errorf("diskio: close %s: %w", d.path, err)
	}
	return nil
}

// Flush issues a full durability barrier: every write accepted before this
// call returns is guaranteed durable once it returns successfully.
func (d *File) Flush() error {
	if err := fullFsync(d.f); err != nil {
		return fmt.Errorf("diskio: flush %s: %w", d.path, err)
	}
	return nil
}

// Size returns the current file size in bytes.
func (d *File) Size() (int64, error) {
	fi, err := d.f.Stat()
	if err != nil {
		return 0, fmt.Errorf("diskio: stat %s: %w", d.path, err)
	}
	return fi.Size(), nil
}

func pageOffset(pageID types.PageID) int64 {
	return int64(pageID) * catalog.PageSize
}

// ReadPage reads exactly one PageSize page at pageID's offset into out.
// Page 0 is the catalog page; data pages start at 1.
func (d *File) ReadPage(pageID types.PageID, out *[catalog.PageSize]byte) error {
	n, err := d.f.ReadAt(out[:], pageOffset(pageID))
	if err != nil {
		return fmt.Errorf("diskio: read page %d: %w", pageID, err)
	}
	if n != catalog.PageSize {
		return fmt.Errorf("diskio: short read of page %d: got %d of %d bytes", pageID, n, catalog.PageSize)
	}
	return nil
}

// WritePage writes exactly one PageSize page at pageID's offset.
func (d *File) WritePage(pageID types.PageID, in *[catalog.PageSize]byte) error {
	n, err := d.f.WriteAt(in[:], pageOffset(pageID))
	if err != nil {
		return fmt.Errorf("diskio: write page %d: %w", pageID, err)
	}
	if n != catalog.PageSize {
		return fmt.Errorf("diskio: short write of page %d: wrote %d of %d bytes", pageID, n, catalog.PageSize)
	}
	return nil
}

// WriteCatalog serializes cat's records at page 0, offsets 0, 64, 128, ...
// in their stored Order, and writes the whole page in one call.
func (d *File) WriteCatalog(cat *catalog.Catalog) error {
	var buf [catalog.PageSize]byte
	sorted := append([]catalog.AttributeRecord(nil), cat.Records...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	offset := 0
	for _, r := range sorted {
		if r.Size == 0 {
			return fmt.Errorf("diskio: catalog record %q has zero size", r.Name)
		}
		if r.Name == "" {
			return fmt.Errorf("diskio: catalog record has empty name")
		}
		if offset+catalog.RecordSize > catalog.PageSize {
			return fmt.Errorf("diskio: catalog has too many records to fit in one page")
		}
		enc, err := catalog.EncodeRecord(r)
		if err != nil {
			return fmt.Errorf("diskio: encode catalog record %q: %w", r.Name, err)
		}
		copy(buf[offset:offset+catalog.RecordSize], enc[:])
		offset += catalog.RecordSize
	}
	return d.WritePage(0, &buf)
}

// ReadCatalog reads page 0 and parses records until the first record whose
// attribute_size is 0, then sorts them by their stored Order and derives
// the tuple size.
func (d *File) ReadCatalog() (*catalog.Catalog, error) {
	var buf [catalog.PageSize]byte
	if err := d.ReadPage(0, &buf); err != nil {
		return nil, fmt.Errorf("diskio: read catalog: %w", err)
	}

	var records []catalog.AttributeRecord
	for off := 0; off+catalog.RecordSize <= catalog.PageSize; off += catalog.RecordSize {
		r := catalog.DecodeRecord(buf[off : off+catalog.RecordSize])
		if r.Size == 0 {
			break
		}
		records = append(records, r)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("diskio: catalog page has no valid records")
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Order < records[j].Order })
	cat, err := catalog.FromRecords(records)
	if err != nil {
		return nil, fmt.Errorf("diskio: invalid catalog: %w", err)
	}
	return cat, nil
}
