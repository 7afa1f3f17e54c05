// Package session binds an open table file to its catalog and buffer
// pool, the unit every runtime operation (CRUD, scans, index builds) is
// scoped to.
package session

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"ssddb/internal/catalog"
	"ssddb/internal/diskio"
	"ssddb/internal/storage"
)

// ErrInvalidFileSize is returned by Open when a table file's size is not
// a positive multiple of the page size.
var ErrInvalidFileSize = errors.New("session: file size is not a positive multiple of the page size")

// ErrEmptyTableName is returned by Open when the filename's basename,
// stripped of its extension, is empty.
var ErrEmptyTableName = errors.New("session: table name derived from filename is empty")

// Session binds one open table file to its catalog and buffer pool.
type Session struct {
	file       *diskio.File
	TableName  string
	Filename   string
	Catalog    *catalog.Catalog
	BufferPool *storage.BufferPool
}

// PageCountOnDisk is the number of data pages currently known to exist,
// delegated to the buffer pool (the sole owner of that counter).
func (s *Session) PageCountOnDisk() uint64 {
	return s.BufferPool.PageCountOnDisk()
}

// CreateTable writes a fresh table file: the catalog page, then an
// initialized first data page, then a durability barrier.
func CreateTable(filename string, cat *catalog.Catalog) error {
	f, err := diskio.Open(filename, true)
	if err != nil {
		return fmt.Errorf("session: create table: %w", err)
	}
	defer f.Close()

	if err := f.WriteCatalog(cat); err != nil {
		return fmt.Errorf("session: write catalog: %w", err)
	}

	var page storage.Page
	page.ID = 1
	page.Init(cat)
	if err := f.WritePage(1, &page.Data); err != nil {
		return fmt.Errorf("session: write first page: %w", err)
	}

	return f.Flush()
}

// Open opens an existing table file: validates its size, derives the
// table name from the basename, reads the catalog, and wires up a fresh
// buffer pool over it.
func Open(filename string) (*Session, error) {
	f, err := diskio.Open(filename, false)
	if err != nil {
		return nil, fmt.Errorf("session: open: %w", err)
	}

	size, err := f.Size()
	if err != nil {
		f.Close()
		return nil, err
	}
	if size <= 0 || size%catalog.PageSize != 0 {
		f.Close()
		return nil, ErrInvalidFileSize
	}
	pageCountOnDisk := uint64(size/catalog.PageSize) - 1

	cat, err := f.ReadCatalog()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("session: read catalog: %w", err)
	}

	base := filepath.Base(filename)
	tableName := strings.TrimSuffix(base, filepath.Ext(base))
	if tableName == "" {
		f.Close()
		return nil, ErrEmptyTableName
	}

	bp := storage.NewBufferPool(f, cat, pageCountOnDisk)
	return &Session{
		file:       f,
		TableName:  tableName,
		Filename:   filename,
		Catalog:    cat,
		BufferPool: bp,
	}, nil
}

// Close durably flushes the buffer pool and closes the underlying file.
func (s *Session) Close() error {
	if err := s.BufferPool.FlushBufferPool(); err != nil {
		return err
	}
	return s.file.Close()
}
