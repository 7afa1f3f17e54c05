// Command ssddb is a smoke-test harness for the storage and execution
// core: it creates a table, inserts a few rows, and runs them through a
// Project/Filter/SeqScan pipeline. It is not a query shell — there is no
// parser or prompt loop here, both of which belong to an external
// front end.
package main

import (
	"flag"
	"fmt"
	"os"

	"ssddb/internal/catalog"
	"ssddb/internal/exec"
	"ssddb/internal/session"
	"ssddb/internal/storage"
	"ssddb/pkg/types"
)

func main() {
	path := flag.String("file", "./ssddb-demo.tbl", "table file path")
	flag.Parse()

	if err := run(*path); err != nil {
		fmt.Fprintf(os.Stderr, "ssddb: %v\n", err)
		os.Exit(1)
	}
}

func run(path string) error {
	cat, err := catalog.New([]catalog.AttributeRecord{
		{Name: "id", Size: 4, Type: types.AttrInt},
		{Name: "name", Size: 32, Type: types.AttrString},
	})
	if err != nil {
		return fmt.Errorf("build catalog: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove stale table file: %w", err)
		}
	}

	if err := session.CreateTable(path, cat); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	s, err := session.Open(path)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer s.Close()

	rows := []string{"ada", "grace", "margaret"}
	for i, name := range rows {
		_, err := s.BufferPool.Insert([]storage.AttrValue{
			{Type: types.AttrInt, Int: int32(i + 1)},
			{Type: types.AttrString, Str: []byte(name)},
		})
		if err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	if err := s.BufferPool.FlushBufferPool(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	scan := exec.NewSeqScan(s.BufferPool)
	filter := exec.NewFilter(scan, []exec.Proposition{
		{AttrIndex: 0, Op: exec.OpGreaterEqual, Value: storage.AttrValue{Type: types.AttrInt, Int: 2}},
	})
	proj := exec.NewProject(filter, []int{0, 1}, false)

	if err := proj.Open(); err != nil {
		return fmt.Errorf("open plan: %w", err)
	}
	defer proj.Close()

	for {
		tuple, err := proj.Next()
		if err != nil {
			return fmt.Errorf("next: %w", err)
		}
		if tuple == nil {
			break
		}
		fmt.Printf("id=%d name=%s\n", tuple.Attrs[0].Int, tuple.Attrs[1].Str)
	}
	return nil
}
