// Package exec implements the pull-based operator tree: SeqScan, Filter,
// Project and NestedLoopJoin, each exposing the same open/next/close/reset
// contract so they compose into an arbitrary plan tree.
package exec

import "ssddb/internal/storage"

// Operator is the iterator contract every node in a plan tree implements.
// Next returns a tuple view borrowed from buffer-pool memory, valid until
// the next call to Next, Reset or Close anywhere in the tree; a caller
// that must retain a value past that point should storage.Copy it. A nil
// view with a nil error means the stream is exhausted.
type Operator interface {
	// Open idempotently initializes the operator, recursively opening
	// its children.
	Open() error
	// Next returns the next tuple, or (nil, nil) when exhausted.
	Next() (*storage.TupleView, error)
	// Close releases any pins and iteration state, recursively closing
	// children. Every frame it touched must end with pin_count 0.
	Close() error
	// Reset returns the operator (and its children) to the
	// pre-first-Next state.
	Reset() error
}
