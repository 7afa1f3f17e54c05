//go:build !linux && !darwin

package diskio

import "os"

// applyOpenHints is a no-op on platforms with no direct-I/O equivalent
// wired up; correctness never depends on it having run.
func applyOpenHints(f *os.File) {}

// fullFsync falls back to the standard fsync.
func fullFsync(f *os.File) error {
	return f.Sync()
}
