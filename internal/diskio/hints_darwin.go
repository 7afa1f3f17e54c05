//go:build darwin

package diskio

import (
	"os"

	"golang.org/x/sys/unix"
)

// applyOpenHints disables the unified buffer cache and read-ahead for this
// descriptor. macOS has no O_DIRECT; F_NOCACHE is the platform's equivalent.
func applyOpenHints(f *os.File) {
	fd := int(f.Fd())
	unix.FcntlInt(uintptr(fd), unix.F_NOCACHE, 1)
	unix.FcntlInt(uintptr(fd), unix.F_RDAHEAD, 0)
}

// fullFsync issues macOS's full fsync, which (unlike fsync(2)) actually
// flushes the drive's write cache.
func fullFsync(f *os.File) error {
	fd := int(f.Fd())
	if _, err := unix.FcntlInt(uintptr(fd), unix.F_FULLFSYNC, 1); err != nil {
		return f.Sync()
	}
	return nil
}
