//go:build linux

package diskio

import (
	"os"

	"golang.org/x/sys/unix"
)

// applyOpenHints sets O_DIRECT on the already-open descriptor (it can't be
// requested at os.OpenFile time without losing portability) and advises the
// kernel against read-ahead, since page access is effectively random.
func applyOpenHints(f *os.File) {
	fd := int(f.Fd())
	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
	if err == nil {
		unix.FcntlInt(uintptr(fd), unix.F_SETFL, flags|unix.O_DIRECT)
	}
	unix.Fadvise(fd, 0, 0, unix.FADV_RANDOM)
}

// fullFsync issues a full durability barrier. Linux has no "full fsync"
// distinct from fsync(2); a plain Sync is the strongest barrier available.
func fullFsync(f *os.File) error {
	return f.Sync()
}
