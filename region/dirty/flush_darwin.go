//go:build darwin

package dirty

import (
	"context"

	"golang.org/x/sys/unix"
)

// flushRanges msyncs the whole mapping. macOS wants the address passed to
// msync to match the mmap address; the kernel still writes dirty pages only.
func (t *Tracker) flushRanges(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return unix.Msync(data, unix.MS_SYNC)
}

// sync uses F_FULLFSYNC when asked, plain fsync otherwise (there is no
// fdatasync on macOS).
func (t *Tracker) sync(fullfsync bool) error {
	if fullfsync {
		_, err := unix.FcntlInt(uintptr(t.r.FD()), unix.F_FULLFSYNC, 0)
		return err
	}
	return unix.Fsync(t.r.FD())
}
