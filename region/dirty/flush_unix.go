//go:build linux || freebsd

package dirty

import (
	"context"

	"golang.org/x/sys/unix"
)

// flushRanges msyncs each coalesced range. Linux and FreeBSD accept
// page-aligned sub-slices of a mapping.
func (t *Tracker) flushRanges(ctx context.Context, data []byte) error {
	for _, r := range t.coalesce() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := unix.Msync(data[r.Off:r.End()], unix.MS_SYNC); err != nil {
			return err
		}
	}
	return nil
}

// sync flushes file data. fullfsync has no meaning here.
func (t *Tracker) sync(_ bool) error {
	return unix.Fdatasync(t.r.FD())
}
