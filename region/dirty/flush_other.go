//go:build !linux && !freebsd && !darwin

package dirty

import "context"

// flushRanges writes each coalesced range of the in-memory copy back to the
// file.
func (t *Tracker) flushRanges(ctx context.Context, data []byte) error {
	f := t.r.File()
	for _, r := range t.coalesce() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := f.WriteAt(data[r.Off:r.End()], r.Off); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tracker) sync(_ bool) error {
	return t.r.File().Sync()
}
