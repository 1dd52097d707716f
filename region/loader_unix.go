//go:build linux || darwin || freebsd

package region

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Mapped reports whether Bytes aliases the file through a shared mapping.
const Mapped = true

func load(f *os.File, path string, size int64) (*Region, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("region: mmap %s: %w", path, err)
	}
	return &Region{f: f, path: path, data: data, size: size}, nil
}

// Close unmaps the region and closes the file. Pages the kernel has not
// written back yet stay in the page cache; flush first for durability.
func (r *Region) Close() error {
	if r.f == nil {
		return ErrClosed
	}
	var errs []error
	if r.data != nil {
		if err := unix.Munmap(r.data); err != nil {
			errs = append(errs, fmt.Errorf("region: munmap: %w", err))
		}
		r.data = nil
	}
	errs = append(errs, r.f.Close())
	r.f = nil
	return errors.Join(errs...)
}
