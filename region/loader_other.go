//go:build !linux && !darwin && !freebsd

package region

import (
	"errors"
	"fmt"
	"io"
	"os"
	"unsafe"
)

// Mapped reports whether Bytes aliases the file through a shared mapping.
const Mapped = false

// pageAlign is the start alignment given to the in-memory copy.
const pageAlign = 4096

func load(f *os.File, path string, size int64) (*Region, error) {
	raw := make([]byte, int(size)+pageAlign-1)
	pad := 0
	if mis := int(uintptr(unsafe.Pointer(unsafe.SliceData(raw))) & (pageAlign - 1)); mis != 0 {
		pad = pageAlign - mis
	}
	data := raw[pad : pad+int(size) : pad+int(size)]
	if _, err := io.ReadFull(io.NewSectionReader(f, 0, size), data); err != nil {
		return nil, fmt.Errorf("region: read %s: %w", path, err)
	}
	return &Region{f: f, path: path, data: data, size: size}, nil
}

// Close writes the in-memory copy back and closes the file.
func (r *Region) Close() error {
	if r.f == nil {
		return ErrClosed
	}
	var errs []error
	if _, err := r.f.WriteAt(r.data, 0); err != nil {
		errs = append(errs, fmt.Errorf("region: write back: %w", err))
	}
	errs = append(errs, r.f.Close())
	r.f = nil
	r.data = nil
	return errors.Join(errs...)
}
