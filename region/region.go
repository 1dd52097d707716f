// Package region backs an arena with a file. On Linux, macOS and FreeBSD the
// file is mapped read-write and shared, so arena writes land in the page cache
// directly and dirty.Tracker can flush exactly the touched pages. Elsewhere
// the file is loaded into memory and written back on flush and close.
//
// Mappings start on a page boundary, which satisfies every alignment mask up
// to the page size minus one.
package region

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrEmpty indicates the file has no bytes to map.
	ErrEmpty = errors.New("region: empty file")

	// ErrClosed indicates the region was already closed.
	ErrClosed = errors.New("region: closed")
)

// Region is a file-backed byte region.
//
// NOT thread-safe.
type Region struct {
	f    *os.File
	path string
	data []byte
	size int64
}

// Create makes a new zero-filled file of size bytes at path and maps it. The
// file must not exist yet.
func Create(path string, size int64) (*Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("region: invalid size %d", size)
	}
	if size > int64(^uint(0)>>1) {
		return nil, fmt.Errorf("region: size %d too large to map", size)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, err
	}
	if err := f.Truncate(size); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("region: size %s: %w", path, err)
	}
	r, err := load(f, path, size)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, err
	}
	return r, nil
}

// Open maps an existing region file read-write.
func Open(path string) (*Region, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	sz := st.Size()
	if sz == 0 {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s", ErrEmpty, path)
	}
	if sz > int64(^uint(0)>>1) {
		_ = f.Close()
		return nil, fmt.Errorf("region: %s too large to map (%d bytes)", path, sz)
	}
	r, err := load(f, path, sz)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return r, nil
}

// Bytes returns the region contents. The slice is invalid after Close.
func (r *Region) Bytes() []byte { return r.data }

// Size returns the region length in bytes.
func (r *Region) Size() int64 { return r.size }

// Path returns the file the region was opened from.
func (r *Region) Path() string { return r.path }

// File returns the underlying file, nil after Close.
func (r *Region) File() *os.File { return r.f }

// FD returns the file descriptor, -1 after Close.
func (r *Region) FD() int {
	if r.f == nil {
		return -1
	}
	return int(r.f.Fd())
}
