// Package image maps input files into read-only byte views.
package image

import (
	"errors"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

var (
	// ErrAccess is matched by every *AccessError.
	ErrAccess = errors.New("cannot access image")
	// ErrLoad is matched by every *LoadError.
	ErrLoad = errors.New("cannot load image")
)

// AccessError reports an input path that does not exist or cannot be opened.
type AccessError struct {
	Path string
	Err  error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("%s %q: %v", ErrAccess, e.Path, e.Err)
}

func (e *AccessError) Unwrap() []error { return []error{ErrAccess, e.Err} }

// LoadError reports an input that was opened but could not be mapped.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s %q: %v", ErrLoad, e.Path, e.Err)
}

func (e *LoadError) Unwrap() []error { return []error{ErrLoad, e.Err} }

var (
	errEmpty       = errors.New("file is empty")
	errNotRegular  = errors.New("not a regular file")
	errOutOfBounds = errors.New("window exceeds file size")
)

// Image is a read-only view of a mapped file, or of a window inside one.
// Bytes must not be written to and must not be used after Close.
type Image struct {
	path string
	m    mmap.MMap
	data []byte
}

// Open maps the whole file at path.
func Open(path string) (*Image, error) {
	return open(path, 0, -1)
}

// OpenRange maps the file at path and exposes only [offset, offset+size).
// It is used for images embedded in a larger file, such as a disk image.
func OpenRange(path string, offset, size int64) (*Image, error) {
	if offset < 0 || size < 0 {
		return nil, &LoadError{Path: path, Err: errOutOfBounds}
	}
	return open(path, offset, size)
}

func open(path string, offset, size int64) (*Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &AccessError{Path: path, Err: err}
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, &AccessError{Path: path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &LoadError{Path: path, Err: errNotRegular}
	}
	if info.Size() == 0 {
		return nil, &LoadError{Path: path, Err: errEmpty}
	}
	if size < 0 {
		size = info.Size() - offset
	}
	if offset > info.Size() || size > info.Size()-offset {
		return nil, &LoadError{Path: path, Err: errOutOfBounds}
	}
	if size == 0 {
		return nil, &LoadError{Path: path, Err: errEmpty}
	}

	m, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("mapping file: %w", err)}
	}
	return &Image{
		path: path,
		m:    m,
		data: m[offset : offset+size : offset+size],
	}, nil
}

// Path returns the path the image was opened from.
func (i *Image) Path() string {
	return i.path
}

// Bytes returns the mapped view.
func (i *Image) Bytes() []byte {
	return i.data
}

// Len returns the size of the view in bytes.
func (i *Image) Len() int {
	return len(i.data)
}

// Close unmaps the file. Calling Close more than once is a no-op.
func (i *Image) Close() error {
	if i.m == nil {
		return nil
	}
	m := i.m
	i.m, i.data = nil, nil
	if err := m.Unmap(); err != nil {
		return fmt.Errorf("unmapping %q: %w", i.path, err)
	}
	return nil
}
