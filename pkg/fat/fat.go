// Package fat locates file contents inside FAT32 filesystems.
package fat

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/diskfs/go-diskfs/filesystem/fat32"
	"github.com/diskfs/go-diskfs/util"
)

// Reader is a read-only view of a FAT32 filesystem.
type Reader interface {
	io.ReaderAt
	io.Seeker
}

// Extent is a byte range relative to the start of the filesystem.
type Extent struct {
	Offset int64
	Size   int64
}

// FileExtent returns where the contents of the file at path are stored in
// the filesystem read from r. size is the size of the filesystem in bytes.
// The file must be stored contiguously.
func FileExtent(r Reader, size, blocksize int64, path string) (Extent, error) {
	var fsFile util.File = &nopWriter{r}
	fs, err := fat32.Read(fsFile, size, 0, blocksize)
	if err != nil {
		return Extent{}, fmt.Errorf("reading FAT32 filesystem: %w", err)
	}
	file, err := fs.OpenFile(path, os.O_RDONLY)
	if err != nil {
		return Extent{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()
	fat32File, ok := file.(*fat32.File)
	if !ok {
		return Extent{}, fmt.Errorf("opening %s: unexpected file type %T", path, file)
	}

	offset, length, err := fat32File.GetContentSection()
	if err != nil {
		return Extent{}, fmt.Errorf("locating contents of %s: %w", path, err)
	}
	return Extent{Offset: offset, Size: length}, nil
}

type nopWriter struct {
	Reader
}

func (w *nopWriter) WriteAt(p []byte, off int64) (n int, err error) {
	return 0, errors.New("reader is read-only")
}
