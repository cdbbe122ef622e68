// Package ddi locates binaries stored in the EFI System Partition of a
// discoverable disk image.
package ddi

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/malt3/pe-dump/pkg/fat"
	"github.com/malt3/pe-dump/pkg/gpt"
)

// DefaultBinaryPath is the removable-media boot loader path for 32-bit x86
// UEFI firmware.
const DefaultBinaryPath = "/EFI/BOOT/BOOTIA32.EFI"

var errBlocksizeNotFound = errors.New("blocksize not found")

// ErrNotDiskImage is returned by Open when the file can be read but holds no
// GPT header at any supported block size.
var ErrNotDiskImage = errors.New("not a GPT disk image")

// Extent is an absolute byte range inside the disk image.
type Extent struct {
	Offset int64
	Size   int64
}

type Image struct {
	path      string
	file      *os.File
	blocksize int64
	log       logrus.FieldLogger
}

// Open opens the disk image at imagePath read-only.
// blocksize is the logical block size of the image (usually 512, use 0 to
// enable autodetection).
func Open(imagePath string, blocksize int64, log logrus.FieldLogger) (*Image, error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("opening disk image: %w", err)
	}
	if blocksize == 0 {
		blocksize, err = learnBlocksize(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("%w: learning blocksize: %w", ErrNotDiskImage, err)
		}
		log.WithField("blocksize", blocksize).Debug("detected disk image blocksize")
	}
	return &Image{
		path:      imagePath,
		file:      file,
		blocksize: blocksize,
		log:       log,
	}, nil
}

func (i *Image) Close() error {
	return i.file.Close()
}

// Locate returns the absolute extent of the file at binaryPath inside the
// EFI System Partition. An empty binaryPath means DefaultBinaryPath.
func (i *Image) Locate(binaryPath string) (Extent, error) {
	if binaryPath == "" {
		binaryPath = DefaultBinaryPath
	}
	esp, err := gpt.EFIPartition(i.path)
	if err != nil {
		return Extent{}, fmt.Errorf("locating %s: getting EFI partition section: %w", binaryPath, err)
	}

	efiPartition := io.NewSectionReader(i.file, esp.Start, esp.Size)
	content, err := fat.FileExtent(efiPartition, esp.Size, i.blocksize, binaryPath)
	if err != nil {
		return Extent{}, fmt.Errorf("locating %s: getting file content section within EFI partition: %w", binaryPath, err)
	}

	ext := Extent{Offset: esp.Start + content.Offset, Size: content.Size}
	i.log.WithFields(logrus.Fields{
		"binary": binaryPath,
		"offset": ext.Offset,
		"size":   ext.Size,
	}).Debug("located binary in EFI system partition")
	return ext, nil
}

func learnBlocksize(r io.ReaderAt) (int64, error) {
	buf := make([]byte, 8)

	for bs := int64(512); bs <= 4096; bs *= 2 {
		_, err := r.ReadAt(buf, bs)
		if err != nil {
			return 0, err
		}
		if slices.Equal(buf, []byte("EFI PART")) {
			return bs, nil
		}
	}
	return 0, errBlocksizeNotFound
}
