package cmd

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/malt3/pe-dump/pkg/ddi"
	"github.com/malt3/pe-dump/pkg/image"
)

// source selects where the PE image is read from: the input file itself, or
// a binary inside the EFI System Partition of a disk image.
type source struct {
	disk      bool
	efiPath   string
	blocksize int64
}

func (s *source) addFlags(flags *pflag.FlagSet) {
	flags.BoolVarP(&s.disk, "disk", "d", false, "treat the input as a GPT disk image and read the binary from its EFI partition")
	flags.StringVarP(&s.efiPath, "efi-path", "e", ddi.DefaultBinaryPath, "path to the binary inside the EFI partition (with --disk)")
	flags.Int64VarP(&s.blocksize, "blocksize", "b", 0, "blocksize of the disk image (0 to autodetect, with --disk)")
}

func (s *source) open(path string, log logrus.FieldLogger) (*image.Image, error) {
	if !s.disk {
		return image.Open(path)
	}

	disk, err := ddi.Open(path, s.blocksize, log)
	if errors.Is(err, ddi.ErrNotDiskImage) {
		return nil, &image.LoadError{Path: path, Err: err}
	} else if err != nil {
		return nil, &image.AccessError{Path: path, Err: err}
	}
	defer disk.Close()
	ext, err := disk.Locate(s.efiPath)
	if err != nil {
		return nil, &image.LoadError{Path: path, Err: err}
	}
	img, err := image.OpenRange(path, ext.Offset, ext.Size)
	if err != nil {
		return nil, fmt.Errorf("mapping %s: %w", s.efiPath, err)
	}
	return img, nil
}
