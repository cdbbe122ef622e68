// Package gpt finds partitions in GPT disk images.
package gpt

import (
	"errors"
	"fmt"

	"github.com/diskfs/go-diskfs"
	"github.com/diskfs/go-diskfs/partition"
	"github.com/diskfs/go-diskfs/partition/gpt"
)

// ErrNotFound is returned when no partition has the requested type.
var ErrNotFound = errors.New("partition not found")

// Extent is a byte range inside a disk image.
type Extent struct {
	Start int64
	Size  int64
}

// EFIPartition returns the extent of the EFI System Partition of the disk
// image at path. The image is opened read-only.
func EFIPartition(path string) (Extent, error) {
	disk, err := diskfs.Open(path, diskfs.WithOpenMode(diskfs.ReadOnly))
	if err != nil {
		return Extent{}, fmt.Errorf("opening disk image: %w", err)
	}
	defer disk.File.Close()
	table, err := disk.GetPartitionTable()
	if err != nil {
		return Extent{}, fmt.Errorf("reading partition table: %w", err)
	}
	part, err := findPartWithTypeGUID(table, gpt.EFISystemPartition)
	if err != nil {
		return Extent{}, err
	}
	return Extent{Start: part.GetStart(), Size: part.GetSize()}, nil
}

func findPartWithTypeGUID(table partition.Table, guid gpt.Type) (*gpt.Partition, error) {
	for _, part := range table.GetPartitions() {
		part, ok := part.(*gpt.Partition)
		if !ok {
			return nil, fmt.Errorf("partition table is %q, not GPT", table.Type())
		}
		if part.Type == guid {
			return part, nil
		}
	}
	return nil, fmt.Errorf("%w: type %s", ErrNotFound, guid)
}
