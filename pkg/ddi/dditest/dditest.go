// Package dditest builds GPT disk images for tests.
package dditest

import (
	"os"
	"path"
	"testing"

	"github.com/diskfs/go-diskfs"
	"github.com/diskfs/go-diskfs/disk"
	"github.com/diskfs/go-diskfs/filesystem"
	"github.com/diskfs/go-diskfs/partition/gpt"
	"github.com/stretchr/testify/require"
)

const (
	// ImageSize is the size of every image written by WriteImage.
	ImageSize = 64 * 1024 * 1024
	// PartitionStart is the first sector of the single partition.
	PartitionStart = 2048
	partitionEnd   = 126975
)

// WriteImage creates a GPT disk image at imagePath with a single FAT32
// partition of type partType that holds files, keyed by absolute in-image
// path. imagePath must not exist yet.
func WriteImage(t testing.TB, imagePath string, partType gpt.Type, files map[string][]byte) {
	t.Helper()
	require := require.New(t)

	d, err := diskfs.Create(imagePath, ImageSize, diskfs.Raw, diskfs.SectorSizeDefault)
	require.NoError(err)
	defer d.File.Close()

	require.NoError(d.Partition(&gpt.Table{
		LogicalSectorSize:  512,
		PhysicalSectorSize: 512,
		ProtectiveMBR:      true,
		Partitions: []*gpt.Partition{{
			Start: PartitionStart,
			End:   partitionEnd,
			Type:  partType,
			Name:  "EFI",
		}},
	}))
	fs, err := d.CreateFilesystem(disk.FilesystemSpec{
		Partition:   1,
		FSType:      filesystem.TypeFat32,
		VolumeLabel: "EFI",
	})
	require.NoError(err)

	for p, data := range files {
		require.NoError(fs.Mkdir(path.Dir(p)), p)
		f, err := fs.OpenFile(p, os.O_CREATE|os.O_RDWR)
		require.NoError(err, p)
		_, err = f.Write(data)
		require.NoError(err, p)
		require.NoError(f.Close(), p)
	}
}
