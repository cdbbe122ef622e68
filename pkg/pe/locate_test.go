package pe

import (
	"bytes"
	dpe "debug/pe"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireFormatError(t *testing.T, err error, reason string) {
	t.Helper()
	require.ErrorIs(t, err, ErrInvalidFormat)
	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, reason, fe.Reason)
}

func TestLocate(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	b := newTestImage(
		testSection{".text", fill(0x30, 1)},
		testSection{".data", fill(0x10, 2)},
	).bytes()

	l, err := Locate(b)
	require.NoError(err)
	assert.Equal(int64(testLfanew), l.PEHeaderOffset)
	assert.Equal(int64(testLfanew+4), l.FileHeaderOffset)
	assert.Equal(int64(testLfanew+24), l.OptionalHeaderOffset)
	assert.Equal(int64(testLfanew+248), l.SectionTableOffset)
	assert.Equal(2, l.NumberOfSections)
	assert.Equal(int64(testLfanew+248+80), l.SectionTableEnd())
	assert.Equal(uint16(dpe.IMAGE_FILE_MACHINE_I386), l.FileHeader.Machine)
	assert.Equal(uint16(0x10b), l.OptionalHeader.Magic)
	assert.Equal(uint32(0x400000), l.OptionalHeader.ImageBase)
}

func TestLocateAgreesWithDebugPE(t *testing.T) {
	require := require.New(t)

	b := newTestImage(
		testSection{".text", fill(0x20, 3)},
		testSection{".rdata", fill(0x08, 4)},
		testSection{".reloc", nil},
	).bytes()

	l, err := Locate(b)
	require.NoError(err)
	sections, err := l.Sections(b)
	require.NoError(err)

	f, err := dpe.NewFile(bytes.NewReader(b))
	require.NoError(err)
	defer f.Close()

	require.Equal(f.FileHeader, l.FileHeader)
	require.Len(sections, len(f.Sections))
	for i, s := range f.Sections {
		require.Equal(s.Name, sections[i].Name)
		require.Equal(s.Offset, sections[i].PointerToRawData)
		require.Equal(s.Size, sections[i].SizeOfRawData)
	}
}

func TestLocateBadDOSSignature(t *testing.T) {
	good := newTestImage().bytes()

	testCases := map[string][]byte{
		"empty":      {},
		"one byte":   {'M'},
		"ZM":         append([]byte("ZM"), good[2:]...),
		"lowercase":  append([]byte("mz"), good[2:]...),
		"elf":        append([]byte("\x7fELF"), good[4:]...),
		"all zeroes": make([]byte, len(good)),
	}
	for name, b := range testCases {
		t.Run(name, func(t *testing.T) {
			l, err := Locate(b)
			assert.Nil(t, l)
			requireFormatError(t, err, ReasonBadDOSSignature)
		})
	}
}

func TestLocateTruncatedDOSHeader(t *testing.T) {
	b := newTestImage().bytes()[:sizeDOSHeader-1]
	_, err := Locate(b)
	requireFormatError(t, err, ReasonTruncatedDOSHeader)
}

func TestLocatePEOffsetOutOfRange(t *testing.T) {
	good := newTestImage(testSection{".text", fill(16, 0)}).bytes()

	offsets := []uint32{
		uint32(len(good)),
		uint32(len(good)) - sizePEHeaders + 1,
		uint32(len(good)) + 1,
		0x7fffffff,
		0x80000000,
		math.MaxUint32 - sizePEHeaders,
		math.MaxUint32 - 3,
		math.MaxUint32,
	}
	for _, off := range offsets {
		b := bytes.Clone(good)
		binary.LittleEndian.PutUint32(b[offsetELfanew:], off)
		_, err := Locate(b)
		requireFormatError(t, err, ReasonPEOffsetOutOfRange)
	}
}

func TestLocateBadPESignature(t *testing.T) {
	for _, sig := range []string{"PE\x00\x01", "NE\x00\x00", "LE\x00\x00", "\x00\x00\x00\x00", "pe\x00\x00"} {
		b := newTestImage().bytes()
		copy(b[testLfanew:], sig)
		_, err := Locate(b)
		requireFormatError(t, err, ReasonBadPESignature)
	}
}

func TestLocateSignatureAtDOSHeaderEnd(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	// e_lfanew may point anywhere inside the file, including straight after
	// the DOS header with no stub at all.
	b := newTestImage(testSection{".text", fill(8, 9)}).bytes()
	b = append(b[:sizeDOSHeader:sizeDOSHeader], b[testLfanew:]...)
	binary.LittleEndian.PutUint32(b[offsetELfanew:], sizeDOSHeader)
	sh := sizeDOSHeader + sizePEHeaders
	binary.LittleEndian.PutUint32(b[sh+20:], binary.LittleEndian.Uint32(b[sh+20:])-(testLfanew-sizeDOSHeader))

	l, err := Locate(b)
	require.NoError(err)
	assert.Equal(int64(sizeDOSHeader), l.PEHeaderOffset)
	sections, err := l.Sections(b)
	require.NoError(err)
	data, err := sections[0].Data(b)
	require.NoError(err)
	assert.Equal(fill(8, 9), data)
}

func TestLocateUnsupportedArchitecture(t *testing.T) {
	for _, machine := range []uint16{
		dpe.IMAGE_FILE_MACHINE_AMD64,
		dpe.IMAGE_FILE_MACHINE_ARM64,
		dpe.IMAGE_FILE_MACHINE_ARMNT,
		dpe.IMAGE_FILE_MACHINE_UNKNOWN,
		0xffff,
	} {
		img := newTestImage(testSection{".text", fill(4, 0)})
		img.machine = machine
		_, err := Locate(img.bytes())
		require.ErrorIs(t, err, ErrUnsupportedArchitecture)
		assert.NotErrorIs(t, err, ErrInvalidFormat)
		var me *MachineError
		require.True(t, errors.As(err, &me))
		assert.Equal(t, machine, me.Machine)
	}
}

func TestLocateSectionTableExceedsFile(t *testing.T) {
	b := newTestImage(testSection{".text", nil}).bytes()
	// Drop the last byte of the only section header.
	b = b[:sectionHeaderOffset(1)-1]
	_, err := Locate(b)
	requireFormatError(t, err, ReasonSectionTableTooLong)

	b = newTestImage().bytes()
	binary.LittleEndian.PutUint16(b[testLfanew+4+2:], math.MaxUint16)
	_, err = Locate(b)
	requireFormatError(t, err, ReasonSectionTableTooLong)
}

func TestLocateHeadersOnlyNoSections(t *testing.T) {
	b := newTestImage().bytes()
	require.Len(t, b, testLfanew+sizePEHeaders)
	l, err := Locate(b)
	require.NoError(t, err)
	assert.Equal(t, 0, l.NumberOfSections)
}

// Every e_lfanew value against small files must fail cleanly or succeed
// without panicking.
func TestLocateOffsetSweep(t *testing.T) {
	good := newTestImage(testSection{".text", fill(32, 5)}).bytes()
	for size := sizeDOSHeader; size <= len(good); size += 17 {
		for _, off := range []uint32{0, 1, 2, 60, 63, 64, testLfanew - 1, testLfanew, testLfanew + 1, uint32(size), math.MaxUint32} {
			b := bytes.Clone(good[:size])
			binary.LittleEndian.PutUint32(b[offsetELfanew:], off)
			assert.NotPanics(t, func() { _, _ = Locate(b) })
		}
	}
}

// checkArtifacts runs Artifacts on a copy of input with e_lfanew replaced,
// leaving input itself untouched.
func checkArtifacts(t *testing.T, input []byte, lfanew uint32) {
	b := bytes.Clone(input)
	if len(b) >= sizeDOSHeader {
		binary.LittleEndian.PutUint32(b[offsetELfanew:], lfanew)
	}
	artifacts, err := Artifacts(b)
	if err != nil {
		if !errors.Is(err, ErrInvalidFormat) && !errors.Is(err, ErrUnsupportedArchitecture) {
			t.Fatalf("untyped error: %v", err)
		}
		return
	}
	for _, a := range artifacts {
		if len(a.Data) > len(b) {
			t.Fatalf("artifact %q longer than input", a.Name)
		}
	}
}

func TestCheckArtifactsKeepsInput(t *testing.T) {
	input := newTestImage(testSection{".text", fill(16, 1)}).bytes()
	want := bytes.Clone(input)
	checkArtifacts(t, input, math.MaxUint32)
	assert.Equal(t, want, input)
}

func FuzzLocate(f *testing.F) {
	f.Add(newTestImage().bytes(), uint32(testLfanew))
	f.Add(newTestImage(testSection{".text", fill(16, 1)}).bytes(), uint32(math.MaxUint32))
	f.Add([]byte("MZ"), uint32(0))
	f.Fuzz(checkArtifacts)
}
