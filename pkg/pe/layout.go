// Package pe locates and extracts the structural pieces of 32-bit PE images.
//
// All reads are bounds-checked against the byte view handed in by the
// caller; a corrupt or hostile offset yields an error, never a read past the
// end of the view.
package pe

import (
	dpe "debug/pe"
)

const (
	offsetDOSMagic  = 0
	offsetELfanew   = 60
	sizeDOSHeader   = 64
	sizeSignature   = 4
	sizeFileHeader  = 20
	sizeOptHeader32 = 224
	sizeSectionHdr  = 40
	sizeShortName   = 8

	// sizePEHeaders covers the signature, the file header and the fixed-size
	// 32-bit optional header.
	sizePEHeaders = sizeSignature + sizeFileHeader + sizeOptHeader32

	dosMagic        = 0x5A4D     // "MZ"
	peSignature     = 0x00004550 // "PE\0\0"
	expectedMachine = dpe.IMAGE_FILE_MACHINE_I386
)

// Artifact names for the fixed headers.
const (
	NameDOSHeader      = "dos_header"
	NameFileHeader     = "file_header"
	NameOptionalHeader = "optional_header"
)

// Layout is the set of validated structural offsets of a PE image.
type Layout struct {
	// PEHeaderOffset is e_lfanew, the offset of the "PE\0\0" signature.
	PEHeaderOffset       int64
	FileHeaderOffset     int64
	OptionalHeaderOffset int64
	SectionTableOffset   int64
	NumberOfSections     int

	FileHeader     dpe.FileHeader
	OptionalHeader dpe.OptionalHeader32
}

// SectionTableEnd is the offset of the first byte after the section table.
func (l *Layout) SectionTableEnd() int64 {
	return l.SectionTableOffset + int64(l.NumberOfSections)*sizeSectionHdr
}
