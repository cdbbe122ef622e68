package pe

import (
	"bytes"
	dpe "debug/pe"
	"fmt"
)

// Section is a decoded section table entry.
type Section struct {
	Index int
	// Name is the 8-byte name field cut at the first NUL. It may be empty,
	// may repeat across sections and may hold non-printable bytes.
	Name    string
	RawName [sizeShortName]byte
	dpe.SectionHeader32
}

// Window returns the raw-data extent of s as [start, end).
func (s *Section) Window() (start, end int64) {
	start = int64(s.PointerToRawData)
	return start, start + int64(s.SizeOfRawData)
}

// SectionName decodes a fixed-width section name. Bytes after the first NUL
// are ignored; with no NUL the whole field is the name.
func SectionName(raw [sizeShortName]byte) string {
	if i := bytes.IndexByte(raw[:], 0); i >= 0 {
		return string(raw[:i])
	}
	return string(raw[:])
}

// Sections decodes the section table described by l.
func (l *Layout) Sections(b []byte) ([]Section, error) {
	sections := make([]Section, 0, l.NumberOfSections)
	for i := 0; i < l.NumberOfSections; i++ {
		off := l.SectionTableOffset + int64(i)*sizeSectionHdr
		hdr, ok := readStruct[dpe.SectionHeader32](b, off)
		if !ok {
			return nil, invalidFormat(ReasonSectionTableTooLong, off)
		}
		sections = append(sections, Section{
			Index:           i,
			Name:            SectionName(hdr.Name),
			RawName:         hdr.Name,
			SectionHeader32: hdr,
		})
	}
	return sections, nil
}

// Data returns the raw bytes of s inside b.
//
// The window is checked even when SizeOfRawData is zero: an empty section
// whose PointerToRawData lies past the end of b is rejected like any other
// out-of-bounds section.
func (s *Section) Data(b []byte) ([]byte, error) {
	p, ok := span(b, s.PointerToRawData, uint64(s.SizeOfRawData))
	if !ok {
		return nil, invalidFormat(fmt.Sprintf("section %d (%q) raw data exceeds file size", s.Index, s.Name), int64(s.PointerToRawData))
	}
	return p, nil
}
