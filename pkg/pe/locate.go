package pe

import (
	dpe "debug/pe"
)

// Locate validates the header chain of the image in b and returns its
// layout. Each hop is checked before the next offset is trusted:
//
//	DOS header -> e_lfanew -> PE signature -> machine -> section table
//
// The first failing check aborts the walk.
func Locate(b []byte) (*Layout, error) {
	magic, ok := readStruct[uint16](b, offsetDOSMagic)
	if !ok || magic != dosMagic {
		return nil, invalidFormat(ReasonBadDOSSignature, offsetDOSMagic)
	}
	if len(b) < sizeDOSHeader {
		return nil, invalidFormat(ReasonTruncatedDOSHeader, 0)
	}

	lfanew, ok := readStruct[uint32](b, offsetELfanew)
	if !ok {
		return nil, invalidFormat(ReasonTruncatedDOSHeader, offsetELfanew)
	}
	peOff := int64(lfanew)
	if _, ok := span(b, peOff, sizePEHeaders); !ok {
		return nil, invalidFormat(ReasonPEOffsetOutOfRange, peOff)
	}

	sig, _ := readStruct[uint32](b, peOff)
	if sig != peSignature {
		return nil, invalidFormat(ReasonBadPESignature, peOff)
	}

	l := &Layout{
		PEHeaderOffset:       peOff,
		FileHeaderOffset:     peOff + sizeSignature,
		OptionalHeaderOffset: peOff + sizeSignature + sizeFileHeader,
		SectionTableOffset:   peOff + sizePEHeaders,
	}
	// Both reads are covered by the span check above.
	l.FileHeader, _ = readStruct[dpe.FileHeader](b, l.FileHeaderOffset)
	if l.FileHeader.Machine != expectedMachine {
		return nil, &MachineError{Machine: l.FileHeader.Machine}
	}
	l.OptionalHeader, _ = readStruct[dpe.OptionalHeader32](b, l.OptionalHeaderOffset)

	l.NumberOfSections = int(l.FileHeader.NumberOfSections)
	tableSize := uint64(l.NumberOfSections) * sizeSectionHdr
	if _, ok := span(b, l.SectionTableOffset, tableSize); !ok {
		return nil, invalidFormat(ReasonSectionTableTooLong, l.SectionTableOffset)
	}
	return l, nil
}
