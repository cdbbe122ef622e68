package pe

import (
	"bytes"
	dpe "debug/pe"
	"encoding/binary"
)

const testLfanew = 0x80

type testSection struct {
	name string
	data []byte
}

// testImage assembles a minimal 32-bit PE image: DOS header, a zero stub up
// to testLfanew, the PE headers, the section table and then the raw data of
// each section back to back.
type testImage struct {
	machine  uint16
	sections []testSection
}

func newTestImage(sections ...testSection) *testImage {
	return &testImage{machine: dpe.IMAGE_FILE_MACHINE_I386, sections: sections}
}

func (ti *testImage) bytes() []byte {
	var buf bytes.Buffer

	dos := make([]byte, testLfanew)
	dos[0], dos[1] = 'M', 'Z'
	binary.LittleEndian.PutUint32(dos[offsetELfanew:], testLfanew)
	for i := 2; i < offsetELfanew; i++ {
		dos[i] = byte(i)
	}
	buf.Write(dos)

	buf.WriteString("PE\x00\x00")
	must(binary.Write(&buf, binary.LittleEndian, dpe.FileHeader{
		Machine:              ti.machine,
		NumberOfSections:     uint16(len(ti.sections)),
		TimeDateStamp:        0x5f000000,
		SizeOfOptionalHeader: sizeOptHeader32,
		Characteristics:      dpe.IMAGE_FILE_EXECUTABLE_IMAGE | dpe.IMAGE_FILE_32BIT_MACHINE,
	}))
	must(binary.Write(&buf, binary.LittleEndian, dpe.OptionalHeader32{
		Magic:               0x10b,
		AddressOfEntryPoint: 0x1000,
		ImageBase:           0x400000,
		SectionAlignment:    0x1000,
		FileAlignment:       0x200,
		NumberOfRvaAndSizes: 16,
	}))

	dataOff := uint32(testLfanew + sizePEHeaders + len(ti.sections)*sizeSectionHdr)
	for i, s := range ti.sections {
		var name [8]uint8
		copy(name[:], s.name)
		must(binary.Write(&buf, binary.LittleEndian, dpe.SectionHeader32{
			Name:             name,
			VirtualSize:      uint32(len(s.data)),
			VirtualAddress:   uint32(0x1000 * (i + 1)),
			SizeOfRawData:    uint32(len(s.data)),
			PointerToRawData: dataOff,
		}))
		dataOff += uint32(len(s.data))
	}
	for _, s := range ti.sections {
		buf.Write(s.data)
	}
	return buf.Bytes()
}

func sectionHeaderOffset(i int) int {
	return testLfanew + sizePEHeaders + i*sizeSectionHdr
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func fill(n int, seed byte) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = seed + byte(i*7)
	}
	return p
}
