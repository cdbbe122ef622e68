package pe

// Artifact is one extracted structural piece of an image. Data aliases the
// byte view it was cut from and must not be modified or retained past the
// lifetime of that view.
type Artifact struct {
	Name string
	Data []byte
}

// Sink consumes artifacts in traversal order.
type Sink interface {
	Emit(Artifact) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Artifact) error

func (f SinkFunc) Emit(a Artifact) error {
	return f(a)
}

// Artifacts validates b and returns its artifacts in order: the DOS header,
// the file header, the optional header, then every section in table order.
// Every section window is checked before anything is returned, so an image
// with one bad section yields no artifacts at all.
func Artifacts(b []byte) ([]Artifact, error) {
	l, err := Locate(b)
	if err != nil {
		return nil, err
	}
	sections, err := l.Sections(b)
	if err != nil {
		return nil, err
	}

	artifacts := make([]Artifact, 0, 3+len(sections))
	artifacts = append(artifacts,
		Artifact{Name: NameDOSHeader, Data: b[:sizeDOSHeader]},
		Artifact{Name: NameFileHeader, Data: b[l.FileHeaderOffset : l.FileHeaderOffset+sizeFileHeader]},
		Artifact{Name: NameOptionalHeader, Data: b[l.OptionalHeaderOffset : l.OptionalHeaderOffset+sizeOptHeader32]},
	)
	for i := range sections {
		data, err := sections[i].Data(b)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, Artifact{Name: sections[i].Name, Data: data})
	}
	return artifacts, nil
}

// Extract validates b and hands every artifact to sink. Nothing is emitted
// unless the whole image validates; a sink error stops the traversal.
func Extract(b []byte, sink Sink) error {
	artifacts, err := Artifacts(b)
	if err != nil {
		return err
	}
	for _, a := range artifacts {
		if err := sink.Emit(a); err != nil {
			return err
		}
	}
	return nil
}
