// Package sink persists extracted artifacts.
package sink

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/malt3/pe-dump/pkg/pe"
)

const emptyName = "section"

// Dir writes every artifact to its own file inside a directory.
//
// Artifact names come straight from the image and are not trusted as file
// names: bytes outside printable ASCII and path separators are replaced by
// '_', an empty name becomes "section", and a name already written by this
// Dir gets ".1", ".2", ... appended. Existing files are overwritten.
type Dir struct {
	fs     afero.Fs
	dir    string
	suffix string
	log    logrus.FieldLogger

	seen    map[string]int
	written []string
}

// Option configures a Dir.
type Option func(*Dir)

// WithSuffix appends suffix to every file name, e.g. ".txt".
func WithSuffix(suffix string) Option {
	return func(d *Dir) { d.suffix = suffix }
}

// WithLogger sets the logger used to report written files.
func WithLogger(log logrus.FieldLogger) Option {
	return func(d *Dir) { d.log = log }
}

// NewDir creates dir on fs if needed and returns a sink writing into it.
func NewDir(fs afero.Fs, dir string, opts ...Option) (*Dir, error) {
	d := &Dir{
		fs:   fs,
		dir:  dir,
		log:  logrus.StandardLogger(),
		seen: make(map[string]int),
	}
	for _, opt := range opts {
		opt(d)
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return d, nil
}

// Emit writes a to its file.
func (d *Dir) Emit(a pe.Artifact) error {
	name := d.fileName(a.Name)
	path := filepath.Join(d.dir, name)
	if err := afero.WriteFile(d.fs, path, a.Data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	d.written = append(d.written, path)
	d.log.WithFields(logrus.Fields{
		"artifact": a.Name,
		"path":     path,
		"size":     len(a.Data),
	}).Debug("artifact written")
	return nil
}

// Written returns the paths written so far, in order.
func (d *Dir) Written() []string {
	return d.written
}

func (d *Dir) fileName(name string) string {
	base := Sanitize(name)
	n := d.seen[base]
	d.seen[base] = n + 1
	if n > 0 {
		base = fmt.Sprintf("%s.%d", base, n)
		// A sanitized name may itself look like a deduplicated one
		// (".text" twice plus a literal ".text.1").
		for d.seen[base] > 0 {
			n++
			base = fmt.Sprintf("%s.%d", Sanitize(name), n)
		}
		d.seen[base] = 1
	}
	return base + d.suffix
}

// Sanitize maps an artifact name to a safe single path component.
func Sanitize(name string) string {
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < 0x20 || c > 0x7e || c == '/' || c == '\\' || c == ':' {
			c = '_'
		}
		b.WriteByte(c)
	}
	s := b.String()
	switch s {
	case "":
		return emptyName
	case ".", "..":
		return strings.Repeat("_", len(s))
	}
	return s
}
