package pe

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFormat is matched by every *FormatError.
	ErrInvalidFormat = errors.New("invalid PE image")
	// ErrUnsupportedArchitecture is matched by every *MachineError.
	ErrUnsupportedArchitecture = errors.New("unsupported architecture")
)

// Reasons reported by FormatError.
const (
	ReasonBadDOSSignature     = "bad DOS signature"
	ReasonTruncatedDOSHeader  = "truncated DOS header"
	ReasonPEOffsetOutOfRange  = "PE header offset out of range"
	ReasonBadPESignature      = "bad PE signature"
	ReasonSectionTableTooLong = "section table exceeds file size"
)

// FormatError reports a magic value, signature or offset that failed
// validation.
type FormatError struct {
	Reason string
	// Offset is the file offset of the structure that failed the check.
	Offset int64
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %s (offset 0x%x)", ErrInvalidFormat, e.Reason, e.Offset)
}

func (e *FormatError) Is(target error) bool {
	return target == ErrInvalidFormat
}

func invalidFormat(reason string, offset int64) error {
	return &FormatError{Reason: reason, Offset: offset}
}

// MachineError reports a structurally valid image built for another machine.
type MachineError struct {
	Machine uint16
}

func (e *MachineError) Error() string {
	return fmt.Sprintf("%s: machine 0x%04x, want 0x%04x (i386)", ErrUnsupportedArchitecture, e.Machine, expectedMachine)
}

func (e *MachineError) Is(target error) bool {
	return target == ErrUnsupportedArchitecture
}
