// Package ioerr defines the error type shared by every collaborator of the
// conversion pipeline (sorter, metadata reader, volume reader, writer).
//
// Each failure carries a Kind and the path it concerns, so the driver can
// print one diagnostic line and stop without probing which component failed.
package ioerr

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"syscall"

	"github.com/suyashkumar/dicom"
)

// Kind classifies a collaborator failure.
type Kind int

const (
	Unknown Kind = iota
	FileNotFound
	CannotOpenFile
	UnrecognizedFileType
	PrematureEndOfFile
	FileFormat
	NoFileName
	OutOfDiskSpace
)

// String returns a short lowercase label, used in structured log fields.
func (k Kind) String() string {
	switch k {
	case FileNotFound:
		return "not-found"
	case CannotOpenFile:
		return "cannot-open"
	case UnrecognizedFileType:
		return "unrecognized-type"
	case PrematureEndOfFile:
		return "truncated"
	case FileFormat:
		return "malformed"
	case NoFileName:
		return "no-output-name"
	case OutOfDiskSpace:
		return "out-of-space"
	default:
		return "unknown"
	}
}

// Error is the discriminated result returned by collaborators.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

// New creates an Error of the given kind for path. err may be nil.
func New(kind Kind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s", e.Kind, e.Path)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Classify wraps err into an *Error for path. An err that already is (or
// wraps) an *Error is returned unchanged.
func Classify(path string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return New(KindOf(err), path, err)
}

// KindOf maps a raw OS, io or DICOM parser error onto a Kind.
func KindOf(err error) Kind {
	var e *Error
	switch {
	case err == nil:
		return Unknown
	case errors.As(err, &e):
		return e.Kind
	case errors.Is(err, fs.ErrNotExist):
		return FileNotFound
	case errors.Is(err, fs.ErrPermission):
		return CannotOpenFile
	case errors.Is(err, syscall.ENOSPC):
		return OutOfDiskSpace
	case errors.Is(err, syscall.EISDIR):
		return CannotOpenFile
	case errors.Is(err, dicom.ErrorMagicWord):
		return UnrecognizedFileType
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return PrematureEndOfFile
	default:
		return FileFormat
	}
}

// Message renders the one-line user diagnostic for err.
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		if err == nil {
			return ""
		}
		return err.Error()
	}
	switch e.Kind {
	case FileNotFound:
		return "File not found: " + e.Path
	case CannotOpenFile:
		return "Cannot open file: " + e.Path
	case UnrecognizedFileType:
		return "Unrecognized file type: " + e.Path
	case PrematureEndOfFile:
		return "File is truncated: " + e.Path
	case FileFormat:
		return "Bad DICOM file: " + e.Path
	case NoFileName:
		return "Output filename could not be used: " + e.Path
	case OutOfDiskSpace:
		return "Out of disk space while writing file: " + e.Path
	default:
		return "An unknown error occurred."
	}
}
