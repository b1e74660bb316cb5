package zcat

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/AdRoll/zcat/pkg/sniff"
)

// ErrClosed is returned when reading from a closed Stream.
var ErrClosed = errors.New("zcat: stream is closed")

var errIsDir = errors.New("is a directory")

// An OpenError is returned when the source of a Stream can't be opened.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	err := e.Err
	var perr *fs.PathError
	if errors.As(err, &perr) {
		err = perr.Err
	}
	return fmt.Sprintf("zcat: can't open %s: %v", e.Path, err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// A FormatError is returned when the leading bytes of a stream can't be read,
// or when the stream header doesn't validate for the detected format.
type FormatError struct {
	Name   string
	Format sniff.Format
	Err    error
}

func (e *FormatError) Error() string {
	if !e.Format.IsCompressed() {
		return fmt.Sprintf("zcat: %s: can't detect format: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("zcat: %s: bad %s header: %v", e.Name, e.Format, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// A DecodeError is returned when the data of a stream can't be decoded:
// corrupted or truncated compressed data, checksum mismatch or a line longer
// than the configured maximum.
type DecodeError struct {
	Name   string
	Format sniff.Format
	Line   int64 // number of lines successfully read before the error
	Offset int64 // number of decoded bytes consumed before the error
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("zcat: %s: %s decode error after line %d (offset %d): %v", e.Name, e.Format, e.Line, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
