// Package linereader splits a byte stream into lines.
//
// A Reader refills a fixed-size chunk buffer from its source and yields the
// lines it finds there. A line spanning several chunks is assembled in a
// separate fragment buffer, so chunks are read in full whatever the line
// lengths are.
package linereader

import (
	"bytes"
	"errors"
	"io"
)

const (
	// DefaultChunkSize is the size of the chunk buffer used by New when the
	// given size is not positive.
	DefaultChunkSize = 128 * 1024

	minChunkSize = 16

	// maxEmptyReads is the number of consecutive reads returning no data
	// and no error after which the source is considered broken.
	maxEmptyReads = 100
)

// ErrLineTooLong is returned when a line exceeds the maximum line length.
var ErrLineTooLong = errors.New("linereader: line too long")

// A Reader reads lines from an io.Reader.
//
// Lines are terminated by '\n', which isn't part of the returned line. A '\r'
// preceding it is kept. The last line of the stream may not be terminated.
type Reader struct {
	src io.Reader

	// chunk buffer, invariant: 0 <= r <= w <= len(buf).
	buf  []byte
	r, w int

	frag    []byte // bytes seen since the last terminator, not in buf
	maxLine int
	err     error // sticky read error, io.EOF included

	nlines int64
	nbytes int64
}

// New returns a Reader reading from r with a chunk buffer of size bytes.
func New(r io.Reader, size int) *Reader {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if size < minChunkSize {
		size = minChunkSize
	}
	return &Reader{src: r, buf: make([]byte, size)}
}

// SetMaxLineLength limits the length of the lines returned by Next. Longer
// lines make Next fail with ErrLineTooLong. n <= 0 means no limit, which is
// the default.
func (lr *Reader) SetMaxLineLength(n int) {
	lr.maxLine = n
}

// Buffered returns the number of bytes that have been read from the source
// but not yet returned as a line, the pending fragment included.
func (lr *Reader) Buffered() int {
	return lr.w - lr.r + len(lr.frag)
}

// Lines returns the number of lines returned so far.
func (lr *Reader) Lines() int64 { return lr.nlines }

// Bytes returns the number of bytes consumed so far, terminators included.
func (lr *Reader) Bytes() int64 { return lr.nbytes }

// Next returns the next line, without its terminator. It returns io.EOF once
// all lines have been returned, and on all subsequent calls. Any other
// error from the source is returned as is, after the lines that were complete
// before the error, and on all subsequent calls.
//
// The returned slice is only valid until the next call to Next.
func (lr *Reader) Next() ([]byte, error) {
	for {
		// Look for a terminator in the unread part of the chunk.
		if i := bytes.IndexByte(lr.buf[lr.r:lr.w], '\n'); i >= 0 {
			line := lr.buf[lr.r : lr.r+i]
			lr.r += i + 1
			lr.nbytes += int64(i + 1)

			if len(lr.frag) > 0 {
				lr.frag = append(lr.frag, line...)
				line = lr.frag
				lr.frag = lr.frag[:0]
			}
			if lr.tooLong(len(line)) {
				return nil, lr.fail(ErrLineTooLong)
			}
			lr.nlines++
			return line, nil
		}

		if lr.err != nil {
			return lr.finish()
		}

		// No terminator, move the unread bytes out of the way and refill.
		if lr.r < lr.w {
			lr.frag = append(lr.frag, lr.buf[lr.r:lr.w]...)
			lr.nbytes += int64(lr.w - lr.r)
			if lr.tooLong(len(lr.frag)) {
				return nil, lr.fail(ErrLineTooLong)
			}
		}
		lr.r, lr.w = 0, 0
		lr.fill()
	}
}

// fill reads a new chunk into the (empty) buffer. It sets lr.err on error.
func (lr *Reader) fill() {
	for i := 0; i < maxEmptyReads; i++ {
		n, err := lr.src.Read(lr.buf)
		if n < 0 || n > len(lr.buf) {
			lr.err = errors.New("linereader: source returned invalid count")
			return
		}
		lr.w = n
		if err != nil {
			lr.err = err
			return
		}
		if n > 0 {
			return
		}
	}
	lr.err = io.ErrNoProgress
}

// finish is called when the buffer holds no terminator and the source can't
// be read anymore.
func (lr *Reader) finish() ([]byte, error) {
	if lr.err != io.EOF {
		// Don't return a partial line on error.
		lr.frag = lr.frag[:0]
		return nil, lr.err
	}

	rest := lr.buf[lr.r:lr.w]
	if len(lr.frag) == 0 && len(rest) == 0 {
		return nil, io.EOF
	}

	line := rest
	if len(lr.frag) > 0 {
		line = append(lr.frag, rest...)
		lr.frag = nil
	}
	lr.nbytes += int64(len(rest))
	lr.r = lr.w
	if lr.tooLong(len(line)) {
		return nil, lr.fail(ErrLineTooLong)
	}
	lr.nlines++
	return line, nil
}

func (lr *Reader) tooLong(n int) bool {
	return lr.maxLine > 0 && n > lr.maxLine
}

// fail makes err sticky and drops any buffered data.
func (lr *Reader) fail(err error) error {
	lr.err = err
	lr.frag = nil
	lr.r, lr.w = 0, 0
	return err
}
