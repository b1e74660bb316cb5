package zip_agnostic

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/AdRoll/zcat/pkg/sniff"
)

// DefaultBufferSize is the size of the buffer NewReader places in front of
// the compressed stream, if it isn't already a *bufio.Reader.
const DefaultBufferSize = 64 * 1024

// ErrClosed is returned when reading from a closed Decoder.
var ErrClosed = errors.New("zip_agnostic: read on closed decoder")

// A Decoder reads the decoded bytes of a stream whose format has been fixed
// at creation.
type Decoder interface {
	// Read reads up to len(p) decoded bytes into p. It returns io.EOF at the
	// clean end of the stream, or a *ReadError if the stream can't be decoded.
	Read(p []byte) (int, error)

	// Format returns the format the Decoder is decoding.
	Format() sniff.Format

	// Close releases the resources associated to the decoder. It does not
	// close the underlying reader. Calling Close more than once is a no-op.
	Close() error
}

// Options configures decoders. The zero value is valid.
type Options struct {
	// ZstdMaxWindow limits the memory the zstd decoder may allocate for its
	// window. Streams requiring more fail to decode. 0 uses the library
	// default.
	ZstdMaxWindow uint64
}

// A HeaderError is returned by NewDecoder when the stream header doesn't
// validate for the requested format.
type HeaderError struct {
	Format sniff.Format
	Err    error
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("zip_agnostic (%s): invalid header: %v", e.Format, e.Err)
}

func (e *HeaderError) Unwrap() error { return e.Err }

// A ReadError is returned by Decoder.Read when the compressed data is
// corrupted, truncated or fails its checksum.
type ReadError struct {
	Format sniff.Format
	Err    error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("zip_agnostic (%s): can't decode: %v", e.Format, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// a constructor creates the decompressing reader of a given format, and
// optionally a function releasing its resources.
type constructor func(r io.Reader, opts *Options) (io.Reader, func() error, error)

var constructors = map[sniff.Format]constructor{
	sniff.PassThrough: newPassThrough,
	sniff.Gzip:        newGzip,
	sniff.Bzip2:       newBzip2,
	sniff.Xz:          newXz,
	sniff.Lzma:        newLzma,
	sniff.Zstd:        newZstd,
	sniff.Lz4:         newLz4,
}

// Supported reports whether a decoder is available for format f.
func Supported(f sniff.Format) bool {
	_, ok := constructors[f]
	return ok
}

// NewDecoder returns a Decoder reading the data in r, decoded as format f.
// Depending on the format, some bytes may be read from r to validate the
// stream header.
func NewDecoder(f sniff.Format, r io.Reader, opts *Options) (Decoder, error) {
	newfn, ok := constructors[f]
	if !ok {
		return nil, fmt.Errorf("zip_agnostic: unsupported format %s", f)
	}
	if opts == nil {
		opts = &Options{}
	}

	dr, closefn, err := newfn(r, opts)
	if err != nil {
		return nil, &HeaderError{Format: f, Err: err}
	}
	return &decoder{format: f, r: dr, close: closefn}, nil
}

// NewReader returns a Decoder that reads from r, whether r is a reader
// over compressed data or not.
//
// Note: NewReader is an utility function provided as a best effort, it's still
// possible to trick it into thinking a reader contains compressed data, while
// in fact it's not.
func NewReader(r io.Reader) (Decoder, error) {
	br, ok := r.(*bufio.Reader)
	if !ok || br.Size() < sniff.MaxSignatureLen {
		br = bufio.NewReaderSize(r, DefaultBufferSize)
	}

	f, err := sniff.Peek(br)
	if err != nil {
		return nil, fmt.Errorf("zip_agnostic: can't read: %w", err)
	}
	return NewDecoder(f, br, nil)
}

type decoder struct {
	format sniff.Format
	r      io.Reader
	close  func() error

	err    error // sticky, io.EOF or *ReadError
	closed bool
}

func (d *decoder) Format() sniff.Format { return d.format }

func (d *decoder) Read(p []byte) (int, error) {
	if d.closed {
		return 0, ErrClosed
	}
	if d.err != nil {
		return 0, d.err
	}

	n, err := d.r.Read(p)
	switch {
	case err == nil:
	case err == io.EOF:
		d.err = io.EOF
	default:
		d.err = &ReadError{Format: d.format, Err: err}
	}
	return n, d.err
}

func (d *decoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true

	if d.close == nil {
		return nil
	}
	if err := d.close(); err != nil {
		return fmt.Errorf("zip_agnostic (%s): close: %v", d.format, err)
	}
	return nil
}

func newPassThrough(r io.Reader, _ *Options) (io.Reader, func() error, error) {
	return r, nil, nil
}

// peek returns up to n leading bytes of r, without consuming them, and the
// buffered reader to read r from afterwards. Fewer than n bytes are returned
// if r is shorter.
func peek(r io.Reader, n int) (*bufio.Reader, []byte, error) {
	br, ok := r.(*bufio.Reader)
	if !ok || br.Size() < n {
		br = bufio.NewReaderSize(r, DefaultBufferSize)
	}
	b, err := br.Peek(n)
	if err == io.EOF {
		err = nil
	}
	return br, b, err
}

// countingReader counts the bytes read from r.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
