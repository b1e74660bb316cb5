package zip_agnostic

import (
	"io"

	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

// newXz reads xz streams until the end of r, padding between concatenated
// streams included. The stream header is validated immediately.
func newXz(r io.Reader, _ *Options) (io.Reader, func() error, error) {
	tail := &xzTail{r: r}
	cfg := xz.ReaderConfig{SingleStream: false}
	zr, err := cfg.NewReader(tail)
	if err != nil {
		return nil, nil, err
	}
	return &xzReader{zr: zr, tail: tail}, nil, nil
}

// xzReader fixes the end of stream reported by xz.Reader, which returns
// io.EOF when the source ends where a block header is expected.
type xzReader struct {
	zr   *xz.Reader
	tail *xzTail
}

func (r *xzReader) Read(p []byte) (int, error) {
	n, err := r.zr.Read(p)
	if err == io.EOF && !r.tail.atStreamEnd() {
		err = io.ErrUnexpectedEOF
	}
	return n, err
}

// xzTail remembers the last bytes read from the source: a well-formed
// source ends with the magic bytes of a stream footer, possibly followed by
// stream padding (groups of 4 null bytes).
type xzTail struct {
	r     io.Reader
	last  [2]byte // last 2 bytes read before the trailing null bytes
	zeros int     // number of trailing null bytes
}

func (t *xzTail) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	t.update(p[:n])
	return n, err
}

func (t *xzTail) update(b []byte) {
	i := len(b) - 1
	for i >= 0 && b[i] == 0 {
		i--
	}
	if i < 0 {
		t.zeros += len(b)
		return
	}

	switch {
	case i > 0:
		t.last = [2]byte{b[i-1], b[i]}
	case t.zeros > 0:
		t.last = [2]byte{0, b[0]}
	default:
		t.last = [2]byte{t.last[1], b[0]}
	}
	t.zeros = len(b) - 1 - i
}

func (t *xzTail) atStreamEnd() bool {
	return t.last == [2]byte{'Y', 'Z'} && t.zeros%4 == 0
}

// newLzma reads a legacy .lzma (lzma_alone) stream, whose 13 bytes header
// is read and validated immediately.
func newLzma(r io.Reader, _ *Options) (io.Reader, func() error, error) {
	zr, err := lzma.NewReader(r)
	if err != nil {
		return nil, nil, err
	}
	return zr, nil, nil
}
