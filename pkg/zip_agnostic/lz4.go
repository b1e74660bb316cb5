package zip_agnostic

import (
	"io"

	"github.com/pierrec/lz4/v3"
)

// newLz4 reads lz4 frames. The header of the first frame is parsed
// immediately.
func newLz4(r io.Reader, _ *Options) (io.Reader, func() error, error) {
	src := &countingReader{r: r}
	zr := lz4.NewReader(src)

	// An empty read only parses the frame header.
	if _, err := zr.Read(nil); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, nil, err
	}
	return &lz4Reader{zr: zr, src: src}, nil, nil
}

// lz4Reader fixes the end of stream reported by lz4.Reader, which returns
// io.EOF when the source ends at a block boundary or inside the header of a
// concatenated frame. The source may only end right after the end mark (and
// checksum) of a frame.
type lz4Reader struct {
	zr  *lz4.Reader
	src *countingReader
	eof bool
}

func (r *lz4Reader) Read(p []byte) (int, error) {
	if r.eof {
		return 0, io.EOF
	}

	// lz4.Reader resets its Header once a frame is over.
	inFrame := r.zr.BlockMaxSize != 0
	endMark := int64(4)
	if !r.zr.NoChecksum {
		endMark += 4
	}
	before := r.src.n

	n, err := r.zr.Read(p)
	if err != io.EOF {
		return n, err
	}
	if !inFrame || r.zr.BlockMaxSize != 0 || r.src.n-before != endMark {
		return n, io.ErrUnexpectedEOF
	}
	r.eof = true
	return n, io.EOF
}
