package zip_agnostic

import (
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"
)

// newBzip2 reads bzip2 streams until the end of r. bzip2.NewReader doesn't
// read anything, so the stream header is checked here.
func newBzip2(r io.Reader, _ *Options) (io.Reader, func() error, error) {
	br, hdr, err := peek(r, 4)
	if err != nil {
		return nil, nil, err
	}
	if len(hdr) < 4 {
		return nil, nil, io.ErrUnexpectedEOF
	}
	if string(hdr[:3]) != "BZh" || hdr[3] < '1' || hdr[3] > '9' {
		return nil, nil, fmt.Errorf("bzip2: invalid stream header %q", hdr)
	}

	zr, err := bzip2.NewReader(br, nil)
	if err != nil {
		return nil, nil, err
	}
	return zr, zr.Close, nil
}
