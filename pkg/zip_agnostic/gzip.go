package zip_agnostic

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

// newGzip reads gzip members until the end of r. The header of the first
// member is read and validated immediately.
func newGzip(r io.Reader, _ *Options) (io.Reader, func() error, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, nil, err
	}
	zr.Multistream(true)
	return zr, zr.Close, nil
}
