package zip_agnostic

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// newZstd decodes zstd frames synchronously: with a concurrency of 1 the
// decoder doesn't start any goroutine. zstd.NewReader doesn't read
// anything, so the header of the first frame is checked here.
func newZstd(r io.Reader, opts *Options) (io.Reader, func() error, error) {
	br, hdr, err := peek(r, zstd.HeaderMaxSize)
	if err != nil {
		return nil, nil, err
	}
	var h zstd.Header
	if err := h.Decode(hdr); err != nil {
		return nil, nil, err
	}
	if opts.ZstdMaxWindow != 0 && h.WindowSize > opts.ZstdMaxWindow {
		return nil, nil, fmt.Errorf("zstd: window size %d exceeds the maximum %d", h.WindowSize, opts.ZstdMaxWindow)
	}

	dopts := []zstd.DOption{
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(true),
	}
	if opts.ZstdMaxWindow != 0 {
		dopts = append(dopts, zstd.WithDecoderMaxWindow(opts.ZstdMaxWindow))
	}

	zr, err := zstd.NewReader(br, dopts...)
	if err != nil {
		return nil, nil, err
	}
	return zr, func() error { zr.Close(); return nil }, nil
}
