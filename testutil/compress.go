package testutil

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v3"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
	"github.com/valyala/gozstd"

	"github.com/AdRoll/zcat/pkg/sniff"
)

// Compress is a test helper that returns data compressed with format f.
// sniff.PassThrough returns a copy of data.
func Compress(tb testing.TB, f sniff.Format, data []byte) []byte {
	tb.Helper()

	if f == sniff.Zstd {
		// gozstd wraps the reference C implementation, so that decoded
		// output is verified against an independent encoder.
		return gozstd.Compress(nil, data)
	}

	var buf bytes.Buffer
	var w io.WriteCloser
	var err error

	switch f {
	case sniff.PassThrough:
		return append([]byte(nil), data...)
	case sniff.Gzip:
		w = gzip.NewWriter(&buf)
	case sniff.Bzip2:
		w, err = bzip2.NewWriter(&buf, nil)
	case sniff.Xz:
		w, err = xz.NewWriter(&buf)
	case sniff.Lzma:
		w, err = lzma.NewWriter(&buf)
	case sniff.Lz4:
		w = lz4.NewWriter(&buf)
	default:
		tb.Fatalf("can't compress: unsupported format %s", f)
	}

	if err != nil {
		tb.Fatalf("can't create %s writer: %v", f, err)
	}
	if _, err := w.Write(data); err != nil {
		tb.Fatalf("can't compress with %s: %v", f, err)
	}
	if err := w.Close(); err != nil {
		tb.Fatalf("can't close %s writer: %v", f, err)
	}
	return buf.Bytes()
}

// Ext returns the conventional file extension of format f, including the
// leading dot, or ".txt" for sniff.PassThrough.
func Ext(f sniff.Format) string {
	switch f {
	case sniff.PassThrough:
		return ".txt"
	case sniff.Gzip:
		return ".gz"
	case sniff.Bzip2:
		return ".bz2"
	case sniff.Zstd:
		return ".zst"
	}
	return "." + f.String()
}

// Lines returns a text made of n lines, of increasing length. Lines are
// long enough that the compressed output of most formats spans several
// blocks, which makes the text useful to test truncated streams.
func Lines(n int) []byte {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteString("line ")
		for j := 0; j <= i%97; j++ {
			sb.WriteByte(byte('a' + (i*7+j*13)%26))
		}
		sb.WriteByte('\n')
	}
	return []byte(sb.String())
}

// Cuts returns the lengths at which to truncate a stream of n bytes in
// format f so that the stream ends inside its header or its first block:
// every length from the end of the signature to 32 bytes further, then half
// of the stream.
func Cuts(f sniff.Format, n int) []int {
	start := 1
	for _, d := range sniff.DefaultTable.Descriptors() {
		if d.Format == f {
			start = len(d.Signature)
		}
	}

	var cuts []int
	for i := start; i <= start+32 && i < n; i++ {
		cuts = append(cuts, i)
	}
	if n/2 > start+32 {
		cuts = append(cuts, n/2)
	}
	return cuts
}
