package zip_agnostic_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/arl/zt"

	"github.com/AdRoll/zcat/pkg/sniff"
	"github.com/AdRoll/zcat/pkg/zip_agnostic"
	"github.com/AdRoll/zcat/testutil"
)

func TestReader(t *testing.T) {
	want := testutil.Lines(2000)

	for _, f := range sniff.Formats() {
		t.Run(f.String(), func(t *testing.T) {
			compressed := testutil.Compress(t, f, want)

			r, err := zip_agnostic.NewReader(bytes.NewReader(compressed))
			if err != nil {
				t.Fatalf("NewReader returns %v", err)
			}
			defer r.Close()

			if r.Format() != f {
				t.Errorf("Format() = %s, want %s", r.Format(), f)
			}

			got, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("couldn't read all: %v", err)
			}
			testutil.DiffBytes(t, "want", "got", want, got)
		})
	}
}

func TestReaderMatchesZt(t *testing.T) {
	data := testutil.Lines(500)

	for _, f := range []sniff.Format{sniff.Gzip, sniff.Zstd} {
		t.Run(f.String(), func(t *testing.T) {
			compressed := testutil.Compress(t, f, data)

			zr, err := zt.NewReader(bytes.NewReader(compressed))
			if err != nil {
				t.Fatalf("zt.NewReader: %v", err)
			}
			defer zr.Close()
			want, err := io.ReadAll(zr)
			if err != nil {
				t.Fatal(err)
			}

			r, err := zip_agnostic.NewReader(bytes.NewReader(compressed))
			if err != nil {
				t.Fatal(err)
			}
			defer r.Close()
			got, err := io.ReadAll(r)
			if err != nil {
				t.Fatal(err)
			}

			testutil.DiffBytes(t, "zt", "zip_agnostic", want, got)
		})
	}
}

func TestReaderEmpty(t *testing.T) {
	for _, f := range sniff.Formats() {
		t.Run(f.String(), func(t *testing.T) {
			r, err := zip_agnostic.NewReader(bytes.NewReader(testutil.Compress(t, f, nil)))
			if err != nil {
				t.Fatal(err)
			}
			defer r.Close()

			b, err := io.ReadAll(r)
			if err != nil {
				t.Fatal(err)
			}
			if len(b) != 0 {
				t.Errorf("got %q, want empty", b)
			}
		})
	}
}

func TestReader1Byte(t *testing.T) {
	r, err := zip_agnostic.NewReader(strings.NewReader("0"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}

	if string(b) != "0" {
		t.Errorf("got b = %q, want %q", b, "0")
	}
}

func TestReaderConcatenatedGzip(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(testutil.Compress(t, sniff.Gzip, []byte("first\n")))
	buf.Write(testutil.Compress(t, sniff.Gzip, []byte("second\n")))

	r, err := zip_agnostic.NewReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "first\nsecond\n" {
		t.Errorf("got %q", b)
	}
}

// compressedFormats returns all formats but sniff.PassThrough.
func compressedFormats() []sniff.Format {
	var formats []sniff.Format
	for _, f := range sniff.Formats() {
		if f.IsCompressed() {
			formats = append(formats, f)
		}
	}
	return formats
}

func TestDecoderTruncated(t *testing.T) {
	data := testutil.Lines(5000)

	for _, f := range compressedFormats() {
		t.Run(f.String(), func(t *testing.T) {
			compressed := testutil.Compress(t, f, data)

			for _, cut := range testutil.Cuts(f, len(compressed)) {
				dec, err := zip_agnostic.NewDecoder(f, bytes.NewReader(compressed[:cut]), nil)
				if err != nil {
					var herr *zip_agnostic.HeaderError
					if !errors.As(err, &herr) {
						t.Fatalf("cut at %d: NewDecoder error is %T (%v), want *HeaderError", cut, err, err)
					}
					continue
				}

				got, err := io.ReadAll(dec)
				if err == nil {
					dec.Close()
					t.Fatalf("cut at %d: truncated stream read without error (%d bytes)", cut, len(got))
				}

				var rerr *zip_agnostic.ReadError
				if !errors.As(err, &rerr) {
					dec.Close()
					t.Fatalf("cut at %d: error is %T (%v), want *ReadError", cut, err, err)
				}
				if rerr.Format != f {
					t.Errorf("cut at %d: ReadError.Format = %s, want %s", cut, rerr.Format, f)
				}

				// The error is sticky.
				if _, err2 := dec.Read(make([]byte, 16)); err2 != err {
					t.Errorf("cut at %d: second read error = %v, want %v", cut, err2, err)
				}
				dec.Close()
			}
		})
	}
}

func TestXzTruncatedBeforeFirstBlock(t *testing.T) {
	compressed := testutil.Compress(t, sniff.Xz, testutil.Lines(3000))

	// The stream header is 12 bytes long, the first block header 12 bytes
	// at least.
	for cut := 12; cut < 24; cut++ {
		dec, err := zip_agnostic.NewDecoder(sniff.Xz, bytes.NewReader(compressed[:cut]), nil)
		if err != nil {
			t.Fatalf("cut at %d: NewDecoder: %v", cut, err)
		}
		_, err = io.ReadAll(dec)
		dec.Close()
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("cut at %d: got error %v, want io.ErrUnexpectedEOF", cut, err)
		}
	}
}

func TestXzPadding(t *testing.T) {
	first := testutil.Compress(t, sniff.Xz, []byte("first\n"))
	second := testutil.Compress(t, sniff.Xz, []byte("second\n"))
	padding := make([]byte, 8)

	tests := []struct {
		name string
		data [][]byte
		want string
	}{
		{"trailing padding", [][]byte{first, padding}, "first\n"},
		{"padding between streams", [][]byte{first, padding, second}, "first\nsecond\n"},
		{"both", [][]byte{first, padding, second, padding[:4]}, "first\nsecond\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec, err := zip_agnostic.NewDecoder(sniff.Xz, bytes.NewReader(bytes.Join(tt.data, nil)), nil)
			if err != nil {
				t.Fatal(err)
			}
			defer dec.Close()

			b, err := io.ReadAll(dec)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(b) != tt.want {
				t.Errorf("got %q, want %q", b, tt.want)
			}
		})
	}
}

func TestLz4Frames(t *testing.T) {
	first := testutil.Compress(t, sniff.Lz4, []byte("first\n"))
	second := testutil.Compress(t, sniff.Lz4, []byte("second\n"))

	dec, err := zip_agnostic.NewDecoder(sniff.Lz4, bytes.NewReader(append(append([]byte{}, first...), second...)), nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := io.ReadAll(dec)
	dec.Close()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(b) != "first\nsecond\n" {
		t.Errorf("got %q", b)
	}

	// The second frame is cut inside its magic number, or right after it.
	for n := 1; n <= 5; n++ {
		data := append(append([]byte{}, first...), second[:n]...)
		dec, err := zip_agnostic.NewDecoder(sniff.Lz4, bytes.NewReader(data), nil)
		if err != nil {
			t.Fatal(err)
		}
		_, err = io.ReadAll(dec)
		dec.Close()

		var rerr *zip_agnostic.ReadError
		if !errors.As(err, &rerr) {
			t.Errorf("second frame cut at %d: got error %v, want *ReadError", n, err)
		}
	}
}

func TestDecoderCorruptedGzipChecksum(t *testing.T) {
	compressed := testutil.Compress(t, sniff.Gzip, testutil.Lines(100))
	// The gzip trailer is CRC32 then ISIZE, 4 bytes each.
	compressed[len(compressed)-8] ^= 0xff

	dec, err := zip_agnostic.NewDecoder(sniff.Gzip, bytes.NewReader(compressed), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()

	_, err = io.ReadAll(dec)
	var rerr *zip_agnostic.ReadError
	if !errors.As(err, &rerr) {
		t.Fatalf("got error %v, want *ReadError", err)
	}
}

func TestNewDecoderHeaderError(t *testing.T) {
	tests := []struct {
		format sniff.Format
		data   []byte
	}{
		{sniff.Gzip, []byte{0x1f, 0x8b}},
		{sniff.Gzip, []byte("not gzip at all")},
		{sniff.Xz, []byte{0xfd, '7', 'z', 'X', 'Z', 0x00, 0xff, 0xff}},
		{sniff.Bzip2, []byte("BZh")},
		{sniff.Bzip2, []byte("BZhx1AY&SY")},
		{sniff.Lzma, []byte{0x5d, 0x00, 0x00, 0x10, 0x00, 0xfe, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
		{sniff.Zstd, []byte{0x28, 0xb5, 0x2f, 0xfd}},
		{sniff.Zstd, []byte{0x28, 0xb5, 0x2f, 0xfd, 0x08, 0x00, 0x00, 0x00}},
		{sniff.Lz4, []byte{0x04, 0x22, 0x4d, 0x18}},
		{sniff.Lz4, []byte{0x04, 0x22, 0x4d, 0x18, 0x00, 0x40, 0x00, 0x00, 0x00, 0x00, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			_, err := zip_agnostic.NewDecoder(tt.format, bytes.NewReader(tt.data), nil)
			var herr *zip_agnostic.HeaderError
			if !errors.As(err, &herr) {
				t.Fatalf("got error %v, want *HeaderError", err)
			}
			if herr.Format != tt.format {
				t.Errorf("HeaderError.Format = %s, want %s", herr.Format, tt.format)
			}
		})
	}
}

func TestDecoderClose(t *testing.T) {
	dec, err := zip_agnostic.NewDecoder(sniff.Zstd, bytes.NewReader(testutil.Compress(t, sniff.Zstd, []byte("abc"))), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := dec.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := dec.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if _, err := dec.Read(make([]byte, 8)); err != zip_agnostic.ErrClosed {
		t.Errorf("read after close = %v, want ErrClosed", err)
	}
}

func TestNewDecoderUnsupported(t *testing.T) {
	if zip_agnostic.Supported(sniff.Format(99)) {
		t.Fatal("Format(99) reported as supported")
	}
	if _, err := zip_agnostic.NewDecoder(sniff.Format(99), strings.NewReader(""), nil); err == nil {
		t.Fatal("want error for unsupported format")
	}
	for _, f := range sniff.Formats() {
		if !zip_agnostic.Supported(f) {
			t.Errorf("%s not supported", f)
		}
	}
}

func TestZstdMaxWindow(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789abcdef\n"), 1<<16)
	compressed := testutil.Compress(t, sniff.Zstd, data)

	dec, err := zip_agnostic.NewDecoder(sniff.Zstd, bytes.NewReader(compressed), &zip_agnostic.Options{ZstdMaxWindow: 8 << 20})
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()

	got, err := io.ReadAll(dec)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Error("data mismatch after decompression")
	}
}
